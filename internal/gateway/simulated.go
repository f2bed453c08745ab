package gateway

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/roach88/stackdock/internal/model"
)

// Default simulation parameters.
const (
	DefaultMinLatency  = 500 * time.Millisecond
	DefaultMaxLatency  = 2500 * time.Millisecond
	DefaultFailureRate = 0.1
)

// SimulatedConfig controls the latency and failure placement of Simulated.
type SimulatedConfig struct {
	MinLatency  time.Duration
	MaxLatency  time.Duration
	FailureRate float64 // probability in [0,1] that a call fails

	// Seed makes the sequence of latencies and failures reproducible.
	// Zero seeds from the runtime random source.
	Seed uint64
}

// DefaultSimulatedConfig returns 500ms-2500ms latency with a 10% failure rate.
func DefaultSimulatedConfig() SimulatedConfig {
	return SimulatedConfig{
		MinLatency:  DefaultMinLatency,
		MaxLatency:  DefaultMaxLatency,
		FailureRate: DefaultFailureRate,
	}
}

// Simulated is an in-process Gateway that accepts every record after a
// random delay, except for a random share of calls that fail.
//
// Thread-safety: safe for concurrent use; the random source is guarded by a
// mutex.
type Simulated struct {
	cfg    SimulatedConfig
	logger *slog.Logger

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewSimulated creates a simulated gateway. A nil logger uses slog.Default().
func NewSimulated(cfg SimulatedConfig, logger *slog.Logger) *Simulated {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxLatency < cfg.MinLatency {
		cfg.MaxLatency = cfg.MinLatency
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &Simulated{
		cfg:    cfg,
		logger: logger,
		rnd:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// roll draws the latency and outcome for one call.
func (s *Simulated) roll() (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	latency := s.cfg.MinLatency
	if spread := s.cfg.MaxLatency - s.cfg.MinLatency; spread > 0 {
		latency += time.Duration(s.rnd.Int64N(int64(spread)))
	}
	fail := s.rnd.Float64() < s.cfg.FailureRate
	return latency, fail
}

// call waits out the simulated latency and decides the outcome.
func (s *Simulated) call(ctx context.Context, op Op, attrs ...any) error {
	latency, fail := s.roll()

	if latency > 0 {
		timer := time.NewTimer(latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	if fail {
		s.logger.Debug("simulated rejection", append([]any{"op", op, "latency", latency}, attrs...)...)
		return NewError(op, defaultMessage(op))
	}
	s.logger.Debug("simulated accept", append([]any{"op", op, "latency", latency}, attrs...)...)
	return nil
}

func (s *Simulated) CreateStack(ctx context.Context, st model.Stack) (model.Stack, error) {
	if err := s.call(ctx, OpCreateStack, "id", st.ID, "name", st.Name); err != nil {
		return model.Stack{}, err
	}
	return st, nil
}

func (s *Simulated) UpdateStack(ctx context.Context, st model.Stack) (model.Stack, error) {
	if err := s.call(ctx, OpUpdateStack, "id", st.ID, "name", st.Name); err != nil {
		return model.Stack{}, err
	}
	return st, nil
}

func (s *Simulated) DeleteStack(ctx context.Context, id string) error {
	return s.call(ctx, OpDeleteStack, "id", id)
}

func (s *Simulated) CreateCard(ctx context.Context, c model.Card) (model.Card, error) {
	if err := s.call(ctx, OpCreateCard, "id", c.ID, "name", c.Name); err != nil {
		return model.Card{}, err
	}
	return c, nil
}

func (s *Simulated) UpdateCard(ctx context.Context, c model.Card) (model.Card, error) {
	if err := s.call(ctx, OpUpdateCard, "id", c.ID, "name", c.Name); err != nil {
		return model.Card{}, err
	}
	return c, nil
}

func (s *Simulated) DeleteCard(ctx context.Context, id string) error {
	return s.call(ctx, OpDeleteCard, "id", id)
}

// MoveCard returns a partial card carrying only the id and new stack id.
func (s *Simulated) MoveCard(ctx context.Context, cardID, toStackID string) (model.Card, error) {
	if err := s.call(ctx, OpMoveCard, "id", cardID, "to", toStackID); err != nil {
		return model.Card{}, err
	}
	return model.Card{ID: cardID, StackID: toStackID}, nil
}
