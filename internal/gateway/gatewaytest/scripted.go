// Package gatewaytest provides a programmable gateway.Gateway for tests.
package gatewaytest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/roach88/stackdock/internal/gateway"
	"github.com/roach88/stackdock/internal/model"
)

// AwaitTimeout bounds how long Await waits for the next held call.
const AwaitTimeout = 5 * time.Second

// Call records one gateway invocation with the record it carried.
type Call struct {
	Op        gateway.Op
	ID        string
	Stack     model.Stack
	Card      model.Card
	ToStackID string
}

// Pending is a held call waiting for the test to settle it.
type Pending struct {
	Call Call
	done chan error
}

// Resolve lets the call succeed.
func (p *Pending) Resolve() { p.done <- nil }

// Reject fails the call with err.
func (p *Pending) Reject(err error) { p.done <- err }

// RejectMessage fails the call with a gateway.Error carrying message.
func (p *Pending) RejectMessage(message string) {
	p.done <- gateway.NewError(p.Call.Op, message)
}

// Scripted is a Gateway whose outcomes are decided by the test.
//
// By default every call succeeds immediately. Queued outcomes (Script, Fail)
// are consumed first, per op. In held mode (Hold) unscripted calls block
// until the test settles them through Await.
//
// Thread-safety: safe for concurrent use.
type Scripted struct {
	mu       sync.Mutex
	calls    []Call
	scripted map[gateway.Op][]error
	held     bool
	pending  chan *Pending
}

// New creates a Scripted gateway where every call succeeds.
func New() *Scripted {
	return &Scripted{
		scripted: make(map[gateway.Op][]error),
		pending:  make(chan *Pending, 64),
	}
}

// Hold makes unscripted calls block until settled through Await.
func (s *Scripted) Hold() *Scripted {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.held = true
	return s
}

// Script queues outcomes for the next calls of op. A nil entry succeeds.
func (s *Scripted) Script(op gateway.Op, outcomes ...error) *Scripted {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scripted[op] = append(s.scripted[op], outcomes...)
	return s
}

// Fail queues one rejection with message for the next call of op.
func (s *Scripted) Fail(op gateway.Op, message string) *Scripted {
	return s.Script(op, gateway.NewError(op, message))
}

// Await returns the next held call, failing the test if none arrives within
// AwaitTimeout.
func (s *Scripted) Await(t testing.TB) *Pending {
	t.Helper()
	select {
	case p := <-s.pending:
		return p
	case <-time.After(AwaitTimeout):
		t.Fatalf("gatewaytest: no gateway call within %s", AwaitTimeout)
		return nil
	}
}

// Pending delivers held calls as they arrive, for callers that must also
// watch for the operation finishing without a gateway call.
func (s *Scripted) Pending() <-chan *Pending {
	return s.pending
}

// Calls returns a copy of every call received so far.
func (s *Scripted) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// CallCount returns how many calls of op were received.
func (s *Scripted) CallCount(op gateway.Op) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

func (s *Scripted) call(ctx context.Context, c Call) error {
	s.mu.Lock()
	s.calls = append(s.calls, c)
	if queue := s.scripted[c.Op]; len(queue) > 0 {
		s.scripted[c.Op] = queue[1:]
		s.mu.Unlock()
		return queue[0]
	}
	held := s.held
	s.mu.Unlock()

	if !held {
		return nil
	}

	p := &Pending{Call: c, done: make(chan error, 1)}
	s.pending <- p
	select {
	case err := <-p.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scripted) CreateStack(ctx context.Context, st model.Stack) (model.Stack, error) {
	if err := s.call(ctx, Call{Op: gateway.OpCreateStack, ID: st.ID, Stack: st}); err != nil {
		return model.Stack{}, err
	}
	return st, nil
}

func (s *Scripted) UpdateStack(ctx context.Context, st model.Stack) (model.Stack, error) {
	if err := s.call(ctx, Call{Op: gateway.OpUpdateStack, ID: st.ID, Stack: st}); err != nil {
		return model.Stack{}, err
	}
	return st, nil
}

func (s *Scripted) DeleteStack(ctx context.Context, id string) error {
	return s.call(ctx, Call{Op: gateway.OpDeleteStack, ID: id})
}

func (s *Scripted) CreateCard(ctx context.Context, c model.Card) (model.Card, error) {
	if err := s.call(ctx, Call{Op: gateway.OpCreateCard, ID: c.ID, Card: c}); err != nil {
		return model.Card{}, err
	}
	return c, nil
}

func (s *Scripted) UpdateCard(ctx context.Context, c model.Card) (model.Card, error) {
	if err := s.call(ctx, Call{Op: gateway.OpUpdateCard, ID: c.ID, Card: c}); err != nil {
		return model.Card{}, err
	}
	return c, nil
}

func (s *Scripted) DeleteCard(ctx context.Context, id string) error {
	return s.call(ctx, Call{Op: gateway.OpDeleteCard, ID: id})
}

func (s *Scripted) MoveCard(ctx context.Context, cardID, toStackID string) (model.Card, error) {
	if err := s.call(ctx, Call{Op: gateway.OpMoveCard, ID: cardID, ToStackID: toStackID}); err != nil {
		return model.Card{}, err
	}
	return model.Card{ID: cardID, StackID: toStackID}, nil
}

var _ gateway.Gateway = (*Scripted)(nil)
