package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/roach88/stackdock/internal/engine"
	"github.com/roach88/stackdock/internal/gateway"
	"github.com/roach88/stackdock/internal/gateway/gatewaytest"
	"github.com/roach88/stackdock/internal/model"
	"github.com/roach88/stackdock/internal/store"
	"github.com/roach88/stackdock/internal/testutil"
)

// DefaultFailMessage is the rejection message of a failing step without an
// explicit error.
const DefaultFailMessage = "Network error"

// stepTimeout bounds how long a step may take to settle.
const stepTimeout = gatewaytest.AwaitTimeout

// Harness is the test execution engine for one scenario.
type Harness struct {
	store  *store.Store
	engine *engine.Engine
	gw     *gatewaytest.Scripted
	clock  *testutil.ManualClock
	logger *slog.Logger

	mu     sync.Mutex
	step   int
	result *Result

	inflight map[string]inflight
}

// inflight is a pending gateway call left open by a labelled step.
type inflight struct {
	call *gatewaytest.Pending
	done <-chan error
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// Execution flow:
//  1. Restore the seed into a new engine
//  2. Execute the steps in order, checking each expect clause
//  3. Evaluate the assertions against the final state
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	statusPolicy, ok := engine.ParseStatusPolicy(scenario.StatusPolicy)
	if !ok {
		return nil, fmt.Errorf("unknown status_policy %q", scenario.StatusPolicy)
	}
	conflictPolicy, ok := engine.ParseConflictPolicy(scenario.ConflictPolicy)
	if !ok {
		return nil, fmt.Errorf("unknown conflict_policy %q", scenario.ConflictPolicy)
	}

	h := &Harness{
		store:    st,
		gw:       gatewaytest.New().Hold(),
		clock:    testutil.NewManualClock(0),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
		result:   NewResult(),
		inflight: make(map[string]inflight),
	}
	h.engine = engine.New(h.gw, store.NewAdapter(st, h.logger),
		engine.WithIDGenerator(newScenarioIDs(scenario.IDs)),
		engine.WithTimeSource(h.clock.NowMillis),
		engine.WithRand(rand.New(rand.NewPCG(1, 2))),
		engine.WithLogger(h.logger),
		engine.WithStatusPolicy(statusPolicy),
		engine.WithConflictPolicy(conflictPolicy),
		engine.WithObserver(h.observe),
	)

	ctx := context.Background()
	if err := h.engine.Restore(ctx, scenario.Seed.Snapshot()); err != nil {
		return nil, fmt.Errorf("failed to restore seed: %w", err)
	}

	for i, step := range scenario.Steps {
		h.clock.Advance(1000)
		h.mu.Lock()
		h.step = i
		h.mu.Unlock()

		if err := h.executeStep(ctx, i, step); err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i, step.Op, err)
		}
	}

	actx := &AssertionContext{
		Engine: h.engine,
		Store:  st,
		Ctx:    ctx,
	}
	for _, msg := range EvaluateAssertions(scenario.Assertions, actx) {
		h.result.AddError(msg)
	}
	return h.result, nil
}

// observe records engine events against the step that caused them.
func (h *Harness) observe(ev engine.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.result.Trace = append(h.result.Trace, TraceEvent{
		Step:  h.step,
		Seq:   ev.Seq,
		Op:    string(ev.Op),
		Kind:  string(ev.Kind),
		IDs:   ev.IDs,
		Error: ev.Err,
	})
}

// executeStep runs one step and checks its expect clause. A returned error
// aborts the scenario; mismatches are recorded on the result instead.
func (h *Harness) executeStep(ctx context.Context, i int, step Step) error {
	var returns string
	switch {
	case step.Op == OpSettle:
		fl, ok := h.inflight[step.Args.Ref]
		if !ok {
			return fmt.Errorf("label %q never reached the gateway", step.Args.Ref)
		}
		delete(h.inflight, step.Args.Ref)
		settle(fl.call, step)
		err, ok := wait(fl.done)
		if !ok {
			return errNotSettled
		}
		returns = returnsKind(err)

	case gatewayOps[step.Op]:
		done := make(chan error, 1)
		go func() { done <- h.call(ctx, step) }()

		select {
		case p := <-h.gw.Pending():
			if step.As != "" {
				h.inflight[step.As] = inflight{call: p, done: done}
				returns = "pending"
				break
			}
			settle(p, step)
			err, ok := wait(done)
			if !ok {
				return errNotSettled
			}
			returns = returnsKind(err)
		case err := <-done:
			// Refused or ignored before reaching the gateway.
			returns = returnsKind(err)
		case <-time.After(stepTimeout):
			return errors.New("operation neither called the gateway nor returned")
		}

	default:
		returns = returnsKind(h.local(step))
	}

	state := h.engine.State()
	record := StepRecord{
		Step:         i,
		Op:           step.Op,
		Returns:      returns,
		SyncStatus:   string(state.SyncStatus),
		ErrorMessage: state.ErrorMessage,
		Stacks:       len(state.Snapshot.Stacks),
		Cards:        len(state.Snapshot.Cards),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.result.Steps = append(h.result.Steps, record)
	if step.Expect != nil {
		for _, msg := range checkExpect(step.Expect, record, state) {
			h.result.AddError(fmt.Sprintf("steps[%d] (%s): %s", i, step.Op, msg))
		}
	}
	return nil
}

// call invokes the engine operation a gateway step names.
func (h *Harness) call(ctx context.Context, step Step) error {
	a := step.Args
	switch step.Op {
	case OpCreateStack:
		_, err := h.engine.CreateStack(ctx, deref(a.Name))
		return err
	case OpUpdateStack:
		u := model.StackUpdate{Name: a.Name, Cover: a.Cover}
		if a.CoverType != nil {
			ct := model.CoverType(*a.CoverType)
			u.CoverType = &ct
		}
		return h.engine.UpdateStack(ctx, a.ID, u)
	case OpShuffleCover:
		return h.engine.ShuffleStackCover(ctx, a.ID)
	case OpDeleteStack:
		return h.engine.DeleteStack(ctx, a.ID)
	case OpCreateCard:
		_, err := h.engine.CreateCard(ctx, model.NewCard{
			StackID:     a.StackID,
			Name:        deref(a.Name),
			Description: deref(a.Description),
			Cover:       deref(a.Cover),
		})
		return err
	case OpUpdateCard:
		return h.engine.UpdateCard(ctx, a.ID, model.CardUpdate{Name: a.Name, Description: a.Description, Cover: a.Cover})
	case OpDeleteCard:
		return h.engine.DeleteCard(ctx, a.ID)
	case OpMoveCard:
		return h.engine.MoveCard(ctx, a.ID, a.To)
	}
	return fmt.Errorf("unknown gateway op %q", step.Op)
}

// local runs a step that never reaches the gateway.
func (h *Harness) local(step Step) error {
	switch step.Op {
	case OpSelectStack:
		return h.engine.SetActiveStack(step.Args.ID)
	case OpEnterSwipe:
		h.engine.EnterSwipeMode()
	case OpExitSwipe:
		h.engine.ExitSwipeMode()
	case OpSetSwipe:
		h.engine.SetSwipeIndex(step.Args.Index)
	case OpNextCard:
		h.engine.NextCard()
	case OpPrevCard:
		h.engine.PrevCard()
	case OpClearError:
		h.engine.ClearError()
	default:
		return fmt.Errorf("unknown op %q", step.Op)
	}
	return nil
}

func settle(p *gatewaytest.Pending, step Step) {
	if step.Outcome != OutcomeFail {
		p.Resolve()
		return
	}
	msg := step.Error
	if msg == "" {
		msg = DefaultFailMessage
	}
	p.RejectMessage(msg)
}

var errNotSettled = errors.New("operation did not settle")

// wait returns the operation's result; ok is false if it never came.
func wait(done <-chan error) (result error, ok bool) {
	select {
	case err := <-done:
		return err, true
	case <-time.After(stepTimeout):
		return nil, false
	}
}

func returnsKind(err error) string {
	switch {
	case err == nil:
		return ReturnsOK
	case gateway.IsError(err):
		return ReturnsGateway
	case model.IsValidationError(err):
		return ReturnsValidation
	case engine.IsUnknownStack(err):
		return ReturnsUnknownStack
	}
	return "error: " + err.Error()
}

func checkExpect(e *Expect, rec StepRecord, st engine.State) []string {
	var msgs []string
	if e.Returns != "" && e.Returns != rec.Returns {
		msgs = append(msgs, fmt.Sprintf("expected returns %q, got %q", e.Returns, rec.Returns))
	}
	if e.SyncStatus != "" && e.SyncStatus != rec.SyncStatus {
		msgs = append(msgs, fmt.Sprintf("expected sync_status %q, got %q", e.SyncStatus, rec.SyncStatus))
	}
	if e.ErrorMessage != nil && *e.ErrorMessage != rec.ErrorMessage {
		msgs = append(msgs, fmt.Sprintf("expected error_message %q, got %q", *e.ErrorMessage, rec.ErrorMessage))
	}
	if e.StackCount != nil && *e.StackCount != rec.Stacks {
		msgs = append(msgs, fmt.Sprintf("expected stack_count %d, got %d", *e.StackCount, rec.Stacks))
	}
	if e.CardCount != nil && *e.CardCount != rec.Cards {
		msgs = append(msgs, fmt.Sprintf("expected card_count %d, got %d", *e.CardCount, rec.Cards))
	}
	if e.ActiveStack != nil && *e.ActiveStack != st.ActiveStackID {
		msgs = append(msgs, fmt.Sprintf("expected active_stack %q, got %q", *e.ActiveStack, st.ActiveStackID))
	}
	if e.SwipeIndex != nil && *e.SwipeIndex != st.SwipeIndex {
		msgs = append(msgs, fmt.Sprintf("expected swipe_index %d, got %d", *e.SwipeIndex, st.SwipeIndex))
	}
	if e.Pending != nil && *e.Pending != st.Pending {
		msgs = append(msgs, fmt.Sprintf("expected pending %d, got %d", *e.Pending, st.Pending))
	}
	return msgs
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// scenarioIDs hands out the scenario's fixed ids, then new-1, new-2, ...
type scenarioIDs struct {
	mu       sync.Mutex
	fixed    []string
	fallback *testutil.SequentialIDs
}

func newScenarioIDs(fixed []string) *scenarioIDs {
	return &scenarioIDs{fixed: fixed, fallback: testutil.NewSequentialIDs("new")}
}

func (g *scenarioIDs) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.fixed) > 0 {
		id := g.fixed[0]
		g.fixed = g.fixed[1:]
		return id
	}
	return g.fallback.NewID()
}
