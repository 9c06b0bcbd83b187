package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/go-cmp/cmp"

	"github.com/roach88/dbc/internal/kvstore"
	"github.com/roach88/dbc/internal/testutil"
	"github.com/roach88/dbc/pkg/contract"
)

// Harness executes scenarios. Each run gets a fresh delegate and a clock
// starting at 1, so a Harness may be reused.
type Harness struct {
	clock  testutil.StepClock
	logger *slog.Logger
}

// New creates a harness that logs steps and contract events to logger.
func New(logger *slog.Logger) *Harness {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Harness{logger: logger}
}

// Run executes scenario with logging discarded.
func Run(scenario *Scenario) (*Result, error) {
	return New(nil).Run(context.Background(), scenario)
}

// Run executes scenario and returns the trace, final state and any failed
// expectations. The returned error is reserved for runs that could not be
// carried out at all (delegate, setup or wrap failures).
//
// Layering, outermost first: contracts, Counting, Faulty, the store.
func (h *Harness) Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	h.clock.Rewind()

	store, snapshot, closeStore, err := openDelegate(scenario.Delegate)
	if err != nil {
		return nil, err
	}
	defer closeStore()

	for i, step := range scenario.Setup {
		if _, err := call(ctx, store, step); err != nil {
			return nil, fmt.Errorf("setup[%d] %s: %w", i, step.Op, err)
		}
	}

	faulty, err := kvstore.NewFaulty(store, faults(scenario.Faults)...)
	if err != nil {
		return nil, err
	}
	calls := testutil.NewCallLog()
	wrapped, err := h.wrap(kvstore.NewCounting(faulty, calls), scenario.Mode)
	if err != nil {
		return nil, fmt.Errorf("wrap %s: %w", scenario.Mode, err)
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		ev := h.execute(ctx, wrapped, step)
		result.Trace = append(result.Trace, ev)

		if msg := checkExpect(step, ev); msg != "" {
			result.AddError(fmt.Sprintf("steps[%d] %s: %s", i, step.Op, msg))
		}
		h.logger.Info("scenario step",
			"scenario", scenario.Name,
			"step", i,
			"op", step.Op,
			"outcome", ev.Outcome,
			"seq", ev.Seq,
		)
	}

	if result.State, err = snapshot(ctx); err != nil {
		return nil, fmt.Errorf("read final state: %w", err)
	}
	result.DelegateCalls = calls.Counts()

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

func (h *Harness) wrap(s kvstore.Storage, mode string) (kvstore.Storage, error) {
	opts := []contract.Option{contract.WithLogger(h.logger)}
	switch mode {
	case ModeClient:
		return contract.WrapForClient(s, opts...)
	case ModeImplement:
		return contract.WrapForImplementation(s, opts...)
	case ModeBoth:
		impl, err := contract.WrapForImplementation(s, opts...)
		if err != nil {
			return nil, err
		}
		return contract.WrapForClient(impl, opts...)
	}
	return nil, fmt.Errorf("unknown mode %q", mode)
}

func (h *Harness) execute(ctx context.Context, s kvstore.Storage, step Step) TraceEvent {
	ev := TraceEvent{
		Seq:   h.clock.Tick(),
		Op:    step.Op,
		Name:  step.Name,
		Value: step.Value,
	}

	var result any
	var err error
	if violation := contract.Catch(func() { result, err = call(ctx, s, step) }); violation != nil {
		err = violation
	}

	switch {
	case err == nil:
		ev.Outcome = OutcomeOK
		ev.Result = result
	case contract.IsContractError(err):
		ev.Outcome = OutcomeViolation
		ev.Message = err.Error()
	default:
		ev.Outcome = OutcomeError
		ev.Message = err.Error()
	}
	return ev
}

// call invokes the step's operation. Results are reported as int, bool or
// string so they compare directly with YAML values.
func call(ctx context.Context, s kvstore.Storage, step Step) (any, error) {
	switch step.Op {
	case "Size":
		n, err := s.Size(ctx)
		return n, err
	case "Put":
		return nil, s.Put(ctx, step.Name, bytesOf(step.Value))
	case "Contains":
		ok, err := s.Contains(ctx, step.Name)
		return ok, err
	case "Get":
		v, err := s.Get(ctx, step.Name)
		if err != nil {
			return nil, err
		}
		return string(v), nil
	case "Delete":
		return nil, s.Delete(ctx, step.Name)
	case "DoNothing":
		s.DoNothing(ctx)
		return nil, nil
	}
	return nil, fmt.Errorf("unknown op %q", step.Op)
}

func bytesOf(v *string) []byte {
	if v == nil {
		return nil
	}
	return []byte(*v)
}

// checkExpect returns a description of the mismatch, or "" when the step
// behaved as expected.
func checkExpect(step Step, ev TraceEvent) string {
	e := step.Expect
	switch {
	case e == nil:
		if ev.Outcome != OutcomeOK {
			return fmt.Sprintf("expected success, got %s: %s", ev.Outcome, ev.Message)
		}
	case e.Violation != "":
		if ev.Outcome != OutcomeViolation || !strings.Contains(ev.Message, e.Violation) {
			return fmt.Sprintf("expected violation %q, got %s", e.Violation, describe(ev))
		}
	case e.Error != "":
		if ev.Outcome != OutcomeError || !strings.Contains(ev.Message, e.Error) {
			return fmt.Sprintf("expected error %q, got %s", e.Error, describe(ev))
		}
	default:
		if ev.Outcome != OutcomeOK {
			return fmt.Sprintf("expected result %v, got %s", e.Result, describe(ev))
		}
		if diff := cmp.Diff(e.Result, ev.Result); diff != "" {
			return fmt.Sprintf("result mismatch (-want +got):\n%s", diff)
		}
	}
	return ""
}

func describe(ev TraceEvent) string {
	if ev.Outcome == OutcomeOK {
		return fmt.Sprintf("ok (%v)", ev.Result)
	}
	return fmt.Sprintf("%s: %s", ev.Outcome, ev.Message)
}

// openDelegate creates the scenario's store with a reader for its final
// content and a cleanup function.
func openDelegate(kind string) (kvstore.Storage, func(context.Context) (map[string]string, error), func(), error) {
	switch kind {
	case DelegateMemory, "":
		m := kvstore.NewMemory()
		snapshot := func(context.Context) (map[string]string, error) { return m.Snapshot(), nil }
		return m, snapshot, func() {}, nil
	case DelegateSQLite:
		db, err := kvstore.OpenSQLite(":memory:")
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to create in-memory store: %w", err)
		}
		return db, db.Snapshot, func() { _ = db.Close() }, nil
	}
	return nil, nil, nil, fmt.Errorf("unknown delegate %q", kind)
}
