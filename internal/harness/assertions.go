package harness

import (
	"fmt"
	"sort"
	"strings"
)

// AssertionError is a failed assertion with enough context to debug it.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Trace    []TraceEvent
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, ev := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s(%s) %s\n", ev.Seq, ev.Op, ev.Name, describe(ev))
		}
	}
	return buf.String()
}

// EvaluateAssertions checks every assertion against result and returns the
// failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for _, a := range assertions {
		var err error
		switch a.Type {
		case AssertDelegateCalls:
			err = assertDelegateCalls(result, a)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, a)
		case AssertState:
			err = assertState(result.State, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}

func assertDelegateCalls(result *Result, a Assertion) error {
	if got := result.DelegateCalls[a.Op]; got != a.Count {
		return &AssertionError{
			Type:     AssertDelegateCalls,
			Expected: fmt.Sprintf("%d delegate calls of %s", a.Count, a.Op),
			Actual:   fmt.Sprintf("%d calls", got),
			Trace:    result.Trace,
		}
	}
	return nil
}

func assertTraceCount(trace []TraceEvent, a Assertion) error {
	count := 0
	for _, ev := range trace {
		if ev.Op == a.Op && (a.Outcome == "" || ev.Outcome == a.Outcome) {
			count++
		}
	}
	if count != a.Count {
		what := a.Op
		if a.Outcome != "" {
			what += " with outcome " + a.Outcome
		}
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d occurrences of %s", a.Count, what),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Trace:    trace,
		}
	}
	return nil
}

// assertState requires the final content to equal a.Expect exactly.
func assertState(state map[string]string, a Assertion) error {
	if len(state) == len(a.Expect) {
		equal := true
		for k, v := range a.Expect {
			if got, ok := state[k]; !ok || got != v {
				equal = false
				break
			}
		}
		if equal {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertState,
		Expected: formatState(a.Expect),
		Actual:   formatState(state),
	}
}

func formatState(state map[string]string) string {
	if len(state) == 0 {
		return "(empty)"
	}
	keys := make([]string, 0, len(state))
	for k := range state {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%q", k, state[k]))
	}
	return strings.Join(parts, " ")
}
