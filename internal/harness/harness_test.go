package harness

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarios_Golden(t *testing.T) {
	files, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)

	for _, f := range files {
		scenario, err := LoadScenario(f)
		require.NoError(t, err)

		t.Run(scenario.Name, func(t *testing.T) {
			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func mustParse(t *testing.T, doc string) *Scenario {
	t.Helper()
	s, err := ParseScenario([]byte(doc))
	require.NoError(t, err)
	return s
}

func TestRun_UnexpectedViolationFails(t *testing.T) {
	s := mustParse(t, `
name: wrong
description: "expects success but the precondition fails"
mode: client
steps:
  - op: Get
    name: hoge
`)
	result, err := Run(s)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "steps[0] Get: expected success, got violation")
}

func TestRun_ExpectationMismatches(t *testing.T) {
	s := mustParse(t, `
name: mismatches
description: "every expectation is wrong"
mode: implement
steps:
  - op: Put
    name: hoge
    value: fuga
    expect:
      violation: "put key must satisfy contains"
  - op: Size
    expect:
      result: 2
  - op: Contains
    name: hoge
    expect:
      error: "boom"
`)
	result, err := Run(s)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 3)
	assert.Contains(t, result.Errors[0], `expected violation "put key must satisfy contains", got ok`)
	assert.Contains(t, result.Errors[1], "result mismatch (-want +got)")
	assert.Contains(t, result.Errors[2], `expected error "boom", got ok (true)`)
}

func TestRun_AssertionsFail(t *testing.T) {
	s := mustParse(t, `
name: assertions
description: "assertions that do not hold"
mode: client
steps:
  - op: Put
    name: hoge
    value: fuga
assertions:
  - type: delegate_calls
    op: Put
    count: 2
  - type: trace_count
    op: Put
    outcome: violation
    count: 1
  - type: state
    expect: {}
`)
	result, err := Run(s)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 3)
	assert.Contains(t, result.Errors[0], "2 delegate calls of Put")
	assert.Contains(t, result.Errors[1], "1 occurrences of Put with outcome violation")
	assert.Contains(t, result.Errors[2], `Actual: hoge="fuga"`)
}

func TestRun_UnvalidatedScenario(t *testing.T) {
	s := &Scenario{
		Name:     "unvalidated",
		Mode:     ModeClient,
		Delegate: DelegateMemory,
		Steps:    []Step{{Op: "Size"}},
	}
	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass)

	s.Delegate = "redis"
	_, err = Run(s)
	assert.ErrorContains(t, err, `unknown delegate "redis"`)

	s.Delegate = DelegateMemory
	s.Mode = "sideways"
	_, err = Run(s)
	assert.ErrorContains(t, err, `unknown mode "sideways"`)

	s.Mode = ModeClient
	s.Setup = []Step{{Op: "Explode"}}
	_, err = Run(s)
	assert.ErrorContains(t, err, `setup[0] Explode: unknown op "Explode"`)
}

func TestRun_DelegateCallsIncludeHookQueries(t *testing.T) {
	s := mustParse(t, `
name: counts
description: "hook queries reach the delegate"
mode: implement
steps:
  - op: Put
    name: hoge
    value: fuga
`)
	result, err := Run(s)
	require.NoError(t, err)
	require.True(t, result.Pass, "errors: %v", result.Errors)

	assert.Equal(t, map[string]int{"Put": 1, "Contains": 1, "Get": 1}, result.DelegateCalls)
}

func TestHarness_ReusableAndLogs(t *testing.T) {
	var buf bytes.Buffer
	h := New(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	s := mustParse(t, `
name: reuse
description: "clock restarts per run"
mode: client
steps:
  - op: Size
  - op: Put
    name: hoge
    expect:
      violation: "value must not be null"
`)

	for i := 0; i < 2; i++ {
		result, err := h.Run(context.Background(), s)
		require.NoError(t, err)
		require.True(t, result.Pass, "errors: %v", result.Errors)
		assert.Equal(t, int64(1), result.Trace[0].Seq)
		assert.Equal(t, int64(2), result.Trace[1].Seq)
	}

	out := buf.String()
	assert.Contains(t, out, "scenario step")
	assert.Contains(t, out, "contract wrapped")
	assert.Contains(t, out, "contract violated")
}

func TestMarshalSnapshot_Stable(t *testing.T) {
	s := mustParse(t, `
name: stable
description: "snapshot bytes are deterministic"
mode: both
setup:
  - op: Put
    name: b
    value: "2"
  - op: Put
    name: a
    value: "1"
steps:
  - op: Size
    expect:
      result: 2
`)
	first, err := Run(s)
	require.NoError(t, err)
	second, err := Run(s)
	require.NoError(t, err)

	a, err := MarshalSnapshot(s, first)
	require.NoError(t, err)
	b, err := MarshalSnapshot(s, second)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Contains(t, string(a), "\"state\": {\n    \"a\": \"1\",\n    \"b\": \"2\"\n  }")
}
