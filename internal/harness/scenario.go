package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/dbc/internal/kvstore"
)

// Scenario describes one run of a wrapped Storage.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`

	// Mode selects the contracts applied: client, implement or both.
	Mode string `yaml:"mode"`

	// Delegate selects the store: memory (default) or sqlite.
	Delegate string `yaml:"delegate,omitempty"`

	// Faults are injected between the contract and the store.
	Faults []string `yaml:"faults,omitempty"`

	// Setup steps run on the raw store before the contracts are applied.
	// They must succeed and are not traced.
	Setup []Step `yaml:"setup,omitempty"`

	Steps      []Step      `yaml:"steps"`
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one Storage operation.
type Step struct {
	// Op is the operation name, e.g. "Put".
	Op string `yaml:"op"`

	Name string `yaml:"name,omitempty"`

	// Value is the Put value. Omitted or null passes a nil value.
	Value *string `yaml:"value,omitempty"`

	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect is the expected outcome of a step.
type Expect struct {
	// Result is compared with the operation's result: an int for Size,
	// a bool for Contains, a string for Get.
	Result any `yaml:"result,omitempty"`

	// Violation is a substring of the expected contract violation.
	Violation string `yaml:"violation,omitempty"`

	// Error is a substring of the expected delegate error.
	Error string `yaml:"error,omitempty"`
}

// Assertion validates the run after all steps.
type Assertion struct {
	Type    string            `yaml:"type"`
	Op      string            `yaml:"op,omitempty"`
	Outcome string            `yaml:"outcome,omitempty"`
	Count   int               `yaml:"count,omitempty"`
	Expect  map[string]string `yaml:"expect,omitempty"`
}

// Modes.
const (
	ModeClient    = "client"
	ModeImplement = "implement"
	ModeBoth      = "both"
)

// Delegates.
const (
	DelegateMemory = "memory"
	DelegateSQLite = "sqlite"
)

// Assertion types.
const (
	AssertDelegateCalls = "delegate_calls"
	AssertTraceCount    = "trace_count"
	AssertState         = "state"
)

// Step outcomes as recorded in the trace.
const (
	OutcomeOK        = "ok"
	OutcomeViolation = "violation"
	OutcomeError     = "error"
)

var operations = map[string]bool{
	"Size": true, "Put": true, "Contains": true, "Get": true, "Delete": true, "DoNothing": true,
}

// LoadScenario reads and validates a scenario file. Unknown fields are
// rejected so typos surface as load errors.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes and validates a scenario document.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if scenario.Delegate == "" {
		scenario.Delegate = DelegateMemory
	}
	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	switch s.Mode {
	case ModeClient, ModeImplement, ModeBoth:
	case "":
		return fmt.Errorf("mode is required")
	default:
		return fmt.Errorf("unknown mode %q", s.Mode)
	}

	switch s.Delegate {
	case DelegateMemory, DelegateSQLite:
	default:
		return fmt.Errorf("unknown delegate %q", s.Delegate)
	}

	if _, err := kvstore.NewFaulty(kvstore.NewMemory(), faults(s.Faults)...); err != nil {
		return err
	}

	for i, step := range s.Setup {
		if step.Op != "Put" && step.Op != "Delete" {
			return fmt.Errorf("setup[%d]: op must be Put or Delete, got %q", i, step.Op)
		}
		if step.Expect != nil {
			return fmt.Errorf("setup[%d]: expect is not allowed", i)
		}
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	for i, step := range s.Steps {
		if err := validateStep(step); err != nil {
			return fmt.Errorf("steps[%d]: %w", i, err)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(a); err != nil {
			return fmt.Errorf("assertions[%d]: %w", i, err)
		}
	}
	return nil
}

func validateStep(step Step) error {
	if !operations[step.Op] {
		return fmt.Errorf("unknown op %q", step.Op)
	}
	if step.Expect == nil {
		return nil
	}
	set := 0
	if step.Expect.Result != nil {
		set++
	}
	if step.Expect.Violation != "" {
		set++
	}
	if step.Expect.Error != "" {
		set++
	}
	if set != 1 {
		return fmt.Errorf("expect needs exactly one of result, violation, error")
	}
	return nil
}

func validateAssertion(a Assertion) error {
	switch a.Type {
	case AssertDelegateCalls, AssertTraceCount:
		if !operations[a.Op] {
			return fmt.Errorf("%s: unknown op %q", a.Type, a.Op)
		}
		if a.Count < 0 {
			return fmt.Errorf("%s: count must be non-negative", a.Type)
		}
		if a.Outcome != "" && (a.Type != AssertTraceCount || !validOutcome(a.Outcome)) {
			return fmt.Errorf("%s: invalid outcome %q", a.Type, a.Outcome)
		}
	case AssertState:
		if a.Expect == nil {
			return fmt.Errorf("state: expect is required (use {} for an empty store)")
		}
	case "":
		return fmt.Errorf("type is required")
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}

func validOutcome(o string) bool {
	return o == OutcomeOK || o == OutcomeViolation || o == OutcomeError
}

func faults(names []string) []kvstore.Fault {
	out := make([]kvstore.Fault, len(names))
	for i, n := range names {
		out[i] = kvstore.Fault(n)
	}
	return out
}
