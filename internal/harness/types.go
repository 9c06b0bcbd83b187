package harness

// TraceEvent records one step as the caller observed it.
type TraceEvent struct {
	Seq     int64   `json:"seq"`
	Op      string  `json:"op"`
	Name    string  `json:"name,omitempty"`
	Value   *string `json:"value,omitempty"`
	Outcome string  `json:"outcome"`
	Result  any     `json:"result,omitempty"`
	Message string  `json:"message,omitempty"`
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every expectation and assertion held.
	Pass bool `json:"pass"`

	Trace  []TraceEvent `json:"trace"`
	Errors []string     `json:"errors,omitempty"`

	// State is the final content of the delegate.
	State map[string]string `json:"state"`

	// DelegateCalls counts the calls that reached the delegate per operation.
	DelegateCalls map[string]int `json:"delegate_calls"`
}

// NewResult creates a passing result with an empty trace.
func NewResult() *Result {
	return &Result{
		Pass:          true,
		Trace:         []TraceEvent{},
		Errors:        []string{},
		State:         map[string]string{},
		DelegateCalls: map[string]int{},
	}
}

// AddError records a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
