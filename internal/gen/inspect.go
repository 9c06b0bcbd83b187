package gen

// Report describes the capabilities of a package and their hooks.
type Report struct {
	Package      string             `json:"package"`
	Capabilities []CapabilityReport `json:"capabilities"`
}

type CapabilityReport struct {
	Name            string            `json:"name"`
	ClientHolder    string            `json:"client_holder,omitempty"`
	ImplementHolder string            `json:"implement_holder,omitempty"`
	Operations      []OperationReport `json:"operations"`
}

// OperationReport marks which holders declare a hook for the operation.
// A hook found here can still be rejected at wrap time for its signature.
type OperationReport struct {
	Name          string `json:"name"`
	Signature     string `json:"signature"`
	ClientHook    bool   `json:"client_hook"`
	ImplementHook bool   `json:"implement_hook"`
}

// Inspect summarizes every capability in pkg.
func Inspect(pkg *Package) *Report {
	r := &Report{Package: pkg.Name, Capabilities: []CapabilityReport{}}
	for _, c := range pkg.Capabilities {
		cr := CapabilityReport{Name: c.Name, Operations: []OperationReport{}}
		if c.ClientHolder != nil {
			cr.ClientHolder = c.ClientHolder.Name
		}
		if c.ImplementHolder != nil {
			cr.ImplementHolder = c.ImplementHolder.Name
		}
		for _, op := range c.Operations {
			cr.Operations = append(cr.Operations, OperationReport{
				Name:          op.Name,
				Signature:     op.Signature(),
				ClientHook:    c.ClientHolder.HasMethod(op.Name),
				ImplementHook: c.ImplementHolder.HasMethod(op.Name),
			})
		}
		r.Capabilities = append(r.Capabilities, cr)
	}
	return r
}

// Hooks counts the hooks of a capability report per mode.
func (c CapabilityReport) Hooks() (client, implement int) {
	for _, op := range c.Operations {
		if op.ClientHook {
			client++
		}
		if op.ImplementHook {
			implement++
		}
	}
	return client, implement
}
