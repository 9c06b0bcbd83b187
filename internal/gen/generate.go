package gen

import (
	"bytes"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"text/template"
	"unicode"

	"golang.org/x/tools/imports"
)

// ContractImport is the import path of the runtime the generated code targets.
const ContractImport = "github.com/roach88/dbc/pkg/contract"

const header = "// Code generated by contractgen. DO NOT EDIT."

var fileTemplate = template.Must(template.New("forwarders").Parse(header + `

package {{.Package}}

{{.Imports}}

func init() {
{{- range .Capabilities}}
	contract.RegisterForwarder({{.Constructor}})
{{- if .ClientHolder}}
	contract.Register[{{.Name}}, {{.ClientHolder}}](contract.ForClient)
{{- end}}
{{- if .ImplementHolder}}
	contract.Register[{{.Name}}, {{.ImplementHolder}}](contract.ForImplement)
{{- end}}
{{- end}}
}
{{range .Capabilities}}
// {{.Forwarder}} implements {{.Name}} through a contract.Dispatcher.
type {{.Forwarder}} struct {
	d contract.Dispatcher
}

func {{.Constructor}}(d contract.Dispatcher) {{.Name}} {
	return {{.Forwarder}}{d: d}
}
{{range .Operations}}
{{.Decl}} {
{{- if .Return}}
	out := {{.Invoke}}
	return {{.Return}}
{{- else}}
	{{.Invoke}}
{{- end}}
}
{{end}}
{{- end}}`))

type fileData struct {
	Package      string
	Imports      string
	Capabilities []capabilityData
}

type capabilityData struct {
	Name            string
	Forwarder       string
	Constructor     string
	ClientHolder    string
	ImplementHolder string
	Operations      []operationData
}

type operationData struct {
	Decl   string
	Invoke string
	Return string
}

// Generate renders the forwarder file for the selected capabilities of pkg.
func Generate(pkg *Package, opts Options) ([]byte, error) {
	opts = opts.withDefaults()

	caps, err := pkg.Select(opts.Capabilities)
	if err != nil {
		return nil, err
	}

	data := fileData{Package: pkg.Name}
	used := []Import{{Path: ContractImport}}
	for _, c := range caps {
		data.Capabilities = append(data.Capabilities, capabilityTemplate(c))
		for _, op := range c.Operations {
			for _, imp := range op.Imports {
				if !slices.Contains(used, imp) {
					used = append(used, imp)
				}
			}
		}
	}
	data.Imports = importBlock(used)

	var buf bytes.Buffer
	if err := fileTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render forwarders: %w", err)
	}

	out, err := imports.Process(filepath.Join(pkg.Dir, opts.Output), buf.Bytes(), &imports.Options{
		Comments:  true,
		TabIndent: true,
		TabWidth:  8,
	})
	if err != nil {
		return nil, fmt.Errorf("format generated code: %w", err)
	}
	return out, nil
}

// Select returns the capabilities named, or every capability with a holder
// when names is empty.
func (p *Package) Select(names []string) ([]*Capability, error) {
	var caps []*Capability
	if len(names) == 0 {
		for _, c := range p.Capabilities {
			if c.ClientHolder != nil || c.ImplementHolder != nil {
				caps = append(caps, c)
			}
		}
		if len(caps) == 0 {
			return nil, &GenError{Name: p.Name, Message: "no interface has a contract holder"}
		}
		return caps, nil
	}

	for _, name := range names {
		if pos, ok := p.generic[name]; ok {
			return nil, &GenError{Name: name, Message: "generic interfaces are not supported", Pos: pos}
		}
		c := p.Capability(name)
		if c == nil {
			return nil, &GenError{Name: name, Message: fmt.Sprintf("no such interface in package %s", p.Name)}
		}
		caps = append(caps, c)
	}
	return caps, nil
}

func capabilityTemplate(c *Capability) capabilityData {
	d := capabilityData{
		Name:        c.Name,
		Forwarder:   lowerInitial(c.Name) + "Forwarder",
		Constructor: "new" + upperInitial(c.Name) + "Forwarder",
	}
	if c.ClientHolder != nil {
		d.ClientHolder = c.ClientHolder.Name
	}
	if c.ImplementHolder != nil {
		d.ImplementHolder = c.ImplementHolder.Name
	}
	for _, op := range c.Operations {
		d.Operations = append(d.Operations, operationTemplate(d.Forwarder, op))
	}
	return d
}

func operationTemplate(forwarder string, op Operation) operationData {
	params := make([]string, len(op.Params))
	args := []string{fmt.Sprintf("%q", op.Name)}
	for i, p := range op.Params {
		params[i] = p.Name + " " + p.Type
		args = append(args, p.Name)
	}

	d := operationData{
		Decl:   fmt.Sprintf("func (f %s) %s(%s)%s", forwarder, op.Name, strings.Join(params, ", "), resultList(op.Results)),
		Invoke: fmt.Sprintf("f.d.Invoke(%s)", strings.Join(args, ", ")),
	}
	if len(op.Results) > 0 {
		outs := make([]string, len(op.Results))
		for i, r := range op.Results {
			outs[i] = fmt.Sprintf("contract.Out[%s](out, %d)", r, i)
		}
		d.Return = strings.Join(outs, ", ")
	}
	return d
}

// Signature renders op as it appears in an interface.
func (op Operation) Signature() string {
	params := make([]string, len(op.Params))
	for i, p := range op.Params {
		params[i] = p.Name + " " + p.Type
	}
	return op.Name + "(" + strings.Join(params, ", ") + ")" + resultList(op.Results)
}

func resultList(results []string) string {
	switch len(results) {
	case 0:
		return ""
	case 1:
		return " " + results[0]
	}
	return " (" + strings.Join(results, ", ") + ")"
}

func importBlock(used []Import) string {
	var std, other []string
	for _, imp := range used {
		if isStdlib(imp.Path) {
			std = append(std, "\t"+imp.String())
		} else {
			other = append(other, "\t"+imp.String())
		}
	}
	slices.Sort(std)
	slices.Sort(other)

	var b strings.Builder
	b.WriteString("import (\n")
	for _, s := range std {
		b.WriteString(s + "\n")
	}
	if len(std) > 0 && len(other) > 0 {
		b.WriteString("\n")
	}
	for _, s := range other {
		b.WriteString(s + "\n")
	}
	b.WriteString(")")
	return b.String()
}

func isStdlib(importPath string) bool {
	first, _, _ := strings.Cut(importPath, "/")
	return !strings.Contains(first, ".")
}

// lowerInitial lowercases the leading capital run: URLStore -> urlStore.
func lowerInitial(s string) string {
	r := []rune(s)
	for i := range r {
		if !unicode.IsUpper(r[i]) {
			break
		}
		if i > 0 && i+1 < len(r) && unicode.IsLower(r[i+1]) {
			break
		}
		r[i] = unicode.ToLower(r[i])
	}
	return string(r)
}

func upperInitial(s string) string {
	r := []rune(s)
	if len(r) > 0 {
		r[0] = unicode.ToUpper(r[0])
	}
	return string(r)
}
