package gen

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/parser"
	"go/printer"
	"go/token"
	"maps"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
)

// Default holder suffixes, matching the config defaults.
const (
	DefaultClientSuffix    = "ContractForClient"
	DefaultImplementSuffix = "ContractForImplement"
	DefaultOutput          = "contract_gen.go"
)

// Options controls parsing and generation.
type Options struct {
	// Capabilities selects interfaces by name. Empty selects every
	// interface that has at least one holder.
	Capabilities []string

	ClientSuffix    string
	ImplementSuffix string

	// Output is the generated file name, used to resolve imports.
	Output string
}

func (o Options) withDefaults() Options {
	if o.ClientSuffix == "" {
		o.ClientSuffix = DefaultClientSuffix
	}
	if o.ImplementSuffix == "" {
		o.ImplementSuffix = DefaultImplementSuffix
	}
	if o.Output == "" {
		o.Output = DefaultOutput
	}
	return o
}

// Package is the parsed view of one Go package.
type Package struct {
	Name         string
	Dir          string
	Capabilities []*Capability

	// generic records type-parameterized interfaces, which cannot be wrapped.
	generic map[string]token.Position
}

// Capability is an interface and the holders declared for it.
type Capability struct {
	Name       string
	Pos        token.Position
	Operations []Operation

	ClientHolder    *Holder
	ImplementHolder *Holder
}

// Holder is a struct whose name marks it as a contract holder.
type Holder struct {
	Name    string
	Methods []string
}

// HasMethod reports whether the holder declares a method called name.
func (h *Holder) HasMethod(name string) bool {
	if h == nil {
		return false
	}
	_, found := slices.BinarySearch(h.Methods, name)
	return found
}

// Operation is one interface method.
type Operation struct {
	Name     string
	Params   []Param
	Results  []string
	Variadic bool

	// Imports lists the packages the signature refers to.
	Imports []Import
}

// Param is a named parameter. Type is source text; a variadic
// parameter's type starts with "...".
type Param struct {
	Name string
	Type string
}

// Import is an import used by an operation signature. Name is empty
// unless the source renamed the import.
type Import struct {
	Name string
	Path string
}

func (i Import) String() string {
	if i.Name == "" {
		return fmt.Sprintf("%q", i.Path)
	}
	return fmt.Sprintf("%s %q", i.Name, i.Path)
}

// Capability returns the capability called name, or nil.
func (p *Package) Capability(name string) *Capability {
	for _, c := range p.Capabilities {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// GenError is a parse or generation failure with an optional position.
type GenError struct {
	Name    string
	Message string
	Pos     token.Position
}

func (e *GenError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s: %s", e.Pos, e.Name, e.Message)
	}
	if e.Name == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Name, e.Message)
}

// Names a generated forwarder uses itself; parameters called this are renamed.
var reservedParams = map[string]bool{
	"_":        true,
	"f":        true,
	"out":      true,
	"contract": true,
}

type sourceFile struct {
	file    *ast.File
	imports map[string]Import
}

type ifaceDecl struct {
	name  string
	typ   *ast.InterfaceType
	pos   token.Pos
	src   *sourceFile
	ops   []Operation
	state int // 0 unvisited, 1 in progress, 2 done
}

type loader struct {
	fset    *token.FileSet
	ifaces  map[string]*ifaceDecl
	structs map[string]bool
	methods map[string][]string
	generic map[string]token.Position
}

// Parse reads the non-test, non-generated Go files in dir.
func Parse(dir string, opts Options) (*Package, error) {
	opts = opts.withDefaults()

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read package dir: %w", err)
	}

	p := &loader{
		fset:    token.NewFileSet(),
		ifaces:  make(map[string]*ifaceDecl),
		structs: make(map[string]bool),
		methods: make(map[string][]string),
		generic: make(map[string]token.Position),
	}
	pkg := &Package{Dir: dir, generic: p.generic}

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		f, err := parser.ParseFile(p.fset, filepath.Join(dir, name), nil, parser.ParseComments|parser.SkipObjectResolution)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		if ast.IsGenerated(f) {
			continue
		}
		if pkg.Name == "" {
			pkg.Name = f.Name.Name
		} else if pkg.Name != f.Name.Name {
			return nil, &GenError{
				Name:    f.Name.Name,
				Message: fmt.Sprintf("package name differs from %s", pkg.Name),
				Pos:     p.fset.Position(f.Name.Pos()),
			}
		}
		if err := p.collect(f); err != nil {
			return nil, err
		}
	}
	if pkg.Name == "" {
		return nil, &GenError{Name: dir, Message: "no Go files"}
	}

	for _, name := range slices.Sorted(maps.Keys(p.ifaces)) {
		decl := p.ifaces[name]
		ops, err := p.expand(decl)
		if err != nil {
			return nil, err
		}
		c := &Capability{
			Name:       name,
			Pos:        p.fset.Position(decl.pos),
			Operations: ops,
		}
		c.ClientHolder = p.holder(name + opts.ClientSuffix)
		c.ImplementHolder = p.holder(name + opts.ImplementSuffix)
		pkg.Capabilities = append(pkg.Capabilities, c)
	}

	for _, name := range slices.Sorted(maps.Keys(p.generic)) {
		if p.structs[name+opts.ClientSuffix] || p.structs[name+opts.ImplementSuffix] {
			return nil, &GenError{Name: name, Message: "generic interfaces cannot have contract holders", Pos: p.generic[name]}
		}
	}
	return pkg, nil
}

func (p *loader) holder(name string) *Holder {
	if !p.structs[name] {
		return nil
	}
	methods := slices.Clone(p.methods[name])
	slices.Sort(methods)
	return &Holder{Name: name, Methods: methods}
}

func (p *loader) collect(f *ast.File) error {
	src := &sourceFile{file: f, imports: make(map[string]Import)}
	for _, spec := range f.Imports {
		imp := Import{Path: strings.Trim(spec.Path.Value, `"`)}
		name := defaultImportName(imp.Path)
		if spec.Name != nil {
			if spec.Name.Name == "_" || spec.Name.Name == "." {
				continue
			}
			name = spec.Name.Name
			imp.Name = name
		}
		src.imports[name] = imp
	}

	for _, d := range f.Decls {
		switch d := d.(type) {
		case *ast.FuncDecl:
			if d.Recv == nil || len(d.Recv.List) == 0 {
				continue
			}
			if recv := receiverName(d.Recv.List[0].Type); recv != "" {
				p.methods[recv] = append(p.methods[recv], d.Name.Name)
			}
		case *ast.GenDecl:
			if d.Tok != token.TYPE {
				continue
			}
			for _, s := range d.Specs {
				ts := s.(*ast.TypeSpec)
				switch t := ts.Type.(type) {
				case *ast.StructType:
					p.structs[ts.Name.Name] = true
				case *ast.InterfaceType:
					if ts.TypeParams != nil {
						p.generic[ts.Name.Name] = p.fset.Position(ts.Pos())
						continue
					}
					if isConstraint(t) {
						continue
					}
					p.ifaces[ts.Name.Name] = &ifaceDecl{name: ts.Name.Name, typ: t, pos: ts.Pos(), src: src}
				}
			}
		}
	}
	return nil
}

func receiverName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.StarExpr:
		return receiverName(t.X)
	case *ast.Ident:
		return t.Name
	}
	return ""
}

// isConstraint reports whether an interface holds type terms and so
// can only be used as a type constraint.
func isConstraint(it *ast.InterfaceType) bool {
	for _, field := range it.Methods.List {
		switch field.Type.(type) {
		case *ast.FuncType, *ast.Ident, *ast.SelectorExpr:
		default:
			return true
		}
	}
	return false
}

var majorVersion = regexp.MustCompile(`^v[0-9]+$`)

// defaultImportName guesses the package name of an unnamed import.
func defaultImportName(importPath string) string {
	base := path.Base(importPath)
	if majorVersion.MatchString(base) {
		base = path.Base(path.Dir(importPath))
	}
	if i := strings.Index(base, ".v"); i > 0 {
		base = base[:i]
	}
	base = strings.TrimPrefix(base, "go-")
	return strings.ReplaceAll(base, "-", "_")
}

// expand returns the operations of decl, embedded interfaces included,
// in declaration order.
func (p *loader) expand(decl *ifaceDecl) ([]Operation, error) {
	switch decl.state {
	case 2:
		return decl.ops, nil
	case 1:
		return nil, &GenError{Name: decl.name, Message: "interface embeds itself", Pos: p.fset.Position(decl.pos)}
	}
	decl.state = 1

	var ops []Operation
	seen := make(map[string]bool)
	add := func(op Operation) {
		if !seen[op.Name] {
			seen[op.Name] = true
			ops = append(ops, op)
		}
	}

	for _, field := range decl.typ.Methods.List {
		switch t := field.Type.(type) {
		case *ast.FuncType:
			for _, name := range field.Names {
				op, err := p.operation(decl.src, name.Name, t)
				if err != nil {
					return nil, err
				}
				add(op)
			}
		case *ast.Ident:
			if t.Name == "error" {
				add(Operation{Name: "Error", Results: []string{"string"}})
				continue
			}
			if _, ok := p.generic[t.Name]; ok {
				return nil, &GenError{Name: decl.name, Message: fmt.Sprintf("embeds generic interface %s", t.Name), Pos: p.fset.Position(t.Pos())}
			}
			embedded, ok := p.ifaces[t.Name]
			if !ok {
				return nil, &GenError{Name: decl.name, Message: fmt.Sprintf("embedded interface %s is not declared in this package", t.Name), Pos: p.fset.Position(t.Pos())}
			}
			embeddedOps, err := p.expand(embedded)
			if err != nil {
				return nil, err
			}
			for _, op := range embeddedOps {
				add(op)
			}
		case *ast.SelectorExpr:
			return nil, &GenError{
				Name:    decl.name,
				Message: fmt.Sprintf("embedded interface %s from another package is not supported", p.text(t)),
				Pos:     p.fset.Position(t.Pos()),
			}
		}
	}

	decl.ops = ops
	decl.state = 2
	return ops, nil
}

func (p *loader) operation(src *sourceFile, name string, ft *ast.FuncType) (Operation, error) {
	op := Operation{Name: name}
	used := make(map[string]bool)

	for _, field := range ft.Params.List {
		typ := p.text(field.Type)
		if _, ok := field.Type.(*ast.Ellipsis); ok {
			op.Variadic = true
		}
		names := field.Names
		if len(names) == 0 {
			names = []*ast.Ident{nil}
		}
		for _, n := range names {
			op.Params = append(op.Params, Param{Name: paramName(n, len(op.Params), used), Type: typ})
		}
		if err := p.collectImports(src, field.Type, &op); err != nil {
			return Operation{}, err
		}
	}

	if ft.Results != nil {
		for _, field := range ft.Results.List {
			typ := p.text(field.Type)
			count := max(len(field.Names), 1)
			for range count {
				op.Results = append(op.Results, typ)
			}
			if err := p.collectImports(src, field.Type, &op); err != nil {
				return Operation{}, err
			}
		}
	}
	return op, nil
}

func paramName(ident *ast.Ident, index int, used map[string]bool) string {
	name := ""
	if ident != nil && !reservedParams[ident.Name] {
		name = ident.Name
	}
	if name == "" {
		name = fmt.Sprintf("arg%d", index)
	}
	for used[name] {
		name += "_"
	}
	used[name] = true
	return name
}

func (p *loader) collectImports(src *sourceFile, expr ast.Expr, op *Operation) error {
	var err error
	ast.Inspect(expr, func(n ast.Node) bool {
		if err != nil {
			return false
		}
		sel, ok := n.(*ast.SelectorExpr)
		if !ok {
			return true
		}
		x, ok := sel.X.(*ast.Ident)
		if !ok {
			return true
		}
		imp, ok := src.imports[x.Name]
		if !ok {
			err = &GenError{Name: op.Name, Message: fmt.Sprintf("cannot resolve package %s", x.Name), Pos: p.fset.Position(x.Pos())}
			return false
		}
		if !slices.Contains(op.Imports, imp) {
			op.Imports = append(op.Imports, imp)
		}
		return false
	})
	return err
}

func (p *loader) text(expr ast.Expr) string {
	var buf bytes.Buffer
	_ = printer.Fprint(&buf, p.fset, expr)
	return buf.String()
}
