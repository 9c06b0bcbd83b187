package gen

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Shapes(t *testing.T) {
	pkg, err := Parse("testdata/shapes", Options{})
	require.NoError(t, err)

	assert.Equal(t, "shapes", pkg.Name)

	var names []string
	for _, c := range pkg.Capabilities {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"Named", "Plain", "Store"}, names, "constraints, generics, tests and generated files are skipped")

	ctxImport := Import{Path: "context"}
	ioImport := Import{Path: "io"}
	yamlImport := Import{Name: "yamlv3", Path: "gopkg.in/yaml.v3"}

	want := &Capability{
		Name: "Store",
		Operations: []Operation{
			{Name: "Name", Results: []string{"string"}},
			{
				Name:    "Load",
				Params:  []Param{{"ctx", "context.Context"}, {"key", "string"}},
				Results: []string{"[]byte", "bool", "error"},
				Imports: []Import{ctxImport},
			},
			{
				Name:     "Append",
				Params:   []Param{{"key", "string"}, {"values", "...int"}},
				Results:  []string{"int"},
				Variadic: true,
			},
			{
				Name:    "Copy",
				Params:  []Param{{"arg0", "io.Writer"}, {"arg1", "io.Writer"}, {"arg2", "int"}},
				Imports: []Import{ioImport},
			},
			{
				Name:    "Encode",
				Params:  []Param{{"node", "*yamlv3.Node"}},
				Results: []string{"error"},
				Imports: []Import{yamlImport},
			},
			{Name: "Ping"},
		},
		ClientHolder:    &Holder{Name: "StoreContractForClient", Methods: []string{"Append"}},
		ImplementHolder: &Holder{Name: "StoreContractForImplement", Methods: []string{"Name"}},
	}

	got := pkg.Capability("Store")
	require.NotNil(t, got)
	if diff := cmp.Diff(want, got, cmpopts.IgnoreFields(Capability{}, "Pos"), cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("Store mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "shapes.go", filepath.Base(got.Pos.Filename))
	assert.Equal(t, 16, got.Pos.Line)

	assert.Nil(t, pkg.Capability("Plain").ClientHolder)
	assert.Nil(t, pkg.Capability("Missing"))
}

func TestParse_CustomSuffixes(t *testing.T) {
	dir := writePackage(t, map[string]string{"a.go": `package a

type Cache interface{ Get(key string) string }

type CachePre struct{}

func (CachePre) Get(key string) {}
`})

	pkg, err := Parse(dir, Options{ClientSuffix: "Pre", ImplementSuffix: "Post"})
	require.NoError(t, err)

	c := pkg.Capability("Cache")
	require.NotNil(t, c)
	require.NotNil(t, c.ClientHolder)
	assert.Equal(t, "CachePre", c.ClientHolder.Name)
	assert.True(t, c.ClientHolder.HasMethod("Get"))
	assert.Nil(t, c.ImplementHolder)
}

func TestParse_EmbeddedError(t *testing.T) {
	dir := writePackage(t, map[string]string{"a.go": `package a

type Failure interface {
	error
	Code() int
}
`})
	pkg, err := Parse(dir, Options{})
	require.NoError(t, err)

	ops := pkg.Capability("Failure").Operations
	require.Len(t, ops, 2)
	assert.Equal(t, "Error() string", ops[0].Signature())
	assert.Equal(t, "Code() int", ops[1].Signature())
}

func TestParse_Errors(t *testing.T) {
	testCases := []struct {
		name  string
		files map[string]string
		want  string
	}{
		{
			name:  "foreign embedded interface",
			files: map[string]string{"a.go": "package a\n\nimport \"io\"\n\ntype R interface{ io.Reader }\n"},
			want:  "embedded interface io.Reader from another package is not supported",
		},
		{
			name:  "undeclared embedded interface",
			files: map[string]string{"a.go": "package a\n\ntype R interface{ Missing }\n"},
			want:  "embedded interface Missing is not declared in this package",
		},
		{
			name:  "embedding cycle",
			files: map[string]string{"a.go": "package a\n\ntype A interface{ B }\n\ntype B interface{ A }\n"},
			want:  "interface embeds itself",
		},
		{
			name:  "generic embedded interface",
			files: map[string]string{"a.go": "package a\n\ntype G[T any] interface{ Get() T }\n\ntype R interface{ G }\n"},
			want:  "embeds generic interface G",
		},
		{
			name: "generic interface with holder",
			files: map[string]string{"a.go": "package a\n\ntype G[T any] interface{ Get() T }\n\n" +
				"type GContractForClient struct{}\n"},
			want: "generic interfaces cannot have contract holders",
		},
		{
			name:  "unresolved package",
			files: map[string]string{"a.go": "package a\n\ntype R interface{ Read(b bytes.Buffer) }\n"},
			want:  "cannot resolve package bytes",
		},
		{
			name:  "mixed packages",
			files: map[string]string{"a.go": "package a\n", "b.go": "package b\n"},
			want:  "package name differs from a",
		},
		{
			name:  "no files",
			files: map[string]string{"a_test.go": "package a\n"},
			want:  "no Go files",
		},
		{
			name:  "syntax error",
			files: map[string]string{"a.go": "package a\n\ntype R interface{\n"},
			want:  "parse a.go",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(writePackage(t, tc.files), Options{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestParse_MissingDir(t *testing.T) {
	_, err := Parse(filepath.Join(t.TempDir(), "absent"), Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestGenError_Error(t *testing.T) {
	assert.Equal(t, "no Go files", (&GenError{Message: "no Go files"}).Error())
	assert.Equal(t, "Store: bad", (&GenError{Name: "Store", Message: "bad"}).Error())
}

func TestDefaultImportName(t *testing.T) {
	testCases := map[string]string{
		"context":                     "context",
		"gopkg.in/yaml.v3":            "yaml",
		"github.com/sebdah/goldie/v2": "goldie",
		"github.com/mattn/go-sqlite3": "sqlite3",
		"example.com/some-pkg":        "some_pkg",
	}
	for path, want := range testCases {
		assert.Equal(t, want, defaultImportName(path), path)
	}
}

func writePackage(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, src := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(src), 0o644))
	}
	return dir
}
