package mapping_test

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tie/modsync"
	"github.com/tie/modsync/mapping"
)

func TestResolve(t *testing.T) {
	table := mapping.NewTable([]modsync.Mapping{
		{ExpectedName: "Example Mod", APIName: "example-mod-api"},
		{ExpectedName: "dup", APIName: "first"},
		{ExpectedName: "dup", APIName: "second"},
	})

	assert.Equal(t, "example-mod-api", table.Resolve("Example Mod"))
	assert.Equal(t, "Foo", table.Resolve("Foo"))
	assert.Equal(t, "first", table.Resolve("dup"))
	assert.Equal(t, "example mod", table.Resolve("example mod"), "match is case-sensitive")
}

func TestResolve_NilTable(t *testing.T) {
	var table *mapping.Table
	assert.Equal(t, "sodium", table.Resolve("sodium"))
	assert.Zero(t, table.Len())
}

func TestLoad_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mod_mappings.json")
	src := `[
  {"ExpectedName": "Fabric API", "ApiName": "fabric-api"},
  {"ExpectedName": "Sodium Extra", "ApiName": "sodium-extra"}
]`
	require.NoError(t, os.WriteFile(path, []byte(src), 0644))

	table, err := mapping.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())
	assert.Equal(t, "fabric-api", table.Resolve("Fabric API"))
	assert.Equal(t, "sodium-extra", table.Resolve("Sodium Extra"))
}

func TestLoad_Malformed(t *testing.T) {
	tests := []struct {
		name string
		file string
		src  string
	}{
		{"truncated", "mod_mappings.json", `[{"ExpectedName": "a"`},
		{"wrong shape", "mod_mappings.json", `{"ExpectedName": "a", "ApiName": "b"}`},
		{"hcl syntax", "mod_mappings.hcl", `mapping "a" {`},
		{"hcl missing attr", "mod_mappings.hcl", "mapping \"a\" {\n}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			require.NoError(t, os.WriteFile(path, []byte(tt.src), 0644))

			table, err := mapping.Load(path)
			require.Error(t, err)
			assert.True(t, errors.Is(err, mapping.ErrMalformed))
			require.NotNil(t, table)
			assert.Zero(t, table.Len())
			assert.Equal(t, "a", table.Resolve("a"))
		})
	}
}

func TestLoad_HCLDiagnostics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mod_mappings.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`mapping "a" {`), 0644))

	_, err := mapping.Load(path)
	var diags hcl.Diagnostics
	require.True(t, errors.As(err, &diags))
	assert.True(t, diags.HasErrors())
}

func TestLoad_Missing(t *testing.T) {
	table, err := mapping.Load(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.Zero(t, table.Len())
}

func TestLoad_HCL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mod_mappings.hcl")
	src := `
mapping "Fabric API" {
  api = "fabric-api"
}

mapping "Fabric API" {
  api = "shadowed"
}
`
	require.NoError(t, os.WriteFile(path, []byte(src), 0644))

	table, err := mapping.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())
	assert.Equal(t, "fabric-api", table.Resolve("Fabric API"))
}

func TestInit_CreatesTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mod_mappings.json")

	status, err := mapping.Init(path)
	require.NoError(t, err)
	assert.Equal(t, mapping.StatusCreated, status)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	want := `[
  {
    "ExpectedName": "Example Mod",
    "ApiName": "example-mod-api"
  }
]
`
	assert.Equal(t, want, string(data))

	table, err := mapping.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "example-mod-api", table.Resolve("Example Mod"))
}

func TestInit_KeepsExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mod_mappings.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0644))

	status, err := mapping.Init(path)
	require.NoError(t, err)
	assert.Equal(t, mapping.StatusExisting, status)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestInit_HCLTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mod_mappings.hcl")

	status, err := mapping.Init(path)
	require.NoError(t, err)
	assert.Equal(t, mapping.StatusCreated, status)

	table, err := mapping.Load(path)
	require.NoError(t, err)
	assert.Equal(t, mapping.Template, table.Mappings())
}

func TestFormat(t *testing.T) {
	out, err := mapping.Format("m.json", []byte(`[{"ExpectedName":"a","ApiName":"b"}]`))
	require.NoError(t, err)
	assert.Equal(t, "[\n  {\n    \"ExpectedName\": \"a\",\n    \"ApiName\": \"b\"\n  }\n]\n", string(out))

	out, err = mapping.Format("m.hcl", []byte("mapping \"a\" {\napi=\"b\"\n}\n"))
	require.NoError(t, err)
	assert.Equal(t, "mapping \"a\" {\n  api = \"b\"\n}\n", string(out))

	_, err = mapping.Format("m.json", []byte(`[`))
	assert.Error(t, err)
}
