// Package mapping maps mod identities read from archives to project
// identifiers on the remote service.
//
// The table is a user-maintained side file, either JSON
//
//	[{"ExpectedName": "Example Mod", "ApiName": "example-mod-api"}]
//
// or HCL when the file name ends in ".hcl". Names without an entry map to
// themselves.
package mapping

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/tie/internal/robustio"

	"github.com/tie/modsync"
	"github.com/tie/modsync/mapping/hclspec"
)

// DefaultPath is the mapping file looked up in the working directory.
const DefaultPath = "mod_mappings.json"

// ErrMalformed is returned when the mapping file exists but does not
// decode as a mapping list. The table is empty in that case.
var ErrMalformed = errors.New("malformed mapping file")

// Table is an ordered list of overrides. It is immutable after load.
type Table struct {
	mappings []modsync.Mapping
}

// NewTable returns a table with a copy of ms.
func NewTable(ms []modsync.Mapping) *Table {
	t := &Table{mappings: make([]modsync.Mapping, len(ms))}
	copy(t.mappings, ms)
	return t
}

// Resolve returns the remote name for expected. The first exact match wins;
// unmapped names are returned unchanged.
func (t *Table) Resolve(expected string) string {
	if t == nil {
		return expected
	}
	for _, m := range t.mappings {
		if m.ExpectedName == expected {
			return m.APIName
		}
	}
	return expected
}

// Len returns the number of entries.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.mappings)
}

// Mappings returns a copy of the entries in file order.
func (t *Table) Mappings() []modsync.Mapping {
	if t == nil {
		return nil
	}
	ms := make([]modsync.Mapping, len(t.mappings))
	copy(ms, t.mappings)
	return ms
}

// IsHCL reports whether path uses the HCL syntax.
func IsHCL(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".hcl")
}

// Loader loads mapping files. Parser collects HCL sources so that
// diagnostics can be rendered with file snippets.
type Loader struct {
	Parser *hclparse.Parser
}

// Load is a shorthand for loading path with a fresh Loader.
func Load(path string) (*Table, error) {
	var l Loader
	return l.Load(path)
}

// Load reads and decodes the mapping file at path. It always returns
// a usable table: on error the table is empty and the error wraps either
// the read failure or ErrMalformed.
func (l *Loader) Load(path string) (*Table, error) {
	src, err := robustio.ReadFile(path)
	if err != nil {
		return NewTable(nil), err
	}
	var ms []modsync.Mapping
	if IsHCL(path) {
		ms, err = l.decodeHCL(src, path)
	} else {
		ms, err = decodeJSON(src)
	}
	if err != nil {
		return NewTable(nil), err
	}
	return NewTable(ms), nil
}

func decodeJSON(src []byte) ([]modsync.Mapping, error) {
	var ms []modsync.Mapping
	if err := json.Unmarshal(src, &ms); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return ms, nil
}

func (l *Loader) decodeHCL(src []byte, path string) ([]modsync.Mapping, error) {
	parser := l.Parser
	if parser == nil {
		parser = hclparse.NewParser()
	}
	file, diags := parser.ParseHCL(src, path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, diags)
	}
	var f hclspec.File
	diags = gohcl.DecodeBody(file.Body, nil, &f)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, diags)
	}
	ms := make([]modsync.Mapping, len(f.Mappings))
	for i, m := range f.Mappings {
		ms[i] = modsync.Mapping{
			ExpectedName: m.ExpectedName,
			APIName:      m.APIName,
		}
	}
	return ms, nil
}
