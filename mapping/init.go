package mapping

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"

	"github.com/tie/internal/renameio"

	"github.com/tie/modsync"
)

// Status is the outcome of Init.
type Status int

const (
	// StatusExisting means the mapping file was already present.
	StatusExisting Status = iota
	// StatusCreated means a template was written.
	StatusCreated
)

func (s Status) String() string {
	switch s {
	case StatusExisting:
		return "existing"
	case StatusCreated:
		return "created"
	}
	return "unknown"
}

// Template is the single example entry written on first run.
var Template = []modsync.Mapping{
	{ExpectedName: "Example Mod", APIName: "example-mod-api"},
}

// Init makes sure a mapping file exists at path, writing a template
// if there is none. The file is never modified if it exists.
func Init(path string) (Status, error) {
	_, err := os.Stat(path)
	if err == nil {
		return StatusExisting, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return StatusExisting, err
	}
	data := Encode(Template, IsHCL(path))
	if err := renameio.WriteFile(path, data, 0644); err != nil {
		return StatusExisting, err
	}
	return StatusCreated, nil
}

// Encode renders ms in the JSON or HCL mapping syntax.
func Encode(ms []modsync.Mapping, asHCL bool) []byte {
	if asHCL {
		return encodeHCL(ms)
	}
	if ms == nil {
		ms = []modsync.Mapping{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	// Encoding plain strings cannot fail.
	_ = enc.Encode(ms)
	return buf.Bytes()
}

func encodeHCL(ms []modsync.Mapping) []byte {
	f := hclwrite.NewEmptyFile()
	body := f.Body()
	for i, m := range ms {
		if i > 0 {
			body.AppendNewline()
		}
		block := body.AppendNewBlock("mapping", []string{m.ExpectedName})
		block.Body().SetAttributeValue("api", cty.StringVal(m.APIName))
	}
	return f.Bytes()
}

// Format returns src in canonical form. JSON is re-indented as written
// by Init; HCL goes through the standard HCL formatter.
func Format(path string, src []byte) ([]byte, error) {
	if IsHCL(path) {
		_, diags := hclwrite.ParseConfig(src, path, hcl.InitialPos)
		if diags.HasErrors() {
			return nil, diags
		}
		return hclwrite.Format(src), nil
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, bytes.TrimSpace(src), "", "  "); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
