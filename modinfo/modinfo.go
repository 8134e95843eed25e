// Package modinfo reads the identity a mod declares in its archive metadata.
package modinfo

import (
	"archive/zip"
	"encoding/json"
	"io"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/rs/zerolog/log"
)

const (
	// FabricFile is the Fabric loader metadata entry.
	FabricFile = "fabric.mod.json"
	// ForgeFile is the legacy Forge metadata entry.
	ForgeFile = "mcmod.info"
)

// Don’t read metadata documents larger than 1MiB.
const maxDocSize = 1024 * 1024

// Identify opens the archive name in fs and returns the mod identity.
// The second result is false if the archive declares no identity
// or cannot be read.
func Identify(fs billy.Filesystem, name string) (string, bool) {
	fi, err := fs.Stat(name)
	if err != nil {
		log.Debug().Err(err).Str("archive", name).Msg("stat archive")
		return "", false
	}
	f, err := fs.Open(name)
	if err != nil {
		log.Debug().Err(err).Str("archive", name).Msg("open archive")
		return "", false
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Warn().Err(err).Str("archive", name).Msg("close archive")
		}
	}()
	return IdentifyReader(f, fi.Size())
}

// IdentifyReader is like Identify for an archive of the given size.
func IdentifyReader(r io.ReaderAt, size int64) (string, bool) {
	z, err := zip.NewReader(r, size)
	if err != nil {
		log.Debug().Err(err).Msg("read archive")
		return "", false
	}
	f := lookup(z)
	if f == nil {
		return "", false
	}
	src, err := readEntry(f)
	if err != nil {
		log.Debug().Err(err).Str("entry", f.Name).Msg("read metadata")
		return "", false
	}
	return parseIdentity(src)
}

// lookup returns the metadata entry. fabric.mod.json must match exactly;
// if it exists, mcmod.info is never consulted.
func lookup(z *zip.Reader) *zip.File {
	for _, f := range z.File {
		if f.Name == FabricFile {
			return f
		}
	}
	for _, f := range z.File {
		if strings.EqualFold(f.Name, ForgeFile) {
			return f
		}
	}
	return nil
}

func readEntry(f *zip.File) ([]byte, error) {
	r, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := r.Close(); err != nil {
			log.Warn().Err(err).Str("entry", f.Name).Msg("close entry")
		}
	}()
	return io.ReadAll(io.LimitReader(r, maxDocSize))
}

// parseIdentity returns field "id", or "name" if the document has no "id".
// A present field decides the result even if it is empty.
func parseIdentity(src []byte) (string, bool) {
	doc, ok := document(src)
	if !ok {
		return "", false
	}
	for _, key := range []string{"id", "name"} {
		if _, ok := doc[key]; ok {
			return stringField(doc, key)
		}
	}
	return "", false
}

// document decodes the metadata object. mcmod.info is commonly a list of
// mods, either bare or under "modList"; the first entry describes the archive.
func document(src []byte) (map[string]json.RawMessage, bool) {
	var raw json.RawMessage
	if err := json.Unmarshal(src, &raw); err != nil {
		return nil, false
	}
	var list []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		if len(list) == 0 {
			return nil, false
		}
		return list[0], list[0] != nil
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil || doc == nil {
		return nil, false
	}
	if _, ok := doc["id"]; ok {
		return doc, true
	}
	if _, ok := doc["name"]; ok {
		return doc, true
	}
	if mods, ok := doc["modList"]; ok {
		if err := json.Unmarshal(mods, &list); err == nil && len(list) > 0 && list[0] != nil {
			return list[0], true
		}
	}
	return doc, true
}

func stringField(doc map[string]json.RawMessage, key string) (string, bool) {
	v, ok := doc[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil || s == "" {
		return "", false
	}
	return s, true
}
