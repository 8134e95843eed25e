package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/diff/ctxt"
	"github.com/pkg/diff/myers"
	"github.com/pkg/diff/write"

	"github.com/google/subcommands"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/rs/zerolog/log"

	"github.com/tie/internal/renameio"
	"github.com/tie/internal/robustio"

	"github.com/tie/modsync/mapping"
)

type FormatCommand struct {
	DisableCheck bool
	Overwrite    bool
	ContextSize  int
}

func (*FormatCommand) Name() string     { return "fmt" }
func (*FormatCommand) Synopsis() string { return "format mapping files" }
func (*FormatCommand) Usage() string {
	return `Usage: modsync fmt [-c int] [-w] [-nocheck] [mapping file paths]

	Formats mapping files using standard syntax. It can either write files
	in-places or generate unified diff with specified context size.

Flags:
`
}

func (cmd *FormatCommand) SetFlags(fs *flag.FlagSet) {
	fs.BoolVar(&cmd.DisableCheck, "nocheck", false, "disable decoding checks")
	fs.BoolVar(&cmd.Overwrite, "w", false, "write result to (source) file instead of stdout")
	fs.IntVar(&cmd.ContextSize, "c", 3, "output n lines of diff context")
}

func (cmd *FormatCommand) Execute(ctx context.Context, fs *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	paths := fs.Args()
	if len(paths) <= 0 {
		paths = []string{settingsArg(args).Mappings}
	} else {
		sort.Strings(paths)
	}

	_, color := fdinfo(int(os.Stdout.Fd()))
	f := formatter{
		Check:       !cmd.DisableCheck,
		Overwrite:   cmd.Overwrite,
		ContextSize: cmd.ContextSize,
		Color:       color,
		Out:         os.Stdout,
	}
	seen := make(map[string]bool, len(paths))
	for _, fpath := range paths {
		if seen[fpath] {
			continue
		}
		seen[fpath] = true
		if err := f.format(ctx, fpath); err != nil {
			log.Error().Err(err).Str("file", fpath).Msg("fmt")
			return subcommands.ExitFailure
		}
	}
	return subcommands.ExitSuccess
}

type formatter struct {
	Check       bool
	Overwrite   bool
	ContextSize int
	Color       bool
	Out         io.Writer
}

func (f *formatter) format(ctx context.Context, fpath string) error {
	parser := hclparse.NewParser()
	if f.Check {
		l := mapping.Loader{Parser: parser}
		if _, err := l.Load(fpath); err != nil {
			writeDiags(parser, err)
			return err
		}
	}

	src, err := robustio.ReadFile(fpath)
	if err != nil {
		return err
	}
	outSrc, err := mapping.Format(fpath, src)
	if err != nil {
		writeDiags(parser, err)
		return err
	}
	if bytes.Equal(src, outSrc) {
		return nil
	}
	if f.Overwrite {
		return renameio.WriteFile(fpath, outSrc, 0644)
	}

	slashed := filepath.ToSlash(fpath)
	aname := fmt.Sprintf("a/%s", slashed)
	bname := fmt.Sprintf("b/%s", slashed)
	opts := []write.Option{write.Names(aname, bname)}
	if f.Color {
		opts = append(opts, write.TerminalColor())
	}
	pair := &linePair{a: splitLines(src), b: splitLines(outSrc)}
	edit := myers.Diff(ctx, pair)
	if f.ContextSize >= 0 {
		edit = ctxt.Size(edit, f.ContextSize)
	}
	if err := write.Unified(edit, f.Out, pair, opts...); err != nil {
		return fmt.Errorf("write diff: %w", err)
	}
	return nil
}

// linePair diffs two files line by line.
type linePair struct {
	a, b [][]byte
}

func (p *linePair) LenA() int                                { return len(p.a) }
func (p *linePair) LenB() int                                { return len(p.b) }
func (p *linePair) Equal(ai, bi int) bool                    { return bytes.Equal(p.a[ai], p.b[bi]) }
func (p *linePair) WriteATo(w io.Writer, i int) (int, error) { return w.Write(p.a[i]) }
func (p *linePair) WriteBTo(w io.Writer, i int) (int, error) { return w.Write(p.b[i]) }

func writeDiags(parser *hclparse.Parser, err error) {
	var diags hcl.Diagnostics
	if !errors.As(err, &diags) {
		return
	}
	diagWr, _ := newDiagWr(parser)
	if err := diagWr.WriteDiagnostics(diags); err != nil {
		log.Warn().Err(err).Msg("write diags")
	}
}

func splitLines(b []byte) [][]byte {
	return bytes.Split(b, []byte("\n"))
}
