package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/google/subcommands"
	"github.com/rs/zerolog/log"

	"github.com/tie/modsync/mapping"
	"github.com/tie/modsync/modinfo"
	"github.com/tie/modsync/runner"
)

type IdentCommand struct {
	Mappings string
}

func (*IdentCommand) Name() string     { return "ident" }
func (*IdentCommand) Synopsis() string { return "print mod identities of archives" }
func (*IdentCommand) Usage() string {
	return `Usage: modsync ident [-mappings file] [archive or folder paths]

	Prints the identity declared by each archive and the project it maps to.
	Folders are expanded to the .jar archives they contain. Exits with
	failure status if any archive could not be identified.

Flags:
`
}

func (cmd *IdentCommand) SetFlags(fs *flag.FlagSet) {
	fs.StringVar(&cmd.Mappings, "mappings", "", "mapping file (default from settings)")
}

func (cmd *IdentCommand) Execute(ctx context.Context, fs *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	path := cmd.Mappings
	if path == "" {
		path = settingsArg(args).Mappings
	}
	paths := fs.Args()
	if len(paths) == 0 {
		paths = []string{"."}
	}
	table := loadMappings(path, os.Stderr)
	ok, err := identify(os.Stdout, table, paths)
	if err != nil {
		return fail(err)
	}
	if !ok {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// identify writes one row per archive and reports whether all archives
// were identified.
func identify(out io.Writer, table *mapping.Table, paths []string) (bool, error) {
	tw := tabwriter.NewWriter(out, 0, 8, 1, ' ', 0)
	allOK := true
	for _, path := range paths {
		fi, err := os.Stat(path)
		if err != nil {
			return false, invalidArg(fmt.Sprintf("Invalid path %s.", path), err)
		}
		dir, names := filepath.Dir(path), []string{filepath.Base(path)}
		if fi.IsDir() {
			dir = path
			names, err = runner.Archives(osfs.New(dir))
			if err != nil {
				return false, fmt.Errorf("list %s: %w", dir, err)
			}
		}
		fsys := osfs.New(dir)
		for _, name := range names {
			archive := filepath.Join(dir, name)
			id, ok := modinfo.Identify(fsys, name)
			if !ok {
				allOK = false
				log.Debug().Str("archive", archive).Msg("no identity")
				fmt.Fprintf(tw, "%s\t-\t-\n", archive)
				continue
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\n", archive, id, table.Resolve(id))
		}
	}
	return allOK, tw.Flush()
}
