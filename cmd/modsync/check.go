package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"
	"github.com/rs/zerolog/log"

	"github.com/tie/modsync/mapping"
	"github.com/tie/modsync/modrinth"
)

type CheckCommand struct {
	Version  string
	Mappings string
}

func (*CheckCommand) Name() string     { return "check" }
func (*CheckCommand) Synopsis() string { return "check projects against a game version" }
func (*CheckCommand) Usage() string {
	return `Usage: modsync check -version v [-mappings file] [mod ids]

	Maps each mod id through the mapping file and checks whether the
	Modrinth project lists the game version. Nothing is downloaded.
	Exits with failure status if any project is not compatible.

Flags:
`
}

func (cmd *CheckCommand) SetFlags(fs *flag.FlagSet) {
	fs.StringVar(&cmd.Version, "version", "", "Minecraft version, e.g. 1.20.1")
	fs.StringVar(&cmd.Mappings, "mappings", "", "mapping file (default from settings)")
}

func (cmd *CheckCommand) Execute(ctx context.Context, fs *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if fs.NArg() == 0 {
		fs.Usage()
		return subcommands.ExitUsageError
	}
	if cmd.Version == "" {
		return fail(invalidArg("Minecraft version is required.", nil))
	}
	s := settingsArg(args)
	path := cmd.Mappings
	if path == "" {
		path = s.Mappings
	}
	table := loadMappings(path, os.Stderr)
	compat := &modrinth.Resolver{Projects: newClient(s)}
	if !check(ctx, os.Stdout, compat, table, cmd.Version, fs.Args()) {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// check prints the gate result for every id and reports whether all of
// them are compatible.
func check(ctx context.Context, out io.Writer, compat *modrinth.Resolver, table *mapping.Table, version string, ids []string) bool {
	allOK := true
	for _, id := range ids {
		remote := table.Resolve(id)
		ok, err := compat.Check(ctx, remote, version)
		if err != nil {
			log.Warn().Err(err).Str("project", remote).Msg("check")
		}
		if !ok {
			allOK = false
			fmt.Fprintf(out, "%s: Not compatible with Minecraft %s\n", remote, version)
			continue
		}
		fmt.Fprintf(out, "%s: Compatible with Minecraft %s\n", remote, version)
	}
	return allOK
}
