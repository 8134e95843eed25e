package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/tie/modsync/mapping"
)

type InitCommand struct {
	Mappings string
}

func (*InitCommand) Name() string     { return "init" }
func (*InitCommand) Synopsis() string { return "create the mapping file template" }
func (*InitCommand) Usage() string {
	return `Usage: modsync init [-mappings file]

	Creates a mapping file with one example entry unless it already exists.
	Files ending in .hcl are written in HCL, others in JSON.

Flags:
`
}

func (cmd *InitCommand) SetFlags(fs *flag.FlagSet) {
	fs.StringVar(&cmd.Mappings, "mappings", "", "mapping file (default from settings)")
}

func (cmd *InitCommand) Execute(ctx context.Context, fs *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	path := cmd.Mappings
	if path == "" {
		path = settingsArg(args).Mappings
	}
	status, err := mapping.Init(path)
	if err != nil {
		return fail(fmt.Errorf("create mapping template %q: %w", path, err))
	}
	switch status {
	case mapping.StatusCreated:
		fmt.Fprintf(os.Stdout, "A template '%s' has been created.\n", path)
	case mapping.StatusExisting:
		fmt.Fprintf(os.Stdout, "'%s' already exists.\n", path)
	}
	return subcommands.ExitSuccess
}
