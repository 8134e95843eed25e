package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/google/subcommands"
	"github.com/rs/zerolog/log"

	"github.com/tie/modsync/config"
	"github.com/tie/modsync/fetcher"
	"github.com/tie/modsync/mapping"
	"github.com/tie/modsync/modrinth"
	"github.com/tie/modsync/runner"
)

type InstallCommand struct {
	Source   string
	Version  string
	Dest     string
	Mappings string
	Loader   string
}

func (*InstallCommand) Name() string     { return "install" }
func (*InstallCommand) Synopsis() string { return "install compatible builds of local mods" }
func (*InstallCommand) Usage() string {
	return `Usage: modsync install [-src dir] [-version v] [-dest dir] [-mappings file] [-loader name]

	Identifies every .jar archive in the source folder, maps it to a Modrinth
	project and, if the project supports the game version, downloads the
	matching build into the installation folder. Missing values are read
	from standard input.

Flags:
`
}

func (cmd *InstallCommand) SetFlags(fs *flag.FlagSet) {
	fs.StringVar(&cmd.Source, "src", "", "folder containing .jar files")
	fs.StringVar(&cmd.Version, "version", "", "Minecraft version, e.g. 1.20.1")
	fs.StringVar(&cmd.Dest, "dest", "", "folder to install mods into")
	fs.StringVar(&cmd.Mappings, "mappings", "", "mapping file (default from settings)")
	fs.StringVar(&cmd.Loader, "loader", "", "loader channel (default from settings)")
}

func (cmd *InstallCommand) Execute(ctx context.Context, fs *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	s := settingsArg(args)
	_, color := fdinfo(int(os.Stdout.Fd()))
	sum, err := cmd.run(ctx, s, os.Stdin, os.Stdout, color)
	if err != nil {
		return fail(err)
	}
	log.Info().
		Int("archives", sum.Archives).
		Int("installed", sum.Installed).
		Int("incompatible", sum.Incompatible).
		Int("unidentified", sum.Unidentified).
		Int("failed", sum.Failed).
		Msg("done")
	return subcommands.ExitSuccess
}

func (cmd *InstallCommand) run(ctx context.Context, s *config.Settings, in io.Reader, out io.Writer, color bool) (runner.Summary, error) {
	var sum runner.Summary
	p := &prompter{r: bufio.NewReader(in), out: out}

	src, err := p.value(cmd.Source, "Enter the path to the folder containing .jar files:")
	if err != nil {
		return sum, err
	}
	if err := checkDir(src, "Invalid folder path."); err != nil {
		return sum, err
	}
	version, err := p.value(cmd.Version, "Enter the Minecraft version in the format 1.x.x:")
	if err != nil {
		return sum, err
	}
	if version == "" {
		return sum, invalidArg("Minecraft version is required.", nil)
	}
	dest, err := p.value(cmd.Dest, "Enter the path where the mods should be installed:")
	if err != nil {
		return sum, err
	}
	if err := checkDir(dest, "Invalid installation folder path."); err != nil {
		return sum, err
	}

	path := cmd.Mappings
	if path == "" {
		path = s.Mappings
	}
	status, err := mapping.Init(path)
	if err != nil {
		return sum, fmt.Errorf("create mapping template %q: %w", path, err)
	}
	if status == mapping.StatusCreated {
		fmt.Fprintf(out, "Configuration file '%s' not found. Creating a template.\n", path)
		if isTerminal(in) {
			fmt.Fprintf(out, "A template '%s' has been created. Add your mod mappings and press Enter to continue.\n", path)
			if err := p.pause(); err != nil {
				return sum, err
			}
		}
	}
	table := loadMappings(path, out)

	loader := cmd.Loader
	if loader == "" {
		loader = s.Loader
	}
	client := newClient(s)
	r := runner.Runner{
		Source:   osfs.New(src),
		Mappings: table,
		Compat:   &modrinth.Resolver{Projects: client},
		Installer: &fetcher.Installer{
			Catalog: client,
			Files:   osfs.New(dest),
			Loader:  loader,
		},
		Reporter: &runner.ConsoleReporter{Out: out, InstallDir: dest, NoColor: !color},
	}
	return r.Run(ctx, version)
}

func checkDir(path, msg string) error {
	if path == "" {
		return invalidArg(msg, nil)
	}
	fi, err := os.Stat(path)
	if err != nil {
		return invalidArg(msg, err)
	}
	if !fi.IsDir() {
		return invalidArg(msg, fmt.Errorf("%s is not a directory", path))
	}
	return nil
}

// prompter reads answers line by line.
type prompter struct {
	r   *bufio.Reader
	out io.Writer
}

// value returns v or, if v is empty, the answer to question.
func (p *prompter) value(v, question string) (string, error) {
	if v != "" {
		return v, nil
	}
	fmt.Fprintln(p.out, question)
	return p.line()
}

func (p *prompter) pause() error {
	_, err := p.line()
	return err
}

func (p *prompter) line() (string, error) {
	s, err := p.r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(s), nil
}
