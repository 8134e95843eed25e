package main

import (
	"context"
	"flag"
	"os"
	"os/signal"

	"github.com/google/subcommands"
	"github.com/rs/zerolog/log"

	"github.com/tie/modsync/config"
)

const programName = "modsync"

func main() {
	var configFile, logLevel string

	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.Bool("h", false, "alias for help")
	fs.Bool("help", false, "print usage")
	fs.StringVar(&configFile, "config", "", "settings file (default modsync.{yaml,toml,json})")
	fs.StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn or error")

	cdr := subcommands.NewCommander(fs, programName)
	cdr.Register(&InstallCommand{}, "")
	cdr.Register(&InitCommand{}, "")
	cdr.Register(&IdentCommand{}, "")
	cdr.Register(&CheckCommand{}, "")
	cdr.Register(&FormatCommand{}, "")
	cdr.Register(cdr.HelpCommand(), "help")
	cdr.Register(cdr.FlagsCommand(), "help")
	cdr.Register(cdr.CommandsCommand(), "help")

	if err := fs.Parse(os.Args[1:]); err != nil {
		os.Exit(int(subcommands.ExitUsageError))
	}
	setupLogging(logLevel)

	settings, err := config.Load(configFile)
	if err != nil {
		os.Exit(int(fail(err)))
	}
	log.Debug().
		Str("api", settings.APIURL).
		Str("site", settings.SiteURL).
		Str("loader", settings.Loader).
		Dur("timeout", settings.Timeout).
		Msg("settings")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	status := cdr.Execute(ctx, settings)
	stop()
	os.Exit(int(status))
}
