package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"golang.org/x/crypto/ssh/terminal"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/subcommands"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tie/modsync/config"
	"github.com/tie/modsync/mapping"
	"github.com/tie/modsync/modrinth"
)

func newDiagWr(p *hclparse.Parser) (diagWr hcl.DiagnosticWriter, color bool) {
	files := p.Files()
	stderr := os.Stderr
	fd := int(stderr.Fd())
	istty, color := fdinfo(fd)
	if !istty {
		diagWr := hcl.NewDiagnosticTextWriter(stderr, files, defaultDiagWidth, color)
		return diagWr, color
	}
	return hcl.NewDiagnosticTextWriter(stderr, files, diagWidth(fd), color), color
}

const defaultDiagWidth = 80

// diagWidth returns the terminal width of fd, or defaultDiagWidth if it
// is unknown.
func diagWidth(fd int) uint {
	w, _, err := terminal.GetSize(fd)
	if err != nil {
		log.Debug().Err(err).Msg("get term size")
		return defaultDiagWidth
	}
	if w <= 0 {
		return defaultDiagWidth
	}
	return uint(w)
}

func fdinfo(fd int) (istty, color bool) {
	istty = terminal.IsTerminal(fd)
	if istty {
		color = true
	}
	// See https://no-color.org
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		color = false
	}
	return
}

// isTerminal reports whether r reads from a terminal.
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && terminal.IsTerminal(int(f.Fd()))
}

func setupLogging(level string) {
	_, color := fdinfo(int(os.Stderr.Fd()))
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: !color})
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// settingsArg returns the settings passed to Commander.Execute.
func settingsArg(args []interface{}) *config.Settings {
	for _, arg := range args {
		if s, ok := arg.(*config.Settings); ok {
			return s
		}
	}
	s, err := config.Load("")
	if err != nil {
		log.Warn().Err(err).Msg("load settings")
		return &config.Settings{
			APIURL:    modrinth.DefaultAPIURL,
			SiteURL:   modrinth.DefaultSiteURL,
			Loader:    modrinth.LoaderFabric,
			Mappings:  mapping.DefaultPath,
			Timeout:   config.DefaultTimeout,
			UserAgent: config.DefaultUserAgent,
		}
	}
	return s
}

func newClient(s *config.Settings) *modrinth.Client {
	c := modrinth.NewClient(&http.Client{Timeout: s.Timeout})
	c.APIURL = s.APIURL
	c.SiteURL = s.SiteURL
	c.UserAgent = s.UserAgent
	return c
}

// loadMappings loads the mapping table at path. A malformed file yields an
// empty table; HCL diagnostics are written to stderr.
func loadMappings(path string, out io.Writer) *mapping.Table {
	parser := hclparse.NewParser()
	l := mapping.Loader{Parser: parser}
	table, err := l.Load(path)
	switch {
	case err == nil:
		log.Debug().Str("file", path).Int("entries", table.Len()).Msg("mappings loaded")
	case errors.Is(err, os.ErrNotExist):
		log.Debug().Str("file", path).Msg("no mapping file")
	case errors.Is(err, mapping.ErrMalformed):
		var diags hcl.Diagnostics
		if errors.As(err, &diags) {
			diagWr, _ := newDiagWr(parser)
			if err := diagWr.WriteDiagnostics(diags); err != nil {
				log.Warn().Err(err).Msg("write diags")
			}
		} else {
			log.Debug().Err(err).Str("file", path).Msg("decode mappings")
		}
		fmt.Fprintln(out, "Error while parsing configuration file. Using default mappings.")
	default:
		log.Warn().Err(err).Str("file", path).Msg("read mappings")
	}
	return table
}

func invalidArg(msg string, cause error) error {
	b := errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(msg)
	if cause != nil {
		b = b.WithCause(cause)
	}
	return b
}

func exitCodeForError(err error) int {
	if errors.Is(err, context.Canceled) {
		return 130
	}
	switch errbuilder.CodeOf(err) {
	case errbuilder.CodeInvalidArgument:
		return 2
	default:
		return 1
	}
}

func errorMessage(err error) string {
	var builder *errbuilder.ErrBuilder
	if errors.As(err, &builder) && strings.TrimSpace(builder.Msg) != "" {
		return builder.Msg
	}
	return err.Error()
}

// fail logs err and returns the matching exit status.
func fail(err error) subcommands.ExitStatus {
	ev := log.Error()
	var builder *errbuilder.ErrBuilder
	if errors.As(err, &builder) {
		if cause := errors.Unwrap(builder); cause != nil {
			ev = ev.Err(cause)
		}
	}
	ev.Msg(errorMessage(err))
	return subcommands.ExitStatus(exitCodeForError(err))
}
