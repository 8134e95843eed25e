package runner

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/rs/zerolog/log"

	"github.com/tie/modsync/fetcher"
)

// ConsoleReporter prints one status line per event. A blank line
// separates archives.
type ConsoleReporter struct {
	Out io.Writer

	// InstallDir prefixes installed file names.
	InstallDir string

	// NoColor disables colors even on a terminal.
	NoColor bool
}

func (c *ConsoleReporter) paint(attrs ...color.Attribute) func(a ...interface{}) string {
	col := color.New(attrs...)
	if c.NoColor {
		col.DisableColor()
	}
	return col.SprintFunc()
}

func (c *ConsoleReporter) Report(ev Event) {
	ok := c.paint(color.FgGreen)
	warn := c.paint(color.FgYellow)
	fail := c.paint(color.FgRed)
	name := c.paint(color.FgCyan, color.Bold)

	res := ev.Result
	if res == nil {
		res = &fetcher.Result{}
	}
	w := c.Out
	switch ev.Stage {
	case StageNoArchives:
		fmt.Fprintln(w, warn("No .jar files found in the specified folder."))
	case StageUnidentified:
		fmt.Fprintln(w, fail(fmt.Sprintf("Failed to extract mod name for %s.", ev.Mod.Archive)))
	case StageIdentified:
		fmt.Fprintf(w, "Minecraft Mod Id: %s\n", name(ev.Mod.ID))
	case StageIncompatible:
		fmt.Fprintln(w, warn(fmt.Sprintf("Not compatible with Minecraft %s", ev.GameVersion)))
	case StageCompatible:
		fmt.Fprintln(w, ok(fmt.Sprintf("Compatible with Minecraft %s", ev.GameVersion)))
		fmt.Fprintln(w, ev.Mod.RemoteID)
	case StageNoSlug:
		fmt.Fprintln(w, fail("Failed to retrieve mod information from Modrinth API."))
	case StageFetchPageFailed:
		fmt.Fprintln(w, fail(fmt.Sprintf("Failed to fetch mod page from URL: %s", res.PageURL)))
	case StageNoLink:
		fmt.Fprintln(w, fail("No download links found in the mod page."))
	case StageDownloadFailed:
		fmt.Fprintf(w, "Download URL: %s\n", res.Link)
		fmt.Fprintln(w, fail(fmt.Sprintf("Failed to download mod from URL: %s", res.Link)))
	case StageWriteFailed:
		fmt.Fprintln(w, fail(fmt.Sprintf("Failed to write mod file %s: %v", res.Filename, ev.Err)))
	case StageInstalled:
		path := filepath.Join(c.InstallDir, res.Filename)
		fmt.Fprintf(w, "Download URL: %s\n", res.Link)
		fmt.Fprintln(w, ok(fmt.Sprintf("Mod downloaded and installed: %s", path)))
		log.Debug().Strs("sums", res.Sums).Int64("size", res.Size).Str("file", path).Msg("installed")
	}
	if ev.Stage.Final() && ev.Stage != StageNoArchives {
		fmt.Fprintln(w)
	}
}
