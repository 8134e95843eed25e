package runner

import (
	"errors"

	"github.com/tie/modsync"
	"github.com/tie/modsync/fetcher"
)

// Stage tags a progress event.
type Stage int

const (
	StageNoArchives Stage = iota
	StageUnidentified
	StageIdentified
	StageIncompatible
	StageCompatible
	StageNoSlug
	StageFetchPageFailed
	StageNoLink
	StageDownloadFailed
	StageWriteFailed
	StageInstalled
)

var stageNames = [...]string{
	StageNoArchives:      "no-archives",
	StageUnidentified:    "unidentified",
	StageIdentified:      "identified",
	StageIncompatible:    "incompatible",
	StageCompatible:      "compatible",
	StageNoSlug:          "no-slug",
	StageFetchPageFailed: "fetch-page-failed",
	StageNoLink:          "no-link-found",
	StageDownloadFailed:  "download-failed",
	StageWriteFailed:     "write-failed",
	StageInstalled:       "installed",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "unknown"
	}
	return stageNames[s]
}

// Final reports whether no further event follows for the same archive.
func (s Stage) Final() bool {
	switch s {
	case StageIdentified, StageCompatible:
		return false
	}
	return true
}

// Event is a single progress report.
type Event struct {
	Stage       Stage
	Mod         modsync.Mod
	GameVersion string

	// Result is set for StageInstalled and, partially, for install failures.
	Result *fetcher.Result

	// Err is the cause of failure stages.
	Err error
}

// Reporter receives progress events in order.
type Reporter interface {
	Report(ev Event)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(ev Event)

func (f ReporterFunc) Report(ev Event) { f(ev) }

// installStage maps an install error to its stage.
func installStage(err error) Stage {
	switch {
	case errors.Is(err, fetcher.ErrNoSlug):
		return StageNoSlug
	case errors.Is(err, fetcher.ErrFetchPage):
		return StageFetchPageFailed
	case errors.Is(err, fetcher.ErrNoDownloadLink):
		return StageNoLink
	case errors.Is(err, fetcher.ErrWrite):
		return StageWriteFailed
	}
	return StageDownloadFailed
}
