// Package runner drives archives through identification, mapping,
// the compatibility gate and installation, one at a time.
package runner

import (
	"context"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/rs/zerolog/log"

	"github.com/tie/modsync"
	"github.com/tie/modsync/fetcher"
	"github.com/tie/modsync/modinfo"
)

type (
	// NameResolver maps a mod identity to a remote identifier.
	NameResolver interface {
		Resolve(expected string) string
	}

	// CompatChecker is the compatibility gate. It must fail closed.
	CompatChecker interface {
		IsCompatible(ctx context.Context, id, version string) bool
	}

	// ArtifactInstaller installs the artifact of a compatible project.
	// Settle is called once per installed artifact, after it was reported.
	ArtifactInstaller interface {
		Install(ctx context.Context, id, gameVersion string) (*fetcher.Result, error)
		Settle(ctx context.Context) error
	}
)

// Runner processes every archive of Source sequentially.
type Runner struct {
	Source    billy.Filesystem
	Mappings  NameResolver
	Compat    CompatChecker
	Installer ArtifactInstaller
	Reporter  Reporter

	// Identify overrides modinfo.Identify.
	Identify func(fs billy.Filesystem, name string) (string, bool)
}

// Summary counts per-archive outcomes of a run.
type Summary struct {
	Archives     int
	Unidentified int
	Incompatible int
	Installed    int
	Failed       int
}

// ArchiveExt is the extension of mod archives.
const ArchiveExt = ".jar"

// Archives lists mod archives in the root of fs in name order.
func Archives(fs billy.Filesystem) ([]string, error) {
	fis, err := fs.ReadDir(".")
	if err != nil {
		return nil, err
	}
	var names []string
	for _, fi := range fis {
		if fi.IsDir() {
			continue
		}
		if !strings.EqualFold(filepath.Ext(fi.Name()), ArchiveExt) {
			continue
		}
		names = append(names, fi.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Run installs a compatible build of every archive for gameVersion.
// Per-archive failures are reported and skipped; Run only fails if the
// source cannot be listed or ctx is done.
func (r *Runner) Run(ctx context.Context, gameVersion string) (Summary, error) {
	var sum Summary
	names, err := Archives(r.Source)
	if err != nil {
		return sum, err
	}
	if len(names) == 0 {
		r.report(Event{Stage: StageNoArchives, GameVersion: gameVersion})
		return sum, nil
	}
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		sum.Archives++
		switch r.process(ctx, name, gameVersion) {
		case StageUnidentified:
			sum.Unidentified++
		case StageIncompatible:
			sum.Incompatible++
		case StageInstalled:
			sum.Installed++
		default:
			sum.Failed++
		}
	}
	return sum, nil
}

// process runs one archive through the pipeline and returns its final stage.
func (r *Runner) process(ctx context.Context, name, gameVersion string) Stage {
	mod := modsync.Mod{Archive: name}
	ev := Event{Mod: mod, GameVersion: gameVersion}

	id, ok := r.identify(name)
	if !ok {
		ev.Stage = StageUnidentified
		r.report(ev)
		return ev.Stage
	}
	mod.ID = id
	mod.RemoteID = r.resolve(id)
	ev.Mod = mod
	ev.Stage = StageIdentified
	r.report(ev)

	if !r.Compat.IsCompatible(ctx, mod.RemoteID, gameVersion) {
		ev.Stage = StageIncompatible
		r.report(ev)
		return ev.Stage
	}
	ev.Stage = StageCompatible
	r.report(ev)

	res, err := r.Installer.Install(ctx, mod.RemoteID, gameVersion)
	ev.Result = res
	if err != nil {
		log.Debug().Err(err).Str("archive", name).Str("project", mod.RemoteID).Msg("install")
		ev.Stage = installStage(err)
		ev.Err = err
		r.report(ev)
		return ev.Stage
	}
	ev.Stage = StageInstalled
	r.report(ev)
	if err := r.Installer.Settle(ctx); err != nil {
		log.Debug().Err(err).Str("archive", name).Msg("settle interrupted")
	}
	return ev.Stage
}

func (r *Runner) identify(name string) (string, bool) {
	if r.Identify != nil {
		return r.Identify(r.Source, name)
	}
	return modinfo.Identify(r.Source, name)
}

func (r *Runner) resolve(id string) string {
	if r.Mappings == nil {
		return id
	}
	return r.Mappings.Resolve(id)
}

func (r *Runner) report(ev Event) {
	if r.Reporter != nil {
		r.Reporter.Report(ev)
	}
}
