// Package fetcher locates and installs mod artifacts for a game version.
package fetcher

import (
	"context"
	"crypto/sha1"
	"crypto/sha512"
	"errors"
	"fmt"
	"hash"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/go-git/go-billy/v5"
	"github.com/rs/zerolog/log"

	"github.com/tie/modsync/modrinth"
	"github.com/tie/modsync/throttle"
)

// DownloadInterval is the pause after each installed mod. The remote
// service rate-limits downloads; this is not a tunable.
const DownloadInterval = 5 * time.Second

// Don’t read HTML pages larger than 4MiB.
const maxPageSize = 4 * 1024 * 1024

// Catalog resolves projects and serves pages and artifacts.
// *modrinth.Client implements it.
type Catalog interface {
	modrinth.ProjectSource
	VersionsPageURL(slug, loader, gameVersion string) string
	Get(ctx context.Context, rawurl string) (*http.Response, error)
}

// Installer downloads the artifact matching a game version into Files.
type Installer struct {
	Catalog Catalog
	Files   billy.Filesystem

	// Links finds the artifact link on the versions page.
	// DownloadButton is used if nil.
	Links LinkExtractor

	// Loader is the loader channel of the versions page.
	// modrinth.LoaderFabric is used if empty.
	Loader string

	// Throttle spaces out downloads. A DownloadInterval throttle
	// is created on first use if nil.
	Throttle *throttle.Throttle
}

// Result describes an installed artifact.
type Result struct {
	Slug     string
	PageURL  string
	Link     string
	Filename string
	Size     int64

	// Sums are informational "algo:hex" digests of the written file.
	Sums []string
}

// Install resolves the project slug, scrapes the versions page for the
// download link and writes the artifact to Files, replacing any file of
// the same name. Each stage fails with its own sentinel error; nothing is
// written unless the download succeeds.
func (in *Installer) Install(ctx context.Context, id, gameVersion string) (*Result, error) {
	p, err := in.Catalog.Project(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoSlug, err)
	}
	if p.Slug == "" {
		return nil, fmt.Errorf("%w: project %q has no slug", ErrNoSlug, id)
	}

	res := &Result{Slug: p.Slug}
	res.PageURL = in.Catalog.VersionsPageURL(p.Slug, in.loader(), gameVersion)

	link, err := in.findLink(ctx, res.PageURL)
	if err != nil {
		return res, err
	}
	res.Link = link

	name, err := fileName(link)
	if err != nil {
		return res, err
	}
	res.Filename = name

	th := in.throttle()
	if err := th.Wait(ctx); err != nil {
		return res, fmt.Errorf("%w: %w", ErrDownload, err)
	}
	size, sums, err := in.download(ctx, link, name)
	if err != nil {
		return res, err
	}
	res.Size = size
	res.Sums = sums
	th.Done()
	return res, nil
}

// Settle holds the caller for DownloadInterval after the last install.
// Install returns as soon as the artifact is written; callers settle once
// they have reported it. The next Install waits out any remainder.
func (in *Installer) Settle(ctx context.Context) error {
	return in.throttle().Wait(ctx)
}

func (in *Installer) loader() string {
	if in.Loader != "" {
		return in.Loader
	}
	return modrinth.LoaderFabric
}

func (in *Installer) links() LinkExtractor {
	if in.Links != nil {
		return in.Links
	}
	return DownloadButton
}

func (in *Installer) throttle() *throttle.Throttle {
	if in.Throttle == nil {
		in.Throttle = throttle.New(DownloadInterval)
	}
	return in.Throttle
}

func (in *Installer) findLink(ctx context.Context, pageURL string) (string, error) {
	resp, err := in.Catalog.Get(ctx, pageURL)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrFetchPage, err)
	}
	r := resp.Body
	defer closeBody(r, pageURL)

	lr := io.LimitReader(r, maxPageSize)
	root, err := html.Parse(lr)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrFetchPage, pageURL, err)
	}
	href, ok := in.links().ExtractLink(root)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNoDownloadLink, pageURL)
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrFetchPage, pageURL, err)
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("%w: bad href %q: %v", ErrNoDownloadLink, href, err)
	}
	return base.ResolveReference(ref).String(), nil
}

// fileName returns the last path segment of rawurl.
func fileName(rawurl string) (string, error) {
	u, err := url.Parse(rawurl)
	if err != nil {
		return "", fmt.Errorf("%w: bad link %q: %v", ErrNoDownloadLink, rawurl, err)
	}
	name := path.Base(u.Path)
	switch {
	case strings.HasSuffix(u.Path, "/"), name == ".", name == "..":
		return "", fmt.Errorf("%w: link %q has no file name", ErrNoDownloadLink, rawurl)
	case strings.Contains(name, `\`):
		return "", fmt.Errorf("%w: link %q has unsafe file name", ErrNoDownloadLink, rawurl)
	}
	return name, nil
}

func (in *Installer) download(ctx context.Context, rawurl, name string) (int64, []string, error) {
	resp, err := in.Catalog.Get(ctx, rawurl)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %w", ErrDownload, err)
	}
	r := resp.Body
	defer closeBody(r, rawurl)

	hashNames := []string{
		"sha1",
		"sha512",
	}
	hashes := []hash.Hash{
		sha1.New(),
		sha512.New(),
	}

	tmp, err := in.Files.TempFile(".", "."+name+".")
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrWrite, err)
	}
	tmpName := tmp.Name()

	ww := make([]io.Writer, 0, len(hashes)+1)
	for _, h := range hashes {
		ww = append(ww, h)
	}
	ww = append(ww, tmp)
	w := io.MultiWriter(ww...)

	size, copyErr := io.Copy(w, r)
	closeErr := tmp.Close()
	switch {
	case copyErr != nil:
		in.remove(tmpName)
		return 0, nil, fmt.Errorf("%w: %s: %v", ErrDownload, rawurl, copyErr)
	case closeErr != nil:
		in.remove(tmpName)
		return 0, nil, fmt.Errorf("%w: %v", ErrWrite, closeErr)
	}

	if err := in.Files.Remove(name); err != nil && !errors.Is(err, os.ErrNotExist) {
		in.remove(tmpName)
		return 0, nil, fmt.Errorf("%w: %v", ErrWrite, err)
	}
	if err := in.Files.Rename(tmpName, name); err != nil {
		in.remove(tmpName)
		return 0, nil, fmt.Errorf("%w: %v", ErrWrite, err)
	}

	sums := make([]string, len(hashes))
	for i, name := range hashNames {
		sums[i] = fmt.Sprintf("%s:%x", name, hashes[i].Sum(nil))
	}
	return size, sums, nil
}

func (in *Installer) remove(name string) {
	if err := in.Files.Remove(name); err != nil {
		log.Warn().Err(err).Str("file", name).Msg("remove temp file")
	}
}

func closeBody(r io.Closer, rawurl string) {
	if err := r.Close(); err != nil {
		log.Warn().Err(err).Str("url", rawurl).Msg("close body")
	}
}
