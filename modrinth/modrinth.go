// Package modrinth talks to the Modrinth mod distribution service.
//
// Every remote call either succeeds or fails with an error wrapping exactly
// one of ErrTransport, ErrParse or ErrNotFound. Callers must treat all three
// as "unavailable".
package modrinth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	DefaultAPIURL  = "https://api.modrinth.com/v2"
	DefaultSiteURL = "https://modrinth.com"

	// LoaderFabric is the default loader channel of listing pages.
	LoaderFabric = "fabric"
)

var (
	ErrTransport = errors.New("remote request failed")
	ErrParse     = errors.New("malformed remote response")
	ErrNotFound  = errors.New("remote project not found")
)

// Don’t read JSON documents larger than 1MiB.
const maxDocSize = 1024 * 1024

// Project is the subset of project metadata used for installs.
type Project struct {
	ID           string   `json:"id"`
	Slug         string   `json:"slug"`
	Title        string   `json:"title"`
	GameVersions []string `json:"game_versions"`
	Loaders      []string `json:"loaders"`
}

// Supports reports whether version is listed verbatim in the project's
// game versions. There is no range or prefix matching.
func (p *Project) Supports(version string) bool {
	if p == nil {
		return false
	}
	for _, v := range p.GameVersions {
		if v == version {
			return true
		}
	}
	return false
}

// Client is a Modrinth API and website client.
type Client struct {
	// APIURL is the API base, e.g. DefaultAPIURL.
	APIURL string
	// SiteURL is the website base, e.g. DefaultSiteURL.
	SiteURL string
	// UserAgent is sent with every request if set.
	UserAgent string

	Client *http.Client
}

// NewClient returns a client for the public service.
func NewClient(c *http.Client) *Client {
	return &Client{
		APIURL:  DefaultAPIURL,
		SiteURL: DefaultSiteURL,
		Client:  c,
	}
}

// ProjectURL returns the metadata endpoint for a project id or slug.
func (c *Client) ProjectURL(id string) string {
	base := strings.TrimRight(c.APIURL, "/")
	return fmt.Sprintf("%s/project/%s", base, url.PathEscape(id))
}

// VersionsPageURL returns the website listing of project versions
// filtered by loader and game version.
func (c *Client) VersionsPageURL(slug, loader, gameVersion string) string {
	base := strings.TrimRight(c.SiteURL, "/")
	u := "%s/mod/%s/versions?l=%s&g=%s"
	return fmt.Sprintf(u, base, url.PathEscape(slug), url.QueryEscape(loader), url.QueryEscape(gameVersion))
}

// Project fetches project metadata by id or slug.
func (c *Client) Project(ctx context.Context, id string) (*Project, error) {
	u := c.ProjectURL(id)
	var p Project
	if err := c.getJSON(ctx, u, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Get issues a GET request for rawurl. Transport failures and non-2xx
// responses are returned as errors; on success the caller owns the body.
func (c *Client) Get(ctx context.Context, rawurl string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawurl, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	log.Debug().Str("url", rawurl).Msg("get")
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		closeBody(resp.Body, rawurl)
		if resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, rawurl)
		}
		return nil, fmt.Errorf("%w: %s: %s", ErrTransport, rawurl, resp.Status)
	}
	return resp, nil
}

func (c *Client) getJSON(ctx context.Context, rawurl string, v interface{}) error {
	resp, err := c.Get(ctx, rawurl)
	if err != nil {
		return err
	}
	defer closeBody(resp.Body, rawurl)

	lr := io.LimitReader(resp.Body, maxDocSize)
	data, err := io.ReadAll(lr)
	if err != nil {
		return fmt.Errorf("%w: read %s: %v", ErrTransport, rawurl, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrParse, rawurl, err)
	}
	return nil
}

func (c *Client) httpClient() *http.Client {
	if c.Client != nil {
		return c.Client
	}
	return http.DefaultClient
}

func closeBody(r io.Closer, rawurl string) {
	if err := r.Close(); err != nil {
		log.Warn().Err(err).Str("url", rawurl).Msg("close body")
	}
}

// Unavailable reports whether err is one of the tagged remote failures.
func Unavailable(err error) bool {
	return errors.Is(err, ErrTransport) ||
		errors.Is(err, ErrParse) ||
		errors.Is(err, ErrNotFound)
}
