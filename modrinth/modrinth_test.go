package modrinth_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tie/modsync/modrinth"
)

func newClient(t *testing.T, h http.HandlerFunc) *modrinth.Client {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)
	c := modrinth.NewClient(server.Client())
	c.APIURL = server.URL + "/v2"
	c.SiteURL = server.URL
	c.UserAgent = "modsync-test"
	return c
}

func serveJSON(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
}

func TestProject(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/project/sodium", r.URL.Path)
		assert.Equal(t, "modsync-test", r.Header.Get("User-Agent"))
		serveJSON(`{"id":"AANobbMI","slug":"sodium","title":"Sodium","game_versions":["1.20.1"],"loaders":["fabric"]}`)(w, r)
	})

	p, err := c.Project(context.Background(), "sodium")
	require.NoError(t, err)
	assert.Equal(t, "AANobbMI", p.ID)
	assert.Equal(t, "sodium", p.Slug)
	assert.Equal(t, []string{"1.20.1"}, p.GameVersions)
}

func TestProject_EscapesID(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/project/Example Mod", r.URL.Path)
		assert.Equal(t, "/v2/project/Example%20Mod", r.URL.EscapedPath())
		serveJSON(`{}`)(w, r)
	})

	_, err := c.Project(context.Background(), "Example Mod")
	require.NoError(t, err)
}

func TestProject_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    error
	}{
		{
			name: "not found",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
			want: modrinth.ErrNotFound,
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			want: modrinth.ErrTransport,
		},
		{
			name:    "malformed body",
			handler: serveJSON(`{"slug":`),
			want:    modrinth.ErrParse,
		},
		{
			name:    "wrong shape",
			handler: serveJSON(`{"game_versions":"1.20.1"}`),
			want:    modrinth.ErrParse,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newClient(t, tt.handler)

			p, err := c.Project(context.Background(), "x")
			require.Error(t, err)
			assert.Nil(t, p)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.True(t, modrinth.Unavailable(err))
		})
	}
}

func TestProject_TransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	c := modrinth.NewClient(server.Client())
	c.APIURL = server.URL
	server.Close()

	_, err := c.Project(context.Background(), "x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, modrinth.ErrTransport))
}

func TestVersionsPageURL(t *testing.T) {
	c := modrinth.NewClient(nil)

	got := c.VersionsPageURL("sodium", modrinth.LoaderFabric, "1.20.1")
	assert.Equal(t, "https://modrinth.com/mod/sodium/versions?l=fabric&g=1.20.1", got)

	c.SiteURL = "http://localhost:8080/"
	got = c.VersionsPageURL("sodium", "quilt", "1.20 pre")
	assert.Equal(t, "http://localhost:8080/mod/sodium/versions?l=quilt&g=1.20+pre", got)
}

func TestIsCompatible(t *testing.T) {
	c := newClient(t, serveJSON(`{"game_versions":["1.19.2","1.20.1"]}`))
	r := modrinth.Resolver{Projects: c}
	ctx := context.Background()

	assert.True(t, r.IsCompatible(ctx, "sodium", "1.20.1"))
	assert.False(t, r.IsCompatible(ctx, "sodium", "1.20.0"))
	assert.False(t, r.IsCompatible(ctx, "sodium", "1.20"), "no prefix matching")
	assert.False(t, r.IsCompatible(ctx, "sodium", ""))
}

func TestIsCompatible_FailClosed(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"missing field", serveJSON(`{"slug":"sodium"}`)},
		{"null versions", serveJSON(`{"game_versions":null}`)},
		{"not found", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNotFound) }},
		{"unparseable", serveJSON(`<html></html>`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := modrinth.Resolver{Projects: newClient(t, tt.handler)}
			assert.False(t, r.IsCompatible(context.Background(), "sodium", "1.20.1"))
		})
	}
}

func TestIsCompatible_TransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	c := modrinth.NewClient(server.Client())
	c.APIURL = server.URL
	server.Close()

	r := modrinth.Resolver{Projects: c}
	ok, err := r.Check(context.Background(), "sodium", "1.20.1")
	assert.False(t, ok)
	assert.True(t, errors.Is(err, modrinth.ErrTransport))
	assert.False(t, r.IsCompatible(context.Background(), "sodium", "1.20.1"))
}
