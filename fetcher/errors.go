package fetcher

import "errors"

// Each install stage fails with its own error so that callers can
// report where an install stopped.
var (
	ErrNoSlug         = errors.New("project slug unavailable")
	ErrFetchPage      = errors.New("fetch versions page")
	ErrNoDownloadLink = errors.New("no download link found")
	ErrDownload       = errors.New("download failed")
	ErrWrite          = errors.New("write failed")
)
