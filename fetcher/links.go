package fetcher

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/andybalholm/cascadia"
)

// LinkExtractor finds the artifact link on a versions page.
// Implementations decouple the install pipeline from the page markup.
type LinkExtractor interface {
	ExtractLink(root *html.Node) (string, bool)
}

// SelectorExtractor returns attribute Attr of the first element
// matching Selector.
type SelectorExtractor struct {
	Selector cascadia.Selector
	Attr     string
}

// DownloadButton matches the primary download control of Modrinth
// versions pages.
var DownloadButton = &SelectorExtractor{
	Selector: cascadia.MustCompile(`a[class*="download-button"]`),
	Attr:     "href",
}

func (e *SelectorExtractor) ExtractLink(root *html.Node) (string, bool) {
	n := e.Selector.MatchFirst(root)
	if n == nil || n.Type != html.ElementNode {
		return "", false
	}
	for _, attr := range n.Attr {
		if attr.Namespace != "" {
			continue
		}
		if attr.Key != e.Attr {
			continue
		}
		v := strings.TrimSpace(attr.Val)
		return v, v != ""
	}
	return "", false
}

// LinkExtractorFunc adapts a function to LinkExtractor.
type LinkExtractorFunc func(root *html.Node) (string, bool)

func (f LinkExtractorFunc) ExtractLink(root *html.Node) (string, bool) {
	return f(root)
}
