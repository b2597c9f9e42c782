package quotes

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"
)

const (
	DefaultURL   = "https://ru.citaty.net/temy/distsiplina/"
	DefaultClass = "quote__body"

	maxPageSize = 5 << 20
)

// Scraper extracts quotes from div elements carrying a marker class.
type Scraper struct {
	client *http.Client
	url    string
	class  string
}

func NewScraper(url, class string, timeout time.Duration) *Scraper {
	if url == "" {
		url = DefaultURL
	}
	if class == "" {
		class = DefaultClass
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Scraper{
		client: &http.Client{Timeout: timeout},
		url:    url,
		class:  class,
	}
}

func (s *Scraper) Fetch(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	req.Header.Set("User-Agent", "discipline-bot/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d from %s", ErrFetchFailed, resp.StatusCode, s.url)
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		return nil, fmt.Errorf("%w: parse page: %w", ErrFetchFailed, err)
	}

	return extractQuotes(doc, s.class), nil
}

func extractQuotes(doc *html.Node, class string) []string {
	var quotes []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "div" && hasClass(n, class) {
			var sb strings.Builder
			collectText(n, &sb)
			if text := strings.Join(strings.Fields(sb.String()), " "); text != "" {
				quotes = append(quotes, text)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return quotes
}

func collectText(n *html.Node, sb *strings.Builder) {
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
		return
	}
	if n.Type == html.ElementNode {
		switch n.Data {
		case "script", "style":
			return
		case "br", "p":
			sb.WriteByte(' ')
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, sb)
	}
}

func hasClass(n *html.Node, class string) bool {
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(attr.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}
