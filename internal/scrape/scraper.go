// Package scrape fetches and flattens website text for model prompts.
package scrape

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// Domain errors for scraping.
var (
	ErrInvalidURL  = errors.New("invalid website url")
	ErrFetchFailed = errors.New("website fetch failed")
	ErrNotHTML     = errors.New("website did not return html")
)

const (
	fetchTimeout    = 15 * time.Second
	maxContentChars = 5000
	userAgent       = "Mozilla/5.0 (compatible; LeadScopeBot/1.0)"
)

// System defines the public contract for website scraping.
type System interface {
	FetchText(ctx context.Context, rawURL string) (string, error)
}

type scraper struct {
	http   *http.Client
	logger *slog.Logger
}

// New creates a scraper implementing the System interface.
func New(logger *slog.Logger) System {
	return &scraper{
		http:   &http.Client{Timeout: fetchTimeout},
		logger: logger.With("system", "scrape"),
	}
}

// NormalizeURL ensures a scheme is present, defaulting to https.
func NormalizeURL(rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", ErrInvalidURL
	}
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		rawURL = "https://" + rawURL
	}

	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return "", fmt.Errorf("%w: %s", ErrInvalidURL, rawURL)
	}
	return parsed.String(), nil
}

// FetchText downloads a page and returns its visible text, whitespace
// collapsed and capped in length.
func (s *scraper) FetchText(ctx context.Context, rawURL string) (string, error) {
	normalized, err := NormalizeURL(rawURL)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, normalized, nil)
	if err != nil {
		return "", fmt.Errorf("build fetch request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	res, err := s.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		return "", fmt.Errorf("%w: status %d", ErrFetchFailed, res.StatusCode)
	}

	contentType := res.Header.Get("Content-Type")
	if contentType != "" && !strings.Contains(contentType, "html") {
		return "", fmt.Errorf("%w: %s", ErrNotHTML, contentType)
	}

	doc, err := html.Parse(res.Body)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	text := Flatten(doc)
	if len(text) > maxContentChars {
		text = text[:maxContentChars]
	}

	s.logger.Debug("website scraped", "url", normalized, "chars", len(text))
	return text, nil
}

// Flatten walks an HTML tree and joins its visible text nodes, skipping
// script, style, and markup-only regions.
func Flatten(doc *html.Node) string {
	var parts []string

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "template", "iframe":
				return
			}
		}
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				parts = append(parts, text)
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}
