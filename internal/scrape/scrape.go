// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scrape fetches web pages and extracts their readable text. It is
// the last content tier for profile assembly, used only when the provider
// can supply neither summaries nor page text.
// Implements: prd003-profile (R4, scraping tier);
//
//	docs/ARCHITECTURE.md § Content tiers.
package scrape

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"golang.org/x/time/rate"

	"github.com/pdiddy/entity-engine/pkg/types"
)

// browserUA mimics a desktop Chrome build. Sites that gate on the
// User-Agent usually serve plain bots a 403 or an empty shell.
const browserUA = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// simpleUA is retried after a 403 or 429. Some bot walls reject the full
// Chrome fingerprint but pass a plainer agent.
const simpleUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// maxBodyBytes bounds how much of a response body is read before parsing.
const maxBodyBytes = 5 << 20

const (
	defaultTimeout  = 15 * time.Second
	defaultMinChars = 100
	defaultMaxChars = 15000
	defaultPerHost  = 1.0
)

// contentSelectors are tried in order against the cleaned document. The
// first match wins; pages with none fall through to readability extraction
// and then to the whole body.
var contentSelectors = []string{
	"article",
	"[role=\"main\"]",
	"main",
	".article-content",
	".post-content",
	".entry-content",
	".content",
	"#content",
}

// Page is the readable content extracted from one URL.
type Page struct {
	URL   string
	Title string
	Text  string
}

// Scraper fetches pages politely: one limiter per host, a bounded body
// read, and no retries beyond the single user-agent downgrade.
type Scraper struct {
	HTTP     *http.Client
	MinChars int
	MaxChars int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	perHost  rate.Limit
}

// New builds a Scraper from configuration, applying defaults for unset
// fields.
func New(cfg types.ScrapeConfig) *Scraper {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	minChars := cfg.MinChars
	if minChars == 0 {
		minChars = defaultMinChars
	}
	maxChars := cfg.MaxChars
	if maxChars == 0 {
		maxChars = defaultMaxChars
	}
	perHost := cfg.RequestsPerSecond
	if perHost == 0 {
		perHost = defaultPerHost
	}
	return &Scraper{
		HTTP:     &http.Client{Timeout: timeout},
		MinChars: minChars,
		MaxChars: maxChars,
		limiters: make(map[string]*rate.Limiter),
		perHost:  rate.Limit(perHost),
	}
}

// Fetch downloads rawURL and extracts its readable text. Extraction failures
// are errors: the caller records the URL as unsuccessfully scraped, it never
// gets partial junk text.
func (s *Scraper) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid url %q", rawURL)
	}

	if err := s.limiter(u.Hostname()).Wait(ctx); err != nil {
		return nil, err
	}

	body, err := s.get(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	title, text, err := extract(body, u)
	if err != nil {
		return nil, err
	}

	text = collapseWhitespace(text)
	if len(text) < s.MinChars {
		return nil, fmt.Errorf("content too short (%d chars) for %s", len(text), rawURL)
	}
	if len(text) > s.MaxChars {
		text = text[:s.MaxChars]
	}

	return &Page{URL: rawURL, Title: title, Text: text}, nil
}

// get performs the HTTP fetch, downgrading the user agent once on 403/429.
func (s *Scraper) get(ctx context.Context, rawURL string) ([]byte, error) {
	resp, err := s.do(ctx, rawURL, browserUA)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests {
		resp.Body.Close()
		resp, err = s.do(ctx, rawURL, simpleUA)
		if err != nil {
			return nil, err
		}
	}
	defer resp.Body.Close()

	// LinkedIn and a few others answer bots with a non-standard 999.
	if resp.StatusCode == 999 {
		return nil, fmt.Errorf("bot protection (HTTP 999) for %s", rawURL)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", rawURL, err)
	}
	return body, nil
}

func (s *Scraper) do(ctx context.Context, rawURL, userAgent string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	return s.HTTP.Do(req)
}

// limiter returns the rate limiter for a host, creating it on first use.
func (s *Scraper) limiter(host string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.limiters[host]
	if !ok {
		l = rate.NewLimiter(s.perHost, 1)
		s.limiters[host] = l
	}
	return l
}

// extract pulls the page title and main text out of raw HTML. Explicit
// content containers win; pages without one go through readability's
// scoring, and the whole body is the last resort.
func extract(body []byte, u *url.URL) (title, text string, err error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", "", fmt.Errorf("parsing %s: %w", u, err)
	}

	title = pageTitle(doc)
	doc.Find("script,style,nav,footer,header,aside,iframe,noscript").Remove()

	for _, sel := range contentSelectors {
		if node := doc.Find(sel).First(); node.Length() > 0 {
			return title, node.Text(), nil
		}
	}

	if article, rerr := readability.FromReader(bytes.NewReader(body), u); rerr == nil && article.TextContent != "" {
		if title == "" {
			title = article.Title
		}
		return title, article.TextContent, nil
	}

	return title, doc.Find("body").Text(), nil
}

// pageTitle prefers the title element, falling back to og:title.
func pageTitle(doc *goquery.Document) string {
	title := strings.TrimSpace(doc.Find("title").First().Text())
	if len(title) >= 3 {
		return title
	}
	if og, ok := doc.Find(`meta[property="og:title"]`).First().Attr("content"); ok {
		if og = strings.TrimSpace(og); og != "" {
			return og
		}
	}
	return title
}

// collapseWhitespace folds all whitespace runs into single spaces.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
