// Package scraper fetches a website and pulls a bounded set of marketing fields out of its HTML.
package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

const (
	DefaultTimeout = 30 * time.Second
	maxBodyBytes   = 5 << 20

	maxFeatures       = 10
	maxTestimonials   = 5
	maxBodyTextRunes  = 2000
	maxHeroRunes      = 300
	maxFeatureRunes   = 200
	maxPricingRunes   = 500
	maxTestimonyRunes = 300
)

// ScrapedContent is the extractor output. Any field may be empty.
type ScrapedContent struct {
	URL             string   `json:"url"`
	Title           string   `json:"title"`
	MetaDescription string   `json:"metaDescription"`
	HeroText        string   `json:"heroText"`
	Features        []string `json:"features"`
	Pricing         string   `json:"pricing"`
	Testimonials    []string `json:"testimonials"`
	BodyText        string   `json:"bodyText"`
}

// Extractor fetches rawURL and returns the ScrapedContent JSON string.
type Extractor interface {
	Extract(ctx context.Context, rawURL string) (string, error)
}

// HTTPExtractor is the production Extractor.
type HTTPExtractor struct {
	client *http.Client
	logger *zap.Logger
}

// NewHTTPExtractor returns an extractor using client, or a client with DefaultTimeout when nil.
func NewHTTPExtractor(client *http.Client, logger *zap.Logger) *HTTPExtractor {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPExtractor{client: client, logger: logger}
}

func (e *HTTPExtractor) Extract(ctx context.Context, rawURL string) (string, error) {
	target := NormalizeURL(rawURL)
	content, err := e.fetch(ctx, target)
	if err != nil {
		e.logger.Warn("Website extraction failed", zap.String("url", target), zap.Error(err))
		return "", err
	}
	out, err := json.Marshal(content)
	if err != nil {
		return "", &Error{Kind: KindParse, Err: err, Message: "Failed to encode website content"}
	}
	e.logger.Debug("Website extracted",
		zap.String("url", target),
		zap.Int("features", len(content.Features)),
		zap.Int("testimonials", len(content.Testimonials)))
	return string(out), nil
}

func (e *HTTPExtractor) fetch(ctx context.Context, target string) (*ScrapedContent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &Error{Kind: KindFetch, Err: err, Message: fmt.Sprintf("Invalid website URL %q", target)}
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fetchError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp.StatusCode)
	}

	body, err := charset.NewReader(io.LimitReader(resp.Body, maxBodyBytes), resp.Header.Get("Content-Type"))
	if err != nil {
		body = io.LimitReader(resp.Body, maxBodyBytes)
	}
	doc, err := html.Parse(body)
	if err != nil {
		return nil, &Error{Kind: KindParse, Err: err, Message: "Failed to parse website HTML: " + err.Error()}
	}

	content := extract(doc)
	content.URL = target
	return content, nil
}

// IsFetchableURL reports whether raw normalizes to an absolute http or https URL with a host.
func IsFetchableURL(raw string) bool {
	u, err := url.Parse(NormalizeURL(raw))
	if err != nil || u.Hostname() == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// NormalizeURL defaults the scheme to https and prefixes the host with "www." when it has
// none. IP literals, localhost and single-label hosts are left alone. Input that cannot be
// parsed is returned unchanged.
func NormalizeURL(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return raw
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return raw
	}
	host := u.Hostname()
	if strings.HasPrefix(host, "www.") || host == "localhost" || net.ParseIP(host) != nil || !strings.Contains(host, ".") {
		return u.String()
	}
	u.Host = "www." + u.Host
	return u.String()
}
