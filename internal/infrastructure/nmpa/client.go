// Package nmpa implements the online search-and-scrape source against the
// NMPA data-search site.
package nmpa

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/FlosMume/CareMind/internal/retry"
	"github.com/FlosMume/CareMind/internal/source"
	"github.com/FlosMume/CareMind/internal/textenc"
)

const (
	sourceName = "NMPA (online)"

	defaultBaseURL     = "https://www.nmpa.gov.cn/datasearch/"
	defaultTimeout     = 15 * time.Second
	defaultMinInterval = 1200 * time.Millisecond

	userAgent = "Mozilla/5.0 (compatible; CareMindDrugBot/1.0; +https://example.org)"
)

var multiNewlineRe = regexp.MustCompile(`\n+`)

// Options configures the online client; zero values fall back to defaults.
type Options struct {
	BaseURL     string
	Timeout     time.Duration
	MinInterval time.Duration
	Retry       retry.Config
}

// Client fetches package-insert detail pages and extracts their main
// content. The search step is deliberately inert: the site exposes no
// stable public search API, so the client reports no candidates rather
// than guessing at detail-page URLs.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	retryCfg   retry.Config
	logger     *slog.Logger
}

var _ source.Source = (*Client)(nil)

// NewClient wires an HTTP client with the site politeness limiter.
func NewClient(opts Options, logger *slog.Logger) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MinInterval <= 0 {
		opts.MinInterval = defaultMinInterval
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		httpClient: &http.Client{Timeout: opts.Timeout},
		baseURL:    strings.TrimSuffix(opts.BaseURL, "/") + "/",
		limiter:    rate.NewLimiter(rate.Every(opts.MinInterval), 1),
		retryCfg:   opts.Retry,
		logger:     logger,
	}
}

// Name identifies this source in record provenance.
func (c *Client) Name() string {
	return sourceName
}

// Fetch searches for label detail pages and returns the first page whose
// extracted text is non-empty; no candidates means the source is absent
// for this name.
func (c *Client) Fetch(ctx context.Context, drugName string) (*source.Result, error) {
	urls, err := c.searchLabelURLs(ctx, drugName)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", drugName, err)
	}

	for _, u := range urls {
		text, err := c.fetchLabelText(ctx, u)
		if err != nil {
			c.logger.Debug("label page fetch failed", "url", u, "error", err)
			continue
		}
		if text != "" {
			return &source.Result{Text: text}, nil
		}
	}

	return nil, nil
}

// searchLabelURLs probes the search entry page and returns candidate
// detail-page URLs. The front end drives search through volatile async
// endpoints, so after confirming the site is reachable this returns no
// candidates; the fallback chain then moves on to the next source.
func (c *Client) searchLabelURLs(ctx context.Context, drugName string) ([]string, error) {
	if _, _, err := c.get(ctx, c.baseURL+"home-index.html"); err != nil {
		c.logger.Debug("search entry page unreachable", "drug", drugName, "error", err)
		return nil, nil
	}

	return nil, nil
}

// fetchLabelText downloads a detail page and extracts its main content as
// plain text, stripped of markup.
func (c *Client) fetchLabelText(ctx context.Context, pageURL string) (string, error) {
	body, contentType, err := c.get(ctx, pageURL)
	if err != nil {
		return "", err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(textenc.DecodeWithContentType(body, contentType)))
	if err != nil {
		return "", fmt.Errorf("parse document: %w", err)
	}

	container := doc.Find("div.article")
	if container.Length() == 0 {
		container = doc.Find("#article")
	}
	if container.Length() == 0 {
		container = doc.Selection
	}

	text := multiNewlineRe.ReplaceAllString(container.Text(), "\n")
	return strings.TrimSpace(text), nil
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, string, error) {
	var (
		body        []byte
		contentType string
	)

	err := retry.Do(ctx, c.retryCfg, sourceName, func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("User-Agent", userAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return retry.Transientf("nmpa returned %s", resp.Status)
		}

		contentType = resp.Header.Get("Content-Type")
		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return retry.Transient(err)
		}
		return nil
	}, func(attempt int, err error, nextDelay time.Duration) {
		c.logger.Debug("retrying nmpa request", "url", rawURL, "attempt", attempt, "delay", nextDelay, "error", err)
	})

	return body, contentType, err
}
