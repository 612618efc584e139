// Package drugbank implements the authenticated structured-API source.
package drugbank

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/FlosMume/CareMind/internal/domain"
	"github.com/FlosMume/CareMind/internal/retry"
	"github.com/FlosMume/CareMind/internal/source"
)

const (
	sourceName = "DrugBank"

	defaultBaseURL     = "https://api.drugbank.com/v1"
	defaultTimeout     = 20 * time.Second
	defaultMinInterval = 1 * time.Second

	// maxInteractions caps the interaction summary to bound payload size.
	maxInteractions = 30
)

// Options configures the API client; zero values fall back to defaults.
type Options struct {
	APIKey      string
	BaseURL     string
	Timeout     time.Duration
	MinInterval time.Duration
	Retry       retry.Config
}

// Client queries the DrugBank REST API and picks the target fields from
// nested response paths. Without an API key the client is permanently
// unavailable for the whole run.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	retryCfg   retry.Config
	logger     *slog.Logger
}

var _ source.Source = (*Client)(nil)

// NewClient builds a reusable API client from configuration.
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
		apiKey:     opts.APIKey,
		baseURL:    strings.TrimSuffix(opts.BaseURL, "/"),
		httpClient: &http.Client{Timeout: opts.Timeout},
		limiter:    rate.NewLimiter(rate.Every(opts.MinInterval), 1),
		retryCfg:   opts.Retry,
		logger:     logger,
	}
}

// Available reports whether a credential is configured. Checked once at
// startup; an unavailable client never joins the fallback chain.
func (c *Client) Available() bool {
	return c.apiKey != ""
}

// Name identifies this source in record provenance.
func (c *Client) Name() string {
	return sourceName
}

// Fetch looks the drug up by name, pulls its detail document, and returns
// the picked fields. Missing keys degrade to empty fields, a missing drug
// to a nil result.
func (c *Client) Fetch(ctx context.Context, drugName string) (*source.Result, error) {
	detail, err := c.queryByName(ctx, drugName)
	if err != nil {
		return nil, err
	}
	if detail == nil {
		return nil, nil
	}

	fields := pickFields(detail)
	return &source.Result{Fields: &fields}, nil
}

// queryByName searches by name, takes the first match, and fetches its
// detail document when the search hit only carries an identifier.
func (c *Client) queryByName(ctx context.Context, drugName string) (map[string]any, error) {
	var hits json.RawMessage
	if err := c.getJSON(ctx, "/drugs", url.Values{"name": {drugName}}, &hits); err != nil {
		return nil, err
	}

	first := firstObject(hits)
	if first == nil {
		return nil, nil
	}

	id, _ := firstNonEmpty(first, "id", "drugbank_id").(string)
	if id == "" {
		// The search hit already carries the detail document.
		return first, nil
	}

	var detail map[string]any
	if err := c.getJSON(ctx, "/drugs/"+url.PathEscape(id), nil, &detail); err != nil {
		return nil, err
	}
	return detail, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, v any) error {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var body []byte
	err := retry.Do(ctx, c.retryCfg, sourceName, func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
			return retry.Transientf("drugbank %s: %s", resp.Status, strings.TrimSpace(string(snippet)))
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return retry.Transient(err)
		}
		return nil
	}, func(attempt int, err error, nextDelay time.Duration) {
		c.logger.Debug("retrying drugbank request", "path", path, "attempt", attempt, "delay", nextDelay, "error", err)
	})
	if err != nil {
		return err
	}

	// Malformed payloads are never retried.
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode drugbank response: %w", err)
	}
	return nil
}

// firstObject unwraps a search response that may be either a single object
// or a list of hits.
func firstObject(raw json.RawMessage) map[string]any {
	if len(raw) == 0 {
		return nil
	}

	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj
	}

	var list []map[string]any
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return list[0]
	}
	return nil
}

// pickFields extracts the target fields from a detail document, tolerating
// absent keys. Interaction entries are summarized as partner-description
// pairs, capped to keep the cell printable.
func pickFields(detail map[string]any) domain.FieldSet {
	fs := domain.FieldSet{
		Indications:       stringValue(firstNonEmpty(detail, "indication", "indications")),
		Contraindications: stringValue(detail["contraindications"]),
		PregnancyCategory: stringValue(firstNonEmpty(detail, "pregnancy_category", "fda_pregnancy_category")),
	}

	if list, ok := detail["drug_interactions"].([]any); ok {
		fs.Interactions = summarizeInteractions(list)
	}

	return fs
}

func summarizeInteractions(list []any) string {
	var snippets []string
	for _, item := range list {
		if len(snippets) == maxInteractions {
			break
		}
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}

		desc := stringValue(firstNonEmpty(entry, "description", "text"))
		if desc == "" {
			continue
		}
		partner := stringValue(firstNonEmpty(entry, "name", "drug"))
		snippets = append(snippets, partner+": "+desc)
	}
	return strings.Join(snippets, "；")
}

func firstNonEmpty(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			if s, isStr := v.(string); isStr && s == "" {
				continue
			}
			return v
		}
	}
	return nil
}

func stringValue(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}
