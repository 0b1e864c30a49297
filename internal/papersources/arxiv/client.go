// Package arxiv provides a client for the arXiv Atom query API.
package arxiv

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/helixir/research-ideation-service/internal/domain"
	"github.com/helixir/research-ideation-service/internal/observability"
	"github.com/helixir/research-ideation-service/internal/papersources"
)

const (
	// DefaultBaseURL is the default arXiv API base URL.
	DefaultBaseURL = "https://export.arxiv.org/api"

	// DefaultRateLimit is the default rate limit (3 requests per second).
	DefaultRateLimit = 3.0

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 10 * time.Second
)

// Config holds configuration for the arXiv client.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	RateLimit  float64
	MaxRetries int
	UserAgent  string
	Enabled    bool
	Metrics    *observability.Metrics
}

// applyDefaults sets default values for unset configuration fields.
func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.RateLimit == 0 {
		c.RateLimit = DefaultRateLimit
	}
}

// Client implements the papersources.PaperSource interface for arXiv.
type Client struct {
	config     Config
	httpClient *papersources.HTTPClient
}

// Ensure Client implements PaperSource interface.
var _ papersources.PaperSource = (*Client)(nil)

// New creates a new arXiv client with the given configuration.
func New(cfg Config) *Client {
	cfg.applyDefaults()

	httpClient := papersources.NewHTTPClient(papersources.HTTPClientConfig{
		Name:       string(domain.SourceTypeArXiv),
		Timeout:    cfg.Timeout,
		RateLimit:  cfg.RateLimit,
		MaxRetries: cfg.MaxRetries,
		UserAgent:  cfg.UserAgent,
		Metrics:    cfg.Metrics,
	})

	return NewWithHTTPClient(cfg, httpClient)
}

// NewWithHTTPClient creates a new arXiv client with a custom HTTP client.
func NewWithHTTPClient(cfg Config, httpClient *papersources.HTTPClient) *Client {
	cfg.applyDefaults()

	return &Client{
		config:     cfg,
		httpClient: httpClient,
	}
}

// Search queries arXiv for up to limit papers matching query.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]domain.RawPaper, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	searchURL, err := c.buildSearchURL(query, domain.ClampProviderLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("building search URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return nil, domain.NewExternalAPIError(c.Name(), resp.StatusCode, string(body), nil)
	}

	// Parse the Atom XML response (limit body to 10MB).
	var feed Feed
	if err := xml.NewDecoder(io.LimitReader(resp.Body, 10<<20)).Decode(&feed); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	papers := make([]domain.RawPaper, 0, len(feed.Entries))
	for i := range feed.Entries {
		if paper, ok := entryToRawPaper(&feed.Entries[i]); ok {
			papers = append(papers, paper)
		}
	}
	return papers, nil
}

// Name returns the source identifier.
func (c *Client) Name() string {
	return string(domain.SourceTypeArXiv)
}

// IsEnabled returns whether this source is enabled for searches.
func (c *Client) IsEnabled() bool {
	return c.config.Enabled
}

// buildSearchURL constructs the query API URL, searching all fields.
func (c *Client) buildSearchURL(query string, limit int) (string, error) {
	baseURL, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parsing base URL: %w", err)
	}

	queryURL := baseURL.JoinPath("query")
	q := url.Values{}
	q.Set("search_query", "all:"+query)
	q.Set("start", "0")
	q.Set("max_results", strconv.Itoa(limit))
	queryURL.RawQuery = q.Encode()

	return queryURL.String(), nil
}

// entryToRawPaper converts an Atom entry. Entries without a title are skipped.
func entryToRawPaper(entry *Entry) (domain.RawPaper, bool) {
	title := normalizeWhitespace(entry.Title)
	if title == "" {
		return domain.RawPaper{}, false
	}

	return domain.RawPaper{
		Title:   title,
		Summary: normalizeWhitespace(entry.Summary),
		Year:    strconv.Itoa(yearFromPublished(entry.Published)),
	}, true
}

// yearFromPublished extracts the year from an RFC 3339 timestamp, falling
// back to domain.FallbackYear.
func yearFromPublished(published string) int {
	published = strings.TrimSpace(published)
	if published == "" {
		return domain.FallbackYear
	}
	t, err := time.Parse(time.RFC3339, published)
	if err != nil {
		return domain.FallbackYear
	}
	return t.Year()
}

// normalizeWhitespace trims and collapses multiple whitespace characters.
func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
