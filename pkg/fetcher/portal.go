package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/energydata/aep/internal/logger"
	"github.com/energydata/aep/internal/version"
	"github.com/energydata/aep/pkg/catalog"
)

// DefaultBaseURL is the public portal.
const DefaultBaseURL = "https://africa-energy-portal.org"

// DefaultEndpoint is the data endpoint path relative to the base URL.
const DefaultEndpoint = "get-database-data"

// Chrome user agent; the portal serves challenge pages to unknown agents.
const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

const maxBodySize = 64 << 20

// Config holds configuration for the portal client.
type Config struct {
	BaseURL   string
	Endpoint  string
	UserAgent string
	Timeout   time.Duration
	// Delay is slept after every completed request.
	Delay time.Duration
	// Catalog, when set, restricts Fetch to the indicators it declares.
	Catalog *catalog.Catalog
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL:   DefaultBaseURL,
		Endpoint:  DefaultEndpoint,
		UserAgent: defaultUserAgent + " " + version.Product(),
		Timeout:   60 * time.Second,
		Delay:     2 * time.Second,
	}
}

// PortalClient posts indicator queries to the portal using Colly.
// It implements the Fetcher interface.
type PortalClient struct {
	config    Config
	endpoint  string
	collector *colly.Collector
}

// NewPortal creates a portal client. A single limit rule with parallelism 1
// is installed on the collector, so requests are serialized and followed by
// Config.Delay even when the client is shared.
func NewPortal(cfg Config) (*PortalClient, error) {
	def := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = def.Endpoint
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.Delay < 0 {
		return nil, fmt.Errorf("delay must not be negative: %s", cfg.Delay)
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", cfg.BaseURL)
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	c := colly.NewCollector(
		colly.UserAgent(cfg.UserAgent),
		colly.AllowURLRevisit(),
		colly.MaxBodySize(maxBodySize),
	)
	c.ParseHTTPErrorResponse = true
	c.SetRequestTimeout(cfg.Timeout)
	if err := c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: 1,
		Delay:       cfg.Delay,
	}); err != nil {
		return nil, fmt.Errorf("install limit rule: %w", err)
	}

	logger.Debug("portal client configured",
		"base_url", cfg.BaseURL,
		"endpoint", cfg.Endpoint,
		"timeout", cfg.Timeout,
		"delay", cfg.Delay)

	return &PortalClient{
		config:    cfg,
		endpoint:  ResolveLink(cfg.BaseURL+"/", cfg.Endpoint),
		collector: c,
	}, nil
}

// BaseURL returns the configured portal base URL without a trailing slash.
func (p *PortalClient) BaseURL() string {
	return p.config.BaseURL
}

// Fetch posts one indicator query and decodes the response.
func (p *PortalClient) Fetch(ctx context.Context, spec catalog.IndicatorSpec, countries []string, years []int) ([]MetricObject, error) {
	if err := validateRequest(spec, countries, years); err != nil {
		return nil, err
	}
	if p.config.Catalog != nil && !p.config.Catalog.Contains(spec) {
		return nil, fmt.Errorf("%w: %s is not in the catalog", ErrInvalidRequest, spec)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	form := EncodeForm(spec, countries, years)
	logger.DebugContext(ctx, "portal fetch starting",
		"indicator", spec.IndicatorName,
		"endpoint", p.endpoint,
		"form_size", len(form))

	// The clone shares the backend (and so the limit rule) but has its own
	// callbacks.
	c := p.collector.Clone()
	c.Context = ctx

	var (
		status      int
		contentType string
		body        []byte
	)
	c.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		contentType = r.Headers.Get("Content-Type")
		body = r.Body
	})

	hdr := http.Header{}
	hdr.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	hdr.Set("Accept", "application/json, text/plain, */*")
	hdr.Set("Origin", p.config.BaseURL)
	hdr.Set("Referer", p.config.BaseURL+"/database")
	hdr.Set("X-Requested-With", "XMLHttpRequest")

	start := time.Now()
	if err := c.Request(http.MethodPost, p.endpoint, strings.NewReader(form), nil, hdr); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	logger.DebugContext(ctx, "portal fetch response received",
		"indicator", spec.IndicatorName,
		"status", status,
		"content_type", contentType,
		"body_size", len(body),
		"elapsed", time.Since(start))

	if status < 200 || status > 299 {
		return nil, &StatusError{Code: status, Body: truncate(strings.TrimSpace(string(body)), 256)}
	}

	return Decode(body, contentType)
}

// Close releases resources.
func (p *PortalClient) Close() error {
	return nil
}

// Type returns the fetcher type.
func (p *PortalClient) Type() string {
	return "portal"
}

// EncodeForm builds the urlencoded request body for one indicator.
func EncodeForm(spec catalog.IndicatorSpec, countries []string, years []int) string {
	form := url.Values{}
	form.Set("mainGroup", spec.Sector)
	form.Add("mainIndicator[]", spec.SubSector)
	form.Add("mainIndicatorValue[]", spec.IndicatorName)
	for _, y := range years {
		form.Add("year[]", strconv.Itoa(y))
	}
	for _, name := range countries {
		form.Add("name[]", name)
	}
	return form.Encode()
}
