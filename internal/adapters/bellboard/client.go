// Package bellboard implements the record source over the BellBoard export API.
package bellboard

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/okian/ringstats/internal/adapters/ratelimit"
	"github.com/okian/ringstats/internal/domain/model"
	"github.com/okian/ringstats/pkg/logger"
	"github.com/okian/ringstats/pkg/metrics"
)

// Default client configuration constants.
const (
	DefaultBaseURL      = "https://bb.ringingworld.co.uk"
	DefaultGuildID      = 17
	DefaultCountyRegion = "leicestershire"
	DefaultLength       = "quarter"
	DefaultPageSize     = 1000
	defaultTimeout      = 30 * time.Second
	defaultUserAgent    = "ringstats/1.0"
	exportPath          = "/export.php"
	maxBodyBytes        = 64 << 20
	xmlMediaType        = "application/xml"
	nanosPerMillisecond = 1e6
)

// Client fetches events from the export endpoint. All requests, from any
// goroutine, pass through one shared limiter.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	guildID      int
	countyRegion string
	length       string
	pageSize     int
	userAgent    string
	limiter      ratelimit.Limiter
	logger       logger.Logger
}

// NewClient creates a Client with configuration options.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient:   &http.Client{Timeout: defaultTimeout},
		baseURL:      DefaultBaseURL,
		guildID:      DefaultGuildID,
		countyRegion: DefaultCountyRegion,
		length:       DefaultLength,
		pageSize:     DefaultPageSize,
		userAgent:    defaultUserAgent,
		limiter:      ratelimit.NewFixedDelay(0),
		logger:       logger.Get().Named("bellboard"),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.baseURL = strings.TrimRight(c.baseURL, "/")
	return c
}

// PageSize returns the page size requested on every query.
func (c *Client) PageSize() int {
	return c.pageSize
}

// URL returns the export URL for q.
func (c *Client) URL(q model.Query) (string, error) {
	var params []string
	switch {
	case q.Kind == model.PersonalQuery:
		if strings.TrimSpace(q.Performer) == "" {
			return "", fmt.Errorf("%w: empty performer name", ErrUnsupportedQuery)
		}
		params = []string{
			"annual_totals",
			"length=" + url.QueryEscape(c.length),
			"ringer=" + encodeName(q.Performer),
			"year=" + strconv.Itoa(q.Year),
		}
	case q.Affiliation == model.Guild:
		params = []string{
			"association_id=" + strconv.Itoa(c.guildID),
			"year=" + strconv.Itoa(q.Year),
			"length=" + url.QueryEscape(c.length),
		}
	case q.Affiliation == model.County:
		params = []string{
			"region=" + url.QueryEscape(c.countyRegion),
			"year=" + strconv.Itoa(q.Year),
			"length=" + url.QueryEscape(c.length),
		}
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedQuery, q)
	}
	params = append(params, "pagesize="+strconv.Itoa(c.pageSize))

	return c.baseURL + exportPath + "?" + strings.Join(params, "&"), nil
}

// encodeName wraps a performer name in double quotes for an exact match and
// encodes it so internal spaces become a literal '+'.
func encodeName(name string) string {
	return url.QueryEscape(`"` + name + `"`)
}

// Fetch implements model.RecordSource. Non-200 responses and undecodable
// bodies are returned as errors wrapping ErrUnexpectedStatus or ErrDecode.
func (c *Client) Fetch(ctx context.Context, q model.Query) ([]model.Event, error) {
	target, err := c.URL(q)
	if err != nil {
		return nil, err
	}

	waitStart := time.Now()
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	metrics.RecordLimiterWait(float64(time.Since(waitStart).Nanoseconds()) / nanosPerMillisecond)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequest, err)
	}
	req.Header.Set("Accept", xmlMediaType)
	req.Header.Set("Content-Type", xmlMediaType)
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	latencyMs := float64(time.Since(start).Nanoseconds()) / nanosPerMillisecond
	if err != nil {
		metrics.RecordRequest(q.Label(), 0, latencyMs)
		c.logger.Warn(ctx, "request failed", logger.String("url", target), logger.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrRequest, err)
	}
	defer func() { _ = resp.Body.Close() }()
	metrics.RecordRequest(q.Label(), resp.StatusCode, latencyMs)

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		c.logger.Warn(ctx, "failed status code",
			logger.Int("status", resp.StatusCode),
			logger.String("url", target),
		)
		return nil, fmt.Errorf("%w: %d for %s", ErrUnexpectedStatus, resp.StatusCode, q)
	}

	events, err := decodeEvents(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		c.logger.Warn(ctx, "undecodable response", logger.String("url", target), logger.Error(err))
		return nil, err
	}

	metrics.RecordRecordsFetched(q.Label(), len(events))
	c.logger.Debug(ctx, "fetched url",
		logger.String("url", target),
		logger.Int("records", len(events)),
		logger.Duration("elapsed", time.Since(start)),
	)
	return events, nil
}
