package bellboard

import (
	"net/http"
	"time"

	"github.com/okian/ringstats/internal/adapters/ratelimit"
	"github.com/okian/ringstats/pkg/logger"
)

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithBaseURL sets the scheme and host of the export API.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithGuildID sets the association id used by guild queries.
func WithGuildID(id int) Option {
	return func(c *Client) {
		if id > 0 {
			c.guildID = id
		}
	}
}

// WithCountyRegion sets the region keyword used by county queries.
func WithCountyRegion(region string) Option {
	return func(c *Client) {
		if region != "" {
			c.countyRegion = region
		}
	}
}

// WithLength sets the performance length filter, e.g. "quarter".
func WithLength(length string) Option {
	return func(c *Client) {
		if length != "" {
			c.length = length
		}
	}
}

// WithPageSize sets the pagesize parameter sent on every query.
func WithPageSize(size int) Option {
	return func(c *Client) {
		if size > 0 {
			c.pageSize = size
		}
	}
}

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithLimiter sets the shared rate limiter.
func WithLimiter(l ratelimit.Limiter) Option {
	return func(c *Client) {
		if l != nil {
			c.limiter = l
		}
	}
}

// WithLogger sets a custom logger for the client.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}
