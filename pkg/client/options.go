package client

import (
	"net/http"
	"time"

	"cdr.dev/slog/v3"
	"github.com/coder/quartz"
)

// Production endpoints of the follower API.
const (
	DefaultTokenURL = "https://usiamapi.eversensedms.com/connect/token"
	DefaultAPIURL   = "https://usapialpha.eversensedms.com"
)

// Fixed client credentials of the mobile app.
const (
	DefaultClientID     = "eversenseMMAAndroid"
	DefaultClientSecret = "6ksPx#]~wQ3U"
)

// DefaultTimeout bounds every request made by the client.
const DefaultTimeout = 30 * time.Second

type options struct {
	tokenURL     string
	apiURL       string
	clientID     string
	clientSecret string
	httpClient   *http.Client
	logger       slog.Logger
	clock        quartz.Clock
	location     *time.Location
	metrics      *Metrics
}

// Option configures a Client or Session.
type Option func(*options)

func defaultOptions() options {
	return options{
		tokenURL:     DefaultTokenURL,
		apiURL:       DefaultAPIURL,
		clientID:     DefaultClientID,
		clientSecret: DefaultClientSecret,
		httpClient:   &http.Client{Timeout: DefaultTimeout},
		logger:       slog.Make(),
		clock:        quartz.NewReal(),
		location:     time.Local,
	}
}

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithTokenURL overrides the token endpoint.
func WithTokenURL(u string) Option {
	return func(o *options) {
		o.tokenURL = u
	}
}

// WithAPIURL overrides the base URL of the care API.
func WithAPIURL(u string) Option {
	return func(o *options) {
		o.apiURL = u
	}
}

// WithClientCredentials overrides the OAuth client id and secret.
func WithClientCredentials(id, secret string) Option {
	return func(o *options) {
		o.clientID = id
		o.clientSecret = secret
	}
}

// WithHTTPClient sets the HTTP client used for all requests.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// WithTimeout sets a per-request timeout on a fresh HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.httpClient = &http.Client{Timeout: d}
	}
}

// WithLogger sets the logger.
func WithLogger(logger slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithClock sets the clock used for token expiry.
func WithClock(clock quartz.Clock) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// WithLocation sets the timezone glucose timestamps are rendered in.
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		if loc != nil {
			o.location = loc
		}
	}
}

// WithMetrics records client activity into m.
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}
