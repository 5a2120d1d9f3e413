package nutritionai

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/x/values"
)

const (
	// DefaultBaseURL is the Passio API endpoint
	DefaultBaseURL = "https://api.passiolife.com/v2"
	// EnvAPIKey is the environment variable with the subscription key
	EnvAPIKey = "NUTRITIONAI_API_KEY"

	defaultAttempts     = 4
	defaultMinWait      = 2 * time.Second
	defaultMaxWait      = 5 * time.Second
	defaultTokenSkew    = 5 * time.Second
	defaultCacheTTL     = time.Hour
	defaultHTTPTimeout  = 30 * time.Second
	tokenPathPrefix     = "/token-cache/unified/oauth/token/"
	advancedSearchPath  = "/products/napi/food/search/advanced"
	endpointToken       = "token"
	endpointFoodSearch  = "food_search"
	cacheKeyTokenPrefix = "nutritionai/token/"
	cacheKeySearch      = "nutritionai/search/"
)

// Config provides the configuration of the Nutrition AI tool spec.
type Config struct {
	// APIKey is the Passio subscription key,
	// if not provided, NUTRITIONAI_API_KEY environment variable is used.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	// BaseURL of the Passio API
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" validate:"omitempty,url"`
	// Timeout for a single HTTP request, as duration string: 30s
	Timeout string `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	// RequestsPerSecond limits the request rate, 0 means no limit
	RequestsPerSecond float64 `json:"requests_per_second,omitempty" yaml:"requests_per_second,omitempty" validate:"gte=0"`
	// TokenRefreshSkew specifies how long before the expiration the token is refreshed
	TokenRefreshSkew string `json:"token_refresh_skew,omitempty" yaml:"token_refresh_skew,omitempty"`
	// CacheTTL specifies for how long search results are cached, if cache is configured
	CacheTTL string `json:"cache_ttl,omitempty" yaml:"cache_ttl,omitempty"`

	Retry RetryConfig `json:"retry" yaml:"retry"`
}

// RetryConfig specifies the retry policy for the API requests.
// The wait between attempts is random between MinWait and MaxWait.
type RetryConfig struct {
	Attempts int    `json:"attempts,omitempty" yaml:"attempts,omitempty" validate:"gte=0,lte=10"`
	MinWait  string `json:"min_wait,omitempty" yaml:"min_wait,omitempty"`
	MaxWait  string `json:"max_wait,omitempty" yaml:"max_wait,omitempty"`
}

// settings is the resolved Config
type settings struct {
	apiKey            string
	baseURL           string
	timeout           time.Duration
	requestsPerSecond float64
	tokenSkew         time.Duration
	cacheTTL          time.Duration
	retry             retryPolicy
}

type retryPolicy struct {
	attempts int
	minWait  time.Duration
	maxWait  time.Duration
}

func (c *Config) resolve() (*settings, error) {
	if c == nil {
		c = &Config{}
	}
	s := &settings{
		apiKey:            values.StringsCoalesce(c.APIKey, os.Getenv(EnvAPIKey)),
		baseURL:           values.StringsCoalesce(c.BaseURL, DefaultBaseURL),
		requestsPerSecond: c.RequestsPerSecond,
		retry: retryPolicy{
			attempts: c.Retry.Attempts,
		},
	}
	if s.apiKey == "" {
		return nil, errors.Errorf("%s is not set", EnvAPIKey)
	}
	if s.retry.attempts == 0 {
		s.retry.attempts = defaultAttempts
	}

	var err error
	if s.timeout, err = parseDuration("timeout", c.Timeout, defaultHTTPTimeout); err != nil {
		return nil, err
	}
	if s.tokenSkew, err = parseDuration("token_refresh_skew", c.TokenRefreshSkew, defaultTokenSkew); err != nil {
		return nil, err
	}
	if s.cacheTTL, err = parseDuration("cache_ttl", c.CacheTTL, defaultCacheTTL); err != nil {
		return nil, err
	}
	if s.retry.minWait, err = parseDuration("retry.min_wait", c.Retry.MinWait, defaultMinWait); err != nil {
		return nil, err
	}
	if s.retry.maxWait, err = parseDuration("retry.max_wait", c.Retry.MaxWait, defaultMaxWait); err != nil {
		return nil, err
	}
	if s.retry.maxWait < s.retry.minWait {
		return nil, errors.Errorf("invalid retry: max_wait %s is less than min_wait %s", s.retry.maxWait, s.retry.minWait)
	}
	return s, nil
}

func parseDuration(name, val string, def time.Duration) (time.Duration, error) {
	if val == "" {
		return def, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid %s", name)
	}
	if d < 0 {
		return 0, errors.Errorf("invalid %s: negative duration %s", name, val)
	}
	return d, nil
}
