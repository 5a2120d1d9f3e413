package nutritionai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/nutritionai/pkg/metricskey"
	"github.com/effective-security/nutritionai/store"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/nutritionai", "nutritionai")

// Client is the Passio Nutrition AI API client.
type Client struct {
	baseURL  string
	auth     *ManagedAuth
	req      *requester
	cache    store.Cache
	cacheTTL time.Duration
}

// Option configures the Client.
type Option func(*options)

type options struct {
	httpClient *http.Client
	cache      store.Cache
}

// WithHTTPClient sets the HTTP client used for the API calls.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// WithCache sets the cache for the access token and search results.
func WithCache(c store.Cache) Option {
	return func(o *options) {
		o.cache = c
	}
}

// NewClient returns the API client.
func NewClient(cfg *Config, opts ...Option) (*Client, error) {
	s, err := cfg.resolve()
	if err != nil {
		return nil, err
	}
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	req := newRequester(s, o.httpClient)
	return &Client{
		baseURL:  s.baseURL,
		auth:     newManagedAuth(s, req, o.cache),
		req:      req,
		cache:    o.cache,
		cacheTTL: s.cacheTTL,
	}, nil
}

// Auth returns the token manager of the client.
func (c *Client) Auth() *ManagedAuth {
	return c.auth
}

// Search performs the advanced food search.
func (c *Client) Search(ctx context.Context, term string) (*SearchResult, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, errors.New("search term is required")
	}

	key := searchCacheKey(term)
	if res := c.cachedSearch(ctx, key); res != nil {
		return res, nil
	}

	u := c.baseURL + advancedSearchPath + "?" + url.Values{"term": []string{term}}.Encode()
	res := new(SearchResult)
	err := c.getWithAuth(ctx, endpointFoodSearch, u, res)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to search %q", term)
	}

	logger.ContextKV(ctx, xlog.DEBUG,
		"reason", "search",
		"term", term,
		"results", len(res.Results))

	if c.cache != nil && c.cacheTTL > 0 {
		bs, _ := json.Marshal(res)
		if err := c.cache.Set(ctx, key, bs, c.cacheTTL); err != nil {
			logger.ContextKV(ctx, xlog.WARNING, "reason", "cache_set", "err", err.Error())
		}
	}
	return res, nil
}

// getWithAuth calls the API with the auth headers,
// on 401 the token is refreshed and the call is repeated once.
func (c *Client) getWithAuth(ctx context.Context, endpoint, u string, out any) error {
	for refreshed := false; ; refreshed = true {
		tok, err := c.auth.Token(ctx)
		if err != nil {
			return err
		}
		err = c.req.getJSON(ctx, endpoint, u, tok.Headers(), out)
		if err != nil && !refreshed && IsStatus(err, http.StatusUnauthorized) {
			dropped := c.auth.InvalidateIf(ctx, tok)
			logger.ContextKV(ctx, xlog.DEBUG,
				"reason", "unauthorized",
				"endpoint", endpoint,
				"invalidated", dropped)
			continue
		}
		return err
	}
}

func (c *Client) cachedSearch(ctx context.Context, key string) *SearchResult {
	if c.cache == nil {
		return nil
	}
	bs, err := c.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			logger.ContextKV(ctx, xlog.WARNING, "reason", "cache_get", "err", err.Error())
		}
		metricskey.StatsCacheMisses.IncrCounter(1, endpointFoodSearch)
		return nil
	}
	res := new(SearchResult)
	if err = json.Unmarshal(bs, res); err != nil {
		metricskey.StatsCacheMisses.IncrCounter(1, endpointFoodSearch)
		return nil
	}
	metricskey.StatsCacheHits.IncrCounter(1, endpointFoodSearch)
	return res
}

func searchCacheKey(term string) string {
	norm := strings.Join(strings.Fields(strings.ToLower(term)), " ")
	return cacheKeySearch + strconv.FormatUint(xxhash.Sum64String(norm), 16)
}
