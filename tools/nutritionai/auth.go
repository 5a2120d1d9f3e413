package nutritionai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/nutritionai/pkg/metricskey"
	"github.com/effective-security/nutritionai/store"
	"github.com/effective-security/xlog"
)

// ManagedAuth exchanges the subscription key for an access token,
// and keeps the token until it expires.
type ManagedAuth struct {
	apiKey   string
	baseURL  string
	skew     time.Duration
	req      *requester
	cache    store.Cache
	cacheKey string
	now      func() time.Time

	lock  sync.Mutex
	token *Token
}

// NewManagedAuth returns ManagedAuth.
// The cache is optional, if provided the token is shared with other processes.
func NewManagedAuth(cfg *Config, httpClient *http.Client, cache store.Cache) (*ManagedAuth, error) {
	s, err := cfg.resolve()
	if err != nil {
		return nil, err
	}
	return newManagedAuth(s, newRequester(s, httpClient), cache), nil
}

func newManagedAuth(s *settings, req *requester, cache store.Cache) *ManagedAuth {
	return &ManagedAuth{
		apiKey:   s.apiKey,
		baseURL:  s.baseURL,
		skew:     s.tokenSkew,
		req:      req,
		cache:    cache,
		cacheKey: cacheKeyTokenPrefix + strconv.FormatUint(xxhash.Sum64String(s.apiKey), 16),
		now:      time.Now,
	}
}

// WithClock allows to override the time source, used in tests.
func (a *ManagedAuth) WithClock(now func() time.Time) *ManagedAuth {
	a.lock.Lock()
	defer a.lock.Unlock()
	a.now = now
	return a
}

// Token returns a valid access token, refreshing it if needed.
func (a *ManagedAuth) Token(ctx context.Context) (*Token, error) {
	a.lock.Lock()
	defer a.lock.Unlock()

	now := a.now()
	if a.token.Valid(now) {
		return a.token, nil
	}

	if t := a.loadCached(ctx, now); t != nil {
		a.token = t
		metricskey.StatsNutritionTokenRefreshed.IncrCounter(1, "cache")
		return t, nil
	}

	t, err := a.fetch(ctx)
	if err != nil {
		return nil, err
	}
	a.token = t
	a.storeCached(ctx, t, now)
	metricskey.StatsNutritionTokenRefreshed.IncrCounter(1, "api")
	return t, nil
}

// InvalidateIf drops the token only if it is the rejected one,
// a token refreshed meanwhile by another call is kept.
// Returns true if the token was dropped.
func (a *ManagedAuth) InvalidateIf(ctx context.Context, rejected *Token) bool {
	if rejected == nil {
		return false
	}

	a.lock.Lock()
	defer a.lock.Unlock()

	if a.token != nil && a.token.AccessToken != rejected.AccessToken {
		return false
	}
	a.token = nil

	if a.cache != nil {
		if cached := a.loadCached(ctx, a.now()); cached == nil || cached.AccessToken == rejected.AccessToken {
			if err := a.cache.Delete(ctx, a.cacheKey); err != nil {
				logger.ContextKV(ctx, xlog.WARNING, "reason", "cache_delete", "err", err.Error())
			}
		}
	}
	return true
}

// Headers returns the authorization headers for the API requests.
func (a *ManagedAuth) Headers(ctx context.Context) (http.Header, error) {
	t, err := a.Token(ctx)
	if err != nil {
		return nil, err
	}
	return t.Headers(), nil
}

func (a *ManagedAuth) fetch(ctx context.Context) (*Token, error) {
	started := a.now()
	t := new(Token)
	err := a.req.getJSON(ctx, endpointToken, a.baseURL+tokenPathPrefix+url.PathEscape(a.apiKey), nil, t)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get access token")
	}
	if t.AccessToken == "" {
		return nil, errors.New("failed to get access token: empty token in response")
	}
	t.ExpiresAt = started.Add(time.Duration(t.ExpiresIn)*time.Second - a.skew)

	logger.ContextKV(ctx, xlog.DEBUG,
		"reason", "token_refreshed",
		"customer_id", t.CustomerID,
		"expires_at", t.ExpiresAt)
	return t, nil
}

func (a *ManagedAuth) loadCached(ctx context.Context, now time.Time) *Token {
	if a.cache == nil {
		return nil
	}
	bs, err := a.cache.Get(ctx, a.cacheKey)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			logger.ContextKV(ctx, xlog.WARNING, "reason", "cache_get", "err", err.Error())
		}
		return nil
	}
	t := new(Token)
	if err = json.Unmarshal(bs, t); err != nil || !t.Valid(now) {
		return nil
	}
	return t
}

func (a *ManagedAuth) storeCached(ctx context.Context, t *Token, now time.Time) {
	if a.cache == nil {
		return
	}
	ttl := t.ExpiresAt.Sub(now)
	if ttl <= 0 {
		return
	}
	bs, _ := json.Marshal(t)
	if err := a.cache.Set(ctx, a.cacheKey, bs, ttl); err != nil {
		logger.ContextKV(ctx, xlog.WARNING, "reason", "cache_set", "err", err.Error())
	}
}
