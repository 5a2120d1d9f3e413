package nutritionai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/effective-security/nutritionai/chatmodel"
	"github.com/effective-security/nutritionai/store"
	"github.com/effective-security/nutritionai/tools/nutritionai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const appleResponse = `{
	"results": [{
		"displayName": "Apple",
		"brandName": "Fresh",
		"resultId": "1603211196865",
		"nutritionPreview": {
			"calories": 52,
			"carbs": 13.81,
			"fat": 0.17,
			"protein": 0.26,
			"fiber": 2.4,
			"portion": {"name": "medium", "quantity": 1, "weight": {"unit": "g", "value": 182}}
		}
	}],
	"alternateNames": ["green apple", "red apple"]
}`

type fakeAPI struct {
	t *testing.T

	tokenCalls  atomic.Int32
	searchCalls atomic.Int32
	// searchStatus returns the status for the N-th search call, 200 by default
	searchStatus func(n int32) int
	tokenStatus  func(n int32) int
	expiresIn    int64
	lastHeaders  atomic.Value
	// searchBody overrides the search response
	searchBody string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case strings.HasPrefix(r.URL.Path, "/token-cache/unified/oauth/token/"):
		n := f.tokenCalls.Add(1)
		if f.tokenStatus != nil {
			if status := f.tokenStatus(n); status != http.StatusOK {
				w.WriteHeader(status)
				return
			}
		}
		assert.Equal(f.t, "/token-cache/unified/oauth/token/test-key", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "token" + string(rune('0'+n)),
			"expires_in":   f.expiresIn,
			"customer_id":  "customer1",
			"token_type":   "Bearer",
		})
	case r.URL.Path == "/products/napi/food/search/advanced":
		n := f.searchCalls.Add(1)
		f.lastHeaders.Store(r.Header.Clone())
		if f.searchStatus != nil {
			if status := f.searchStatus(n); status != http.StatusOK {
				w.WriteHeader(status)
				_, _ = w.Write([]byte(`{"error":"failed"}`))
				return
			}
		}
		assert.Equal(f.t, "apple", r.URL.Query().Get("term"))
		body := appleResponse
		if f.searchBody != "" {
			body = f.searchBody
		}
		_, _ = w.Write([]byte(body))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeAPI) headers() http.Header {
	h, _ := f.lastHeaders.Load().(http.Header)
	return h
}

func newTestConfig(baseURL string) *nutritionai.Config {
	return &nutritionai.Config{
		APIKey:  "test-key",
		BaseURL: baseURL,
		Retry: nutritionai.RetryConfig{
			Attempts: 4,
			MinWait:  "1ms",
			MaxWait:  "2ms",
		},
	}
}

func newTestClient(t *testing.T, api *fakeAPI, opts ...nutritionai.Option) *nutritionai.Client {
	if api.expiresIn == 0 {
		api.expiresIn = 3600
	}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	c, err := nutritionai.NewClient(newTestConfig(srv.URL), opts...)
	require.NoError(t, err)
	return c
}

func Test_Search(t *testing.T) {
	api := &fakeAPI{t: t}
	c := newTestClient(t, api)

	ctx := chatmodel.WithCallContext(context.Background(), chatmodel.NewCallContext("req1"))
	res, err := c.Search(ctx, "  apple ")
	require.NoError(t, err)
	require.Len(t, res.Results, 1)
	assert.Equal(t, "Apple", res.Results[0].DisplayName)
	assert.Equal(t, []string{"green apple", "red apple"}, res.AlternateNames)
	require.NotNil(t, res.Results[0].NutritionPreview)
	require.NotNil(t, res.Results[0].NutritionPreview.Carbs)
	assert.Equal(t, 13.81, *res.Results[0].NutritionPreview.Carbs)

	h := api.headers()
	assert.Equal(t, "Bearer token1", h.Get("Authorization"))
	assert.Equal(t, "customer1", h.Get("Passio-ID"))
	assert.Equal(t, "req1", h.Get("X-Request-ID"))

	// token is reused
	_, err = c.Search(ctx, "apple")
	require.NoError(t, err)
	assert.Equal(t, int32(1), api.tokenCalls.Load())
	assert.Equal(t, int32(2), api.searchCalls.Load())

	_, err = c.Search(ctx, " ")
	assert.EqualError(t, err, "search term is required")
}

func Test_Search_RetryOnServerError(t *testing.T) {
	api := &fakeAPI{
		t: t,
		searchStatus: func(n int32) int {
			if n < 3 {
				return http.StatusServiceUnavailable
			}
			return http.StatusOK
		},
	}
	c := newTestClient(t, api)

	res, err := c.Search(context.Background(), "apple")
	require.NoError(t, err)
	assert.Len(t, res.Results, 1)
	assert.Equal(t, int32(3), api.searchCalls.Load())
}

func Test_Search_RetryExhausted(t *testing.T) {
	api := &fakeAPI{
		t:            t,
		searchStatus: func(int32) int { return http.StatusTooManyRequests },
	}
	c := newTestClient(t, api)

	_, err := c.Search(context.Background(), "apple")
	require.Error(t, err)
	assert.True(t, nutritionai.IsStatus(err, http.StatusTooManyRequests))
	assert.Equal(t, int32(4), api.searchCalls.Load())
}

func Test_Search_NoRetryOnBadRequest(t *testing.T) {
	api := &fakeAPI{
		t:            t,
		searchStatus: func(int32) int { return http.StatusBadRequest },
	}
	c := newTestClient(t, api)

	_, err := c.Search(context.Background(), "apple")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `failed to search "apple": unexpected status 400: {"error":"failed"}`)
	assert.True(t, nutritionai.IsStatus(err, http.StatusBadRequest))
	assert.Equal(t, int32(1), api.searchCalls.Load())
}

func Test_Search_RefreshOnUnauthorized(t *testing.T) {
	api := &fakeAPI{
		t: t,
		searchStatus: func(n int32) int {
			if n == 1 {
				return http.StatusUnauthorized
			}
			return http.StatusOK
		},
	}
	c := newTestClient(t, api)

	_, err := c.Search(context.Background(), "apple")
	require.NoError(t, err)
	assert.Equal(t, int32(2), api.tokenCalls.Load())
	assert.Equal(t, int32(2), api.searchCalls.Load())
	assert.Equal(t, "Bearer token2", api.headers().Get("Authorization"))
}

func Test_Search_UnauthorizedTwice(t *testing.T) {
	api := &fakeAPI{
		t:            t,
		searchStatus: func(int32) int { return http.StatusUnauthorized },
	}
	c := newTestClient(t, api)

	_, err := c.Search(context.Background(), "apple")
	require.Error(t, err)
	assert.True(t, nutritionai.IsStatus(err, http.StatusUnauthorized))
	assert.Equal(t, int32(2), api.tokenCalls.Load())
	assert.Equal(t, int32(2), api.searchCalls.Load())
}

func Test_Search_Cache(t *testing.T) {
	api := &fakeAPI{t: t}
	cache := store.NewMemoryStore()
	c := newTestClient(t, api, nutritionai.WithCache(cache))

	ctx := context.Background()
	res1, err := c.Search(ctx, "apple")
	require.NoError(t, err)
	res2, err := c.Search(ctx, "Apple")
	require.NoError(t, err)
	assert.Equal(t, res1, res2)
	assert.Equal(t, int32(1), api.searchCalls.Load())

	// the token is shared with another client through the cache
	c2 := newTestClient(t, api, nutritionai.WithCache(cache))
	tok, err := c2.Auth().Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "token1", tok.AccessToken)
	assert.Equal(t, int32(1), api.tokenCalls.Load())
}

func Test_ManagedAuth(t *testing.T) {
	api := &fakeAPI{t: t, expiresIn: 60}
	srv := httptest.NewServer(api)
	defer srv.Close()

	auth, err := nutritionai.NewManagedAuth(newTestConfig(srv.URL), srv.Client(), nil)
	require.NoError(t, err)

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	auth.WithClock(func() time.Time { return now })

	ctx := context.Background()
	tok, err := auth.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "token1", tok.AccessToken)
	assert.Equal(t, "customer1", tok.CustomerID)
	// expires_in minus the refresh skew
	assert.Equal(t, now.Add(55*time.Second), tok.ExpiresAt)

	now = now.Add(54 * time.Second)
	tok, err = auth.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "token1", tok.AccessToken)

	now = now.Add(time.Second)
	tok, err = auth.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "token2", tok.AccessToken)

	// a stale rejection does not drop the current token
	assert.False(t, auth.InvalidateIf(ctx, &nutritionai.Token{AccessToken: "token1"}))
	cur, err := auth.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "token2", cur.AccessToken)
	assert.Equal(t, int32(2), api.tokenCalls.Load())
	assert.False(t, auth.InvalidateIf(ctx, nil))

	assert.True(t, auth.InvalidateIf(ctx, tok))
	h, err := auth.Headers(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Bearer token3", h.Get("Authorization"))
	assert.Equal(t, "customer1", h.Get("Passio-ID"))
	assert.Equal(t, int32(3), api.tokenCalls.Load())
}

func Test_ManagedAuth_Errors(t *testing.T) {
	api := &fakeAPI{
		t:           t,
		tokenStatus: func(int32) int { return http.StatusForbidden },
	}
	srv := httptest.NewServer(api)
	defer srv.Close()

	auth, err := nutritionai.NewManagedAuth(newTestConfig(srv.URL), nil, nil)
	require.NoError(t, err)

	_, err = auth.Token(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get access token: unexpected status 403")
	assert.Equal(t, int32(1), api.tokenCalls.Load())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = auth.Token(ctx)
	require.Error(t, err)
}

func Test_Search_RateLimited(t *testing.T) {
	api := &fakeAPI{t: t, expiresIn: 3600}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	cfg := newTestConfig(srv.URL)
	// the token request takes the only burst slot
	cfg.RequestsPerSecond = 0.001
	c, err := nutritionai.NewClient(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err = c.Search(ctx, "apple")
	require.Error(t, err)
	assert.Equal(t, int32(1), api.tokenCalls.Load())
	assert.Equal(t, int32(0), api.searchCalls.Load())
}
