package nutritionai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/nutritionai/chatmodel"
	"github.com/effective-security/nutritionai/pkg/metricskey"
	"github.com/effective-security/xlog"
	"golang.org/x/time/rate"
)

const maxErrorBody = 1024

// APIError is returned when the API responds with unexpected status code.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// Retryable returns true for throttling and server errors.
func (e *APIError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// IsStatus returns true if the error is APIError with the status code.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

// randomWait is backoff.BackOff with random interval in [min, max].
type randomWait struct {
	min time.Duration
	max time.Duration
}

func (r randomWait) NextBackOff() time.Duration {
	if r.max <= r.min {
		return r.min
	}
	return r.min + rand.N(r.max-r.min+1)
}

func (r randomWait) Reset() {}

// requester executes GET requests with rate limiting and retries.
type requester struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	retry      retryPolicy
}

func newRequester(s *settings, httpClient *http.Client) *requester {
	limit := rate.Inf
	if s.requestsPerSecond > 0 {
		limit = rate.Limit(s.requestsPerSecond)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: s.timeout}
	}
	return &requester{
		httpClient: httpClient,
		limiter:    rate.NewLimiter(limit, 1),
		retry:      s.retry,
	}
}

// getJSON sends GET request and decodes the JSON response into out.
// Transport errors, 429 and 5xx responses are retried.
func (r *requester) getJSON(ctx context.Context, endpoint, url string, header http.Header, out any) error {
	attempt := 0
	op := func() error {
		attempt++
		err := r.doGet(ctx, endpoint, url, header, out)
		if err == nil {
			return nil
		}
		var apiErr *APIError
		if errors.As(err, &apiErr) && !apiErr.Retryable() {
			return backoff.Permanent(err)
		}
		if ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		return err
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(randomWait{min: r.retry.minWait, max: r.retry.maxWait}, uint64(max(r.retry.attempts-1, 0))),
		ctx)

	notify := func(err error, wait time.Duration) {
		metricskey.StatsNutritionAPIRetries.IncrCounter(1, endpoint)
		logger.ContextKV(ctx, xlog.WARNING,
			"reason", "retry",
			"endpoint", endpoint,
			"attempt", attempt,
			"wait", wait.String(),
			"request_id", chatmodel.GetRequestID(ctx),
			"err", err.Error())
	}

	err := backoff.RetryNotify(op, policy, notify)
	if err != nil {
		metricskey.StatsNutritionAPIFailed.IncrCounter(1, endpoint)
		return err
	}
	return nil
}

func (r *requester) doGet(ctx context.Context, endpoint, url string, header http.Header, out any) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return errors.WithStack(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	for k, v := range header {
		req.Header[k] = v
	}
	req.Header.Set("Accept", "application/json")
	if rid := chatmodel.GetRequestID(ctx); rid != "" {
		req.Header.Set("X-Request-ID", rid)
	}

	started := time.Now()
	resp, err := r.httpClient.Do(req)
	metricskey.PerfNutritionAPIRequest.MeasureSince(started, endpoint)
	if err != nil {
		return errors.Wrapf(err, "failed to call %s", endpoint)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return errors.WithStack(&APIError{StatusCode: resp.StatusCode, Body: string(body)})
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return backoff.Permanent(errors.Wrapf(err, "failed to decode %s response", endpoint))
	}
	return nil
}
