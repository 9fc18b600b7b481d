// Package httpclient holds the rate limited, retrying HTTP transport shared by
// the catalog feed, the metadata API and artifact downloads.
package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"

	"github.com/meza/minepkg/internal/perf"
)

type Doer interface {
	Do(request *http.Request) (*http.Response, error)
}

type RetryConfig struct {
	MaxRetries int
	Interval   time.Duration
}

type RLHTTPClient struct {
	client      *http.Client
	Ratelimiter *rate.Limiter
	RetryConfig *RetryConfig
	UserAgent   string
}

func NewRLClient(limiter *rate.Limiter) *RLHTTPClient {
	return &RLHTTPClient{
		client: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport, otelhttp.WithTracerProvider(perf.TracerProvider())),
		},
		Ratelimiter: limiter,
	}
}

// NewLimiter turns a requests-per-second setting into a limiter; zero or less
// means unlimited.
func NewLimiter(perSecond float64) *rate.Limiter {
	if perSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	burst := int(perSecond)
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}

func NoRetries() *RetryConfig {
	return &RetryConfig{}
}

func (client *RLHTTPClient) Do(request *http.Request) (*http.Response, error) {
	ctx, requestSpan := perf.StartSpan(request.Context(), "net.http.request",
		perf.WithAttributes(
			attribute.String("url", request.URL.String()),
			attribute.String("method", request.Method),
			attribute.String("host", request.URL.Host),
		),
	)
	defer requestSpan.End()

	if client.UserAgent != "" && request.Header.Get("User-Agent") == "" {
		request.Header.Set("User-Agent", client.UserAgent)
	}

	retryConfig := client.retryConfig()

	var response *http.Response
	for attempt := 0; attempt <= retryConfig.MaxRetries; attempt++ {
		var retry bool
		var err error
		response, retry, err = client.doAttempt(ctx, request, attempt, retryConfig)
		if err != nil {
			requestSpan.SetAttributes(
				attribute.Bool("success", false),
				attribute.String("error_type", fmt.Sprintf("%T", err)),
			)
			return nil, err
		}
		if !retry {
			break
		}
	}

	requestSpan.SetAttributes(
		attribute.Bool("success", true),
		attribute.Int("status", response.StatusCode),
	)
	return response, nil
}

func (client *RLHTTPClient) retryConfig() RetryConfig {
	if client.RetryConfig != nil {
		return *client.RetryConfig
	}
	return RetryConfig{
		MaxRetries: 3,
		Interval:   1 * time.Second,
	}
}

func (client *RLHTTPClient) doAttempt(ctx context.Context, request *http.Request, attempt int, retryConfig RetryConfig) (*http.Response, bool, error) {
	attemptCtx, attemptSpan := perf.StartSpan(ctx, "net.http.request.attempt",
		perf.WithAttributes(attribute.Int("attempt", attempt)),
	)
	defer attemptSpan.End()

	if err := client.Ratelimiter.Wait(attemptCtx); err != nil { // blocks until the limiter allows the call
		attemptSpan.SetAttributes(attribute.Bool("success", false))
		if IsTimeoutError(err) {
			return nil, false, WrapTimeoutError(err)
		}
		return nil, false, fmt.Errorf("rate limit burst exceeded %w", err)
	}

	response, err := client.client.Do(request.WithContext(attemptCtx))
	if err != nil {
		attemptSpan.SetAttributes(attribute.Bool("success", false))
		return nil, false, WrapTimeoutError(err)
	}

	if shouldRetry(response, attempt, retryConfig) {
		attemptSpan.SetAttributes(
			attribute.Bool("success", false),
			attribute.Int("status", response.StatusCode),
		)
		if drainErr := drainAndClose(response.Body); drainErr != nil {
			attemptSpan.SetAttributes(attribute.String("cleanup_error", drainErr.Error()))
		}
		time.Sleep(retryConfig.Interval)
		return nil, true, nil
	}

	attemptSpan.SetAttributes(
		attribute.Bool("success", true),
		attribute.Int("status", response.StatusCode),
	)
	return response, false, nil
}

func shouldRetry(response *http.Response, attempt int, retryConfig RetryConfig) bool {
	return response.StatusCode >= 500 && response.StatusCode < 600 && attempt < retryConfig.MaxRetries
}

func drainAndClose(body io.ReadCloser) error {
	if body == nil {
		return nil
	}

	_, readErr := io.Copy(io.Discard, body)
	closeErr := body.Close()
	return errors.Join(readErr, closeErr)
}
