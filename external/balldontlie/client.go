package balldontlie

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/nba-advisor/internal/platform/logging"
	"github.com/riskibarqy/nba-advisor/internal/platform/resilience"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"
)

const (
	defaultV1BaseURL = "https://api.balldontlie.io/v1"
	defaultV2BaseURL = "https://api.balldontlie.io/v2"
	defaultTimeout   = 10 * time.Second
	defaultMaxPages  = 50
	defaultPerPage   = 100
	maxPlayerIDs     = 100
	maxBodyBytes     = 6 << 20
)

type APIVersion string

const (
	V1 APIVersion = "v1"
	V2 APIVersion = "v2"
)

type ClientConfig struct {
	HTTPClient     *http.Client
	V1BaseURL      string
	V2BaseURL      string
	APIKey         string
	Timeout        time.Duration
	MaxRetries     int
	RetryInterval  time.Duration
	MaxPages       int
	PerPage        int
	RatePerMinute  int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

type Client struct {
	httpClient *http.Client
	v1BaseURL  string
	v2BaseURL  string
	apiKey     string
	maxPages   int
	perPage    int
	retry      resilience.RetryConfig
	limiter    *rate.Limiter
	logger     *logging.Logger
	breaker    *resilience.CircuitBreaker
	flight     resilience.SingleFlight
}

// Page is one response page: the raw "data" array and the cursor for the next page.
// A nil NextCursor marks the last page.
type Page struct {
	Data       json.RawMessage
	NextCursor *int64
}

type pageEnvelope struct {
	Data json.RawMessage `json:"data"`
	Meta struct {
		NextCursor *int64 `json:"next_cursor"`
	} `json:"meta"`
}

// NewClient fails with ErrMissingAPIKey before any request when the key is blank.
func NewClient(cfg ClientConfig) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.Named("balldontlie")

	httpClient := &http.Client{Timeout: cfg.Timeout}
	if cfg.HTTPClient != nil {
		clone := *cfg.HTTPClient
		httpClient = &clone
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = defaultTimeout
	}
	transport := httpClient.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	httpClient.Transport = otelhttp.NewTransport(transport)

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RatePerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RatePerMinute)), maxInt(cfg.RatePerMinute/10, 1))
	}

	retry := resilience.DefaultRetryConfig()
	retry.MaxRetries = maxInt(cfg.MaxRetries, 0)
	if cfg.RetryInterval > 0 {
		retry.InitialInterval = cfg.RetryInterval
		retry.MaxInterval = cfg.RetryInterval * 10
	}

	return &Client{
		httpClient: httpClient,
		v1BaseURL:  normalizeBaseURL(cfg.V1BaseURL, defaultV1BaseURL),
		v2BaseURL:  normalizeBaseURL(cfg.V2BaseURL, defaultV2BaseURL),
		apiKey:     apiKey,
		maxPages:   positiveOr(cfg.MaxPages, defaultMaxPages),
		perPage:    positiveOr(cfg.PerPage, defaultPerPage),
		retry:      retry,
		limiter:    limiter,
		logger:     logger,
		breaker:    resilience.NewCircuitBreaker("balldontlie", cfg.CircuitBreaker, isTransient, logger),
		flight:     resilience.SingleFlight{Timeout: requestBudget(httpClient.Timeout, retry)},
	}, nil
}

// FetchPage requests a single page. cursor is nil for the first page.
func (c *Client) FetchPage(ctx context.Context, version APIVersion, endpoint string, query url.Values, cursor *int64) (Page, error) {
	values := url.Values{}
	for key, items := range query {
		values[key] = append([]string(nil), items...)
	}
	if cursor != nil {
		values.Set("cursor", strconv.FormatInt(*cursor, 10))
	}

	fullURL, err := c.buildURL(version, endpoint, values)
	if err != nil {
		return Page{}, err
	}

	raw, err := c.get(ctx, fullURL)
	if err != nil {
		return Page{}, fmt.Errorf("fetch %s %s: %w", version, endpoint, err)
	}

	var envelope pageEnvelope
	if err := sonic.Unmarshal(raw, &envelope); err != nil {
		return Page{}, crerr.Mark(crerr.Wrapf(err, "decode %s %s", version, endpoint), ErrMalformedResponse)
	}
	if envelope.Data == nil {
		return Page{}, crerr.Wrapf(ErrMalformedResponse, "%s %s: missing data field", version, endpoint)
	}
	return Page{Data: envelope.Data, NextCursor: envelope.Meta.NextCursor}, nil
}

func (c *Client) buildURL(version APIVersion, endpoint string, values url.Values) (string, error) {
	var base string
	switch version {
	case V1:
		base = c.v1BaseURL
	case V2:
		base = c.v2BaseURL
	default:
		return "", fmt.Errorf("unsupported api version %q", version)
	}

	fullURL := base + "/" + strings.TrimLeft(endpoint, "/")
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}
	return fullURL, nil
}

func (c *Client) get(ctx context.Context, fullURL string) ([]byte, error) {
	out, _, err := c.flight.Do(ctx, fullURL, func(shared context.Context) (any, error) {
		return c.breaker.Execute(func() (any, error) {
			return c.executeRequest(shared, fullURL)
		})
	})
	if err != nil {
		if crerr.Is(err, resilience.ErrCircuitOpen) {
			c.logger.WarnContext(ctx, "balldontlie circuit breaker rejected request", "state", c.breaker.State())
		}
		return nil, err
	}

	raw, ok := out.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected response payload type %T", out)
	}
	return raw, nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var body []byte
	err := resilience.Retry(ctx, c.retry, func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		raw, err := c.do(ctx, fullURL)
		if err != nil {
			return err
		}
		body = raw
		return nil
	}, isTransient, func(err error, wait time.Duration) {
		c.logger.WarnContext(ctx, "retrying balldontlie request", "url", fullURL, "wait", wait, "error", err)
	})
	if err != nil {
		c.logger.WarnContext(ctx, "balldontlie request failed", "url", fullURL, "error", err)
		return nil, err
	}
	return body, nil
}

func (c *Client) do(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, crerr.Mark(crerr.Wrap(err, "send request"), errBalldontlieTransient)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, crerr.Mark(crerr.Wrap(err, "read response body"), errBalldontlieTransient)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Status:     statusText(resp),
			Body:       abbreviateBody(raw),
		}
	}
	return raw, nil
}

func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}

func normalizeBaseURL(raw, fallback string) string {
	raw = strings.TrimRight(strings.TrimSpace(raw), "/")
	if raw == "" {
		return fallback
	}
	return raw
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}

// requestBudget covers every attempt of one request plus the waits between them.
func requestBudget(attemptTimeout time.Duration, retry resilience.RetryConfig) time.Duration {
	attempts := time.Duration(retry.MaxRetries + 1)
	return attempts*attemptTimeout + time.Duration(retry.MaxRetries)*retry.MaxInterval
}

func positiveOr(value, fallback int) int {
	if value > 0 {
		return value
	}
	return fallback
}

func maxInt(left, right int) int {
	if left > right {
		return left
	}
	return right
}
