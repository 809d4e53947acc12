package completion

import (
	"context"
	"fmt"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/nba-advisor/internal/platform/logging"
	"github.com/riskibarqy/nba-advisor/internal/platform/resilience"
	"github.com/valyala/fasthttp"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultMaxTokens = 2048
	apiVersion       = "2023-06-01"
	maxErrorBody     = 512
)

var (
	ErrNotConfigured       = crerr.New("completion endpoint is not configured")
	ErrEmptyCompletion     = crerr.New("completion response contained no text")
	errCompletionTransient = crerr.New("completion transient failure")
)

type Config struct {
	URL            string
	APIKey         string
	Model          string
	MaxTokens      int
	Timeout        time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client posts a single-turn messages request and returns the joined text blocks.
type Client struct {
	http      *fasthttp.Client
	url       string
	apiKey    string
	model     string
	maxTokens int
	timeout   time.Duration
	logger    *logging.Logger
	breaker   *resilience.CircuitBreaker
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

func NewClient(cfg Config) (*Client, error) {
	endpoint := strings.TrimSpace(cfg.URL)
	if endpoint == "" || strings.TrimSpace(cfg.Model) == "" {
		return nil, ErrNotConfigured
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.Named("completion")

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	return &Client{
		http: &fasthttp.Client{
			Name:                     "nba-advisor",
			ReadTimeout:              timeout,
			WriteTimeout:             timeout,
			NoDefaultUserAgentHeader: true,
		},
		url:       endpoint,
		apiKey:    strings.TrimSpace(cfg.APIKey),
		model:     strings.TrimSpace(cfg.Model),
		maxTokens: maxTokens,
		timeout:   timeout,
		logger:    logger,
		breaker:   resilience.NewCircuitBreaker("completion", cfg.CircuitBreaker, isTransient, logger),
	}, nil
}

func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", crerr.New("prompt is required")
	}

	body, err := sonic.Marshal(messagesRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages:  []message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", crerr.Wrap(err, "marshal completion request")
	}

	out, err := c.breaker.Execute(func() (any, error) {
		return c.post(ctx, body)
	})
	if err != nil {
		if crerr.Is(err, resilience.ErrCircuitOpen) {
			c.logger.WarnContext(ctx, "completion circuit breaker rejected request", "state", c.breaker.State())
		}
		return "", err
	}

	raw, ok := out.([]byte)
	if !ok {
		return "", fmt.Errorf("unexpected completion payload type %T", out)
	}

	var resp messagesResponse
	if err := sonic.Unmarshal(raw, &resp); err != nil {
		return "", crerr.Wrap(err, "decode completion response")
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type != "" && block.Type != "text" {
			continue
		}
		text.WriteString(block.Text)
	}
	if strings.TrimSpace(text.String()) == "" {
		return "", crerr.Wrapf(ErrEmptyCompletion, "stop_reason=%s", resp.StopReason)
	}
	return text.String(), nil
}

func (c *Client) post(ctx context.Context, body []byte) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("anthropic-version", apiVersion)
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}
	req.SetBodyRaw(body)

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	started := time.Now()
	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		return nil, crerr.Mark(crerr.Wrap(err, "send completion request"), errCompletionTransient)
	}

	status := resp.StatusCode()
	if status < fasthttp.StatusOK || status >= fasthttp.StatusMultipleChoices {
		callErr := fmt.Errorf("completion status=%d body=%s", status, abbreviate(resp.Body()))
		if status == fasthttp.StatusTooManyRequests || status >= fasthttp.StatusInternalServerError {
			callErr = crerr.Mark(callErr, errCompletionTransient)
		}
		c.logger.WarnContext(ctx, "completion request failed", "status", status, "elapsed", time.Since(started))
		return nil, callErr
	}

	c.logger.DebugContext(ctx, "completion request finished", "elapsed", time.Since(started), "bytes", len(resp.Body()))
	return append([]byte(nil), resp.Body()...), nil
}

func isTransient(err error) bool {
	return err != nil && crerr.Is(err, errCompletionTransient)
}

func abbreviate(raw []byte) string {
	text := strings.TrimSpace(string(raw))
	if len(text) > maxErrorBody {
		return text[:maxErrorBody] + "..."
	}
	return text
}
