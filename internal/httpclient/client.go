package httpclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	ierr "github.com/alexanderramin/invoicer/internal/errors"
	"github.com/alexanderramin/invoicer/internal/logger"
	"github.com/hashicorp/go-retryablehttp"
)

// Request is an outbound HTTP request. Only idempotent methods are retried.
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
}

// Client sends HTTP requests.
type Client interface {
	Send(ctx context.Context, req *Request) (*Response, error)
}

// ClientConfig holds timeout and retry settings.
type ClientConfig struct {
	Timeout      time.Duration // per attempt
	MaxRetries   int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
}

// DefaultClient implements Client on top of go-retryablehttp.
type DefaultClient struct {
	client *retryablehttp.Client
}

// NewDefaultClient creates a DefaultClient. 5xx, 429 and connection errors
// are retried; the final response is returned as-is so callers see the
// real status code.
func NewDefaultClient(cfg ClientConfig, log *logger.Logger) *DefaultClient {
	rc := retryablehttp.NewClient()
	rc.RetryMax = cfg.MaxRetries
	if cfg.RetryWaitMin > 0 {
		rc.RetryWaitMin = cfg.RetryWaitMin
	}
	if cfg.RetryWaitMax > 0 {
		rc.RetryWaitMax = cfg.RetryWaitMax
	}
	if cfg.Timeout > 0 {
		rc.HTTPClient.Timeout = cfg.Timeout
	}
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	if log == nil {
		log = logger.NewNop()
	}
	rc.Logger = leveledLogger{log: log}
	return &DefaultClient{client: rc}
}

// Send makes the request and reads the whole body. Non-2xx responses are
// returned as *Error. Every failure is marked as an upstream fetch error.
func (c *DefaultClient) Send(ctx context.Context, req *Request) (*Response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	httpReq, err := retryablehttp.NewRequestWithContext(ctx, method, req.URL, nil)
	if err != nil {
		return nil, ierr.WithError(err).
			WithMessagef("building request %s %s", method, redact(req.URL)).
			Mark(ierr.ErrUpstreamFetch)
	}
	httpReq.Header.Set("Accept", "application/json")
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	// With the passthrough handler an exhausted retry on 5xx returns both
	// the last response and an error; the status code is what matters.
	resp, err := c.client.Do(httpReq)
	if resp == nil {
		if err == nil {
			err = errors.New("no response")
		}
		return nil, ierr.WithError(err).
			WithMessagef("%s %s", method, redact(req.URL)).
			WithHint("check network connectivity and the service base URL").
			Mark(ierr.ErrUpstreamFetch)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, ierr.WithError(err).
			WithMessagef("reading response of %s %s", method, redact(req.URL)).
			Mark(ierr.ErrUpstreamFetch)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, NewError(resp.StatusCode, body)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       body,
		Headers:    resp.Header,
	}, nil
}

// GetJSON issues a GET and decodes the JSON body into out.
func GetJSON(ctx context.Context, c Client, url string, headers map[string]string, out any) error {
	resp, err := c.Send(ctx, &Request{Method: http.MethodGet, URL: url, Headers: headers})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return ierr.WithError(err).
			WithMessagef("decoding response of GET %s", redact(url)).
			Mark(ierr.ErrUpstreamFetch)
	}
	return nil
}

// redact drops the query string, which may carry identifiers.
func redact(url string) string {
	base, _, _ := strings.Cut(url, "?")
	return base
}

// leveledLogger routes retryablehttp's messages to zap. Request attempts
// are debug noise; retries and failures are worth a warning.
type leveledLogger struct {
	log *logger.Logger
}

func (l leveledLogger) Error(msg string, kv ...any) { l.log.Errorw(msg, kv...) }
func (l leveledLogger) Info(msg string, kv ...any)  { l.log.Debugw(msg, kv...) }
func (l leveledLogger) Debug(msg string, kv ...any) { l.log.Debugw(msg, kv...) }
func (l leveledLogger) Warn(msg string, kv ...any)  { l.log.Warnw(msg, kv...) }

var _ retryablehttp.LeveledLogger = leveledLogger{}
