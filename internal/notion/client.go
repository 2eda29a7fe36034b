// Package notion is the HTTP client adapter for the Notion REST API.
//
// Every call is a single attempt: there are no retries. Outgoing requests
// are paced client-side to stay under Notion's average rate limit, and each
// failure is classified into the failure taxonomy where it is detected.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/fyrsmithlabs/notionctl/internal/config"
	"github.com/fyrsmithlabs/notionctl/internal/failure"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const maxResponseBytes = 32 << 20

// Object is a decoded JSON object as returned by Notion.
type Object = map[string]any

// Caller performs one Notion API request.
type Caller interface {
	Call(ctx context.Context, method, path string, query url.Values, body any) (Object, error)
}

// Options configures a Client.
type Options struct {
	BaseURL    string
	APIVersion string
	Timeout    time.Duration
	// RequestsPerSecond paces requests. Zero or negative disables pacing.
	RequestsPerSecond float64
	// Transport is the base RoundTripper beneath the auth transport.
	Transport http.RoundTripper
	Logger    *zap.Logger
}

// OptionsFromConfig maps the notion config section onto Options.
func OptionsFromConfig(cfg config.NotionConfig, logger *zap.Logger) Options {
	return Options{
		BaseURL:           cfg.BaseURL,
		APIVersion:        cfg.APIVersion,
		Timeout:           cfg.Timeout.Duration(),
		RequestsPerSecond: cfg.RequestsPerSecond,
		Logger:            logger,
	}
}

// Client talks to the Notion API with a bearer token.
type Client struct {
	baseURL    string
	apiVersion string
	http       *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// New creates a Client authenticating with token.
func New(token config.Secret, opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = config.DefaultBaseURL
	}
	if opts.APIVersion == "" {
		opts.APIVersion = config.DefaultAPIVersion
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Transport == nil {
		opts.Transport = http.DefaultTransport
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token.Value(), TokenType: "Bearer"})

	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		apiVersion: opts.APIVersion,
		http: &http.Client{
			Timeout:   opts.Timeout,
			Transport: &oauth2.Transport{Source: src, Base: opts.Transport},
		},
		limiter: rate.NewLimiter(limit, 1),
		logger:  opts.Logger,
	}
}

// Call sends one request and decodes the JSON object response.
func (c *Client) Call(ctx context.Context, method, path string, query url.Values, body any) (Object, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, failure.Wrap(failure.TransportError, err, "%s %s not sent: %v", method, path, err).
			With("timeout", isTimeout(err))
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, failure.Wrap(failure.InternalError, err, "failed to encode request body")
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, failure.Wrap(failure.InternalError, err, "failed to build request")
	}
	req.Header.Set("Notion-Version", c.apiVersion)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, failure.Wrap(failure.TransportError, err, "%s %s failed: %s", method, path, describeTransport(err)).
			With("timeout", isTimeout(err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, failure.Wrap(failure.TransportError, err, "%s %s: reading response failed", method, path).
			With("timeout", isTimeout(err))
	}

	c.logger.Debug("notion request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	if resp.StatusCode >= 400 {
		return nil, statusError(method, path, resp, data)
	}
	return decodeObject(method, path, data)
}

// remoteError is the error object Notion returns for failed requests.
type remoteError struct {
	Object  string `json:"object"`
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func statusError(method, path string, resp *http.Response, data []byte) *failure.Error {
	var re remoteError
	var body any = strings.TrimSpace(string(data))
	var parsed map[string]any
	if json.Unmarshal(data, &parsed) == nil {
		body = parsed
		_ = json.Unmarshal(data, &re)
	}
	if re.Code == "" {
		re.Code = fmt.Sprintf("http_%d", resp.StatusCode)
	}
	msg := re.Message
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	var fe *failure.Error
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		fe = failure.New(failure.AuthError, "%s %s: %s", method, path, msg)
	case resp.StatusCode == http.StatusTooManyRequests:
		fe = failure.New(failure.RateLimited, "%s %s: %s", method, path, msg)
		if secs, ok := retryAfter(resp.Header.Get("Retry-After")); ok {
			fe = fe.With("retry_after_seconds", secs)
		}
	default:
		fe = failure.New(failure.RemoteError, "%s %s: %s", method, path, msg).With("body", body)
	}
	return fe.With("status", resp.StatusCode).With("code", re.Code)
}

func retryAfter(h string) (float64, bool) {
	h = strings.TrimSpace(h)
	if h == "" {
		return 0, false
	}
	if secs, err := strconv.ParseFloat(h, 64); err == nil && secs >= 0 {
		return secs, true
	}
	if t, err := http.ParseTime(h); err == nil {
		d := time.Until(t).Seconds()
		if d < 0 {
			d = 0
		}
		return d, true
	}
	return 0, false
}

func decodeObject(method, path string, data []byte) (Object, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, failure.Wrap(failure.MalformedResponse, err, "%s %s: response is not valid JSON", method, path)
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, failure.New(failure.MalformedResponse, "%s %s: response is not a JSON object", method, path)
	}
	return obj, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// describeTransport strips the request URL from *url.Error messages.
func describeTransport(err error) string {
	var ue *url.Error
	if errors.As(err, &ue) {
		return ue.Err.Error()
	}
	return err.Error()
}
