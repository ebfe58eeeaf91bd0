package integrations

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	rlerrors "github.com/matzehuels/repolens/pkg/errors"
	"github.com/matzehuels/repolens/pkg/httputil"
	"github.com/matzehuels/repolens/pkg/observability"
)

// Client provides shared HTTP functionality for remote API clients.
// It handles retry logic, status mapping, and common request headers.
type Client struct {
	http    *http.Client
	headers map[string]string
}

// NewClient creates a Client with the given default headers.
// Headers are applied to all requests made through this client.
// Pass nil for headers if no default headers are needed.
func NewClient(headers map[string]string) *Client {
	return NewClientWith(NewHTTPClient(), headers)
}

// NewClientWith is like [NewClient] but uses hc for transport.
func NewClientWith(hc *http.Client, headers map[string]string) *Client {
	if hc == nil {
		hc = NewHTTPClient()
	}
	return &Client{http: hc, headers: headers}
}

// Get performs an HTTP GET request and JSON-decodes the response into v.
// Transient failures are retried with [httputil.RetryWithBackoff].
func (c *Client) Get(ctx context.Context, url string, v any) error {
	return c.GetWithHeaders(ctx, url, nil, v)
}

// GetWithHeaders performs an HTTP GET with additional headers merged with defaults.
// Request-specific headers override client defaults for the same key.
func (c *Client) GetWithHeaders(ctx context.Context, url string, headers map[string]string, v any) error {
	return httputil.RetryWithBackoff(ctx, func() error {
		body, err := c.doRequest(ctx, url, headers)
		if err != nil {
			return err
		}
		defer body.Close()
		return json.NewDecoder(body).Decode(v)
	})
}

// GetText performs an HTTP GET request and returns the response body as a string.
func (c *Client) GetText(ctx context.Context, url string, headers map[string]string) (string, error) {
	var text string
	err := httputil.RetryWithBackoff(ctx, func() error {
		body, err := c.doRequest(ctx, url, headers)
		if err != nil {
			return err
		}
		defer body.Close()
		data, err := io.ReadAll(body)
		if err != nil {
			return &httputil.RetryableError{Err: fmt.Errorf("%w: %v", ErrNetwork, err)}
		}
		text = string(data)
		return nil
	})
	return text, err
}

// Download streams the body of url into w, following redirects.
// At most limit bytes are copied; a larger body yields [ErrTooLarge].
// Partial writes are not retried.
func (c *Client) Download(ctx context.Context, url string, w io.Writer, limit int64) (int64, error) {
	var n int64
	err := httputil.RetryWithBackoff(ctx, func() error {
		body, err := c.doRequest(ctx, url, nil)
		if err != nil {
			return err
		}
		defer body.Close()
		n, err = io.Copy(w, io.LimitReader(body, limit+1))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrNetwork, err)
		}
		if n > limit {
			return ErrTooLarge
		}
		return nil
	})
	return n, err
}

func (c *Client) doRequest(ctx context.Context, url string, headers map[string]string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	hooks := observability.HTTP()
	host, path := req.URL.Host, req.URL.Path
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &httputil.RetryableError{Err: fmt.Errorf("%w: %v", ErrNetwork, err)}
	}
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

func checkStatus(resp *http.Response) error {
	code := resp.StatusCode
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusTooManyRequests,
		code == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0":
		retry, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		return &httputil.RetryableError{Err: &rlerrors.RateLimitedError{
			RetryAfter: retry,
			Message:    fmt.Sprintf("status %d", code),
		}}
	case code == http.StatusUnauthorized:
		return fmt.Errorf("%w: status %d", ErrUnauthorized, code)
	case code >= 500:
		return &httputil.RetryableError{Err: fmt.Errorf("%w: status %d", ErrNetwork, code)}
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}
