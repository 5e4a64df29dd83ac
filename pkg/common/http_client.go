package common

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client wraps http.Client with the deadline and bounded-retry behaviour the
// mobile money gateways need. Retries happen only when the transport itself
// fails (connection refused, reset, DNS); once a request has reached the
// gateway the response is taken as-is, because charge initiation is not
// idempotent on the provider side.
type Client struct {
	http    *http.Client
	retries int
}

const (
	defaultTimeout = 15 * time.Second
	defaultRetries = 2
)

func NewClient(timeout time.Duration, retries int) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if retries < 0 {
		retries = defaultRetries
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		retries: retries,
	}
}

func (c *Client) do(req *http.Request) (interface{}, error) {
	var body []byte
	if req.Body != nil {
		b, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		req.Body.Close()
		body = b
	}

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			// 200-600ms jittered backoff, doubled per attempt
			backoff := time.Duration(200+rand.Intn(400)) * time.Millisecond << (attempt - 1)
			select {
			case <-req.Context().Done():
				return nil, req.Context().Err()
			case <-time.After(backoff):
			}
		}

		attemptReq := req.Clone(req.Context())
		if body != nil {
			attemptReq.Body = io.NopCloser(bytes.NewReader(body))
		}

		resp, err := c.http.Do(attemptReq)
		if err != nil {
			lastErr = err
			continue
		}
		return decodeBody(resp)
	}
	return nil, lastErr
}

func decodeBody(resp *http.Response) (interface{}, error) {
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}
	var result interface{}
	if err := json.Unmarshal(raw, &result); err != nil {
		// gateways occasionally answer with bare text
		return string(raw), nil
	}
	return result, nil
}

// PostJSON sends a JSON POST and decodes the response body.
func (c *Client) PostJSON(ctx context.Context, url string, payload interface{}, headers map[string]string) (interface{}, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return c.do(req)
}

// PostForm sends an x-www-form-urlencoded POST, used by the Tigo Pesa token
// endpoint.
func (c *Client) PostForm(ctx context.Context, urlStr string, form url.Values, headers map[string]string) (interface{}, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, urlStr, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return c.do(req)
}

// Get sends a GET request and decodes the response body.
func (c *Client) Get(ctx context.Context, url string, headers map[string]string) (interface{}, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return c.do(req)
}
