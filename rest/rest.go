package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// Request carries the optional parts of one API call. Reason, when set,
// lands in the audit log header. NoAuth skips the Authorization header
// for the few routes that are token-less.
type Request struct {
	Body    any
	Query   url.Values
	Headers http.Header
	Reason  string
	NoAuth  bool
}

// Requester is the only REST surface the state layer consumes: send a
// request, get parsed JSON or an error. Rate limiting, retries and
// backoff live behind implementations of this interface, never in front
// of it.
type Requester interface {
	Get(ctx context.Context, route string, req *Request) (json.RawMessage, error)
	Post(ctx context.Context, route string, req *Request) (json.RawMessage, error)
	Put(ctx context.Context, route string, req *Request) (json.RawMessage, error)
	Patch(ctx context.Context, route string, req *Request) (json.RawMessage, error)
	Delete(ctx context.Context, route string, req *Request) (json.RawMessage, error)
}

// APIError is the structured error body the platform returns for 4xx/5xx
// responses. The state layer propagates it untouched.
type APIError struct {
	Status  int    `json:"-"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d (http %d): %s", e.Code, e.Status, e.Message)
}

const DefaultBaseURL = "https://discord.com/api/v10"

type Client struct {
	HTTP    *http.Client
	BaseURL string
	Token   string
}

func NewClient(token string) *Client {
	return &Client{
		HTTP:    &http.Client{},
		BaseURL: DefaultBaseURL,
		Token:   token,
	}
}

func (c *Client) Get(ctx context.Context, route string, req *Request) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, route, req)
}

func (c *Client) Post(ctx context.Context, route string, req *Request) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, route, req)
}

func (c *Client) Put(ctx context.Context, route string, req *Request) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPut, route, req)
}

func (c *Client) Patch(ctx context.Context, route string, req *Request) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPatch, route, req)
}

func (c *Client) Delete(ctx context.Context, route string, req *Request) (json.RawMessage, error) {
	return c.do(ctx, http.MethodDelete, route, req)
}

func (c *Client) do(ctx context.Context, method, route string, req *Request) (json.RawMessage, error) {
	if req == nil {
		req = &Request{}
	}
	var body io.Reader
	if req.Body != nil {
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(encoded)
	}
	target := c.BaseURL + route
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	for key, values := range req.Headers {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if !req.NoAuth && c.Token != "" {
		httpReq.Header.Set("Authorization", "Bot "+c.Token)
	}
	if req.Reason != "" {
		httpReq.Header.Set("X-Audit-Log-Reason", url.PathEscape(req.Reason))
	}

	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode, Message: resp.Status}
		// best effort: error bodies are JSON on this API, but not always
		_ = json.Unmarshal(raw, apiErr)
		return nil, apiErr
	}
	if len(raw) == 0 {
		return nil, nil
	}
	return json.RawMessage(raw), nil
}
