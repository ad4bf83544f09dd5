package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
)

const userAgent = "MediSaarthi-Client/1.0"

// Doer is the subset of *http.Client used by the adapter
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client performs calls against the lab analytics API
type Client struct {
	baseURL string
	http    Doer
}

// Response is a parsed API reply. HTTP-level failures are not treated as
// errors here; the payload decides.
type Response struct {
	StatusCode int
	Body       json.RawMessage
}

// Envelope is the success/failure wrapper shared by most endpoints
type Envelope struct {
	Success *bool  `json:"success"`
	Message string `json:"message"`
	Detail  any    `json:"detail"`
}

// NewClient creates a client for the given base URL. A nil doer uses an
// http.Client without timeout.
func NewClient(baseURL string, doer Doer) (*Client, error) {
	parsed, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("invalid base url %q: scheme must be http or https", baseURL)
	}
	if doer == nil {
		doer = &http.Client{}
	}
	return &Client{
		baseURL: strings.TrimRight(parsed.String(), "/"),
		http:    doer,
	}, nil
}

// BaseURL returns the normalized API base
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Call issues a JSON request. body is marshalled when non-nil.
func (c *Client) Call(ctx context.Context, method, path string, body any) (*Response, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, &TransportError{Op: method, Path: path, Err: fmt.Errorf("failed to marshal request: %w", err)}
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), reqBody)
	if err != nil {
		return nil, &TransportError{Op: method, Path: path, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, path)
}

// Upload sends content as a multipart form file under field
func (c *Client) Upload(ctx context.Context, path, field, fileName string, content []byte) (*Response, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(field, fileName)
	if err != nil {
		return nil, &TransportError{Op: http.MethodPost, Path: path, Err: err}
	}
	if _, err := part.Write(content); err != nil {
		return nil, &TransportError{Op: http.MethodPost, Path: path, Err: err}
	}
	if err := writer.Close(); err != nil {
		return nil, &TransportError{Op: http.MethodPost, Path: path, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path), &buf)
	if err != nil {
		return nil, &TransportError{Op: http.MethodPost, Path: path, Err: err}
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return c.do(req, path)
}

// Probe performs a GET and reports only the status code
func (c *Client) Probe(ctx context.Context, path string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(path), nil)
	if err != nil {
		return 0, &TransportError{Op: http.MethodGet, Path: path, Err: err}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, &TransportError{Op: http.MethodGet, Path: path, Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode, nil
}

func (c *Client) do(req *http.Request, path string) (*Response, error) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Op: req.Method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: req.Method, Path: path, Err: fmt.Errorf("failed to read response: %w", err)}
	}
	if !json.Valid(data) {
		return nil, &TransportError{
			Op:   req.Method,
			Path: path,
			Err:  fmt.Errorf("%w (status %d)", ErrMalformedResponse, resp.StatusCode),
		}
	}

	return &Response{StatusCode: resp.StatusCode, Body: json.RawMessage(data)}, nil
}

func (c *Client) url(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

// Decode unmarshals the body into v
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Envelope extracts the success/message/detail wrapper. Bodies that are not
// JSON objects yield an empty envelope.
func (r *Response) Envelope() Envelope {
	var env Envelope
	_ = json.Unmarshal(r.Body, &env)
	return env
}

// Succeeded reports whether the payload carries success:true
func (e Envelope) Succeeded() bool {
	return e.Success != nil && *e.Success
}

// Reason returns the server-supplied explanation: message first, then a
// FastAPI style detail.
func (e Envelope) Reason() string {
	if msg := strings.TrimSpace(e.Message); msg != "" {
		return msg
	}
	switch d := e.Detail.(type) {
	case string:
		return strings.TrimSpace(d)
	case nil:
		return ""
	default:
		data, err := json.Marshal(d)
		if err != nil {
			return ""
		}
		return string(data)
	}
}

// Check returns an *ApplicationError when the payload signals failure
func (r *Response) Check() error {
	env := r.Envelope()
	if env.Succeeded() {
		return nil
	}
	return &ApplicationError{StatusCode: r.StatusCode, Message: env.Reason()}
}
