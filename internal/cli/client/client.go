package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrUnauthorized is returned by the authenticated client when the
	// server rejects the token. The session has been cleared by then.
	ErrUnauthorized = errors.New("session expired or not authenticated")

	// ErrEmptyPayload is returned when a download succeeds with no content
	ErrEmptyPayload = errors.New("empty file or not found")
)

// APIError is a non-2xx response from the ERP API
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed (status %d)", e.Status)
	}
	return fmt.Sprintf("request failed (status %d): %s", e.Status, e.Message)
}

// RequestHook runs on every request before it is sent
type RequestHook func(req *http.Request) error

// ResponseHook runs on every response before its status is checked. A
// hook error aborts the call and is returned to the caller.
type ResponseHook func(resp *http.Response) error

// Client represents an HTTP client for the ERP API
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client

	onRequest  []RequestHook
	onResponse []ResponseHook
}

// New creates a new API client for baseURL
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  UserAgent("dev"),
		httpClient: httpClient,
	}
}

// UserAgent returns the User-Agent sent by erpctl at version
func UserAgent(version string) string {
	return "erpctl/" + version
}

// BaseURL returns the API base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetUserAgent overrides the User-Agent header
func (c *Client) SetUserAgent(ua string) {
	c.userAgent = ua
}

// SetHTTPClient sets a custom HTTP client
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	c.httpClient = httpClient
}

// OnRequest appends a request hook
func (c *Client) OnRequest(h RequestHook) {
	c.onRequest = append(c.onRequest, h)
}

// OnResponse appends a response hook
func (c *Client) OnResponse(h ResponseHook) {
	c.onResponse = append(c.onResponse, h)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+strings.TrimLeft(path, "/"), reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())

	return req, nil
}

// send runs the hooks around the round trip. On success the caller owns
// the response body.
func (c *Client) send(req *http.Request) (*http.Response, error) {
	for _, h := range c.onRequest {
		if err := h(req); err != nil {
			return nil, err
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	for _, h := range c.onResponse {
		if err := h(resp); err != nil {
			resp.Body.Close()
			return nil, err
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, newAPIError(resp)
	}

	return resp, nil
}

func newAPIError(resp *http.Response) *APIError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	apiErr := &APIError{Status: resp.StatusCode}

	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &payload) == nil && (payload.Error != "" || payload.Message != "") {
		apiErr.Message = payload.Error
		if apiErr.Message == "" {
			apiErr.Message = payload.Message
		}
		return apiErr
	}

	apiErr.Message = strings.TrimSpace(string(body))
	return apiErr
}

// Do sends a JSON request and decodes the response into out (if not nil)
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	resp, err := c.send(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return decodeBody(resp, out)
}

func decodeBody(resp *http.Response, out any) error {
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// GetJSON performs a GET and decodes the JSON response into out
func (c *Client) GetJSON(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// PostJSON performs a POST with a JSON body and decodes the response into out
func (c *Client) PostJSON(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

// GetRaw performs a GET and returns the raw response body
func (c *Client) GetRaw(ctx context.Context, path string) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.send(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return data, nil
}

// Payload is a downloaded file
type Payload struct {
	Data        []byte
	ContentType string
	// Filename is the name suggested by Content-Disposition, if any
	Filename string
}

// Download fetches a binary payload (PDF or spreadsheet exports)
func (c *Client) Download(ctx context.Context, path string) (*Payload, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "*/*")

	resp, err := c.send(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyPayload, path)
	}

	payload := &Payload{Data: data, ContentType: resp.Header.Get("Content-Type")}
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			payload.Filename = safeFilename(params["filename"])
		}
	}
	return payload, nil
}

// safeFilename reduces a server-suggested name to its last element so a
// download can never be written outside the target directory. It returns
// "" for names with nothing usable left.
func safeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(path.Clean("/" + name))
	switch name {
	case "", ".", "..", "/":
		return ""
	}
	return name
}
