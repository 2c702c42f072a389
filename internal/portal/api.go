package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/MrSnakeDoc/navsite/internal/domain"
)

// Payload is the navigation read response as the client sees it.
type Payload struct {
	Success    bool                  `json:"success"`
	Data       *domain.NavigationMap `json:"data"`
	Categories []string              `json:"categories"`
	Timestamp  string                `json:"timestamp,omitempty"`
	DateInfo   domain.DateInfo       `json:"dateInfo"`
	IsMockData bool                  `json:"isMockData,omitempty"`
}

// MutationResult is the body of a create or delete response.
type MutationResult struct {
	Success bool             `json:"success"`
	Message string           `json:"message,omitempty"`
	Data    domain.RawRecord `json:"data,omitempty"`
}

// NetworkError means the request never produced a response.
type NetworkError struct{ Err error }

func (e *NetworkError) Error() string { return "network error: " + e.Err.Error() }
func (e *NetworkError) Unwrap() error { return e.Err }

// BadResponseError is a non-2xx status or an unexpected content type.
type BadResponseError struct {
	Status      int
	ContentType string
	Message     string
}

func (e *BadResponseError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("bad response (status %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("bad response (status %d, content type %q)", e.Status, e.ContentType)
}

// ParseError is a body that could not be decoded.
type ParseError struct{ Err error }

func (e *ParseError) Error() string { return "parse error: " + e.Err.Error() }
func (e *ParseError) Unwrap() error { return e.Err }

// APIClient calls the portal server.
type APIClient struct {
	baseURL string
	http    *http.Client
}

// NewAPIClient targets baseURL (ex: http://localhost:3000).
func NewAPIClient(baseURL string, hc *http.Client) *APIClient {
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	return &APIClient{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

// BaseURL returns the server address.
func (c *APIClient) BaseURL() string { return c.baseURL }

// FaviconURL returns the proxy address for a site url.
func (c *APIClient) FaviconURL(siteURL string) string {
	return c.baseURL + "/api/favicon?url=" + url.QueryEscape(siteURL)
}

// FetchNavigation reads the navigation endpoint.
func (c *APIClient) FetchNavigation(ctx context.Context) (Payload, error) {
	var p Payload
	if err := c.do(ctx, http.MethodGet, "/api/navigation", nil, &p); err != nil {
		return Payload{}, err
	}
	return p, nil
}

// CreateLink posts a new link.
func (c *APIClient) CreateLink(ctx context.Context, link domain.NewLink) (MutationResult, error) {
	var res MutationResult
	err := c.do(ctx, http.MethodPost, "/api/links", link, &res)
	return res, err
}

// DeleteLink deletes a link by id.
func (c *APIClient) DeleteLink(ctx context.Context, id string) (MutationResult, error) {
	var res MutationResult
	err := c.do(ctx, http.MethodDelete, "/api/links/"+url.PathEscape(id), nil, &res)
	return res, err
}

func (c *APIClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader = http.NoBody
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return &NetworkError{Err: err}
	}

	ct := resp.Header.Get("Content-Type")
	mt, _, _ := mime.ParseMediaType(ct)
	if mt != "application/json" {
		return &BadResponseError{Status: resp.StatusCode, ContentType: ct}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var res MutationResult
		_ = json.Unmarshal(data, &res)
		return &BadResponseError{Status: resp.StatusCode, ContentType: ct, Message: res.Message}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &ParseError{Err: err}
	}
	return nil
}
