package bitable

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/MrSnakeDoc/navsite/internal/domain"
	"github.com/MrSnakeDoc/navsite/internal/logger"
)

// Options configures a Client.
type Options struct {
	BaseURL   string        // ex: https://open.feishu.cn
	AppID     string        // application id
	AppSecret string        // application secret
	AppToken  string        // bitable app token
	TableID   string        // table id inside the app
	Timeout   time.Duration // per remote call (0 = 10s)
	MaxPages  int           // page cap when listing records (0 = 10)

	HTTPClient *http.Client     // optional, for tests
	Now        func() time.Time // optional clock for the token cache
}

// Client talks to the multi-dimensional table service.
type Client struct {
	opts   Options
	http   *http.Client
	tokens *TokenCache
	logger logger.Logger
}

// New builds a client. It does not perform any network call.
func New(opts Options, log logger.Logger) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = 10
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}

	c := &Client{opts: opts, http: hc, logger: log}
	c.tokens = NewTokenCache(c.exchange, opts.Now)
	return c
}

// Name identifies the backend in logs and status pages.
func (c *Client) Name() string { return "bitable" }

// Tokens exposes the token cache (warmer, status).
func (c *Client) Tokens() *TokenCache { return c.tokens }

// Token returns a cached or freshly exchanged tenant access token.
func (c *Client) Token(ctx context.Context) (string, error) {
	return c.tokens.Token(ctx)
}

func (c *Client) exchange(ctx context.Context) (string, int, error) {
	c.logger.Info("exchanging app credentials for tenant access token")

	var resp tokenResponse
	err := c.do(ctx, http.MethodPost, "/open-apis/auth/v3/tenant_access_token/internal", "",
		tokenRequest{AppID: c.opts.AppID, AppSecret: c.opts.AppSecret}, &resp)
	if err != nil {
		c.logger.Error("tenant access token exchange failed", logger.Error(err))
		return "", 0, &domain.AuthError{Err: err}
	}
	if resp.Code != 0 {
		c.logger.Error("tenant access token rejected",
			logger.Int("code", resp.Code),
			logger.String("msg", resp.Msg))
		return "", 0, &domain.AuthError{Code: resp.Code, Msg: resp.Msg}
	}
	return resp.TenantAccessToken, resp.Expire, nil
}

// ListRecords returns every record of the table, following page tokens up to MaxPages.
func (c *Client) ListRecords(ctx context.Context) ([]domain.RawRecord, error) {
	token, err := c.Token(ctx)
	if err != nil {
		return nil, err
	}

	var (
		records   []domain.RawRecord
		pageToken string
	)
	for page := 0; page < c.opts.MaxPages; page++ {
		q := url.Values{}
		q.Set("page_size", strconv.Itoa(DefaultPageSize))
		if pageToken != "" {
			q.Set("page_token", pageToken)
		}

		var resp listResponse
		if err := c.do(ctx, http.MethodGet, c.recordsPath()+"?"+q.Encode(), token, nil, &resp); err != nil {
			return nil, fmt.Errorf("list records: %w", err)
		}
		if resp.Code != 0 {
			return nil, &domain.RemoteAPIError{Op: "list records", Code: resp.Code, Msg: resp.Msg}
		}
		records = append(records, resp.Data.Items...)

		if !resp.Data.HasMore || resp.Data.PageToken == "" {
			return records, nil
		}
		pageToken = resp.Data.PageToken
	}

	c.logger.Warn("record listing truncated at page limit",
		logger.Int("max_pages", c.opts.MaxPages),
		logger.Int("records", len(records)))
	return records, nil
}

// CreateRecord inserts a record and returns it as stored remotely.
func (c *Client) CreateRecord(ctx context.Context, fields domain.Fields) (domain.RawRecord, error) {
	token, err := c.Token(ctx)
	if err != nil {
		return domain.RawRecord{}, err
	}

	var resp createResponse
	if err := c.do(ctx, http.MethodPost, c.recordsPath(), token, createRequest{Fields: fields}, &resp); err != nil {
		return domain.RawRecord{}, fmt.Errorf("create record: %w", err)
	}
	if resp.Code != 0 {
		return domain.RawRecord{}, &domain.RemoteAPIError{Op: "create record", Code: resp.Code, Msg: resp.Msg}
	}
	return resp.Data.Record, nil
}

// DeleteRecord removes a record by id.
func (c *Client) DeleteRecord(ctx context.Context, id string) error {
	token, err := c.Token(ctx)
	if err != nil {
		return err
	}

	var resp deleteResponse
	if err := c.do(ctx, http.MethodDelete, c.recordsPath()+"/"+url.PathEscape(id), token, nil, &resp); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	if resp.Code != 0 {
		return &domain.RemoteAPIError{Op: "delete record", Code: resp.Code, Msg: resp.Msg}
	}
	return nil
}

func (c *Client) recordsPath() string {
	return fmt.Sprintf("/open-apis/bitable/v1/apps/%s/tables/%s/records",
		url.PathEscape(c.opts.AppToken), url.PathEscape(c.opts.TableID))
}

// do sends a JSON request and decodes the JSON body into out. The remote
// service reports business errors in the body, so any decodable body is
// handed back even with a non-2xx status.
func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	var body io.Reader = http.NoBody
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.opts.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("unexpected response (status %d): %w", resp.StatusCode, err)
	}
	return nil
}
