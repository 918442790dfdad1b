// Package api is the typed REST client for the Cofit backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/cofit/cofitcli/internal/client/client"
	"github.com/cofit/cofitcli/internal/client/gateway"
	"github.com/cofit/cofitcli/internal/common"
	"github.com/cofit/cofitcli/internal/logging"
)

const (
	AppTypeCofitPro = "cofitpro"

	smsCodeType  = "mobile_login_verify_code"
	signInSource = "cofit"

	maxResponseBody = 4 << 20
)

// AppName is the app_name the backend expects for an app type.
func AppName(appType string) string {
	if appType == AppTypeCofitPro {
		return "cofit_pro"
	}
	return "cofit_app"
}

// SignInBasePath is "users" for the pro app and "clients" otherwise.
func SignInBasePath(appType string) string {
	if appType == AppTypeCofitPro {
		return "users"
	}
	return "clients"
}

type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	appType    string
	logger     logging.Logger
}

// New builds a client for baseURL. httpClient should carry the auth gateway
// as its transport; nil means http.DefaultClient.
func New(baseURL string, httpClient *http.Client, appType string, logger logging.Logger) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid api url %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid api url %q: scheme and host are required", baseURL)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: u, httpClient: httpClient, appType: appType, logger: logger}, nil
}

type request struct {
	method string
	path   string
	query  url.Values
	body   any
	// login requests carry the placeholder auth headers
	login bool
}

func (c *Client) endpoint(path string, query url.Values) (string, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("invalid path %q: %w", path, err)
	}
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(ref.Path, "/")
	q := ref.Query()
	for k, vs := range query {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *Client) do(ctx context.Context, r request, out any) error {
	target, err := c.endpoint(r.path, r.query)
	if err != nil {
		return err
	}

	var body io.Reader
	if r.body != nil {
		b, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("failed to encode %s request: %w", r.path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", common.AcceptHeaderValue)
	if r.body != nil {
		req.Header.Set("Content-Type", common.JSONContentType)
	}
	if r.login {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPlaceholder)
		req.Header.Set(common.TokenHeaderName, "")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn(ctx, "api request failed", "method", r.method, "path", r.path, "error", err)
		return fmt.Errorf("%s %s: %w: %w", r.method, r.path, client.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", r.path, err)
	}

	c.logger.Debug(ctx, "api request", "method", r.method, "path", r.path, "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newAPIError(resp.StatusCode, data)
		if resp.StatusCode == http.StatusUnauthorized && !gateway.IsLoginPath(r.path) {
			return &client.SessionExpiredError{Path: r.path, Err: apiErr}
		}
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", r.path, err)
	}
	return nil
}

func (c *Client) SendSMSCode(ctx context.Context, mobile string) (*SendSMSCodeResponse, error) {
	var out SendSMSCodeResponse
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/v4/clients/mobile_sms_code",
		body: SendSMSCodeRequest{
			AppName: AppName(c.appType),
			Mobile:  mobile,
			Type:    smsCodeType,
			T:       1,
		},
		login: true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RegisterMobileWithCode(ctx context.Context, mobile, code string) (*RegisterMobileResponse, error) {
	var out RegisterMobileResponse
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/v4/clients/register_mobile_with_code",
		body:   RegisterMobileRequest{AppName: AppName(c.appType), Mobile: mobile, Code: code},
		login:  true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SignInWithEmail(ctx context.Context, email, password string) (*SignInResponse, error) {
	var out SignInResponse
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/v4/" + SignInBasePath(c.appType) + "/sign_in",
		body: SignInRequest{
			AppName:  AppName(c.appType),
			Source:   signInSource,
			Email:    email,
			Password: password,
		},
		login: true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// MediaUploadInfo requests an upload ticket for a file with extension
// extname taken on date (YYYY-MM-DD).
func (c *Client) MediaUploadInfo(ctx context.Context, extname, date string) (*MediaUploadInfo, error) {
	var out MediaUploadInfo
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/v4/notes/media_upload_info",
		query:  url.Values{"extname": {extname}, "date": {date}},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Get fetches an arbitrary authenticated resource and returns its JSON body.
func (c *Client) Get(ctx context.Context, path string) (json.RawMessage, error) {
	var out json.RawMessage
	if err := c.do(ctx, request{method: http.MethodGet, path: path}, &out); err != nil {
		return nil, err
	}
	return out, nil
}
