// Package bridge talks to a remote browser bridge over HTTP and exposes its
// sessions through the browser.Session interface.
package bridge

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/linkedin-mcp/internal/browser"
	"github.com/xkilldash9x/linkedin-mcp/internal/config"
	"github.com/xkilldash9x/linkedin-mcp/internal/metrics"
	"github.com/xkilldash9x/linkedin-mcp/internal/network"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// maxResponseBytes caps how much of a bridge response is read. Page sources
// of large profiles run to a few megabytes.
const maxResponseBytes = 32 << 20

// opHealth labels the health probe, the only call that ignores the body.
const opHealth = "health"

// Transport is the set of bridge endpoints. *Client is the HTTP
// implementation.
type Transport interface {
	HealthCheck(ctx context.Context) bool
	CreateSession(ctx context.Context, profileName string, headless bool) (string, error)
	CloseSession(ctx context.Context, sessionID string) error
	ListSessions(ctx context.Context) ([]RemoteSession, error)
	Navigate(ctx context.Context, sessionID, url string) error
	ExecuteScript(ctx context.Context, sessionID, script string) (any, error)
	GetCookies(ctx context.Context, sessionID, domain string) ([]browser.Cookie, error)
	SetCookies(ctx context.Context, sessionID string, cookies []browser.Cookie) error
	GetPageSource(ctx context.Context, sessionID string) (string, error)
	GetCurrentURL(ctx context.Context, sessionID string) (string, error)
	Close() error
}

// RemoteSession is one entry of the bridge's session listing. The bridge
// decides its fields.
type RemoteSession map[string]any

// ID returns the session id under either of the keys bridges use for it.
func (r RemoteSession) ID() string {
	for _, key := range []string{"sessionId", "id"} {
		if v, ok := r[key].(string); ok {
			return v
		}
	}
	return ""
}

// Client is the HTTP client for the bridge API. The underlying HTTP client
// is created on first use and rebuilt after Close, so a closed Client can be
// used again.
type Client struct {
	baseURL      string
	userDataRoot string
	httpConfig   *network.ClientConfig
	logger       *zap.Logger
	metrics      *metrics.Collector

	mu sync.Mutex
	hc *network.Client
}

var _ Transport = (*Client)(nil)

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithMetrics records request latency on m.
func WithMetrics(m *metrics.Collector) ClientOption {
	return func(c *Client) { c.metrics = m }
}

// WithHTTPConfig overrides the transport settings.
func WithHTTPConfig(cfg *network.ClientConfig) ClientOption {
	return func(c *Client) { c.httpConfig = cfg }
}

// NewClient creates a client for the bridge described by cfg.
func NewClient(cfg config.BridgeConfig, logger *zap.Logger, opts ...ClientOption) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("bridge_client")

	httpConfig := network.NewDefaultClientConfig(logger)
	if cfg.Timeout > 0 {
		httpConfig.RequestTimeout = cfg.Timeout
		httpConfig.ResponseHeaderTimeout = cfg.Timeout
	}

	root := cfg.UserDataRoot
	if root == "" {
		root = "/tmp"
	}

	c := &Client{
		baseURL:      strings.TrimRight(cfg.URL, "/"),
		userDataRoot: root,
		httpConfig:   httpConfig,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the bridge address without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) httpClient() *network.Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.hc == nil {
		c.hc = network.NewClient(c.httpConfig)
	}
	return c.hc
}

// Close drops pooled connections. The next request builds a new HTTP client.
func (c *Client) Close() error {
	c.mu.Lock()
	hc := c.hc
	c.hc = nil
	c.mu.Unlock()

	if hc != nil {
		hc.CloseIdleConnections()
		c.logger.Debug("Closed bridge HTTP client.")
	}
	return nil
}

// do sends one request. Any transport failure, non-2xx status or body that
// does not decode into out becomes a *ConnectionError. An empty body leaves
// out untouched.
func (c *Client) do(ctx context.Context, op, method, endpoint string, query url.Values, body, out any) (err error) {
	start := time.Now()
	defer func() { c.metrics.ObserveBridgeRequest(op, err, time.Since(start)) }()

	target := c.baseURL + endpoint
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	connErr := func(status int, msg string, cause error) error {
		return &ConnectionError{Method: method, URL: target, StatusCode: status, Message: msg, Err: cause}
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return connErr(0, "encode request", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return connErr(0, "build request", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("Bridge request.", zap.String("method", method), zap.String("url", target))
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return connErr(0, "", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return connErr(resp.StatusCode, "read response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return connErr(resp.StatusCode, snippet(data), nil)
	}

	// The health probe only cares about the status code.
	if op == opHealth {
		return nil
	}

	// Every other endpoint answers with a JSON object. An empty body is only
	// acceptable when the caller reads nothing from it.
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		if out != nil {
			return connErr(resp.StatusCode, "empty response body", nil)
		}
		return nil
	}
	if data[0] != '{' || !json.Valid(data) {
		return connErr(resp.StatusCode, "invalid JSON response", fmt.Errorf("body is not a JSON object: %s", snippet(data)))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return connErr(resp.StatusCode, "invalid JSON response", err)
	}
	return nil
}

func snippet(data []byte) string {
	const max = 200
	s := strings.TrimSpace(string(data))
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}

func sessionPath(sessionID string, suffix ...string) string {
	return "/sessions/" + url.PathEscape(sessionID) + strings.Join(suffix, "")
}

// HealthCheck reports whether GET /health answers with a 2xx status.
func (c *Client) HealthCheck(ctx context.Context) bool {
	if err := c.do(ctx, opHealth, http.MethodGet, "/health", nil, nil, nil); err != nil {
		c.logger.Debug("Bridge health check failed.", zap.Error(err))
		return false
	}
	return true
}

type createSessionRequest struct {
	ProfileName string `json:"profileName"`
	Headless    bool   `json:"headless"`
	UserDataDir string `json:"userDataDir"`
}

// UserDataDir is the browser profile directory the bridge is asked to use
// for profileName.
func (c *Client) UserDataDir(profileName string) string {
	return path.Join(c.userDataRoot, "chrome-bridge-"+profileName)
}

// CreateSession asks the bridge for a new browser and returns its id.
func (c *Client) CreateSession(ctx context.Context, profileName string, headless bool) (string, error) {
	req := createSessionRequest{
		ProfileName: profileName,
		Headless:    headless,
		UserDataDir: c.UserDataDir(profileName),
	}
	var resp struct {
		SessionID string `json:"sessionId"`
	}
	if err := c.do(ctx, "create_session", http.MethodPost, "/sessions", nil, req, &resp); err != nil {
		return "", err
	}
	if resp.SessionID == "" {
		return "", &SessionError{Op: "create", Message: "bridge did not return a session id"}
	}
	c.logger.Info("Created bridge session.", zap.String("session_id", resp.SessionID), zap.String("profile", profileName))
	return resp.SessionID, nil
}

func (c *Client) CloseSession(ctx context.Context, sessionID string) error {
	if err := c.do(ctx, "close_session", http.MethodDelete, sessionPath(sessionID), nil, nil, nil); err != nil {
		return err
	}
	c.logger.Info("Closed bridge session.", zap.String("session_id", sessionID))
	return nil
}

func (c *Client) ListSessions(ctx context.Context) ([]RemoteSession, error) {
	var resp struct {
		Sessions []RemoteSession `json:"sessions"`
	}
	if err := c.do(ctx, "list_sessions", http.MethodGet, "/sessions", nil, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Sessions == nil {
		return []RemoteSession{}, nil
	}
	return resp.Sessions, nil
}

func (c *Client) Navigate(ctx context.Context, sessionID, target string) error {
	body := map[string]string{"url": target}
	if err := c.do(ctx, "navigate", http.MethodPost, sessionPath(sessionID, "/navigate"), nil, body, nil); err != nil {
		return err
	}
	c.logger.Debug("Navigated bridge session.", zap.String("session_id", sessionID), zap.String("url", target))
	return nil
}

// ExecuteScript runs a function body in the session and returns the
// decoded "result" field, nil when absent.
func (c *Client) ExecuteScript(ctx context.Context, sessionID, script string) (any, error) {
	var resp struct {
		Result any `json:"result"`
	}
	body := map[string]string{"script": script}
	if err := c.do(ctx, "execute", http.MethodPost, sessionPath(sessionID, "/execute"), nil, body, &resp); err != nil {
		return nil, err
	}
	return resp.Result, nil
}

func (c *Client) GetCookies(ctx context.Context, sessionID, domain string) ([]browser.Cookie, error) {
	var query url.Values
	if domain != "" {
		query = url.Values{"domain": {domain}}
	}
	var resp struct {
		Cookies []browser.Cookie `json:"cookies"`
	}
	if err := c.do(ctx, "get_cookies", http.MethodGet, sessionPath(sessionID, "/cookies"), query, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Cookies == nil {
		return []browser.Cookie{}, nil
	}
	return resp.Cookies, nil
}

func (c *Client) SetCookies(ctx context.Context, sessionID string, cookies []browser.Cookie) error {
	body := map[string][]browser.Cookie{"cookies": cookies}
	if err := c.do(ctx, "set_cookies", http.MethodPost, sessionPath(sessionID, "/cookies"), nil, body, nil); err != nil {
		return err
	}
	c.logger.Debug("Set cookies in bridge session.", zap.String("session_id", sessionID), zap.Int("count", len(cookies)))
	return nil
}

func (c *Client) GetPageSource(ctx context.Context, sessionID string) (string, error) {
	var resp struct {
		Source string `json:"source"`
	}
	if err := c.do(ctx, "get_source", http.MethodGet, sessionPath(sessionID, "/source"), nil, nil, &resp); err != nil {
		return "", err
	}
	return resp.Source, nil
}

func (c *Client) GetCurrentURL(ctx context.Context, sessionID string) (string, error) {
	var resp struct {
		URL string `json:"url"`
	}
	if err := c.do(ctx, "get_url", http.MethodGet, sessionPath(sessionID, "/url"), nil, nil, &resp); err != nil {
		return "", err
	}
	return resp.URL, nil
}
