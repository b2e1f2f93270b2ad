package bridge

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/linkedin-mcp/internal/browser"
)

// Session is a browser.Session whose browser lives behind the bridge.
type Session struct {
	id        string
	transport Transport
	logger    *zap.Logger
	settle    time.Duration

	mu            sync.Mutex
	isClosed      bool
	authenticated bool
}

var _ browser.Session = (*Session)(nil)

// NewSession wraps an existing remote session id. settle is the pause used
// by Authenticate; zero means browser.DefaultAuthSettleDelay.
func NewSession(id string, transport Transport, settle time.Duration, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	if settle == 0 {
		settle = browser.DefaultAuthSettleDelay
	}
	return &Session{
		id:        id,
		transport: transport,
		settle:    settle,
		logger:    logger.Named("bridge_session").With(zap.String("session_id", id)),
	}
}

// ID returns the id issued by the bridge.
func (s *Session) ID() string { return s.id }

// Authenticated reports whether the last Authenticate call succeeded.
func (s *Session) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}

// Authenticate logs the remote browser in with token. It never returns an
// error; failures are logged and reported as false.
func (s *Session) Authenticate(ctx context.Context, token string) bool {
	ok := browser.AuthenticateLinkedIn(ctx, s, token, s.settle, s.logger)
	s.mu.Lock()
	s.authenticated = ok
	s.mu.Unlock()
	return ok
}

func (s *Session) checkOpen(op string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isClosed {
		return fmt.Errorf("%s: %w", op, browser.ErrSessionClosed)
	}
	return nil
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	if err := s.checkOpen("navigate"); err != nil {
		return err
	}
	return s.transport.Navigate(ctx, s.id, url)
}

func (s *Session) ExecuteScript(ctx context.Context, script string) (any, error) {
	if err := s.checkOpen("execute script"); err != nil {
		return nil, err
	}
	return s.transport.ExecuteScript(ctx, s.id, script)
}

func (s *Session) GetCookies(ctx context.Context, domain string) ([]browser.Cookie, error) {
	if err := s.checkOpen("get cookies"); err != nil {
		return nil, err
	}
	return s.transport.GetCookies(ctx, s.id, domain)
}

func (s *Session) SetCookies(ctx context.Context, cookies []browser.Cookie) error {
	if err := s.checkOpen("set cookies"); err != nil {
		return err
	}
	return s.transport.SetCookies(ctx, s.id, cookies)
}

func (s *Session) GetPageSource(ctx context.Context) (string, error) {
	if err := s.checkOpen("get page source"); err != nil {
		return "", err
	}
	return s.transport.GetPageSource(ctx, s.id)
}

func (s *Session) GetCurrentURL(ctx context.Context) (string, error) {
	if err := s.checkOpen("get current url"); err != nil {
		return "", err
	}
	return s.transport.GetCurrentURL(ctx, s.id)
}

// Close asks the bridge to release the session. The session is closed
// locally even when that request fails; the failure is only logged.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.isClosed {
		s.mu.Unlock()
		return nil
	}
	s.isClosed = true
	s.authenticated = false
	s.mu.Unlock()

	if err := s.transport.CloseSession(ctx, s.id); err != nil {
		s.logger.Warn("Failed to close bridge session.", zap.Error(err))
	}
	return nil
}

func (s *Session) IsBridgeSession() bool { return true }
