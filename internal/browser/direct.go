// internal/browser/direct.go
package browser

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DirectSession is a Session backed by a locally launched browser.
type DirectSession struct {
	id     string
	driver Driver
	logger *zap.Logger

	mu       sync.Mutex
	isClosed bool
}

var _ Session = (*DirectSession)(nil)

// NewDirectSession wraps an already running driver. The session takes
// ownership: Close quits the driver.
func NewDirectSession(driver Driver, logger *zap.Logger) *DirectSession {
	if logger == nil {
		logger = zap.NewNop()
	}
	id := uuid.New().String()
	return &DirectSession{
		id:     id,
		driver: driver,
		logger: logger.Named("direct_session").With(zap.String("session_id", id)),
	}
}

// ID returns the locally generated session identifier.
func (s *DirectSession) ID() string { return s.id }

func (s *DirectSession) checkOpen(op string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isClosed {
		return fmt.Errorf("%s: %w", op, ErrSessionClosed)
	}
	return nil
}

func (s *DirectSession) Navigate(ctx context.Context, url string) error {
	if err := s.checkOpen("navigate"); err != nil {
		return err
	}
	if err := s.driver.Navigate(ctx, url); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	return nil
}

func (s *DirectSession) ExecuteScript(ctx context.Context, script string) (any, error) {
	if err := s.checkOpen("execute script"); err != nil {
		return nil, err
	}
	result, err := s.driver.Evaluate(ctx, script)
	if err != nil {
		return nil, fmt.Errorf("execute script: %w", err)
	}
	return result, nil
}

func (s *DirectSession) GetCookies(ctx context.Context, domain string) ([]Cookie, error) {
	if err := s.checkOpen("get cookies"); err != nil {
		return nil, err
	}
	cookies, err := s.driver.Cookies(ctx)
	if err != nil {
		return nil, fmt.Errorf("get cookies: %w", err)
	}
	return FilterCookies(cookies, domain), nil
}

// SetCookies installs each cookie in turn. A cookie the browser refuses is
// logged and skipped; the rest are still applied.
func (s *DirectSession) SetCookies(ctx context.Context, cookies []Cookie) error {
	if err := s.checkOpen("set cookies"); err != nil {
		return err
	}
	for _, c := range cookies {
		if err := s.driver.SetCookie(ctx, c); err != nil {
			s.logger.Warn("Failed to set cookie.", zap.String("name", c.Name), zap.String("domain", c.Domain), zap.Error(err))
		}
	}
	return nil
}

func (s *DirectSession) GetPageSource(ctx context.Context) (string, error) {
	if err := s.checkOpen("get page source"); err != nil {
		return "", err
	}
	html, err := s.driver.PageSource(ctx)
	if err != nil {
		return "", fmt.Errorf("get page source: %w", err)
	}
	return html, nil
}

func (s *DirectSession) GetCurrentURL(ctx context.Context) (string, error) {
	if err := s.checkOpen("get current url"); err != nil {
		return "", err
	}
	url, err := s.driver.CurrentURL(ctx)
	if err != nil {
		return "", fmt.Errorf("get current url: %w", err)
	}
	return url, nil
}

// Close quits the browser. It always succeeds.
func (s *DirectSession) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.isClosed {
		s.mu.Unlock()
		return nil
	}
	s.isClosed = true
	s.mu.Unlock()

	s.logger.Debug("Closing direct browser session.")
	if err := s.driver.Quit(ctx); err != nil {
		s.logger.Warn("Error while quitting browser.", zap.Error(err))
	}
	return nil
}

func (s *DirectSession) IsBridgeSession() bool { return false }
