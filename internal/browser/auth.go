// internal/browser/auth.go
package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultAuthSettleDelay is the pause between loading the feed and checking
// where LinkedIn left us.
const DefaultAuthSettleDelay = 2 * time.Second

// loginMarker appears in every URL LinkedIn redirects to when the session
// cookie is rejected (/login, /uas/login, /checkpoint/lg/login...).
const loginMarker = "login"

// AuthenticateLinkedIn injects the li_at cookie into s and reports whether
// LinkedIn accepted it. It never returns an error: any failure along the way
// is logged and reported as false.
func AuthenticateLinkedIn(ctx context.Context, s Session, token string, settle time.Duration, logger *zap.Logger) bool {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := authenticate(ctx, s, token, settle); err != nil {
		logger.Warn("LinkedIn authentication failed.", zap.Error(err))
		return false
	}
	logger.Info("LinkedIn authentication succeeded.")
	return true
}

func authenticate(ctx context.Context, s Session, token string, settle time.Duration) error {
	// 1. The cookie domain must be the current origin before it can be set.
	if err := s.Navigate(ctx, LinkedInHomeURL); err != nil {
		return fmt.Errorf("navigate to home: %w", err)
	}

	// 2. Inject the session cookie.
	if err := s.SetCookies(ctx, []Cookie{AuthCookie(token)}); err != nil {
		return fmt.Errorf("inject auth cookie: %w", err)
	}

	// 3. Load a page that requires a login.
	if err := s.Navigate(ctx, LinkedInFeedURL); err != nil {
		return fmt.Errorf("navigate to feed: %w", err)
	}

	// 4. Let redirects settle.
	if err := Sleep(ctx, settle); err != nil {
		return err
	}

	// 5. Bounced to a login page means the cookie was rejected.
	current, err := s.GetCurrentURL(ctx)
	if err != nil {
		return fmt.Errorf("read current url: %w", err)
	}
	if IsLoginURL(current) {
		return fmt.Errorf("%w: redirected to %s", ErrAuthenticationFailed, current)
	}
	return nil
}

// IsLoginURL reports whether url is one of LinkedIn's login pages.
func IsLoginURL(url string) bool {
	return strings.Contains(url, loginMarker)
}

// Sleep waits for d or until ctx is done, whichever comes first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
