// internal/browser/session.go
package browser

import (
	"context"
	"errors"
	"strings"
)

// LinkedIn endpoints and cookie facts shared by every transport.
const (
	LinkedInHomeURL = "https://www.linkedin.com"
	LinkedInFeedURL = "https://www.linkedin.com/feed/"

	AuthCookieName   = "li_at"
	AuthCookieDomain = ".linkedin.com"
	AuthCookiePath   = "/"
)

var (
	// ErrSessionClosed is returned by every Session operation after Close.
	ErrSessionClosed = errors.New("browser session is closed")
	// ErrAuthenticationFailed means LinkedIn rejected the injected cookie.
	ErrAuthenticationFailed = errors.New("linkedin authentication failed")
)

// Session is the transport-agnostic handle handed to extraction code.
// Implementations must be safe for concurrent use.
//
// Close is idempotent and never reports a failure; problems releasing the
// underlying browser are logged instead. Every other method returns an error
// wrapping ErrSessionClosed once Close has been called.
type Session interface {
	Navigate(ctx context.Context, url string) error
	// ExecuteScript runs a function body in the page. The body may use
	// return; its value is decoded from JSON into Go values.
	ExecuteScript(ctx context.Context, script string) (any, error)
	// GetCookies returns the page cookies. A non-empty domain restricts the
	// result to cookies whose domain ends with it.
	GetCookies(ctx context.Context, domain string) ([]Cookie, error)
	SetCookies(ctx context.Context, cookies []Cookie) error
	GetPageSource(ctx context.Context) (string, error)
	GetCurrentURL(ctx context.Context) (string, error)
	Close(ctx context.Context) error
	IsBridgeSession() bool
}

// Cookie is the wire and in-memory representation of a browser cookie.
type Cookie struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Domain   string `json:"domain,omitempty"`
	Path     string `json:"path,omitempty"`
	Secure   bool   `json:"secure"`
	HTTPOnly bool   `json:"httpOnly"`
}

// NormalizeToken strips an optional leading "li_at=" prefix so both the raw
// cookie value and a copied "name=value" pair are accepted. Anything else is
// returned unchanged.
func NormalizeToken(token string) string {
	return strings.TrimPrefix(token, AuthCookieName+"=")
}

// AuthCookie builds the LinkedIn session cookie for a token.
func AuthCookie(token string) Cookie {
	return Cookie{
		Name:     AuthCookieName,
		Value:    NormalizeToken(token),
		Domain:   AuthCookieDomain,
		Path:     AuthCookiePath,
		Secure:   true,
		HTTPOnly: true,
	}
}

// FilterCookies keeps the cookies whose domain ends with domain. An empty
// domain keeps everything.
func FilterCookies(cookies []Cookie, domain string) []Cookie {
	if domain == "" {
		return cookies
	}
	filtered := make([]Cookie, 0, len(cookies))
	for _, c := range cookies {
		if strings.HasSuffix(c.Domain, domain) {
			filtered = append(filtered, c)
		}
	}
	return filtered
}
