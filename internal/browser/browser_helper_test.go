// internal/browser/browser_helper_test.go
package browser

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// fakeDriver is an in-memory Driver. Navigating to the feed lands on the
// login page unless acceptToken matches the injected li_at value.
type fakeDriver struct {
	mu sync.Mutex

	acceptToken string
	url         string
	cookies     []Cookie
	navigations []string
	scripts     []string

	evalResult    any
	pageSource    string
	navigateErr   error
	rejectCookies map[string]bool
	quitErr       error
	quitCalls     int
}

var _ Driver = (*fakeDriver)(nil)

func (d *fakeDriver) Navigate(ctx context.Context, url string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.navigateErr != nil {
		return d.navigateErr
	}
	d.navigations = append(d.navigations, url)
	d.url = url
	if strings.HasPrefix(url, LinkedInFeedURL) && !d.hasValidTokenLocked() {
		d.url = "https://www.linkedin.com/uas/login?session_redirect=feed"
	}
	return nil
}

func (d *fakeDriver) hasValidTokenLocked() bool {
	for _, c := range d.cookies {
		if c.Name == AuthCookieName && c.Value == d.acceptToken && d.acceptToken != "" {
			return true
		}
	}
	return false
}

func (d *fakeDriver) Evaluate(ctx context.Context, script string) (any, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.scripts = append(d.scripts, script)
	return d.evalResult, nil
}

func (d *fakeDriver) Cookies(ctx context.Context) ([]Cookie, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Cookie(nil), d.cookies...), nil
}

func (d *fakeDriver) SetCookie(ctx context.Context, c Cookie) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.rejectCookies[c.Name] {
		return errors.New("invalid cookie domain")
	}
	d.cookies = append(d.cookies, c)
	return nil
}

func (d *fakeDriver) PageSource(ctx context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pageSource, nil
}

func (d *fakeDriver) CurrentURL(ctx context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.url, nil
}

func (d *fakeDriver) Quit(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.quitCalls++
	return d.quitErr
}

func (d *fakeDriver) quits() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.quitCalls
}
