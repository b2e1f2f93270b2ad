// internal/browser/driver.go
package browser

import (
	"context"
	"fmt"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Driver is the raw automation handle a DirectSession wraps. It has no
// lifecycle rules of its own; DirectSession enforces those.
type Driver interface {
	Navigate(ctx context.Context, url string) error
	Evaluate(ctx context.Context, script string) (any, error)
	Cookies(ctx context.Context) ([]Cookie, error)
	SetCookie(ctx context.Context, c Cookie) error
	PageSource(ctx context.Context) (string, error)
	CurrentURL(ctx context.Context) (string, error)
	Quit(ctx context.Context) error
}

// cdpDriver drives one Chrome tab over the DevTools protocol.
type cdpDriver struct {
	// ctx is the chromedp tab context; it carries the CDP target.
	ctx         context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
}

var _ Driver = (*cdpDriver)(nil)

// run executes actions bounded by both the tab lifetime and the caller's ctx.
func (d *cdpDriver) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := CombineContext(d.ctx, ctx)
	defer cancel()
	return chromedp.Run(runCtx, actions...)
}

func (d *cdpDriver) Navigate(ctx context.Context, url string) error {
	return d.run(ctx, chromedp.Navigate(url))
}

// Evaluate wraps the body in a function and ships the result back as a JSON
// string, so undefined and null both come back as nil.
func (d *cdpDriver) Evaluate(ctx context.Context, script string) (any, error) {
	var raw string
	expr := fmt.Sprintf(`(function(){const __r=(function(){%s})();return __r===undefined?"null":JSON.stringify(__r);})()`, script)
	if err := d.run(ctx, chromedp.Evaluate(expr, &raw)); err != nil {
		return nil, err
	}

	var result any
	if err := json.UnmarshalFromString(raw, &result); err != nil {
		return nil, fmt.Errorf("decode script result: %w", err)
	}
	return result, nil
}

func (d *cdpDriver) Cookies(ctx context.Context) ([]Cookie, error) {
	var cdpCookies []*network.Cookie
	err := d.run(ctx, chromedp.ActionFunc(func(c context.Context) error {
		var err error
		cdpCookies, err = network.GetCookies().Do(c)
		return err
	}))
	if err != nil {
		return nil, err
	}

	cookies := make([]Cookie, 0, len(cdpCookies))
	for _, c := range cdpCookies {
		cookies = append(cookies, Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HTTPOnly: c.HTTPOnly,
		})
	}
	return cookies, nil
}

func (d *cdpDriver) SetCookie(ctx context.Context, c Cookie) error {
	param := &network.CookieParam{
		Name:     c.Name,
		Value:    c.Value,
		Domain:   c.Domain,
		Path:     c.Path,
		Secure:   c.Secure,
		HTTPOnly: c.HTTPOnly,
	}
	return d.run(ctx, network.SetCookies([]*network.CookieParam{param}))
}

func (d *cdpDriver) PageSource(ctx context.Context) (string, error) {
	var html string
	if err := d.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return html, nil
}

func (d *cdpDriver) CurrentURL(ctx context.Context) (string, error) {
	var url string
	if err := d.run(ctx, chromedp.Location(&url)); err != nil {
		return "", err
	}
	return url, nil
}

// Quit closes the tab and then the browser process.
func (d *cdpDriver) Quit(ctx context.Context) error {
	err := chromedp.Cancel(d.ctx)
	if d.cancelTab != nil {
		d.cancelTab()
	}
	if d.cancelAlloc != nil {
		d.cancelAlloc()
	}
	return err
}
