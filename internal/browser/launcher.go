// internal/browser/launcher.go
package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/linkedin-mcp/internal/config"
)

// ChromeLauncher starts local Chrome instances and hands them out as
// authenticated DirectSessions.
type ChromeLauncher struct {
	cfg    config.BrowserConfig
	logger *zap.Logger

	// startDriver is swapped out in tests.
	startDriver func(ctx context.Context) (Driver, error)
}

// NewChromeLauncher creates a launcher for the given browser settings.
func NewChromeLauncher(cfg config.BrowserConfig, logger *zap.Logger) *ChromeLauncher {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &ChromeLauncher{cfg: cfg, logger: logger.Named("chrome_launcher")}
	l.startDriver = l.startChrome
	return l
}

// Launch starts a browser and, when token is non-empty, logs it in to
// LinkedIn. A rejected token closes the browser and returns an error
// wrapping ErrAuthenticationFailed.
func (l *ChromeLauncher) Launch(ctx context.Context, token string) (Session, error) {
	driver, err := l.startDriver(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	s := NewDirectSession(driver, l.logger)
	if token == "" {
		l.logger.Info("Direct session started without authentication.", zap.String("session_id", s.ID()))
		return s, nil
	}

	settle := l.cfg.AuthSettleDelay
	if settle == 0 {
		settle = DefaultAuthSettleDelay
	}
	if !AuthenticateLinkedIn(ctx, s, token, settle, l.logger) {
		_ = s.Close(context.WithoutCancel(ctx))
		return nil, fmt.Errorf("direct session: %w", ErrAuthenticationFailed)
	}
	l.logger.Info("Direct session started.", zap.String("session_id", s.ID()))
	return s, nil
}

// startChrome allocates a browser process and its first tab.
func (l *ChromeLauncher) startChrome(ctx context.Context) (Driver, error) {
	// The browser must outlive the request that asked for it.
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.WithoutCancel(ctx), AllocatorOptions(l.cfg)...)

	sugar := l.logger.Sugar()
	tabCtx, cancelTab := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(sugar.Debugf),
		chromedp.WithErrorf(sugar.Errorf),
	)

	// The first Run launches the process; it must use the tab context itself
	// or canceling a derived context would kill the browser.
	started := make(chan error, 1)
	go func() { started <- chromedp.Run(tabCtx) }()

	select {
	case err := <-started:
		if err != nil {
			cancelTab()
			cancelAlloc()
			return nil, err
		}
	case <-ctx.Done():
		cancelTab()
		cancelAlloc()
		return nil, ctx.Err()
	}

	l.logger.Debug("Browser started.", zap.Bool("headless", l.cfg.Headless))
	return &timeoutDriver{
		Driver:  &cdpDriver{ctx: tabCtx, cancelTab: cancelTab, cancelAlloc: cancelAlloc},
		timeout: l.cfg.NavigationTimeout,
	}, nil
}

// timeoutDriver bounds navigations by the configured timeout.
type timeoutDriver struct {
	Driver
	timeout time.Duration
}

func (d *timeoutDriver) Navigate(ctx context.Context, url string) error {
	if d.timeout <= 0 {
		return d.Driver.Navigate(ctx, url)
	}
	navCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	return d.Driver.Navigate(navCtx, url)
}

// AllocatorOptions translates browser settings into chromedp allocator options.
func AllocatorOptions(cfg config.BrowserConfig) []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
		// LinkedIn serves a degraded page to obvious automation.
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
	)

	// DefaultExecAllocatorOptions is headless; undo that for a visible window.
	opts = append(opts, chromedp.Flag("headless", cfg.Headless))
	if cfg.DisableGPU {
		opts = append(opts, chromedp.DisableGPU)
	}
	if cfg.IgnoreTLSErrors {
		opts = append(opts, chromedp.IgnoreCertErrors)
	}
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}
	if w, h := cfg.Viewport["width"], cfg.Viewport["height"]; w > 0 && h > 0 {
		opts = append(opts, chromedp.WindowSize(w, h))
	}

	for name, value := range ParseFlagArgs(cfg.Args) {
		opts = append(opts, chromedp.Flag(name, value))
	}
	return opts
}

// ParseFlagArgs turns command line style arguments ("--lang=en-US",
// "no-zygote") into chromedp flag names and values. chromedp adds the
// leading dashes itself.
func ParseFlagArgs(args []string) map[string]interface{} {
	flags := make(map[string]interface{}, len(args))
	for _, arg := range args {
		arg = strings.TrimLeft(strings.TrimSpace(arg), "-")
		if arg == "" {
			continue
		}
		name, value, hasValue := strings.Cut(arg, "=")
		if !hasValue {
			flags[name] = true
			continue
		}
		flags[name] = value
	}
	return flags
}
