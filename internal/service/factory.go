// File: internal/service/factory.go
package service

import (
	"errors"

	"go.uber.org/zap"

	"github.com/xkilldash9x/linkedin-mcp/internal/browser"
	"github.com/xkilldash9x/linkedin-mcp/internal/config"
	"github.com/xkilldash9x/linkedin-mcp/internal/mcp"
	"github.com/xkilldash9x/linkedin-mcp/internal/metrics"
	"github.com/xkilldash9x/linkedin-mcp/internal/scraper"
	"github.com/xkilldash9x/linkedin-mcp/internal/session"
)

// ComponentFactory builds the set of components the commands run on.
// Commands depend on the interface so they can be tested without a browser.
type ComponentFactory interface {
	Create(cfg config.Interface, logger *zap.Logger) (*Components, error)
}

// concreteFactory is the production implementation of the ComponentFactory.
type concreteFactory struct{}

// NewComponentFactory creates a new production-ready component factory.
func NewComponentFactory() ComponentFactory {
	return &concreteFactory{}
}

// Create wires metrics, the session manager, the scraper and the tools.
// Nothing is started and no browser or bridge is contacted here.
func (f *concreteFactory) Create(cfg config.Interface, logger *zap.Logger) (*Components, error) {
	if cfg == nil {
		return nil, errors.New("configuration is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	// 1. Metrics
	collector := metrics.New()

	// 2. Direct driver
	launcher := browser.NewChromeLauncher(cfg.Browser(), logger)

	// 3. Session manager
	sessions := session.NewManager(cfg.Bridge(), launcher, logger, session.WithMetrics(collector))
	logger.Debug("Session manager initialized.",
		zap.Bool("bridge_enabled", cfg.Bridge().Enabled),
		zap.Bool("fallback_to_direct", cfg.Bridge().FallbackToDirect),
	)

	// 4. Scraper
	extractor := scraper.New(cfg.Scraper(), logger, scraper.WithMetrics(collector))

	// 5. Tools
	cookie := cfg.LinkedIn().Cookie
	if cookie == "" {
		logger.Warn("No LinkedIn cookie configured (hint: set LINKEDIN_COOKIE). Sessions will not be authenticated.")
	}
	tools := mcp.NewTools(sessions, extractor, cookie, logger)

	logger.Info("All components initialized successfully.")
	return &Components{
		Config:   cfg,
		Metrics:  collector,
		Sessions: sessions,
		Scraper:  extractor,
		Tools:    tools,
		logger:   logger,
	}, nil
}
