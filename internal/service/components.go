// File: internal/service/components.go
package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/linkedin-mcp/internal/bridge"
	"github.com/xkilldash9x/linkedin-mcp/internal/config"
	"github.com/xkilldash9x/linkedin-mcp/internal/mcp"
	"github.com/xkilldash9x/linkedin-mcp/internal/metrics"
	"github.com/xkilldash9x/linkedin-mcp/internal/scraper"
	"github.com/xkilldash9x/linkedin-mcp/internal/session"
)

const defaultShutdownTimeout = 30 * time.Second

// Components holds the initialized services and centralizes their
// lifecycle.
type Components struct {
	Config   config.Interface
	Metrics  *metrics.Collector
	Sessions *session.Manager
	Scraper  *scraper.Scraper
	Tools    *mcp.Tools

	logger *zap.Logger
}

// NewServer builds the tool server on top of the components.
func (c *Components) NewServer() *mcp.Server {
	handlers := mcp.NewHandlers(c.logger, c.Tools, c.Metrics)
	return mcp.NewServer(c.Config.Server(), handlers, c.Sessions, c.logger)
}

// NewBridgeAdapter returns an adapter that is independent of the session
// manager, for inspecting the bridge directly. The caller closes it.
func (c *Components) NewBridgeAdapter() *bridge.Adapter {
	return bridge.NewHTTPAdapter(c.Config.Bridge(), c.logger, c.Metrics)
}

// Shutdown closes every browser session. It runs on its own deadline so it
// completes even when the caller's context is already canceled.
func (c *Components) Shutdown() {
	logger := c.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug("Beginning components shutdown sequence.")

	if c.Sessions != nil {
		timeout := defaultShutdownTimeout
		if c.Config != nil && c.Config.Server().ShutdownTimeout > 0 {
			timeout = c.Config.Server().ShutdownTimeout
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		c.Sessions.CloseAll(ctx)
		logger.Debug("Browser sessions closed.")
	}

	logger.Info("All components shut down successfully.")
}
