// internal/session/manager.go
package session

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/xkilldash9x/linkedin-mcp/internal/bridge"
	"github.com/xkilldash9x/linkedin-mcp/internal/browser"
	"github.com/xkilldash9x/linkedin-mcp/internal/config"
	"github.com/xkilldash9x/linkedin-mcp/internal/metrics"
)

// Launcher starts a locally driven browser. browser.ChromeLauncher is the
// production implementation.
type Launcher interface {
	Launch(ctx context.Context, token string) (browser.Session, error)
}

// AdapterFactory builds the bridge adapter the first time the bridge is
// needed, and again after CloseAll.
type AdapterFactory func() *bridge.Adapter

// Manager picks a transport for each new session and owns the single active
// one. Bridge first when enabled, falling back to the direct driver when the
// configuration allows it.
type Manager struct {
	cfg        config.BridgeConfig
	launcher   Launcher
	newAdapter AdapterFactory
	metrics    *metrics.Collector
	logger     *zap.Logger

	mu         sync.Mutex
	adapter    *bridge.Adapter
	current    browser.Session
	bridgeMode bool
}

// Option customizes a Manager.
type Option func(*Manager)

// WithMetrics counts acquisitions and fallbacks on m.
func WithMetrics(m *metrics.Collector) Option {
	return func(mgr *Manager) { mgr.metrics = m }
}

// WithAdapterFactory replaces the default HTTP bridge adapter.
func WithAdapterFactory(f AdapterFactory) Option {
	return func(mgr *Manager) { mgr.newAdapter = f }
}

// NewManager creates a manager. Nothing is contacted until GetSession.
func NewManager(cfg config.BridgeConfig, launcher Launcher, logger *zap.Logger, opts ...Option) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Manager{
		cfg:      cfg,
		launcher: launcher,
		logger:   logger.Named("session_manager"),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.newAdapter == nil {
		m.newAdapter = m.defaultAdapter
	}
	return m
}

func (m *Manager) defaultAdapter() *bridge.Adapter {
	return bridge.NewHTTPAdapter(m.cfg, m.logger, m.metrics)
}

// GetSession closes the active session and returns a new one authenticated
// with token.
func (m *Manager) GetSession(ctx context.Context, token string) (browser.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closeLocked(ctx)

	if m.cfg.Enabled {
		s, err := m.tryBridge(ctx, token)
		if err != nil {
			return nil, err
		}
		if s != nil {
			m.current, m.bridgeMode = s, true
			m.metrics.SessionAcquired(metrics.TransportBridge)
			m.logger.Info("Using bridge session.", zap.String("session_id", s.ID()))
			return s, nil
		}
	}

	s, err := m.launcher.Launch(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to launch direct session: %w", err)
	}
	m.current, m.bridgeMode = s, false
	m.metrics.SessionAcquired(metrics.TransportDirect)
	m.logger.Info("Using direct browser session.")
	return s, nil
}

// tryBridge returns a bridge session, or nil with no error when the caller
// should fall back to the direct driver.
func (m *Manager) tryBridge(ctx context.Context, token string) (*bridge.Session, error) {
	if m.adapter == nil {
		m.adapter = m.newAdapter()
	}

	if !m.adapter.IsAvailable(ctx) {
		if !m.cfg.FallbackToDirect {
			return nil, &bridge.ConnectionError{URL: m.cfg.URL, Message: "bridge unavailable, fallback disabled"}
		}
		m.logger.Warn("Bridge unavailable, falling back to direct driver.", zap.String("url", m.cfg.URL))
		m.metrics.BridgeFallback(metrics.ReasonBridgeUnavailable)
		return nil, nil
	}

	s, err := m.adapter.GetOrCreateSession(ctx, m.cfg.ProfileName, token, m.cfg.Headless)
	if err != nil {
		if !m.cfg.FallbackToDirect {
			return nil, err
		}
		m.logger.Warn("Bridge session failed, falling back to direct driver.", zap.Error(err))
		m.metrics.BridgeFallback(metrics.ReasonBridgeError)
		return nil, nil
	}
	return s, nil
}

// CloseSession closes the active session, if any.
func (m *Manager) CloseSession(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeLocked(ctx)
}

func (m *Manager) closeLocked(ctx context.Context) {
	if m.current == nil {
		return
	}
	s := m.current
	m.current, m.bridgeMode = nil, false

	if bs, ok := s.(*bridge.Session); ok && m.adapter != nil {
		m.adapter.CloseSession(ctx, bs.ID())
	} else {
		_ = s.Close(ctx)
	}
	m.logger.Debug("Closed active session.")
}

// CloseAll closes the active session and every bridge session the adapter
// tracks, then drops the adapter so the next bridge attempt starts fresh.
func (m *Manager) CloseAll(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closeLocked(ctx)
	if m.adapter != nil {
		m.adapter.Close(ctx)
		m.adapter = nil
	}
}

// Current returns the active session, or nil.
func (m *Manager) Current() browser.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// IsBridgeMode reports whether the active session runs behind the bridge.
func (m *Manager) IsBridgeMode() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bridgeMode
}

// Transport names the active transport: "bridge", "direct", or "" when no
// session is open.
func (m *Manager) Transport() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch {
	case m.current == nil:
		return ""
	case m.bridgeMode:
		return metrics.TransportBridge
	default:
		return metrics.TransportDirect
	}
}
