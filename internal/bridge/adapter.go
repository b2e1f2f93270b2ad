package bridge

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/linkedin-mcp/internal/config"
	"github.com/xkilldash9x/linkedin-mcp/internal/metrics"
)

// Adapter provisions bridge sessions and keeps track of the ones it created
// so they can be closed together.
type Adapter struct {
	transport Transport
	settle    time.Duration
	logger    *zap.Logger
	metrics   *metrics.Collector

	mu       sync.Mutex
	sessions map[string]*Session
}

// AdapterOption customizes an Adapter.
type AdapterOption func(*Adapter)

// WithAuthSettleDelay sets the pause used when authenticating new sessions.
func WithAuthSettleDelay(d time.Duration) AdapterOption {
	return func(a *Adapter) { a.settle = d }
}

// WithAdapterMetrics reports the number of tracked sessions on m.
func WithAdapterMetrics(m *metrics.Collector) AdapterOption {
	return func(a *Adapter) { a.metrics = m }
}

// NewAdapter creates an adapter over transport. The adapter owns the
// transport and closes it in Close.
func NewAdapter(transport Transport, logger *zap.Logger, opts ...AdapterOption) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Adapter{
		transport: transport,
		logger:    logger.Named("bridge_adapter"),
		sessions:  make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// NewHTTPAdapter builds an adapter over an HTTP Client for cfg.
func NewHTTPAdapter(cfg config.BridgeConfig, logger *zap.Logger, m *metrics.Collector) *Adapter {
	client := NewClient(cfg, logger, WithMetrics(m))
	return NewAdapter(client, logger, WithAuthSettleDelay(cfg.AuthSettleDelay), WithAdapterMetrics(m))
}

// IsAvailable reports whether the bridge answers its health check.
func (a *Adapter) IsAvailable(ctx context.Context) bool {
	return a.transport.HealthCheck(ctx)
}

// CreateSession starts a remote browser and tracks it.
func (a *Adapter) CreateSession(ctx context.Context, profileName string, headless bool) (*Session, error) {
	id, err := a.transport.CreateSession(ctx, profileName, headless)
	if err != nil {
		return nil, err
	}

	s := NewSession(id, a.transport, a.settle, a.logger)
	a.mu.Lock()
	a.sessions[id] = s
	n := len(a.sessions)
	a.mu.Unlock()
	a.metrics.SetBridgeSessionsTracked(n)

	a.logger.Info("Bridge session created.", zap.String("session_id", id), zap.String("profile", profileName))
	return s, nil
}

// GetOrCreateSession provisions a fresh session and, when token is set,
// authenticates it. A session that fails to authenticate is closed and
// dropped before the error is returned. Existing sessions are never reused.
func (a *Adapter) GetOrCreateSession(ctx context.Context, profileName, token string, headless bool) (*Session, error) {
	s, err := a.CreateSession(ctx, profileName, headless)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return s, nil
	}

	if !s.Authenticate(ctx, token) {
		a.CloseSession(ctx, s.ID())
		return nil, &SessionError{Op: "authenticate", SessionID: s.ID(), Message: "authentication failed"}
	}
	return s, nil
}

// CloseSession closes a session by id. A tracked session is closed and
// forgotten; an unknown id still gets a best-effort close on the bridge.
// Nothing is returned: failures are logged.
func (a *Adapter) CloseSession(ctx context.Context, sessionID string) {
	a.mu.Lock()
	s, tracked := a.sessions[sessionID]
	delete(a.sessions, sessionID)
	n := len(a.sessions)
	a.mu.Unlock()
	a.metrics.SetBridgeSessionsTracked(n)

	if tracked {
		_ = s.Close(ctx)
		return
	}
	if err := a.transport.CloseSession(ctx, sessionID); err != nil {
		a.logger.Warn("Failed to close untracked bridge session.", zap.String("session_id", sessionID), zap.Error(err))
	}
}

// CloseAllSessions closes every tracked session. One failing close does not
// stop the rest, and the registry is empty afterwards.
func (a *Adapter) CloseAllSessions(ctx context.Context) {
	a.mu.Lock()
	sessions := make([]*Session, 0, len(a.sessions))
	for _, s := range a.sessions {
		sessions = append(sessions, s)
	}
	a.sessions = make(map[string]*Session)
	a.mu.Unlock()
	a.metrics.SetBridgeSessionsTracked(0)

	for _, s := range sessions {
		a.closeIsolated(ctx, s)
	}
	if len(sessions) > 0 {
		a.logger.Info("Closed all bridge sessions.", zap.Int("count", len(sessions)))
	}
}

// closeIsolated keeps a panicking close from taking down the others.
func (a *Adapter) closeIsolated(ctx context.Context, s *Session) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("Panic while closing bridge session.", zap.String("session_id", s.ID()), zap.Any("panic", r))
		}
	}()
	_ = s.Close(ctx)
}

// ListSessions returns the bridge's own session listing, or an empty list
// when it cannot be fetched.
func (a *Adapter) ListSessions(ctx context.Context) []RemoteSession {
	sessions, err := a.transport.ListSessions(ctx)
	if err != nil {
		a.logger.Warn("Failed to list bridge sessions.", zap.Error(err))
		return []RemoteSession{}
	}
	return sessions
}

// Tracked returns the ids of the sessions this adapter holds, sorted.
func (a *Adapter) Tracked() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	ids := make([]string, 0, len(a.sessions))
	for id := range a.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Close closes all sessions and then the transport.
func (a *Adapter) Close(ctx context.Context) {
	a.CloseAllSessions(ctx)
	if err := a.transport.Close(); err != nil {
		a.logger.Warn("Failed to close bridge transport.", zap.Error(err))
	}
}
