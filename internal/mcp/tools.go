// File: internal/mcp/tools.go
package mcp

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/xkilldash9x/linkedin-mcp/internal/browser"
	"github.com/xkilldash9x/linkedin-mcp/internal/scraper"
)

// Tools implements the LinkedIn tool operations on top of the session
// provider and extractor.
type Tools struct {
	sessions  SessionProvider
	extractor Extractor
	cookie    string
	logger    *zap.Logger
}

// NewTools creates the tool set. cookie is the li_at token used whenever a
// new session has to be opened.
func NewTools(sessions SessionProvider, extractor Extractor, cookie string, logger *zap.Logger) *Tools {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tools{
		sessions:  sessions,
		extractor: extractor,
		cookie:    cookie,
		logger:    logger.Named("mcp_tools"),
	}
}

// session reuses the active session or opens one with the configured cookie.
func (t *Tools) session(ctx context.Context) (browser.Session, error) {
	if s := t.sessions.Current(); s != nil {
		return s, nil
	}
	s, err := t.sessions.GetSession(ctx, t.cookie)
	if err != nil {
		return nil, fmt.Errorf("failed to open browser session: %w", err)
	}
	return s, nil
}

// PersonProfile scrapes a member profile.
func (t *Tools) PersonProfile(ctx context.Context, username string) (*scraper.Person, error) {
	s, err := t.session(ctx)
	if err != nil {
		return nil, err
	}
	return t.extractor.Person(ctx, s, username)
}

// CompanyProfile scrapes a company page.
func (t *Tools) CompanyProfile(ctx context.Context, name string) (*scraper.Company, error) {
	s, err := t.session(ctx)
	if err != nil {
		return nil, err
	}
	return t.extractor.Company(ctx, s, name)
}

// JobDetails scrapes a job posting.
func (t *Tools) JobDetails(ctx context.Context, jobID string) (*scraper.Job, error) {
	s, err := t.session(ctx)
	if err != nil {
		return nil, err
	}
	return t.extractor.Job(ctx, s, jobID)
}

// CloseSession closes the active session and every tracked bridge session.
func (t *Tools) CloseSession(ctx context.Context) {
	t.sessions.CloseAll(ctx)
	t.logger.Info("Browser sessions closed on request.")
}

// Status reports on the active session without opening one.
func (t *Tools) Status() SessionStatus {
	return SessionStatus{
		Active:     t.sessions.Current() != nil,
		Transport:  t.sessions.Transport(),
		BridgeMode: t.sessions.IsBridgeMode(),
	}
}
