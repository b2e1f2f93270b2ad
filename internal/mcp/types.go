// File: internal/mcp/types.go
package mcp

import (
	"context"

	"github.com/xkilldash9x/linkedin-mcp/internal/browser"
	"github.com/xkilldash9x/linkedin-mcp/internal/scraper"
)

// Command names accepted by POST /api/v1/command.
const (
	CmdPersonProfile  = "get_person_profile"
	CmdCompanyProfile = "get_company_profile"
	CmdJobDetails     = "get_job_details"
	CmdCloseSession   = "close_session"
	CmdSessionStatus  = "session_status"
)

// Response status values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// CommandRequest is the body of POST /api/v1/command.
type CommandRequest struct {
	Command string                 `json:"command"`
	Params  map[string]interface{} `json:"params"`
}

// CommandResponse is the envelope for every command result.
type CommandResponse struct {
	Status  string      `json:"status"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// PersonParams are the parameters of get_person_profile.
type PersonParams struct {
	LinkedInUsername string `json:"linkedin_username"`
}

// CompanyParams are the parameters of get_company_profile.
type CompanyParams struct {
	CompanyName string `json:"company_name"`
}

// JobParams are the parameters of get_job_details.
type JobParams struct {
	JobID string `json:"job_id"`
}

// SessionStatus describes the active browser session.
type SessionStatus struct {
	Active     bool   `json:"active"`
	Transport  string `json:"transport,omitempty"`
	BridgeMode bool   `json:"bridge_mode"`
}

// SessionProvider hands out the active browser session. Satisfied by
// *session.Manager.
type SessionProvider interface {
	GetSession(ctx context.Context, token string) (browser.Session, error)
	Current() browser.Session
	CloseAll(ctx context.Context)
	IsBridgeMode() bool
	Transport() string
}

// Extractor turns an open session into records. Satisfied by
// *scraper.Scraper.
type Extractor interface {
	Person(ctx context.Context, sess browser.Session, username string) (*scraper.Person, error)
	Company(ctx context.Context, sess browser.Session, name string) (*scraper.Company, error)
	Job(ctx context.Context, sess browser.Session, jobID string) (*scraper.Job, error)
}
