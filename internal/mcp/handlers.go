// File: internal/mcp/handlers.go
package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/linkedin-mcp/internal/metrics"
	"github.com/xkilldash9x/linkedin-mcp/internal/scraper"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Handlers manages the HTTP request handling for the tool server.
type Handlers struct {
	log     *zap.Logger
	tools   *Tools
	metrics *metrics.Collector
}

// NewHandlers creates a new Handlers instance. m may be nil, in which case
// /metrics answers 404.
func NewHandlers(logger *zap.Logger, tools *Tools, m *metrics.Collector) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		log:     logger.Named("mcp_handlers"),
		tools:   tools,
		metrics: m,
	}
}

// RegisterRoutes sets up the routing for the tool server.
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.HandleHealthCheck)
	r.Method(http.MethodGet, "/metrics", h.metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/command", h.HandleCommand)
	})
}

// HandleHealthCheck confirms the server is responsive.
func (h *Handlers) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// HandleCommand is the entry point for tool invocations.
func (h *Handlers) HandleCommand(w http.ResponseWriter, r *http.Request) {
	var req CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	h.log.Info("Received command", zap.String("command", req.Command))

	switch strings.ToLower(req.Command) {
	case CmdPersonProfile:
		h.handlePersonProfile(w, r, req.Params)
	case CmdCompanyProfile:
		h.handleCompanyProfile(w, r, req.Params)
	case CmdJobDetails:
		h.handleJobDetails(w, r, req.Params)
	case CmdCloseSession:
		h.handleCloseSession(w, r)
	case CmdSessionStatus:
		h.respondWithSuccess(w, h.tools.Status())
	default:
		h.respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func (h *Handlers) handlePersonProfile(w http.ResponseWriter, r *http.Request, paramsMap map[string]interface{}) {
	params, err := mapToStruct[PersonParams](paramsMap)
	if err != nil {
		h.respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid parameters for %s: %v", CmdPersonProfile, err))
		return
	}
	h.runTool(w, CmdPersonProfile, func() (interface{}, error) {
		return h.tools.PersonProfile(r.Context(), params.LinkedInUsername)
	})
}

func (h *Handlers) handleCompanyProfile(w http.ResponseWriter, r *http.Request, paramsMap map[string]interface{}) {
	params, err := mapToStruct[CompanyParams](paramsMap)
	if err != nil {
		h.respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid parameters for %s: %v", CmdCompanyProfile, err))
		return
	}
	h.runTool(w, CmdCompanyProfile, func() (interface{}, error) {
		return h.tools.CompanyProfile(r.Context(), params.CompanyName)
	})
}

func (h *Handlers) handleJobDetails(w http.ResponseWriter, r *http.Request, paramsMap map[string]interface{}) {
	params, err := mapToStruct[JobParams](paramsMap)
	if err != nil {
		h.respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid parameters for %s: %v", CmdJobDetails, err))
		return
	}
	h.runTool(w, CmdJobDetails, func() (interface{}, error) {
		return h.tools.JobDetails(r.Context(), params.JobID)
	})
}

func (h *Handlers) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	_, err := h.invoke(CmdCloseSession, func() (interface{}, error) {
		h.tools.CloseSession(r.Context())
		return nil, nil
	})
	if err != nil {
		h.respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Error closing browser session: %v", err))
		return
	}
	h.respondWithStatus(w, http.StatusOK, CommandResponse{
		Status:  StatusSuccess,
		Message: "Successfully closed the browser session and cleaned up resources",
	})
}

// runTool executes fn and writes its result. Blank identifiers are the
// caller's fault; everything else is reported as a tool failure.
func (h *Handlers) runTool(w http.ResponseWriter, tool string, fn func() (interface{}, error)) {
	data, err := h.invoke(tool, fn)
	switch {
	case errors.Is(err, scraper.ErrEmptyIdentifier):
		h.respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		h.respondWithError(w, http.StatusGatewayTimeout, fmt.Sprintf("%s did not finish: %v", tool, err))
	case err != nil:
		h.respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("%s failed: %v", tool, err))
	default:
		h.respondWithSuccess(w, data)
	}
}

// invoke runs fn and turns a panic into an error so nothing escapes the
// handler.
func (h *Handlers) invoke(tool string, fn func() (interface{}, error)) (data interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			h.log.Error("Tool panicked.", zap.String("tool", tool), zap.Any("panic", r))
			err = fmt.Errorf("internal error: %v", r)
		}
	}()
	data, err = fn()
	if err != nil {
		h.log.Error("Tool failed.", zap.String("tool", tool), zap.Error(err))
	}
	return data, err
}

// mapToStruct converts the generic params map into a typed struct.
func mapToStruct[T any](m map[string]interface{}) (T, error) {
	var result T
	if m == nil {
		return result, nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return result, err
	}
	err = json.Unmarshal(data, &result)
	return result, err
}

func (h *Handlers) respondWithError(w http.ResponseWriter, statusCode int, message string) {
	h.respondWithStatus(w, statusCode, CommandResponse{Status: StatusError, Message: message})
}

func (h *Handlers) respondWithSuccess(w http.ResponseWriter, data interface{}) {
	h.respondWithStatus(w, http.StatusOK, CommandResponse{Status: StatusSuccess, Data: data})
}

func (h *Handlers) respondWithStatus(w http.ResponseWriter, statusCode int, resp CommandResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.log.Error("Failed to encode response", zap.Error(err))
	}
}
