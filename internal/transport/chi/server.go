// Package chi serves the gateway's HTTP surface: synchronous tool
// endpoints, the event-stream pair, and the service endpoints (health,
// info, docs, metrics). Both tool transports route through the same
// dispatcher, so an envelope carries identical bytes on either one.
package chi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/vecgate/internal/domain"
	"github.com/kailas-cloud/vecgate/internal/stream"
	healthuc "github.com/kailas-cloud/vecgate/internal/usecase/health"
	toolsuc "github.com/kailas-cloud/vecgate/internal/usecase/tools"
	"github.com/kailas-cloud/vecgate/internal/version"
)

// errorCode is the machine-readable discriminator in error envelopes.
type errorCode string

const (
	codeBadRequest      errorCode = "bad_request"
	codeUnauthorized    errorCode = "unauthorized"
	codeSessionNotFound errorCode = "session_not_found"
	codeInternalError   errorCode = "internal_error"
)

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

// InfoResponse describes the running service.
type InfoResponse struct {
	Name    string   `json:"name"`
	Version string   `json:"version"`
	Commit  string   `json:"commit"`
	Tools   []string `json:"tools"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server handles the gateway HTTP API.
type Server struct {
	dispatcher    *toolsuc.Dispatcher
	health        *healthuc.Service
	hub           *stream.Hub
	heartbeat     time.Duration
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	dispatcher *toolsuc.Dispatcher,
	health *healthuc.Service,
	hub *stream.Hub,
	heartbeat time.Duration,
	logger *zap.Logger,
) *Server {
	s := &Server{
		dispatcher: dispatcher,
		health:     health,
		hub:        hub,
		heartbeat:  heartbeat,
		logger:     logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrUnknownTool, http.StatusBadRequest, codeBadRequest),
		sentinelHandler(domain.ErrInvalidArguments, http.StatusBadRequest, codeBadRequest),
		sentinelHandler(domain.ErrSessionNotFound, http.StatusNotFound, codeSessionNotFound),
	}
	return s
}

// Register mounts all gateway routes on r.
func (s *Server) Register(r chi.Router) {
	r.Post("/call", s.CallTool)
	r.Post("/tools/search", s.toolHandler(toolsuc.ToolSearch))
	r.Post("/tools/fetch", s.toolHandler(toolsuc.ToolFetch))
	r.Get("/sse", s.OpenStream)
	r.Post("/sse", s.SubmitStreamCall)
	r.Get("/health", s.HealthCheck)
	r.Get("/info", s.Info)
	r.Get("/docs", s.ListTools)
	r.Get("/metrics", s.Metrics)
}

// CallTool handles POST /call.
func (s *Server) CallTool(w http.ResponseWriter, r *http.Request) {
	var call domain.ToolCall
	if err := json.NewDecoder(r.Body).Decode(&call); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	s.dispatch(w, r, call)
}

// toolHandler adapts a fixed tool path: the request body is the arguments
// object and the tool name comes from the route.
func (s *Server) toolHandler(tool string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		args, err := io.ReadAll(r.Body)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
			return
		}

		s.dispatch(w, r, domain.ToolCall{Tool: tool, Arguments: args})
	}
}

// dispatch runs one tool call and writes its envelope. The context is
// seeded with a usage collector so search responses report consumed
// embedding tokens.
func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, call domain.ToolCall) {
	ctx, usage := domain.NewContextWithUsage(r.Context())

	result, err := s.dispatcher.Dispatch(ctx, call)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, result)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.health.Check())
}

// Info handles GET /info.
func (s *Server) Info(w http.ResponseWriter, _ *http.Request) {
	specs := s.dispatcher.Manifest()
	tools := make([]string, 0, len(specs))
	for _, t := range specs {
		tools = append(tools, t.Name)
	}

	writeJSON(w, http.StatusOK, InfoResponse{
		Name:    version.Name,
		Version: version.Version,
		Commit:  version.Commit,
		Tools:   tools,
	})
}

// ListTools handles GET /docs.
func (s *Server) ListTools(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"tools": s.dispatcher.Manifest()})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func setEmbeddingHeaders(w http.ResponseWriter, usage *domain.EmbeddingUsage) {
	if usage != nil && usage.Used {
		w.Header().Set("X-Embedding-Tokens", strconv.Itoa(usage.TotalTokens))
	}
}

// writeJSON serializes v with the same call the stream writer uses, so an
// envelope produces the same bytes on both transports.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		data = []byte(`{"code":"internal_error","message":"internal error"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeErrorMessage returns client-facing text without exposing internals.
// Sentinel-wrapped errors are built from the caller's own input, so their
// full text goes back verbatim.
func safeErrorMessage(err error) string {
	sentinels := []error{
		domain.ErrUnknownTool,
		domain.ErrInvalidArguments,
		domain.ErrSessionNotFound,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return err.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("Tool call rejected", zap.Error(err))
	msg := safeErrorMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("Unhandled transport error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
