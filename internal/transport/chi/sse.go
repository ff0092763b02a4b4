package chi

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/vecgate/internal/domain"
	"github.com/kailas-cloud/vecgate/internal/stream"
)

// AcceptedResponse acknowledges a stream call. The result envelope follows
// on the open connection as a message frame.
type AcceptedResponse struct {
	Status string `json:"status"`
}

// OpenStream handles GET /sse. It registers a session, emits the endpoint
// frame, and holds the connection until the client disconnects.
func (s *Server) OpenStream(w http.ResponseWriter, r *http.Request) {
	if _, ok := w.(http.Flusher); !ok {
		writeError(w, http.StatusInternalServerError, codeInternalError, "streaming unsupported")
		return
	}

	// Снимаем глобальный WriteTimeout — сессия живёт дольше него
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil {
		s.logger.Warn("Failed to clear stream write deadline", zap.Error(err))
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	conn := stream.NewConn(w, s.heartbeat, stream.WithLogger(s.logger))
	s.hub.Register(conn)
	defer s.hub.Unregister(conn.ID())

	s.logger.Info("Stream session opened", zap.String("session_id", conn.ID()))
	conn.Run(r.Context())
	s.logger.Info("Stream session closed", zap.String("session_id", conn.ID()))
}

// SubmitStreamCall handles POST /sse?session_id=<id>. The call is validated
// and bound here; execution happens on the session's writer goroutine, so
// the acknowledgement returns before the envelope is emitted.
func (s *Server) SubmitStreamCall(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	conn, ok := s.hub.Get(sessionID)
	if !ok {
		writeError(w, http.StatusNotFound, codeSessionNotFound, "unknown or expired session")
		return
	}

	var call domain.ToolCall
	if err := json.NewDecoder(r.Body).Decode(&call); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	task, err := s.dispatcher.Prepare(call)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	// Задача выполняется в контексте соединения, не этого POST
	if err := conn.Submit(stream.Task(task)); err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, AcceptedResponse{Status: "accepted"})
}
