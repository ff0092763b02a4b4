// Package health reports process liveness.
package health

// Report is the liveness answer served by /health.
type Report struct {
	Status string `json:"status"`
}

// Service answers liveness probes. It probes no dependencies: upstream
// failures degrade search results, they do not fail liveness.
type Service struct{}

// New creates a health service.
func New() *Service { return &Service{} }

// Check reports the process is up.
func (s *Service) Check() Report {
	return Report{Status: "ok"}
}
