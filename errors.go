package vecgate

import "github.com/kailas-cloud/vecgate/internal/domain"

// Sentinel errors returned by Call. Use errors.Is() to check.
var (
	ErrUnknownTool      = domain.ErrUnknownTool
	ErrInvalidArguments = domain.ErrInvalidArguments
)
