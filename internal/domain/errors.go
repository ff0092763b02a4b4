package domain

import "errors"

var (
	// ErrUnknownTool signals a call to a tool the gateway does not expose.
	ErrUnknownTool = errors.New("unknown tool")
	// ErrInvalidArguments signals tool arguments that do not match the declared shape.
	ErrInvalidArguments = errors.New("invalid arguments")
	// ErrEmbeddingDisabled signals that text vectorization is switched off.
	ErrEmbeddingDisabled = errors.New("embedding disabled")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrStoreUnavailable signals that the vector index did not produce a usable response.
	ErrStoreUnavailable = errors.New("vector store unavailable")
	// ErrSessionNotFound signals a stream session id that is not registered.
	ErrSessionNotFound = errors.New("session not found")
)
