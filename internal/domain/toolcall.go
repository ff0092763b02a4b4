package domain

import "encoding/json"

// ToolCall is one decoded invocation of a gateway tool. Both protocol
// adapters produce this shape and route it through the same dispatcher.
type ToolCall struct {
	Tool      string          `json:"tool"`
	Arguments json.RawMessage `json:"arguments"`
}
