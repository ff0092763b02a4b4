package tools

// ToolSpec describes one callable tool for discovery listings.
type ToolSpec struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

// Manifest lists the tools this gateway serves.
func (d *Dispatcher) Manifest() []ToolSpec {
	return []ToolSpec{
		{
			Name:        ToolSearch,
			Description: "Search the document index and return ranked previews with snippets.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"query": map[string]any{
						"type":        "string",
						"description": "Search query text",
					},
					"top_k": map[string]any{
						"type":        "integer",
						"description": "Number of results to return (1-25)",
					},
				},
				"required": []string{"query"},
			},
		},
		{
			Name:        ToolFetch,
			Description: "Fetch full document contents for a list of object ids.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"object_ids": map[string]any{
						"type":        "array",
						"items":       map[string]any{"type": "string"},
						"description": "Object ids returned by search",
					},
				},
				"required": []string{"object_ids"},
			},
		},
	}
}
