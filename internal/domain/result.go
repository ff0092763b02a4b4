package domain

// SearchResult is a ranked preview of one matching record. It never carries
// full content; callers follow up with a fetch for that.
type SearchResult struct {
	ID      string  `json:"id"`
	Score   float64 `json:"score"`
	Title   string  `json:"title,omitempty"`
	Snippet string  `json:"snippet"`
	Source  string  `json:"source,omitempty"`
}

// FetchObject is the full stored content of one record plus its metadata.
// Truncated is mirrored into Metadata["truncated"] by the normalizer.
type FetchObject struct {
	ID        string   `json:"id"`
	Content   string   `json:"content"`
	Metadata  Metadata `json:"metadata"`
	Truncated bool     `json:"truncated"`
}

// SearchPage is the search response envelope.
type SearchPage struct {
	Results []SearchResult `json:"results"`
}

// FetchPage is the fetch response envelope.
type FetchPage struct {
	Objects []FetchObject `json:"objects"`
}
