package domain

// StoredRecord is a read-only snapshot of one point in the vector index.
type StoredRecord struct {
	ID       string
	Metadata Metadata
	Vector   []float32
}

// Hit is one similarity match returned by the vector index. Order and score
// come from the store; the score is clamped into [0,1] by the index adapter
// before it reaches this type.
type Hit struct {
	ID       string
	Score    float64
	Metadata Metadata
}
