// Package normalize turns raw vector index records into the gateway's
// client-facing preview and document shapes.
package normalize

import (
	"strings"

	"github.com/kailas-cloud/vecgate/internal/domain"
)

// Normalizer resolves display text out of schemaless record metadata and
// applies the gateway's deterministic snippet and truncation rules.
type Normalizer struct {
	textKeys        []string
	maxContentChars int
	snippetChars    int
}

// New creates a normalizer. Zero or missing settings fall back to the
// gateway defaults: keys text,chunk,content / 50000 content chars /
// 200 snippet chars.
func New(textKeys []string, maxContentChars, snippetChars int) *Normalizer {
	n := &Normalizer{
		textKeys:        textKeys,
		maxContentChars: maxContentChars,
		snippetChars:    snippetChars,
	}
	if len(n.textKeys) == 0 {
		n.textKeys = []string{"text", "chunk", "content"}
	}
	if n.maxContentChars <= 0 {
		n.maxContentChars = 50000
	}
	if n.snippetChars <= 0 {
		n.snippetChars = 200
	}
	return n
}

// CleanText strips control characters (keeping tab, newline and carriage
// return) and trims surrounding whitespace.
func CleanText(s string) string {
	if s == "" {
		return ""
	}
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '\t', '\n', '\r':
			return r
		}
		if r < 0x20 || r == 0x7F {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(cleaned)
}

// ResolveText probes the configured candidate keys in order and returns the
// first value whose rendered form is non-blank. Records with none of the
// keys resolve to "".
func (n *Normalizer) ResolveText(md domain.Metadata) string {
	for _, key := range n.textKeys {
		if !md.Has(key) {
			continue
		}
		if text := strings.TrimSpace(md.String(key)); text != "" {
			return text
		}
	}
	return ""
}

// Title returns the record's display title, "" when absent.
func (n *Normalizer) Title(md domain.Metadata) string {
	return md.String("title")
}

// Source returns the record's origin reference, "" when absent.
func (n *Normalizer) Source(md domain.Metadata) string {
	return md.String("source")
}

// URI returns the record's canonical link, "" when absent.
func (n *Normalizer) URI(md domain.Metadata) string {
	return md.String("uri")
}

// Snippet cleans the text and caps it at the snippet length. The cap counts
// characters, not bytes, and never appends an ellipsis, so the same record
// always yields the same snippet.
func (n *Normalizer) Snippet(text string) string {
	capped, _ := capRunes(CleanText(text), n.snippetChars)
	return capped
}

// Truncate enforces the content bound and reports whether anything was cut.
// The cut is a hard character-count slice with no word awareness.
func (n *Normalizer) Truncate(content string) (string, bool) {
	return capRunes(content, n.maxContentChars)
}

// Preview assembles the ranked preview for one similarity match.
func (n *Normalizer) Preview(hit domain.Hit) domain.SearchResult {
	return domain.SearchResult{
		ID:      hit.ID,
		Score:   hit.Score,
		Title:   n.Title(hit.Metadata),
		Snippet: n.Snippet(n.ResolveText(hit.Metadata)),
		Source:  n.Source(hit.Metadata),
	}
}

// Document assembles the full-content object for one stored record. The
// original metadata passes through on a copy, with "truncated" mirroring
// the top-level flag.
func (n *Normalizer) Document(rec domain.StoredRecord) domain.FetchObject {
	content, truncated := n.Truncate(n.ResolveText(rec.Metadata))
	md := rec.Metadata.Clone()
	md["truncated"] = truncated
	return domain.FetchObject{
		ID:        rec.ID,
		Content:   content,
		Metadata:  md,
		Truncated: truncated,
	}
}

func capRunes(s string, limit int) (string, bool) {
	runes := []rune(s)
	if len(runes) <= limit {
		return s, false
	}
	return string(runes[:limit]), true
}
