// Package fetch implements batch full-content lookup by object id.
package fetch

import (
	"context"
	"strings"

	"github.com/kailas-cloud/vecgate/internal/domain"
	"github.com/kailas-cloud/vecgate/internal/normalize"
)

// MaxIDs bounds a single lookup. Longer id lists are quietly truncated.
const MaxIDs = 50

// Service handles batch document lookup over the hosted index.
type Service struct {
	repo Repository
	norm *normalize.Normalizer
}

// New creates a fetch service.
func New(repo Repository, norm *normalize.Normalizer) *Service {
	return &Service{repo: repo, norm: norm}
}

// Fetch returns full-content objects for the requested ids, in request
// order. Blank and duplicate ids are dropped before the store call, ids the
// index does not know are silently absent from the answer. It never fails.
func (s *Service) Fetch(ctx context.Context, objectIDs []string) []domain.FetchObject {
	ids := sanitizeIDs(objectIDs)
	if len(ids) == 0 {
		return []domain.FetchObject{}
	}

	records := s.repo.GetByIDs(ctx, ids)

	objects := make([]domain.FetchObject, 0, len(ids))
	for _, id := range ids {
		rec, ok := records[id]
		if !ok {
			continue
		}
		objects = append(objects, s.norm.Document(rec))
	}
	return objects
}

// sanitizeIDs trims the ids, drops blanks, de-duplicates preserving the
// first occurrence, and caps the list at MaxIDs.
func sanitizeIDs(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	ids := make([]string, 0, len(raw))
	for _, id := range raw {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
		if len(ids) == MaxIDs {
			break
		}
	}
	return ids
}
