// Copyright (C) 2025 jusolo
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, version 3.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package qacache

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jusolo/portfolio-back/internal/qnorm"
	"github.com/jusolo/portfolio-back/internal/similarity"
	"github.com/jusolo/portfolio-back/qadb"
)

// MemoryStore is an in-process Backend with the same matching semantics as
// qadb: trigram similarity over normalized questions, first-write-wins
// puts, read-time age filtering. Useful for tests and single-process
// deployments that don't want a database.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*qadb.CacheEntry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*qadb.CacheEntry),
		now:     time.Now,
	}
}

// NewMemoryStoreWithClock creates a MemoryStore with a custom time source
// (for testing age filters).
func NewMemoryStoreWithClock(now func() time.Time) *MemoryStore {
	s := NewMemoryStore()
	s.now = now
	return s
}

func (s *MemoryStore) GetExact(_ context.Context, question string, maxAge time.Duration) (*qadb.CacheEntry, error) {
	norm := qnorm.Normalize(question)
	if norm == "" {
		return nil, qadb.ErrEmptyQuestion
	}
	fp := qnorm.Fingerprint(norm)

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[fp]
	if !ok || s.tooOld(e, maxAge) {
		return nil, nil
	}

	snapshot := *e
	s.bump(e)
	return &snapshot, nil
}

func (s *MemoryStore) GetFuzzy(_ context.Context, question string, threshold float64, maxAge time.Duration) (*qadb.FuzzyMatch, error) {
	norm := qnorm.Normalize(question)
	if norm == "" {
		return nil, qadb.ErrEmptyQuestion
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var best *qadb.CacheEntry
	var bestScore float64
	for _, e := range s.entries {
		if s.tooOld(e, maxAge) {
			continue
		}
		score := similarity.Score(norm, e.QuestionNorm)
		if score < threshold {
			continue
		}
		// ties go to the most recently used entry
		if best == nil || score > bestScore ||
			(score == bestScore && e.LastUsedAt.After(best.LastUsedAt)) {
			best = e
			bestScore = score
		}
	}
	if best == nil {
		return nil, nil
	}

	match := &qadb.FuzzyMatch{CacheEntry: *best, Similarity: bestScore}
	s.bump(best)
	return match, nil
}

func (s *MemoryStore) Put(_ context.Context, params qadb.PutParams) error {
	norm := qnorm.Normalize(params.Question)
	if norm == "" {
		return qadb.ErrEmptyQuestion
	}
	if params.Model == "" {
		return qadb.ErrMissingModel
	}
	fp := qnorm.Fingerprint(norm)

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.entries[fp]; ok {
		s.bump(existing)
		return nil
	}

	now := s.now()
	s.entries[fp] = &qadb.CacheEntry{
		Fingerprint:      fp,
		QuestionNorm:     norm,
		QuestionOriginal: params.Question,
		Answer:           params.Answer,
		Model:            params.Model,
		CreatedAt:        now,
		LastUsedAt:       now,
		Hits:             1,
		Meta:             params.Meta,
	}
	return nil
}

func (s *MemoryStore) Search(_ context.Context, term string, limit int32) ([]qadb.SearchResult, error) {
	norm := qnorm.Normalize(term)
	if norm == "" {
		return nil, qadb.ErrEmptyQuestion
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var results []qadb.SearchResult
	for _, e := range s.entries {
		score := similarity.Score(norm, e.QuestionNorm)
		if score < similarity.SearchFloor {
			continue
		}
		results = append(results, qadb.SearchResult{
			QuestionOriginal: e.QuestionOriginal,
			Answer:           e.Answer,
			Hits:             e.Hits,
			LastUsedAt:       e.LastUsedAt,
			Similarity:       score,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		return results[i].LastUsedAt.After(results[j].LastUsedAt)
	})
	if limit > 0 && int(limit) < len(results) {
		results = results[:limit]
	}
	return results, nil
}

func (s *MemoryStore) Invalidate(_ context.Context, question string) (int64, error) {
	norm := qnorm.Normalize(question)
	if norm == "" {
		return 0, qadb.ErrEmptyQuestion
	}
	fp := qnorm.Fingerprint(norm)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[fp]; !ok {
		return 0, nil
	}
	delete(s.entries, fp)
	return 1, nil
}

func (s *MemoryStore) tooOld(e *qadb.CacheEntry, maxAge time.Duration) bool {
	return maxAge > 0 && e.CreatedAt.Before(s.now().Add(-maxAge))
}

func (s *MemoryStore) bump(e *qadb.CacheEntry) {
	e.Hits++
	e.LastUsedAt = s.now()
}
