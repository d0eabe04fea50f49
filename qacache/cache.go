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

// Package qacache is the orchestration-facing surface of the answer cache:
// lookup first, store on miss. The storage backend is pluggable; qadb is
// the production one.
package qacache

import (
	"context"
	"time"

	"github.com/jusolo/portfolio-back/internal/similarity"
	"github.com/jusolo/portfolio-back/qadb"
)

// Backend is the persistence contract the cache runs on. *qadb.Store and
// *MemoryStore both satisfy it.
type Backend interface {
	GetExact(ctx context.Context, question string, maxAge time.Duration) (*qadb.CacheEntry, error)
	GetFuzzy(ctx context.Context, question string, threshold float64, maxAge time.Duration) (*qadb.FuzzyMatch, error)
	Put(ctx context.Context, params qadb.PutParams) error
	Search(ctx context.Context, term string, limit int32) ([]qadb.SearchResult, error)
	Invalidate(ctx context.Context, question string) (int64, error)
}

var (
	_ Backend = (*qadb.Store)(nil)
	_ Backend = (*MemoryStore)(nil)
)

// Config controls lookup behavior.
type Config struct {
	// FuzzyEnabled turns on the similarity fallback after an exact miss.
	FuzzyEnabled bool
	// Threshold is the minimum similarity for a fuzzy hit. Values <= 0
	// fall back to the default (0.92).
	Threshold float64
	// MaxAge, when positive, treats entries created earlier than
	// now()-MaxAge as absent. The rows themselves stay put.
	MaxAge time.Duration
}

// Hit is a successful cache lookup.
type Hit struct {
	Entry qadb.CacheEntry
	// Fuzzy is true when the hit came from similarity matching rather
	// than an identical fingerprint.
	Fuzzy bool
	// Similarity is the match score; 1.0 for exact hits.
	Similarity float64
}

// Cache answers questions from a Backend.
type Cache struct {
	backend Backend
	cfg     Config
}

func New(backend Backend, cfg Config) *Cache {
	if cfg.Threshold <= 0 {
		cfg.Threshold = similarity.DefaultThreshold
	}
	return &Cache{backend: backend, cfg: cfg}
}

// Lookup resolves a question against the cache: exact fingerprint match
// first, then, when enabled, the best similarity match at or above the
// configured threshold. Returns (nil, nil) on a miss. The cache never
// guesses: anything ambiguous is a miss, and the caller generates a fresh
// answer.
func (c *Cache) Lookup(ctx context.Context, question string) (*Hit, error) {
	entry, err := c.backend.GetExact(ctx, question, c.cfg.MaxAge)
	if err != nil {
		return nil, err
	}
	if entry != nil {
		return &Hit{Entry: *entry, Similarity: 1.0}, nil
	}

	if !c.cfg.FuzzyEnabled {
		return nil, nil
	}

	match, err := c.backend.GetFuzzy(ctx, question, c.cfg.Threshold, c.cfg.MaxAge)
	if err != nil {
		return nil, err
	}
	if match == nil {
		return nil, nil
	}
	return &Hit{Entry: match.CacheEntry, Fuzzy: true, Similarity: match.Similarity}, nil
}

// Store records a freshly generated answer. Equivalent questions collapse
// into one entry; re-storing an already-answered question only counts as
// usage (see qadb.Store.Put for the first-write-wins policy).
func (c *Cache) Store(ctx context.Context, question, answer, model string, meta map[string]any) error {
	return c.backend.Put(ctx, qadb.PutParams{
		Question: question,
		Answer:   answer,
		Model:    model,
		Meta:     meta,
	})
}

// Search exposes the backend's human-facing similarity search.
func (c *Cache) Search(ctx context.Context, term string, limit int32) ([]qadb.SearchResult, error) {
	return c.backend.Search(ctx, term, limit)
}

// Invalidate removes the entry for exactly this question, reporting how
// many rows were deleted.
func (c *Cache) Invalidate(ctx context.Context, question string) (int64, error) {
	return c.backend.Invalidate(ctx, question)
}
