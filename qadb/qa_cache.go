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

package qadb

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jusolo/portfolio-back/internal/qnorm"
	"github.com/jusolo/portfolio-back/internal/similarity"
)

var (
	// ErrEmptyQuestion is returned when a question normalizes to empty
	// text. Such questions can never be stored or matched.
	ErrEmptyQuestion = errors.New("question normalizes to empty text")

	// ErrMissingModel is returned when Put is called without a model
	// label. Every entry records which generator or seed produced it.
	ErrMissingModel = errors.New("model label is required")
)

const cacheEntryColumns = `fingerprint, question_norm, question_original, answer, model, created_at, last_used_at, hits, meta`

// GetExact looks up a question by fingerprint of its normalized text. A
// maxAge > 0 excludes entries created before now()-maxAge; the row itself
// is untouched. On a hit the entry's usage counters are bumped, but the
// returned entry carries the pre-bump values.
func (store *Store) GetExact(ctx context.Context, question string, maxAge time.Duration) (*CacheEntry, error) {
	norm := qnorm.Normalize(question)
	if norm == "" {
		return nil, ErrEmptyQuestion
	}
	fp := qnorm.Fingerprint(norm)

	entry, err := store.getCacheEntry(ctx, fp, maxAge)
	if err != nil || entry == nil {
		return nil, err
	}

	store.bumpUsage(ctx, fp)
	return entry, nil
}

// GetFuzzy finds the best approximate match for a question among stored
// normalized questions, using pg_trgm similarity. Candidates must score at
// least threshold (inclusive) and pass the same age filter as GetExact;
// ties on score go to the most recently used entry. Usage counters are
// bumped on a hit, same as GetExact.
func (store *Store) GetFuzzy(ctx context.Context, question string, threshold float64, maxAge time.Duration) (*FuzzyMatch, error) {
	norm := qnorm.Normalize(question)
	if norm == "" {
		return nil, ErrEmptyQuestion
	}

	match, err := store.getCacheFuzzy(ctx, norm, threshold, maxAge)
	if err != nil || match == nil {
		return nil, err
	}

	store.bumpUsage(ctx, match.Fingerprint)
	return match, nil
}

// Put inserts a new entry with hits = 1, or, when an entry for the same
// normalized question already exists, bumps its usage counters. The stored
// answer, original question, and model are never overwritten: the
// first-seen answer for a normalized question is authoritative, and later
// puts count only as usage signals. Correcting an answer requires
// Invalidate followed by a fresh Put.
func (store *Store) Put(ctx context.Context, params PutParams) error {
	norm := qnorm.Normalize(params.Question)
	if norm == "" {
		return ErrEmptyQuestion
	}
	if params.Model == "" {
		return ErrMissingModel
	}

	return store.upsertCacheEntry(ctx, qnorm.Fingerprint(norm), norm, params)
}

// Search returns entries whose normalized question scores at least the
// open search floor against the normalized term, best first, recency
// breaking ties. Read-only: no usage counters move and no age filter
// applies.
func (store *Store) Search(ctx context.Context, term string, limit int32) ([]SearchResult, error) {
	norm := qnorm.Normalize(term)
	if norm == "" {
		return nil, ErrEmptyQuestion
	}
	return store.searchCache(ctx, norm, limit)
}

// Invalidate deletes the entry whose fingerprint matches the question and
// reports how many rows went away (0 or 1). Deletion is exact-identity
// only; there is no fuzzy invalidation.
func (store *Store) Invalidate(ctx context.Context, question string) (int64, error) {
	norm := qnorm.Normalize(question)
	if norm == "" {
		return 0, ErrEmptyQuestion
	}
	return store.deleteCacheEntry(ctx, qnorm.Fingerprint(norm))
}

// bumpUsage increments hits and refreshes last_used_at. Usage tracking is
// best effort: a failure here never turns a successful read into an error.
func (store *Store) bumpUsage(ctx context.Context, fingerprint string) {
	if err := store.Queries.bumpCacheUsage(ctx, fingerprint); err != nil {
		slog.Warn("failed to update qa_cache usage counters",
			slog.String("fingerprint", fingerprint),
			slog.Any("error", err))
	}
}

const getCacheEntrySQL = `
SELECT ` + cacheEntryColumns + `
FROM qa_cache
WHERE fingerprint = $1`

func (q *Queries) getCacheEntry(ctx context.Context, fingerprint string, maxAge time.Duration) (*CacheEntry, error) {
	sql := getCacheEntrySQL
	args := []any{fingerprint}
	if maxAge > 0 {
		sql += ` AND created_at >= now() - make_interval(secs => $2)`
		args = append(args, maxAge.Seconds())
	}

	var e CacheEntry
	err := q.db.QueryRow(ctx, sql, args...).Scan(
		&e.Fingerprint, &e.QuestionNorm, &e.QuestionOriginal, &e.Answer,
		&e.Model, &e.CreatedAt, &e.LastUsedAt, &e.Hits, &e.Meta)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

const getCacheFuzzySQL = `
SELECT ` + cacheEntryColumns + `, similarity(question_norm, $1) AS sim
FROM qa_cache
WHERE similarity(question_norm, $1) >= $2`

const getCacheFuzzyOrderSQL = `
ORDER BY sim DESC, last_used_at DESC
LIMIT 1`

func (q *Queries) getCacheFuzzy(ctx context.Context, norm string, threshold float64, maxAge time.Duration) (*FuzzyMatch, error) {
	sql := getCacheFuzzySQL
	args := []any{norm, threshold}
	if maxAge > 0 {
		sql += ` AND created_at >= now() - make_interval(secs => $3)`
		args = append(args, maxAge.Seconds())
	}
	sql += getCacheFuzzyOrderSQL

	var m FuzzyMatch
	err := q.db.QueryRow(ctx, sql, args...).Scan(
		&m.Fingerprint, &m.QuestionNorm, &m.QuestionOriginal, &m.Answer,
		&m.Model, &m.CreatedAt, &m.LastUsedAt, &m.Hits, &m.Meta,
		&m.Similarity)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

const upsertCacheEntrySQL = `
INSERT INTO qa_cache (fingerprint, question_norm, question_original, answer, model, meta)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (fingerprint) DO UPDATE SET
  last_used_at = now(),
  hits = qa_cache.hits + 1`

func (q *Queries) upsertCacheEntry(ctx context.Context, fingerprint, norm string, params PutParams) error {
	meta := params.Meta
	if meta == nil {
		meta = map[string]any{}
	}
	_, err := q.db.Exec(ctx, upsertCacheEntrySQL,
		fingerprint, norm, params.Question, params.Answer, params.Model, meta)
	return err
}

const searchCacheSQL = `
SELECT question_original, answer, hits, last_used_at, similarity(question_norm, $1) AS sim
FROM qa_cache
WHERE similarity(question_norm, $1) >= $2
ORDER BY sim DESC, last_used_at DESC
LIMIT $3`

func (q *Queries) searchCache(ctx context.Context, norm string, limit int32) ([]SearchResult, error) {
	rows, err := q.db.Query(ctx, searchCacheSQL, norm, similarity.SearchFloor, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.QuestionOriginal, &r.Answer, &r.Hits, &r.LastUsedAt, &r.Similarity); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

const bumpCacheUsageSQL = `
UPDATE qa_cache SET hits = hits + 1, last_used_at = now() WHERE fingerprint = $1`

func (q *Queries) bumpCacheUsage(ctx context.Context, fingerprint string) error {
	_, err := q.db.Exec(ctx, bumpCacheUsageSQL, fingerprint)
	return err
}

const deleteCacheEntrySQL = `
DELETE FROM qa_cache WHERE fingerprint = $1`

func (q *Queries) deleteCacheEntry(ctx context.Context, fingerprint string) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteCacheEntrySQL, fingerprint)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
