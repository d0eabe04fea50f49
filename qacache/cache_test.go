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
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jusolo/portfolio-back/qadb"
)

func newTestCache(t *testing.T, cfg Config) (*Cache, *MemoryStore) {
	t.Helper()
	backend := NewMemoryStore()
	return New(backend, cfg), backend
}

func TestLookupExactHit(t *testing.T) {
	ctx := context.Background()
	cache, _ := newTestCache(t, Config{})

	require.NoError(t, cache.Store(ctx, "¿Qué hora es?", "Son las 3pm", "gemini", nil))

	hit, err := cache.Lookup(ctx, "que hora es")
	require.NoError(t, err)
	require.NotNil(t, hit)
	assert.Equal(t, "Son las 3pm", hit.Entry.Answer)
	assert.False(t, hit.Fuzzy)
	assert.Equal(t, 1.0, hit.Similarity)
	assert.Equal(t, "¿Qué hora es?", hit.Entry.QuestionOriginal)
}

func TestLookupMiss(t *testing.T) {
	ctx := context.Background()
	cache, _ := newTestCache(t, Config{FuzzyEnabled: true})

	hit, err := cache.Lookup(ctx, "never asked before")
	require.NoError(t, err)
	assert.Nil(t, hit)
}

func TestLookupFuzzyHit(t *testing.T) {
	ctx := context.Background()
	cache, _ := newTestCache(t, Config{FuzzyEnabled: true, Threshold: 0.6})

	require.NoError(t, cache.Store(ctx, "¿Cuándo es el evento?", "El 5 de marzo", "gemini", nil))

	hit, err := cache.Lookup(ctx, "cuando sera el evento")
	require.NoError(t, err)
	require.NotNil(t, hit)
	assert.True(t, hit.Fuzzy)
	assert.Equal(t, "El 5 de marzo", hit.Entry.Answer)
	assert.GreaterOrEqual(t, hit.Similarity, 0.6)
	assert.Less(t, hit.Similarity, 1.0)
}

func TestLookupFuzzyDisabled(t *testing.T) {
	ctx := context.Background()
	cache, _ := newTestCache(t, Config{FuzzyEnabled: false, Threshold: 0.3})

	require.NoError(t, cache.Store(ctx, "¿Cuándo es el evento?", "El 5 de marzo", "gemini", nil))

	hit, err := cache.Lookup(ctx, "cuando sera el evento")
	require.NoError(t, err)
	assert.Nil(t, hit)
}

func TestLookupBelowThresholdIsMiss(t *testing.T) {
	ctx := context.Background()
	cache, _ := newTestCache(t, Config{FuzzyEnabled: true, Threshold: 0.99})

	require.NoError(t, cache.Store(ctx, "¿Cuándo es el evento?", "El 5 de marzo", "gemini", nil))

	hit, err := cache.Lookup(ctx, "cuando sera el evento")
	require.NoError(t, err)
	assert.Nil(t, hit)
}

func TestLookupEmptyQuestion(t *testing.T) {
	ctx := context.Background()
	cache, _ := newTestCache(t, Config{})

	_, err := cache.Lookup(ctx, "   ?!¡  ")
	assert.ErrorIs(t, err, qadb.ErrEmptyQuestion)
}

func TestStoreFirstWriteWins(t *testing.T) {
	ctx := context.Background()
	cache, backend := newTestCache(t, Config{})

	require.NoError(t, cache.Store(ctx, "¿Qué hora es?", "Son las 3pm", "gemini", nil))
	require.NoError(t, cache.Store(ctx, "QUE hora es!!", "Son las 4pm", "other-model", nil))

	entry, err := backend.GetExact(ctx, "que hora es", 0)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "Son las 3pm", entry.Answer, "first answer is authoritative")
	assert.Equal(t, "gemini", entry.Model)
	assert.Equal(t, "¿Qué hora es?", entry.QuestionOriginal)
	assert.Equal(t, int32(2), entry.Hits, "second put counts as usage")
}

func TestStoreRequiresModel(t *testing.T) {
	ctx := context.Background()
	cache, _ := newTestCache(t, Config{})

	err := cache.Store(ctx, "¿Qué hora es?", "Son las 3pm", "", nil)
	assert.ErrorIs(t, err, qadb.ErrMissingModel)
}

func TestHitCountProgression(t *testing.T) {
	ctx := context.Background()
	cache, backend := newTestCache(t, Config{})

	require.NoError(t, cache.Store(ctx, "¿Qué hora es?", "Son las 3pm", "x", nil))

	hit, err := cache.Lookup(ctx, "que hora es")
	require.NoError(t, err)
	require.NotNil(t, hit)
	assert.Equal(t, int32(1), hit.Entry.Hits, "returned entry carries pre-bump stats")

	entry, err := backend.GetExact(ctx, "que hora es", 0)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, int32(2), entry.Hits)
	assert.False(t, entry.LastUsedAt.Before(entry.CreatedAt))
}

func TestMaxAgeExcludesOldEntries(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	clock := now
	backend := NewMemoryStoreWithClock(func() time.Time { return clock })
	cache := New(backend, Config{FuzzyEnabled: true, Threshold: 0.5, MaxAge: 24 * time.Hour})

	require.NoError(t, cache.Store(ctx, "¿Qué hora es?", "Son las 3pm", "x", nil))

	// two days later the entry is logically absent for lookup
	clock = now.Add(48 * time.Hour)
	hit, err := cache.Lookup(ctx, "que hora es")
	require.NoError(t, err)
	assert.Nil(t, hit)

	// but open search still finds it, there is no age filter there
	results, err := cache.Search(ctx, "que hora es", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Son las 3pm", results[0].Answer)
}

func TestSearchOrderingAndLimit(t *testing.T) {
	ctx := context.Background()
	cache, _ := newTestCache(t, Config{})

	require.NoError(t, cache.Store(ctx, "que hora es en bogota", "3pm", "x", nil))
	require.NoError(t, cache.Store(ctx, "que hora es en madrid", "10pm", "x", nil))
	require.NoError(t, cache.Store(ctx, "que hora es", "depende", "x", nil))

	results, err := cache.Search(ctx, "que hora es", 10)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(results), 3)
	assert.Equal(t, "depende", results[0].Answer, "identical text scores highest")
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Similarity, results[i].Similarity)
	}

	limited, err := cache.Search(ctx, "que hora es", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestInvalidate(t *testing.T) {
	ctx := context.Background()
	cache, _ := newTestCache(t, Config{})

	require.NoError(t, cache.Store(ctx, "¿Qué hora es?", "Son las 3pm", "x", nil))

	n, err := cache.Invalidate(ctx, "QUE hora ES?")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	hit, err := cache.Lookup(ctx, "que hora es")
	require.NoError(t, err)
	assert.Nil(t, hit)

	n, err = cache.Invalidate(ctx, "never stored")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestConcurrentPutsCollapse(t *testing.T) {
	ctx := context.Background()
	cache, backend := newTestCache(t, Config{})

	variants := []string{"Hola!", "hola", "  HOLA  ", "¡hola!", "hola..."}
	const perVariant = 20

	var wg sync.WaitGroup
	for _, v := range variants {
		for range perVariant {
			wg.Add(1)
			go func(question string) {
				defer wg.Done()
				_ = cache.Store(ctx, question, "buenas", "x", nil)
			}(v)
		}
	}
	wg.Wait()

	entry, err := backend.GetExact(ctx, "hola", 0)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, int32(len(variants)*perVariant), entry.Hits,
		"all equivalent puts land on one row")
}

func TestFuzzyTieBreakPrefersRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	clock := now
	backend := NewMemoryStoreWithClock(func() time.Time { return clock })
	cache := New(backend, Config{FuzzyEnabled: true, Threshold: 0.3})

	require.NoError(t, cache.Store(ctx, "donde queda el museo abc", "en el centro", "x", nil))
	clock = now.Add(time.Minute)
	require.NoError(t, cache.Store(ctx, "donde queda el museo xyz", "en el norte", "x", nil))

	// equidistant query; the more recently used entry wins the tie
	hit, err := cache.Lookup(ctx, "donde queda el museo")
	require.NoError(t, err)
	require.NotNil(t, hit)
	assert.Equal(t, "en el norte", hit.Entry.Answer)
}
