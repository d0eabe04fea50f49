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

import "time"

// CacheEntry is one stored question-answer pair.
//
// Fingerprint is the sha256 of QuestionNorm and is the primary key, so two
// questions that normalize identically always collapse into one row.
// QuestionOriginal keeps the verbatim user input for display only; matching
// always runs against QuestionNorm.
type CacheEntry struct {
	Fingerprint      string
	QuestionNorm     string
	QuestionOriginal string
	Answer           string
	Model            string
	CreatedAt        time.Time
	LastUsedAt       time.Time
	Hits             int32
	Meta             map[string]any
}

// FuzzyMatch is a cache entry found by similarity search, with the score
// that selected it.
type FuzzyMatch struct {
	CacheEntry
	Similarity float64
}

// SearchResult is one row of the human-facing search output.
type SearchResult struct {
	QuestionOriginal string
	Answer           string
	Hits             int32
	LastUsedAt       time.Time
	Similarity       float64
}

// PutParams carries a new answer into the cache. Model identifies the
// generation or seed event that produced the answer and is required.
type PutParams struct {
	Question string
	Answer   string
	Model    string
	Meta     map[string]any
}
