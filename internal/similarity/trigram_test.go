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

package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jusolo/portfolio-back/internal/qnorm"
)

func TestScoreIdentical(t *testing.T) {
	assert.Equal(t, 1.0, Score("que hora es", "que hora es"))
	assert.Equal(t, 0.0, Score("", ""))
}

func TestScoreDisjoint(t *testing.T) {
	assert.Equal(t, 0.0, Score("abc", "xyz"))
	assert.Equal(t, 0.0, Score("something", ""))
	assert.Equal(t, 0.0, Score("", "something"))
}

func TestScoreRange(t *testing.T) {
	pairs := [][2]string{
		{"que hora es", "que hora sera"},
		{"cuando es el evento", "cuando empieza el evento"},
		{"hola mundo", "hola"},
	}
	for _, p := range pairs {
		s := Score(p[0], p[1])
		assert.Greater(t, s, 0.0, "%q vs %q", p[0], p[1])
		assert.Less(t, s, 1.0, "%q vs %q", p[0], p[1])
	}
}

func TestScoreSymmetric(t *testing.T) {
	a, b := "cuando es el evento", "cuando sera el evento"
	assert.InDelta(t, Score(a, b), Score(b, a), 1e-12)
}

// Normalized variants of the same phrase must be indistinguishable to the
// matcher.
func TestScoreAfterNormalize(t *testing.T) {
	a := qnorm.Normalize("¿Cuándo es el evento?")
	b := qnorm.Normalize("cuando es el evento")
	assert.Equal(t, 1.0, Score(a, b))
}

func TestScoreCloseVariant(t *testing.T) {
	// A one-word difference on a short phrase stays well above the open
	// search floor but may fall below a strict fuzzy threshold.
	s := Score("que hora es", "que horas es")
	assert.GreaterOrEqual(t, s, SearchFloor)
}

func TestParseThreshold(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{"0.92", 0.92},
		{"92", 0.92},
		{"0.5", 0.5},
		{"85", 0.85},
		{"1", 1.0},
		{"100", 1.0},
		{" 75 ", 0.75},
		{"0", 0.0},
		{"", DefaultThreshold},
		{"not-a-number", DefaultThreshold},
		{"-3", DefaultThreshold},
		{"250", DefaultThreshold},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, ParseThreshold(tt.input), "input %q", tt.input)
	}
}
