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

package qnorm

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "already normalized",
			input:    "que hora es",
			expected: "que hora es",
		},
		{
			name:     "accents and inverted punctuation",
			input:    "¿Qué hora es?",
			expected: "que hora es",
		},
		{
			name:     "case folding",
			input:    "CAFÉ",
			expected: "cafe",
		},
		{
			name:     "surrounding whitespace",
			input:    "  hola   mundo \t",
			expected: "hola mundo",
		},
		{
			name:     "punctuation becomes single separator",
			input:    "hola,,,mundo!!!",
			expected: "hola mundo",
		},
		{
			name:     "digits survive",
			input:    "Top 10 things?",
			expected: "top 10 things",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
		{
			name:     "whitespace only",
			input:    "   \n\t ",
			expected: "",
		},
		{
			name:     "punctuation only",
			input:    "?!¿¡...",
			expected: "",
		},
		{
			name:     "mixed diacritics",
			input:    "¿Cuándo es el evento?",
			expected: "cuando es el evento",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"¿Qué hora es?",
		"Hello, World!",
		"  Ünïcödé   tëxt  ",
		"already plain",
		"",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestNormalizeAccentAndCaseInsensitive(t *testing.T) {
	assert.Equal(t, Normalize("cafe"), Normalize("Café"))
	assert.Equal(t, Normalize("cuando es el evento"), Normalize("¿Cuándo es el evento?"))
}

func TestFingerprintDeterministic(t *testing.T) {
	n := Normalize("¿Qué hora es?")
	first := Fingerprint(n)
	require.Len(t, first, FingerprintLen)
	for range 10 {
		assert.Equal(t, first, Fingerprint(n))
	}
}

func TestFingerprintDistinctInputs(t *testing.T) {
	seen := make(map[string]string)
	for i := range 5000 {
		text := fmt.Sprintf("question number %d about topic %d", i, i%97)
		fp := Fingerprint(text)
		require.Len(t, fp, FingerprintLen)
		if prev, ok := seen[fp]; ok {
			t.Fatalf("fingerprint collision between %q and %q", prev, text)
		}
		seen[fp] = text
	}
}
