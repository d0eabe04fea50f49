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

// Package qnorm canonicalizes question text so that trivially different
// phrasings of the same question ("¿Qué hora es?", "que hora es") map to
// the same cache key.
package qnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize returns the canonical comparison form of text: lower-cased,
// diacritics stripped, punctuation replaced by spaces, and whitespace
// collapsed. It is pure and idempotent. Empty or punctuation-only input
// normalizes to the empty string; callers must reject that before storage.
func Normalize(text string) string {
	t := strings.ToLower(strings.TrimSpace(text))

	// NFD decomposition so combining marks become separate runes, then
	// drop the marks. "café" and "cafe" normalize identically.
	t = norm.NFD.String(t)

	var b strings.Builder
	b.Grow(len(t))
	lastSpace := false
	for _, r := range t {
		switch {
		case unicode.Is(unicode.Mn, r):
			// combining mark, dropped
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		default:
			// punctuation, symbols, and whitespace all collapse
			// into a single separating space
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		}
	}

	return strings.TrimSpace(b.String())
}
