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
	"strconv"
	"strings"
)

const (
	// DefaultThreshold is the fuzzy-lookup cutoff used when no valid
	// threshold is configured.
	DefaultThreshold = 0.92

	// SearchFloor is the fixed minimum score for open-ended search.
	SearchFloor = 0.3
)

// ParseThreshold interprets a configured similarity threshold. It accepts a
// fraction ("0.92") or a percentage ("92"); values above 1 are divided by
// 100. Anything unparseable or outside [0,1] falls back to
// DefaultThreshold.
func ParseThreshold(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return DefaultThreshold
	}
	if v > 1 {
		v /= 100
	}
	if v < 0 || v > 1 {
		return DefaultThreshold
	}
	return v
}
