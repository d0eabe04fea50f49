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

// Package idgen hands out roughly time-ordered process instance IDs.
package idgen

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/sony/sonyflake"
)

var (
	once sync.Once
	sf   *sonyflake.Sonyflake
)

// NextInstanceID returns a positive int64 that increases roughly in time
// order across processes. Falls back to a random value if the flake
// generator is unavailable (e.g. no usable network interface).
func NextInstanceID() int64 {
	once.Do(func() {
		sf, _ = sonyflake.New(sonyflake.Settings{
			StartTime: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		})
	})
	if sf == nil {
		return rand.Int64()
	}
	id, err := sf.NextID()
	if err != nil {
		return rand.Int64()
	}
	return int64(id)
}
