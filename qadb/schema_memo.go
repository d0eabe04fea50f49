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
	"time"

	"github.com/jellydator/ttlcache/v3"
)

const schemaMemoTTL = 30 * time.Minute

// Remembers, per connection string, that the embedded migrations already
// ran. EnsureSchema is called on every startup path; the memo keeps the
// repeats from hitting the database. Entries expire so a rebuilt database
// is still picked up eventually.
var schemaMemo = ttlcache.New(
	ttlcache.WithTTL[string, struct{}](schemaMemoTTL),
	ttlcache.WithDisableTouchOnHit[string, struct{}](),
)

func init() {
	go schemaMemo.Start()
}

func RememberSchema(connString string) {
	schemaMemo.Set(connString, struct{}{}, ttlcache.DefaultTTL)
}

func IsSchemaRemembered(connString string) bool {
	return schemaMemo.Get(connString) != nil
}
