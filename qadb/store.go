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

// Package qadb is the PostgreSQL question-answer cache. Questions are
// keyed by a fingerprint of their normalized text; approximate lookup is
// delegated to pg_trgm over the question_norm column.
package qadb

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store provides all functions to execute db queries against the qa_cache
// schema.
type Store struct {
	*Queries
	connPool *pgxpool.Pool
}

// NewStore creates a new Store
func NewStore(connPool *pgxpool.Pool) *Store {
	return &Store{
		connPool: connPool,
		Queries:  New(connPool),
	}
}

func (store *Store) Pool() *pgxpool.Pool {
	return store.connPool
}

// Close releases the connection pool and everything checked out of it.
func (store *Store) Close() {
	if store.connPool != nil {
		store.connPool.Close()
	}
}
