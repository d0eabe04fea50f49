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
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgx-contrib/pgxotel"

	"github.com/jusolo/portfolio-back/internal/dbopen"
	"github.com/jusolo/portfolio-back/migrations"
	qadbmigrations "github.com/jusolo/portfolio-back/qadb/migrations"
)

// Options adjusts how ConnectToQADB validates the database it reaches.
type Options struct {
	SkipMigrationCheck    bool
	MigrationCheckOptions []migrations.CheckOption
}

// NewConnectionPool creates a new connection pool using the PostgreSQL
// connection string provided, and using pgx v5. Pool size defaults to 5
// connections and can be overridden with QADB_POOL_MAX_CONNS.
func NewConnectionPool(ctx context.Context, url string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, err
	}

	cfg.ConnConfig.Tracer = &pgxotel.QueryTracer{
		Name: "qadb",
	}

	if val := os.Getenv("QADB_POOL_MAX_CONNS"); val != "" {
		if n, err := strconv.ParseInt(val, 10, 32); err == nil && n > 0 {
			cfg.MaxConns = int32(n)
		}
	} else if cfg.MaxConns > 5 {
		cfg.MaxConns = 5
	}

	return pgxpool.NewWithConfig(ctx, cfg)
}

// ConnectToQADB builds the connection URL from QADB_* environment
// variables, opens a pool, and verifies the schema is at the expected
// migration version unless told otherwise.
func ConnectToQADB(ctx context.Context, opts ...Options) (*pgxpool.Pool, error) {
	connectionString, err := dbopen.GetDatabaseURLFromEnv("QADB")
	if err != nil {
		return nil, errors.Join(dbopen.ErrDatabaseNotConfigured, fmt.Errorf("failed to get QADB connection string: %w", err))
	}

	pool, err := NewConnectionPool(ctx, connectionString)
	if err != nil {
		return nil, err
	}

	var opt Options
	if len(opts) > 0 {
		opt = opts[0]
	}

	if !opt.SkipMigrationCheck {
		if err := qadbmigrations.CheckVersion(ctx, pool, opt.MigrationCheckOptions...); err != nil {
			pool.Close()
			return nil, fmt.Errorf("QADB migration version check failed: %w", err)
		}
	}

	return pool, nil
}

// QADBStore connects and returns a ready-to-use Store. Schema setup is
// attempted best-effort: if the database is unreachable the store is still
// returned, setup failure is logged, and the first real operation surfaces
// the connectivity error to its caller.
func QADBStore(ctx context.Context) (*Store, error) {
	pool, err := ConnectToQADB(ctx, Options{SkipMigrationCheck: true})
	if err != nil {
		return nil, err
	}

	if err := EnsureSchema(ctx, pool); err != nil {
		slog.Warn("qa_cache schema setup failed, will retry on next connect",
			slog.Any("error", err))
	}

	return NewStore(pool), nil
}

// EnsureSchema idempotently applies the embedded migrations. Repeated
// calls within the memo window are no-ops, so it is safe to call on every
// startup path and from concurrent callers.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	url := pool.Config().ConnString()
	if IsSchemaRemembered(url) {
		return nil
	}
	if err := qadbmigrations.RunMigrationsUp(ctx, pool); err != nil {
		return err
	}
	RememberSchema(url)
	return nil
}

var (
	sharedMu    sync.Mutex
	sharedStore *Store
)

// SharedStore returns the process-wide store, connecting on first use.
// Lazy bring-up keeps slow database networks from blocking process start.
func SharedStore(ctx context.Context) (*Store, error) {
	sharedMu.Lock()
	defer sharedMu.Unlock()

	if sharedStore != nil {
		return sharedStore, nil
	}

	store, err := QADBStore(ctx)
	if err != nil {
		return nil, err
	}
	sharedStore = store
	return sharedStore, nil
}

// CloseSharedStore tears down the shared pool. The next SharedStore call
// reconnects.
func CloseSharedStore() {
	sharedMu.Lock()
	defer sharedMu.Unlock()

	if sharedStore != nil {
		sharedStore.Close()
		sharedStore = nil
	}
}
