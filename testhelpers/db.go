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

// Package testhelpers creates throwaway databases for integration tests.
package testhelpers

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jusolo/portfolio-back/qadb"
	qadbmigrations "github.com/jusolo/portfolio-back/qadb/migrations"
)

// SetupTestQADB creates a clean test database with migrations applied.
// Returns a connection pool and registers cleanup with t.Cleanup. Connection
// details come from QADB_HOST/QADB_PORT/QADB_USER/QADB_PASSWORD, defaulting
// to a local server.
func SetupTestQADB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	ctx := context.Background()
	dbName := "test_qadb_" + strings.ReplaceAll(uuid.NewString(), "-", "")

	host := getEnvOrDefault("QADB_HOST", "localhost")
	port := getEnvOrDefault("QADB_PORT", "5432")
	user := getEnvOrDefault("QADB_USER", os.Getenv("USER"))
	baseDB := getEnvOrDefault("QADB_DBNAME", "testing_qadb")
	password := os.Getenv("QADB_PASSWORD")

	basePool, err := pgxpool.New(ctx, connString(user, password, host, port, baseDB))
	if err != nil {
		t.Fatalf("Failed to connect to base database: %v", err)
	}

	if _, err := basePool.Exec(ctx, fmt.Sprintf("CREATE DATABASE %s", dbName)); err != nil {
		basePool.Close()
		t.Fatalf("Failed to create test database %s: %v", dbName, err)
	}

	testPool, err := pgxpool.New(ctx, connString(user, password, host, port, dbName))
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := qadbmigrations.RunMigrationsUp(ctx, testPool); err != nil {
		testPool.Close()
		t.Fatalf("Failed to run qadb migrations: %v", err)
	}

	t.Cleanup(func() {
		testPool.Close()
		if _, err := basePool.Exec(context.Background(), fmt.Sprintf("DROP DATABASE IF EXISTS %s", dbName)); err != nil {
			slog.Error("Failed to drop test database",
				slog.String("dbName", dbName), slog.Any("error", err))
		}
		basePool.Close()
	})

	return testPool
}

// NewTestQADBStore returns a Store backed by a fresh migrated database.
func NewTestQADBStore(t *testing.T) *qadb.Store {
	t.Helper()
	return qadb.NewStore(SetupTestQADB(t))
}

func connString(user, password, host, port, dbName string) string {
	if password != "" {
		return fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port, dbName)
	}
	return fmt.Sprintf("postgresql://%s@%s:%s/%s", user, host, port, dbName)
}

func getEnvOrDefault(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}
