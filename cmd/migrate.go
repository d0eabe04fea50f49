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

package cmd

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/jusolo/portfolio-back/qadb"
	qadbmigrations "github.com/jusolo/portfolio-back/qadb/migrations"
)

func init() {
	rootCmd.AddCommand(MigrateCmd)
}

var MigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long:  "Apply the embedded qa_cache schema migrations to the configured database",
	RunE:  migrate,
}

func migrate(_ *cobra.Command, _ []string) error {
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(5*time.Minute))
	defer cancel()

	pool, err := qadb.ConnectToQADB(ctx, qadb.Options{SkipMigrationCheck: true})
	if err != nil {
		return err
	}
	defer pool.Close()

	slog.Info("Running qadb migrations")
	if err := qadbmigrations.RunMigrationsUp(ctx, pool); err != nil {
		return err
	}
	slog.Info("qadb migrations completed successfully")
	return nil
}
