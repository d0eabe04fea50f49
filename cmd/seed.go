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
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jusolo/portfolio-back/qadb"
)

var seedModel string

func init() {
	SeedCmd.Flags().StringVar(&seedModel, "model", "seed", "Model label recorded for the entry")
	rootCmd.AddCommand(SeedCmd)
}

var SeedCmd = &cobra.Command{
	Use:   "seed <question> <answer>",
	Short: "Store an answer directly into the cache",
	Long:  "Insert a question-answer pair without going through a generator. Re-seeding an already-answered question only bumps its usage counters.",
	Args:  cobra.ExactArgs(2),
	RunE:  seed,
}

func seed(cmd *cobra.Command, args []string) error {
	ctx, shutdown, err := setupTelemetry("qa-cache-cli")
	if err != nil {
		return err
	}
	defer func() { _ = shutdown() }()
	defer qadb.CloseSharedStore()

	cache, _, err := openCache(ctx)
	if err != nil {
		return err
	}

	meta := map[string]any{
		"seed_id":   uuid.NewString(),
		"seeded_at": time.Now().UTC().Format(time.RFC3339),
	}
	if err := cache.Store(ctx, args[0], args[1], seedModel, meta); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "stored")
	return nil
}
