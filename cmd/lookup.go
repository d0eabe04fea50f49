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
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/jusolo/portfolio-back/qadb"
)

func init() {
	rootCmd.AddCommand(LookupCmd)
}

var LookupCmd = &cobra.Command{
	Use:   "lookup <question>",
	Short: "Resolve a question against the cache",
	Long:  "Run the same exact-then-fuzzy lookup the API performs and print the result",
	Args:  cobra.MinimumNArgs(1),
	RunE:  lookup,
}

func lookup(cmd *cobra.Command, args []string) error {
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

	question := strings.Join(args, " ")
	t0 := time.Now()
	hit, err := cache.Lookup(ctx, question)
	lookupDuration.Record(ctx, time.Since(t0).Seconds(),
		metric.WithAttributes(attribute.Bool("hasError", err != nil)))
	if err != nil {
		return err
	}
	if hit == nil {
		cacheMissCounter.Add(ctx, 1)
		fmt.Fprintln(cmd.OutOrStdout(), "miss")
		return nil
	}
	cacheHitCounter.Add(ctx, 1)

	kind := "exact"
	if hit.Fuzzy {
		kind = "fuzzy"
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s hit (similarity %.3f)\n", kind, hit.Similarity)
	fmt.Fprintf(out, "question: %s\n", hit.Entry.QuestionOriginal)
	fmt.Fprintf(out, "answer:   %s\n", hit.Entry.Answer)
	fmt.Fprintf(out, "model:    %s  hits: %d  last used: %s\n",
		hit.Entry.Model, hit.Entry.Hits, hit.Entry.LastUsedAt.Format("2006-01-02 15:04:05"))
	return nil
}
