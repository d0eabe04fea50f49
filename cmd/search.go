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

	"github.com/spf13/cobra"

	"github.com/jusolo/portfolio-back/qadb"
)

var searchLimit int32

func init() {
	SearchCmd.Flags().Int32Var(&searchLimit, "limit", 0, "Maximum results (default from configuration)")
	rootCmd.AddCommand(SearchCmd)
}

var SearchCmd = &cobra.Command{
	Use:   "search <term>",
	Short: "List cache entries similar to a term",
	Long:  "Similarity search over stored questions, for inspection; no usage counters move",
	Args:  cobra.MinimumNArgs(1),
	RunE:  search,
}

func search(cmd *cobra.Command, args []string) error {
	ctx, shutdown, err := setupTelemetry("qa-cache-cli")
	if err != nil {
		return err
	}
	defer func() { _ = shutdown() }()
	defer qadb.CloseSharedStore()

	cache, cfg, err := openCache(ctx)
	if err != nil {
		return err
	}

	limit := searchLimit
	if limit <= 0 {
		limit = int32(cfg.Cache.SearchLimit)
	}

	results, err := cache.Search(ctx, strings.Join(args, " "), limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(results) == 0 {
		fmt.Fprintln(out, "no matches")
		return nil
	}
	for _, r := range results {
		fmt.Fprintf(out, "%.3f  hits=%-4d last_used=%s  %s\n",
			r.Similarity, r.Hits, r.LastUsedAt.Format("2006-01-02"), r.QuestionOriginal)
	}
	return nil
}
