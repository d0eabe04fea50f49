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

func init() {
	rootCmd.AddCommand(InvalidateCmd)
}

var InvalidateCmd = &cobra.Command{
	Use:   "invalidate <question>",
	Short: "Delete the cache entry for exactly this question",
	Long:  "Remove the entry whose normalized text matches the given question. The only way to replace a stored answer is invalidate then seed or re-ask.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  invalidate,
}

func invalidate(cmd *cobra.Command, args []string) error {
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

	n, err := cache.Invalidate(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "deleted %d\n", n)
	return nil
}
