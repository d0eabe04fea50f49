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
	"fmt"

	"github.com/jusolo/portfolio-back/config"
	"github.com/jusolo/portfolio-back/qacache"
	"github.com/jusolo/portfolio-back/qadb"
)

// openCache wires up configuration, the shared database store, and the
// cache facade the way the API process does.
func openCache(ctx context.Context) (*qacache.Cache, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	store, err := qadb.SharedStore(ctx)
	if err != nil {
		return nil, nil, err
	}

	return qacache.New(store, cfg.Cache.LookupConfig()), cfg, nil
}
