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

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.True(t, cfg.Cache.FuzzyEnabled)
	require.Equal(t, 0.92, cfg.Cache.Threshold())
	require.Equal(t, 365*24*time.Hour, cfg.Cache.MaxAge())
	require.Equal(t, 20, cfg.Cache.SearchLimit)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("PORTFOLIO_CACHE_FUZZY_ENABLED", "false")
	t.Setenv("PORTFOLIO_CACHE_SIMILARITY", "0.85")
	t.Setenv("PORTFOLIO_CACHE_MAX_AGE_DAYS", "30")

	cfg, err := Load()
	require.NoError(t, err)

	require.False(t, cfg.Cache.FuzzyEnabled)
	require.Equal(t, 0.85, cfg.Cache.Threshold())
	require.Equal(t, 30*24*time.Hour, cfg.Cache.MaxAge())
}

func TestThresholdAcceptsPercentage(t *testing.T) {
	t.Setenv("PORTFOLIO_CACHE_SIMILARITY", "85")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 0.85, cfg.Cache.Threshold())
}

func TestThresholdFallsBackOnGarbage(t *testing.T) {
	t.Setenv("PORTFOLIO_CACHE_SIMILARITY", "very similar please")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 0.92, cfg.Cache.Threshold())
}

func TestMaxAgeDisabled(t *testing.T) {
	t.Setenv("PORTFOLIO_CACHE_MAX_AGE_DAYS", "0")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, time.Duration(0), cfg.Cache.MaxAge())
}

func TestLookupConfig(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	lc := cfg.Cache.LookupConfig()
	require.True(t, lc.FuzzyEnabled)
	require.Equal(t, 0.92, lc.Threshold)
	require.Equal(t, 365*24*time.Hour, lc.MaxAge)
}
