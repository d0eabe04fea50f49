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
	"reflect"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jusolo/portfolio-back/internal/similarity"
	"github.com/jusolo/portfolio-back/qacache"
)

// Config aggregates configuration for the application.
type Config struct {
	Cache CacheConfig `mapstructure:"cache"`
}

// CacheConfig controls the lookup side of the answer cache.
type CacheConfig struct {
	// FuzzyEnabled turns on similarity fallback after an exact miss.
	FuzzyEnabled bool `mapstructure:"fuzzy_enabled"`
	// Similarity is the fuzzy threshold, as a fraction ("0.92") or a
	// percentage ("92"). Unparseable values fall back to the default.
	Similarity string `mapstructure:"similarity"`
	// MaxAgeDays treats entries older than this as absent at read time.
	// Zero disables the age filter.
	MaxAgeDays int `mapstructure:"max_age_days"`
	// SearchLimit caps open search results.
	SearchLimit int `mapstructure:"search_limit"`
}

func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		FuzzyEnabled: true,
		Similarity:   "92",
		MaxAgeDays:   365,
		SearchLimit:  20,
	}
}

// Threshold parses the configured similarity value.
func (c CacheConfig) Threshold() float64 {
	return similarity.ParseThreshold(c.Similarity)
}

// MaxAge converts the day count into a duration; zero means no filter.
func (c CacheConfig) MaxAge() time.Duration {
	if c.MaxAgeDays <= 0 {
		return 0
	}
	return time.Duration(c.MaxAgeDays) * 24 * time.Hour
}

// LookupConfig is the qacache view of this configuration.
func (c CacheConfig) LookupConfig() qacache.Config {
	return qacache.Config{
		FuzzyEnabled: c.FuzzyEnabled,
		Threshold:    c.Threshold(),
		MaxAge:       c.MaxAge(),
	}
}

// Load reads configuration from files and environment variables.
// Environment variables use the prefix "PORTFOLIO" and the dot character
// in keys is replaced by an underscore. For example, "cache.similarity"
// becomes "PORTFOLIO_CACHE_SIMILARITY".
func Load() (*Config, error) {
	cfg := &Config{
		Cache: DefaultCacheConfig(),
	}

	v := viper.New()
	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.SetEnvPrefix("PORTFOLIO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvs(v, cfg)
	_ = v.ReadInConfig()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// bindEnvs registers all keys within cfg so that viper will look up
// corresponding environment variables when unmarshalling.
func bindEnvs(v *viper.Viper, cfg any, parts ...string) {
	val := reflect.ValueOf(cfg)
	typ := reflect.TypeOf(cfg)
	if typ.Kind() == reflect.Ptr {
		val = val.Elem()
		typ = typ.Elem()
	}
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		tag := f.Tag.Get("mapstructure")
		if tag == "" {
			tag = strings.ToLower(f.Name)
		}
		key := append(parts, tag)
		if f.Type.Kind() == reflect.Struct {
			bindEnvs(v, val.Field(i).Interface(), key...)
			continue
		}
		_ = v.BindEnv(strings.Join(key, "."))
	}
}
