// Package config loads the service settings from .env, an optional config
// file and GENEGRAPH_* environment variables.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/yumyai/genegraph/internal/util"
	"github.com/yumyai/genegraph/pkg/model"
)

const envPrefix = "GENEGRAPH"

const (
	keyData            = "data"
	keyAddr            = "addr"
	keyLogLevel        = "log_level"
	keyCutoff          = "cutoff"
	keyParallelDomains = "parallel_domains"
	keyAllowPartial    = "allow_partial_processing"
	keyMaxUploadMB     = "max_upload_mb"
	keyConfig          = "config"
)

// Config holds everything main needs to start the server.
type Config struct {
	DataDir                string
	Addr                   string
	LogLevel               string
	Cutoff                 float64
	ParallelDomains        bool
	AllowPartialProcessing bool
	MaxUploadMB            int64
	// .env was found and loaded
	DotEnv bool
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault(keyData, "./data")
	v.SetDefault(keyAddr, "0.0.0.0:8080")
	v.SetDefault(keyLogLevel, "info")
	v.SetDefault(keyCutoff, model.DefaultCutoffThreshold)
	v.SetDefault(keyParallelDomains, true)
	v.SetDefault(keyAllowPartial, false)
	v.SetDefault(keyMaxUploadMB, 32)
	v.SetDefault(keyConfig, "")
	return v
}

// Load reads .env when present, then the file named by GENEGRAPH_CONFIG (any
// format viper understands) and finally the environment, which wins.
func Load() (*Config, error) {

	dotenv := godotenv.Load() == nil

	v := newViper()
	if path := v.GetString(keyConfig); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: failed to read config file %q: %w", path, err)
		}
	}

	cfg := &Config{
		DataDir:                v.GetString(keyData),
		Addr:                   v.GetString(keyAddr),
		LogLevel:               v.GetString(keyLogLevel),
		Cutoff:                 v.GetFloat64(keyCutoff),
		ParallelDomains:        v.GetBool(keyParallelDomains),
		AllowPartialProcessing: v.GetBool(keyAllowPartial),
		MaxUploadMB:            v.GetInt64(keyMaxUploadMB),
		DotEnv:                 dotenv,
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch {
	case c.DataDir == "":
		return fmt.Errorf("data directory is empty")
	case c.Addr == "":
		return fmt.Errorf("listen address is empty")
	case c.Cutoff < 0:
		return fmt.Errorf("cutoff must be non-negative, got %v", c.Cutoff)
	case c.MaxUploadMB <= 0:
		return fmt.Errorf("max upload size must be positive, got %d", c.MaxUploadMB)
	}
	return nil
}

// ModelConfig applies the service overrides on top of the pipeline defaults.
func (c *Config) ModelConfig() model.Config {
	mc := model.DefaultConfig()
	mc.CutoffThreshold = c.Cutoff
	mc.ParallelDomains = c.ParallelDomains
	mc.AllowPartialProcessing = c.AllowPartialProcessing
	return mc
}

// DBPath returns the sqlite file under the data directory, creating its
// parent directory on first use.
func (c *Config) DBPath() (string, error) {
	dir := filepath.Join(c.DataDir, "db")
	if err := util.EnsureDir(dir); err != nil {
		return "", err
	}
	return filepath.Join(dir, "genegraph.db"), nil
}

func (c *Config) MaxMemory() int64 {
	return c.MaxUploadMB << 20
}
