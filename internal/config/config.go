package config

// #region imports
import (
	"fmt"
	"runtime"

	"github.com/caarlos0/env/v11"
)

// #endregion

// #region config

// Config holds command settings read from the environment. Flags may
// override any field after Load.
type Config struct {
	DBPath  string `env:"SCENE_DB"      envDefault:"scene-metadata.db"`
	Locale  string `env:"SCENE_LOCALE"  envDefault:"en"`
	Workers int    `env:"SCENE_WORKERS" envDefault:"0"`
}

// Load parses the environment. Workers <= 0 becomes GOMAXPROCS.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.Workers = normalizeWorkers(cfg.Workers)
	return cfg, nil
}

func normalizeWorkers(n int) int {
	if n <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return n
}

// #endregion config
