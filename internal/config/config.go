package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	DBPath string `envconfig:"DB_PATH"`

	BusyTimeout time.Duration `envconfig:"BUSY_TIMEOUT" default:"5s"`
	MmapSize    int64         `envconfig:"MMAP_SIZE" default:"268435456"`

	CacheSize int           `envconfig:"CACHE_SIZE" default:"256"`
	CacheTTL  time.Duration `envconfig:"CACHE_TTL" default:"60s"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("KNOWMEM", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if cfg.DBPath == "" {
		cfg.DBPath = defaultDBPath()
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".knowmem", "knowledge.db")
	}
	return filepath.Join(home, ".knowmem", "knowledge.db")
}
