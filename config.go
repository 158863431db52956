package luadex

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds tool-level settings loaded from luadex.toml.
type Config struct {
	Paths   PathsConfig   `toml:"paths"`
	Build   BuildConfig   `toml:"build"`
	Cookpot CookpotConfig `toml:"cookpot"`
}

// PathsConfig locates the script mount and output artifacts.
type PathsConfig struct {
	ScriptsDir string `toml:"scripts_dir"`
	OutDir     string `toml:"out_dir"`
	Overrides  string `toml:"overrides"`
}

// BuildConfig tunes the build pipeline.
type BuildConfig struct {
	// Parallelism caps concurrent per-file extraction. 0 means one
	// worker per CPU.
	Parallelism int `toml:"parallelism"`
}

// CookpotConfig tunes the cook-pot explorer.
type CookpotConfig struct {
	// ExploreComboCap bounds the multiset enumeration in explore; past
	// it the explorer falls back to single-snapshot feasibility.
	ExploreComboCap int `toml:"explore_combo_cap"`
}

// DefaultConfig returns the configuration used when no luadex.toml is
// present.
func DefaultConfig() *Config {
	return &Config{
		Paths: PathsConfig{
			ScriptsDir: "scripts",
			OutDir:     "out",
			Overrides:  "overrides.yaml",
		},
		Build:   BuildConfig{Parallelism: 0},
		Cookpot: CookpotConfig{ExploreComboCap: 15000},
	}
}

// LoadConfig reads a TOML config file, layering it over the defaults.
// A missing file is not an error; it yields the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Cookpot.ExploreComboCap <= 0 {
		cfg.Cookpot.ExploreComboCap = 15000
	}
	return cfg, nil
}
