package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/plankhq/plank/internal/config"
	"github.com/plankhq/plank/internal/store"
)

// dataDir holds the --data-dir persistent flag value (set on root command).
var dataDir string

// resolveDataDir returns the data directory from --data-dir flag,
// PLANK_DATA_DIR env var, or ~/.plank as fallback.
func resolveDataDir() string {
	if dataDir != "" {
		return dataDir
	}
	if envDir := os.Getenv("PLANK_DATA_DIR"); envDir != "" {
		return envDir
	}
	home, _ := os.UserHomeDir()
	return home + "/.plank"
}

// openStore opens the data store using the storage settings from the
// effective configuration, defaulting to SQLite under the data dir.
func openStore() (*store.Store, error) {
	return store.Open(store.Options{
		Driver:  viper.GetString("storage.driver"),
		DSN:     viper.GetString("storage.dsn"),
		DataDir: resolveDataDir(),
	})
}

// loadFileConfig parses the YAML config file with ${ENV} expansion, falling
// back to defaults when no file exists. viper covers flags and env vars; the
// typed loader covers the nested file sections viper does not bind.
func loadFileConfig() *config.Config {
	var paths []string
	if cfgFile != "" {
		paths = []string{cfgFile}
	} else {
		home, _ := os.UserHomeDir()
		paths = []string{"plank.yaml", filepath.Join(home, ".plank", "plank.yaml")}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if cfg, err := config.Load(p); err == nil {
			return cfg
		}
	}
	return config.Default()
}

// versionString returns a display version string.
func versionString() string {
	if appVersion == "" || appVersion == "dev" {
		return "dev"
	}
	if strings.HasPrefix(appVersion, "v") {
		return appVersion
	}
	return "v" + appVersion
}
