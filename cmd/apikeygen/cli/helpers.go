package cli

import (
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/Latfiansya/198-APIKeyGenerator/internal/store"
)

// dataDir holds the --data-dir persistent flag value (set on root command).
var dataDir string

// resolveDataDir returns the data directory from the --data-dir flag,
// APIKEYGEN_DATA_DIR env var, or ~/.apikeygen as fallback.
func resolveDataDir() string {
	if dataDir != "" {
		return dataDir
	}
	if envDir := os.Getenv("APIKEYGEN_DATA_DIR"); envDir != "" {
		return envDir
	}
	home, _ := os.UserHomeDir()
	return home + "/.apikeygen"
}

// openStore opens the backing store selected by configuration. With the
// default sqlite driver and no DSN it falls back to a database file under
// the data directory.
func openStore() (*store.Store, error) {
	driver := viper.GetString("store.driver")
	if driver == "" {
		driver = store.DriverSQLite
	}
	dsn := viper.GetString("store.dsn")

	if driver == store.DriverSQLite && dsn == "" {
		return store.OpenSQLite(resolveDataDir())
	}
	return store.Open(driver, dsn)
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
