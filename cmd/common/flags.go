package common

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Env variable names for collaborator endpoints.
const (
	EnvCatalogURL     = "CATALOG_URL"
	EnvBacktestURL    = "BACKTEST_URL"
	EnvPersistenceURL = "PERSISTENCE_URL"
)

// CommonFlags contains flags shared across builder commands.
type CommonFlags struct {
	// Environment and configuration
	EnvFile    *string
	ConfigFile *string
	DraftDir   *string

	// Collaborator endpoints (override env)
	CatalogURL     *string
	BacktestURL    *string
	PersistenceURL *string

	// Logging and output
	Verbose *bool

	// Help and version
	Version *bool
	Help    *bool
}

// RegisterCommonFlags registers common flags with the default flag set.
func RegisterCommonFlags() *CommonFlags {
	return &CommonFlags{
		EnvFile:    flag.String("env", ".env", "Environment file path"),
		ConfigFile: flag.String("config", "", "Strategy configuration JSON file"),
		DraftDir:   flag.String("draft-dir", "drafts", "Local draft directory"),

		CatalogURL:     flag.String("catalog-url", "", "Catalog service base URL (overrides "+EnvCatalogURL+")"),
		BacktestURL:    flag.String("backtest-url", "", "Backtest service base URL (overrides "+EnvBacktestURL+")"),
		PersistenceURL: flag.String("persistence-url", "", "Persistence service base URL (overrides "+EnvPersistenceURL+")"),

		Verbose: flag.Bool("verbose", false, "Enable verbose output"),

		Version: flag.Bool("version", false, "Show version information"),
		Help:    flag.Bool("help", false, "Show help information"),
	}
}

// LoadEnvironment loads the env file if present. A missing default env
// file is not an error.
func (f *CommonFlags) LoadEnvironment() error {
	if *f.EnvFile == "" {
		return nil
	}
	if err := godotenv.Load(*f.EnvFile); err != nil {
		if os.IsNotExist(err) && *f.EnvFile == ".env" {
			return nil
		}
		return fmt.Errorf("could not load env file %s: %w", *f.EnvFile, err)
	}
	return nil
}

// Endpoint resolves a collaborator endpoint: flag wins, then env, then
// empty (collaborator disabled).
func Endpoint(flagValue *string, envName string) string {
	if *flagValue != "" {
		return *flagValue
	}
	return os.Getenv(envName)
}
