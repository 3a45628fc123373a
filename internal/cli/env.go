package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/lucasnoah/deliverynote/internal/config"
	"github.com/lucasnoah/deliverynote/internal/history"
	"github.com/lucasnoah/deliverynote/internal/kind"
	"github.com/lucasnoah/deliverynote/internal/results"
)

// now is replaced in tests.
var now = time.Now

// historyOff disables the history database when used as history_db.
const historyOff = "off"

func loadConfig() (*config.Config, error) {
	if configFile != "" {
		return config.Load(configFile)
	}
	cfg, _, err := config.LoadDefault()
	return cfg, err
}

func openStore(cfg *config.Config) *results.FileStore {
	files := map[kind.Kind]string{
		kind.AutoUnitTest: cfg.Stores.Auto,
		kind.AutoSelenium: cfg.Stores.Selenium,
		kind.AutoAxe:      cfg.Stores.Axe,
	}
	return results.NewFileStore(cfg.ResultsDir, files).WithLogger(slog.Default())
}

// storePaths returns the files backing every automated kind.
func storePaths(store *results.FileStore) []string {
	var paths []string
	for _, k := range kind.Automated() {
		if p, err := store.Path(k); err == nil {
			paths = append(paths, p)
		}
	}
	return paths
}

// openHistory opens and migrates the history database. It returns nil with
// no error when history is turned off.
func openHistory(cfg *config.Config) (*history.DB, error) {
	dsn := cfg.HistoryDB
	if dsn == historyOff {
		return nil, nil
	}
	if dsn == "" {
		p, err := history.DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("history path: %w", err)
		}
		dsn = p
	}
	db, err := history.Open(dsn)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate history: %w", err)
	}
	return db, nil
}

// logStoreWrite records a store write in the history, if enabled. History
// problems are logged and never fail the write that was already made.
func logStoreWrite(cfg *config.Config, k kind.Kind, mode string, n int, source string) {
	db, err := openHistory(cfg)
	if err != nil {
		slog.Warn("history unavailable", "error", err)
		return
	}
	if db == nil {
		return
	}
	defer db.Close()
	if err := db.LogStoreWrite(k.String(), mode, n, source); err != nil {
		slog.Warn("history write failed", "error", err)
	}
}

// writeOutput writes data to path, creating parent directories.
func writeOutput(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
