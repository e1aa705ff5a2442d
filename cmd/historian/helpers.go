// Shared helpers for historian CLI commands.
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	json "github.com/goccy/go-json"

	"github.com/mesh-intelligence/historian/internal/logging"
	"github.com/mesh-intelligence/historian/internal/sqlite"
	"github.com/mesh-intelligence/historian/pkg/types"
)

// attachBackend loads the config and attaches a SQLite backend. The caller
// must defer backend.Detach().
func attachBackend() (*sqlite.Backend, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	backend := sqlite.NewBackend(logging.New(cfg.LogLevel))
	if err := backend.Attach(cfg); err != nil {
		return nil, fmt.Errorf("attach backend: %w", err)
	}
	return backend, nil
}

// printResult renders v as indented JSON when --json is set, otherwise via
// the provided plain-text printer.
func printResult(v any, plain func()) error {
	if flagJSON {
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}
	plain()
	return nil
}

// readInput reads from the given file, or stdin when path is "-" or empty.
func readInput(path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

// parseDate parses a YYYY-MM-DD argument.
func parseDate(value string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", value)
	}
	return t, nil
}

// printEntries renders a query result set.
func printEntries(entries []*types.ChangelogEntry) {
	if len(entries) == 0 {
		fmt.Println("no entries")
		return
	}
	for _, e := range entries {
		fmt.Printf("%s  %s  %s..%s  v%d  %s\n",
			e.EntryID, e.TeamID,
			e.WeekStartDate.Format(time.DateOnly),
			e.WeekEndDate.Format(time.DateOnly),
			e.Version, e.Status)
	}
}
