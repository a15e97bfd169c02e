package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"server/internal/cache"
	"server/internal/infra"
)

// Maintenance CLI that reclaims disk from the image cache directory. The API
// process reconciles files against its in-memory records; this tool covers the
// files those records no longer exist for, deleting anything older than -max-age.
func main() {
	var (
		dirFlag    string
		maxAgeFlag time.Duration
		dryRunFlag bool
	)

	flag.StringVar(&dirFlag, "dir", "static/cache", "cache directory to sweep")
	flag.DurationVar(&maxAgeFlag, "max-age", 24*time.Hour, "delete files older than this")
	flag.BoolVar(&dryRunFlag, "dry-run", false, "list expired files without deleting them")
	flag.Parse()

	dir := strings.TrimSpace(dirFlag)
	if dir == "" {
		exitWithError(errors.New("-dir must not be empty"))
	}
	if maxAgeFlag <= 0 {
		exitWithError(fmt.Errorf("invalid -max-age %v", maxAgeFlag))
	}

	logger := infra.NewLogger("cli").With().Str("cmd", "sweeper").Logger()

	if dryRunFlag {
		expired, err := listExpired(dir, maxAgeFlag)
		if err != nil {
			exitWithError(err)
		}
		for _, name := range expired {
			fmt.Println(name)
		}
		fmt.Printf("%d expired file(s) in %s\n", len(expired), dir)
		return
	}

	sweeper := cache.NewSweeper(cache.NewStore(), dir, logger)
	report := sweeper.SweepExpired(maxAgeFlag)
	fmt.Printf("scanned=%d removed=%d failures=%d\n", report.Scanned, report.RemovedFiles, report.Failures)
	if report.Failures > 0 {
		os.Exit(1)
	}
}

func listExpired(dir string, maxAge time.Duration) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot list cache dir: %w", err)
	}

	cutoff := time.Now().Add(-maxAge)
	var expired []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			expired = append(expired, entry.Name())
		}
	}
	return expired, nil
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
