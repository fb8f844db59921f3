package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tulznet/tulz/internal/catalog"
	"github.com/tulznet/tulz/internal/obs"
	"golang.org/x/sys/unix"
)

// NewExportIndexCmd creates the export-index command.
func NewExportIndexCmd() *cobra.Command {
	var format string
	var output string

	cmd := &cobra.Command{
		Use:   "export-index",
		Short: "Export the search corpus as a prebuilt index artifact",
		Long: `Generate ~/.tulz-index.jsonl with every tool and article in the search corpus.

The artifact can be served to the search page as a static file, set as
"indexPath" in ~/.tulz.json, or searched offline with grep/jq.

Default output: ~/.tulz-index.jsonl
Default format: JSONL (one entry per line)`,
		Example: `  # Export to default location
  tulz export-index

  # Export as JSON array
  tulz export-index --format json

  # Custom output path
  tulz export-index --output ./public/search-index.json --format json

Grep usage examples:
  # Find image tools
  grep '"Image Tools"' ~/.tulz-index.jsonl | jq -r '.title'

  # List article URLs
  jq -r 'select(.type == "blog") | .url' ~/.tulz-index.jsonl`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExportIndex(cmd, format, output)
		},
	}

	cmd.Flags().StringVar(&format, "format", catalog.FormatJSONL, "Output format: json or jsonl")
	cmd.Flags().StringVar(&output, "output", "", "Output path (default: ~/.tulz-index.jsonl)")

	return cmd
}

// runExportIndex executes the export-index command.
func runExportIndex(cmd *cobra.Command, format, output string) error {
	if format != catalog.FormatJSON && format != catalog.FormatJSONL {
		return fmt.Errorf("unknown format %q (want json or jsonl)", format)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cat, err := catalog.Default()
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	entries := catalog.BuildEntries(cat, loadArticles(cfg, obs.Logger("cli")))

	// Default output path
	if output == "" {
		output, err = defaultIndexPath(format)
		if err != nil {
			return err
		}
	}

	// Acquire file lock to prevent concurrent writes
	lockFile, err := acquireFileLock(output)
	if err != nil {
		return fmt.Errorf("failed to acquire file lock: %w", err)
	}
	defer releaseFileLock(lockFile)

	if err := writeIndex(entries, output, format); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported %d entries to %s\n", len(entries), output)
	return nil
}

func defaultIndexPath(format string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	ext := ".jsonl"
	if format == catalog.FormatJSON {
		ext = ".json"
	}
	return filepath.Join(home, ".tulz-index"+ext), nil
}

// writeIndex writes the artifact next to path and renames it into place so
// readers never observe a partial file.
func writeIndex(entries []catalog.Entry, path, format string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create index file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := catalog.WriteArtifact(tmp, entries, format); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to encode entries: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write index file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write index file: %w", err)
	}
	return nil
}

// acquireFileLock acquires an exclusive lock on the index file.
func acquireFileLock(path string) (*os.File, error) {
	lockPath := path + ".lock"
	lockFile, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file: %w", err)
	}

	// Try to acquire exclusive lock (non-blocking)
	err = unix.Flock(int(lockFile.Fd()), unix.LOCK_EX|unix.LOCK_NB)
	if err != nil {
		lockFile.Close()
		return nil, fmt.Errorf("failed to acquire lock (another export in progress?): %w", err)
	}

	return lockFile, nil
}

// releaseFileLock releases the file lock and removes the lock file.
func releaseFileLock(lockFile *os.File) error {
	if lockFile == nil {
		return nil
	}

	lockPath := lockFile.Name()

	unix.Flock(int(lockFile.Fd()), unix.LOCK_UN)
	lockFile.Close()

	return os.Remove(lockPath)
}
