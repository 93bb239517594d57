// Package fs provides file-based storage: download-directory polling for
// browser downloads, and writers for snapshots and exports.
package fs

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/procdoc/procdoc"
)

// temporarySuffixes mark files the browser is still writing.
var temporarySuffixes = []string{".crdownload", ".tmp", ".part"}

// DefaultDownloadDelays returns the polling schedule for a browser
// download: sixty one-second checks.
func DefaultDownloadDelays() []time.Duration {
	delays := make([]time.Duration, 60)
	for i := range delays {
		delays[i] = time.Second
	}
	return delays
}

// IsTemporaryDownload reports whether name is a browser work file rather
// than a finished download.
func IsTemporaryDownload(name string) bool {
	lower := strings.ToLower(name)
	for _, suffix := range temporarySuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

// SnapshotDir records the names currently present in dir, so a later poll
// can tell new arrivals apart. A missing directory snapshots as empty.
func SnapshotDir(dir string) (map[string]bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]bool{}, nil
		}
		return nil, procdoc.Errorf(procdoc.EINTERNAL, "reading download directory %q: %v", dir, err)
	}
	names := make(map[string]bool, len(entries))
	for _, e := range entries {
		names[e.Name()] = true
	}
	return names, nil
}

// WaitForNewFile polls dir on the given schedule for a file that was not
// in before and is not a browser work file. One check runs after each
// delay; exhausting the schedule returns EDOWNLOAD. The delays parameter
// exists so tests can poll without real waiting.
func WaitForNewFile(ctx context.Context, dir string, before map[string]bool, delays []time.Duration) (string, error) {
	for _, delay := range delays {
		select {
		case <-ctx.Done():
			return "", procdoc.Errorf(procdoc.EDOWNLOAD, "waiting for download: %v", ctx.Err())
		case <-time.After(delay):
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return "", procdoc.Errorf(procdoc.EINTERNAL, "reading download directory %q: %v", dir, err)
		}
		for _, e := range entries {
			if e.IsDir() || before[e.Name()] || IsTemporaryDownload(e.Name()) {
				continue
			}
			return filepath.Join(dir, e.Name()), nil
		}
	}
	return "", procdoc.Errorf(procdoc.EDOWNLOAD, "no download appeared after %d checks", len(delays))
}
