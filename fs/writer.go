package fs

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/procdoc/procdoc"
)

// SnapshotPath returns the file name a case's snapshot is stored under:
// the protocol digits with a .md extension.
// Example: 1000001-22.2020.8.26.0100 → 10000012220208260100.md
func SnapshotPath(protocolNumber string) (string, error) {
	digits := procdoc.NormalizeProtocol(protocolNumber)
	if digits == "" {
		return "", procdoc.Errorf(procdoc.EINVALID, "protocol number required")
	}
	return digits + ".md", nil
}

// FormatSnapshot formats a snapshot with YAML frontmatter.
func FormatSnapshot(snapshot *procdoc.Snapshot) string {
	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("protocol: ")
	b.WriteString(snapshot.ProtocolNumber)
	b.WriteString("\nsource: ")
	b.WriteString(snapshot.SourceURL)
	if snapshot.Title != "" {
		b.WriteString("\ntitle: ")
		b.WriteString(snapshot.Title)
	}
	b.WriteString("\nretrieved: ")
	b.WriteString(snapshot.RetrievedAt.Format("2006-01-02"))
	b.WriteString("\n---\n\n")
	b.WriteString(snapshot.Markdown)
	return b.String()
}

// Ensure Writer implements procdoc.SnapshotWriter at compile time.
var _ procdoc.SnapshotWriter = (*Writer)(nil)

// Writer stores case snapshots and XML exports as files in a directory,
// one file per case, named after the protocol digits.
type Writer struct {
	baseDir string
}

// NewWriter creates a new Writer that writes to the given base directory.
func NewWriter(baseDir string) *Writer {
	return &Writer{baseDir: baseDir}
}

// WriteSnapshot writes the snapshot to disk as a markdown file and returns
// its path. A later snapshot of the same case replaces the file.
func (w *Writer) WriteSnapshot(snapshot *procdoc.Snapshot) (string, error) {
	if snapshot == nil {
		return "", procdoc.Errorf(procdoc.EINVALID, "snapshot required")
	}

	name, err := SnapshotPath(snapshot.ProtocolNumber)
	if err != nil {
		return "", err
	}
	if snapshot.RetrievedAt.IsZero() {
		snapshot.RetrievedAt = time.Now().UTC()
	}

	if err := os.MkdirAll(w.baseDir, 0o755); err != nil {
		return "", err
	}

	fullPath := filepath.Join(w.baseDir, name)
	if err := os.WriteFile(fullPath, []byte(FormatSnapshot(snapshot)), 0o644); err != nil {
		return "", err
	}
	return fullPath, nil
}

// WriteExport writes an XML export next to the snapshots, named after the
// protocol digits with an .xml extension.
func (w *Writer) WriteExport(protocolNumber, xml string) (string, error) {
	digits := procdoc.NormalizeProtocol(protocolNumber)
	if digits == "" {
		return "", procdoc.Errorf(procdoc.EINVALID, "protocol number required")
	}

	if err := os.MkdirAll(w.baseDir, 0o755); err != nil {
		return "", err
	}

	fullPath := filepath.Join(w.baseDir, digits+".xml")
	if err := os.WriteFile(fullPath, []byte(xml), 0o644); err != nil {
		return "", err
	}
	return fullPath, nil
}
