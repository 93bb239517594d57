package procdoc

import "time"

// ExtractResult holds the content extracted from a case page.
type ExtractResult struct {
	// Title is the page title extracted from metadata.
	Title string

	// ContentHTML is the case record as clean HTML. Portal chrome
	// (navigation, banners, footers) has been removed.
	ContentHTML string
}

// Extractor extracts the case record content from a portal page, removing
// boilerplate.
type Extractor interface {
	// Extract processes raw page HTML and returns the case content.
	Extract(html string) (*ExtractResult, error)
}

// Converter converts HTML to Markdown.
type Converter interface {
	// Convert transforms HTML content into Markdown.
	// The input should be clean HTML (e.g., from an Extractor).
	Convert(html string) (string, error)
}

// Snapshot is a Markdown capture of a case page at retrieval time.
type Snapshot struct {
	ProtocolNumber string
	SourceURL      string
	Title          string
	Markdown       string
	RetrievedAt    time.Time
}

// SnapshotWriter persists snapshots.
type SnapshotWriter interface {
	// WriteSnapshot stores the snapshot and returns the path it was
	// written to.
	WriteSnapshot(snapshot *Snapshot) (string, error)
}
