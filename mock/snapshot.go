package mock

import "github.com/procdoc/procdoc"

var _ procdoc.SnapshotWriter = (*SnapshotWriter)(nil)

// SnapshotWriter is a mock implementation of procdoc.SnapshotWriter.
type SnapshotWriter struct {
	WriteSnapshotFn func(snapshot *procdoc.Snapshot) (string, error)
}

func (w *SnapshotWriter) WriteSnapshot(snapshot *procdoc.Snapshot) (string, error) {
	return w.WriteSnapshotFn(snapshot)
}
