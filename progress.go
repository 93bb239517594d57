package procdoc

// Stage identifies where a retrieval operation currently is. Stages are
// stable strings so callers can switch on them or log them directly.
type Stage string

const (
	StageInit            Stage = "init"
	StageConnecting      Stage = "connecting"
	StageSearching       Stage = "searching"
	StageNavigating      Stage = "navigating"
	StageFindingDocument Stage = "finding_document"
	StageDownloading     Stage = "downloading"
	StageExtracting      Stage = "extracting"
	StageProcessing      Stage = "processing"
	StageComplete        Stage = "complete"
	StageError           Stage = "error"
)

// ProgressUpdate reports one step of a long-running operation.
type ProgressUpdate struct {
	Stage   Stage
	Message string

	// Err is set only for StageError updates.
	Err error
}

// ProgressFunc receives progress updates during long-running operations.
// It is always passed explicitly; a nil func disables reporting. Updates
// are delivered synchronously, so callbacks must return quickly.
type ProgressFunc func(ProgressUpdate)

// Emit sends an update if the func is non-nil.
func (f ProgressFunc) Emit(stage Stage, message string) {
	if f != nil {
		f(ProgressUpdate{Stage: stage, Message: message})
	}
}

// EmitError sends a StageError update if the func is non-nil.
func (f ProgressFunc) EmitError(err error) {
	if f != nil {
		f(ProgressUpdate{Stage: StageError, Message: ErrorMessage(err), Err: err})
	}
}
