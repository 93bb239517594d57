package retrieve

import (
	"context"
	"fmt"

	"github.com/procdoc/procdoc"
	"golang.org/x/sync/errgroup"
)

// BatchRequest describes the operation a batch run performs for each
// protocol number. Kind takes the retrieval kind constants; DocumentType
// is required for the document kinds and ignored otherwise.
type BatchRequest struct {
	Kind         string
	DocumentType string
}

// Validate returns an error if the request cannot be executed.
func (b BatchRequest) Validate() error {
	switch b.Kind {
	case procdoc.RetrievalKindSearch, procdoc.RetrievalKindMovements:
		return nil
	case procdoc.RetrievalKindURL, procdoc.RetrievalKindDownload, procdoc.RetrievalKindText:
		if b.DocumentType == "" {
			return procdoc.Errorf(procdoc.EINVALID, "document type required for %s batches", b.Kind)
		}
		return nil
	default:
		return procdoc.Errorf(procdoc.EINVALID, "unknown batch kind %q", b.Kind)
	}
}

// BatchOutcome is the per-protocol result of a batch run.
type BatchOutcome struct {
	ProtocolNumber string
	Err            error
}

// BatchResult summarizes a batch run. Outcomes preserve input order, one
// entry per distinct protocol.
type BatchResult struct {
	Processed int
	Failed    int
	Outcomes  []BatchOutcome
}

// batchItem pairs a protocol with its slot in the outcome list.
type batchItem struct {
	position int
	protocol string
	err      error
}

// ProcessBatch runs the requested operation for each protocol with bounded
// concurrency. Duplicate protocols collapse to one visit. Per-protocol
// failures are recorded and the batch continues; only context cancellation
// stops the run early. The progress callback receives one coarse update
// per finished protocol rather than the inner stages.
func (r *Retriever) ProcessBatch(ctx context.Context, protocolNumbers []string, req BatchRequest, progress procdoc.ProgressFunc) (*BatchResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	protocols := dedupeProtocols(protocolNumbers)
	if len(protocols) == 0 {
		return &BatchResult{}, nil
	}

	concurrency := r.Concurrency
	if concurrency <= 0 {
		concurrency = 2
	}

	resultCh := make(chan batchItem, len(protocols))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	go func() {
		for i, protocol := range protocols {
			i, protocol := i, protocol
			g.Go(func() error {
				resultCh <- batchItem{
					position: i,
					protocol: protocol,
					err:      r.runBatchOp(gctx, protocol, req),
				}
				return nil
			})
		}
		_ = g.Wait()
		close(resultCh)
	}()

	result := &BatchResult{
		Outcomes: make([]BatchOutcome, len(protocols)),
	}
	completed := 0
	for item := range resultCh {
		completed++
		result.Outcomes[item.position] = BatchOutcome{
			ProtocolNumber: item.protocol,
			Err:            item.err,
		}
		if item.err != nil {
			result.Failed++
			progress.Emit(procdoc.StageProcessing,
				fmt.Sprintf("%s failed (%d/%d): %s", item.protocol, completed, len(protocols), procdoc.ErrorMessage(item.err)))
			continue
		}
		result.Processed++
		progress.Emit(procdoc.StageProcessing,
			fmt.Sprintf("%s done (%d/%d)", item.protocol, completed, len(protocols)))
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	progress.Emit(procdoc.StageComplete,
		fmt.Sprintf("batch finished: %d retrieved, %d failed", result.Processed, result.Failed))
	return result, nil
}

// runBatchOp dispatches one protocol to the operation the request names.
// Inner progress stays silent; the batch loop reports per-protocol
// completion instead.
func (r *Retriever) runBatchOp(ctx context.Context, protocol string, req BatchRequest) error {
	var err error
	switch req.Kind {
	case procdoc.RetrievalKindSearch:
		_, err = r.SearchCase(ctx, protocol, nil)
	case procdoc.RetrievalKindMovements:
		_, err = r.CaseMovements(ctx, protocol, nil)
	case procdoc.RetrievalKindURL:
		_, err = r.DocumentURL(ctx, protocol, req.DocumentType, nil)
	case procdoc.RetrievalKindDownload:
		_, err = r.DownloadDocument(ctx, protocol, req.DocumentType, nil)
	case procdoc.RetrievalKindText:
		_, err = r.DocumentText(ctx, protocol, req.DocumentType, nil)
	}
	return err
}

// dedupeProtocols drops repeated protocols, comparing by normalized
// digits, and preserves first-seen order.
func dedupeProtocols(protocols []string) []string {
	seen := make(map[string]bool, len(protocols))
	var out []string
	for _, p := range protocols {
		key := procdoc.NormalizeProtocol(p)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, p)
	}
	return out
}
