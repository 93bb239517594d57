// Package retrieve orchestrates case retrieval: it composes the browser
// locator, the candidate finder, the resolver and the text pipeline into
// the operations the CLI exposes, and archives what they produce.
package retrieve

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/procdoc/procdoc"
)

// Retriever coordinates retrieval operations against the portal. Wire up
// the fields and call the operations; zero-value optional fields (Cases,
// Retrievals, Snapshots stack, Limiter) disable their feature.
type Retriever struct {
	Locator   procdoc.CaseLocator
	Finder    procdoc.CandidateFinder
	Resolver  procdoc.DocumentResolver
	Movements procdoc.MovementsExtractor
	Sessions  procdoc.SessionExporter
	Fetcher   procdoc.DocumentFetcher
	Parser    procdoc.TextParser

	// Snapshot pipeline. All three must be set for case-page snapshots
	// to be written.
	Extractor procdoc.Extractor
	Converter procdoc.Converter
	Snapshots procdoc.SnapshotWriter

	// Archive services. Nil disables archiving.
	Cases      procdoc.CaseService
	Retrievals procdoc.RetrievalService

	// Limiter gates portal visits. Nil means unthrottled.
	Limiter procdoc.PortalLimiter

	// Concurrency bounds batch workers. Zero or negative means 2.
	Concurrency int

	Logger *slog.Logger
}

func (r *Retriever) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

// wait blocks on the portal limiter when one is configured.
func (r *Retriever) wait(ctx context.Context) error {
	if r.Limiter == nil {
		return nil
	}
	return r.Limiter.Wait(ctx)
}

// SearchCase locates a case and archives its identity. The case page is
// closed before returning; follow with CaseMovements or a document
// operation to work with the page content.
func (r *Retriever) SearchCase(ctx context.Context, protocolNumber string, progress procdoc.ProgressFunc) (*procdoc.CaseSearchResult, error) {
	progress.Emit(procdoc.StageInit, "starting search for "+protocolNumber)
	if err := r.wait(ctx); err != nil {
		return nil, err
	}

	result, err := r.Locator.LocateCase(ctx, protocolNumber, progress)
	if err != nil {
		progress.EmitError(err)
		return nil, err
	}
	result.Page.Close()
	result.Page = nil

	if result.Found {
		if _, err := r.archiveCase(ctx, result.ProtocolNumber, result.CasePageURL, procdoc.RetrievalKindSearch, func(ret *procdoc.Retrieval) {
			ret.URL = result.CasePageURL
		}); err != nil {
			progress.EmitError(err)
			return nil, err
		}
	}

	progress.Emit(procdoc.StageComplete, "search finished")
	return result, nil
}

// CaseMovements scrapes a case's movement history, archives the scrape
// and, when the snapshot pipeline is wired, writes a Markdown snapshot of
// the case page.
func (r *Retriever) CaseMovements(ctx context.Context, protocolNumber string, progress procdoc.ProgressFunc) (*procdoc.MovementsResult, error) {
	progress.Emit(procdoc.StageInit, "starting movements retrieval for "+protocolNumber)
	if err := r.wait(ctx); err != nil {
		return nil, err
	}

	result, err := r.Movements.ExtractMovements(ctx, protocolNumber, progress)
	if err != nil {
		progress.EmitError(err)
		return nil, err
	}

	if r.Cases != nil {
		rec := &procdoc.CaseRecord{
			ProtocolNumber: result.ProtocolNumber,
			CasePageURL:    result.SourceURL,
			Details:        result.Details,
			MovementsText:  result.Text,
			ContentHash:    contentHash(result.Text),
		}
		if err := r.Cases.UpsertCase(ctx, rec); err != nil {
			progress.EmitError(err)
			return nil, fmt.Errorf("archiving case: %w", err)
		}
		if err := r.recordRetrieval(ctx, rec.ID, procdoc.RetrievalKindMovements, func(ret *procdoc.Retrieval) {
			ret.URL = result.SourceURL
			ret.ContentHash = rec.ContentHash
		}); err != nil {
			progress.EmitError(err)
			return nil, err
		}
	}

	r.writeSnapshot(result)

	progress.Emit(procdoc.StageComplete, "movements retrieved")
	return result, nil
}

// DocumentURL locates the case, picks the first accessible document of
// the requested type and resolves its URL.
func (r *Retriever) DocumentURL(ctx context.Context, protocolNumber, documentType string, progress procdoc.ProgressFunc) (*procdoc.DocumentDownloadResult, error) {
	return r.resolveDocument(ctx, protocolNumber, documentType, progress, procdoc.RetrievalKindURL, r.Resolver.ResolveURL)
}

// DownloadDocument locates the case, picks the first accessible document
// of the requested type and downloads it through the browser.
func (r *Retriever) DownloadDocument(ctx context.Context, protocolNumber, documentType string, progress procdoc.ProgressFunc) (*procdoc.DocumentDownloadResult, error) {
	return r.resolveDocument(ctx, protocolNumber, documentType, progress, procdoc.RetrievalKindDownload, r.Resolver.DownloadFile)
}

// resolveFn is the resolver method a document operation ends in.
type resolveFn func(ctx context.Context, page *procdoc.CasePage, candidate procdoc.DocumentCandidate, progress procdoc.ProgressFunc) (*procdoc.DocumentDownloadResult, error)

func (r *Retriever) resolveDocument(ctx context.Context, protocolNumber, documentType string, progress procdoc.ProgressFunc, kind string, resolve resolveFn) (*procdoc.DocumentDownloadResult, error) {
	progress.Emit(procdoc.StageInit, "starting document retrieval for "+protocolNumber)
	if err := r.wait(ctx); err != nil {
		return nil, err
	}

	candidate, page, located, err := r.locateCandidate(ctx, protocolNumber, documentType, progress)
	if err != nil {
		progress.EmitError(err)
		return nil, err
	}
	defer page.Close()

	result, err := resolve(ctx, page, candidate, progress)
	if err != nil {
		progress.EmitError(err)
		return nil, err
	}

	if _, err := r.archiveCase(ctx, located.ProtocolNumber, located.CasePageURL, kind, func(ret *procdoc.Retrieval) {
		ret.Description = result.Description
		ret.URL = result.URL
		ret.FilePath = result.FilePath
		ret.Strategy = result.Strategy
		ret.ContentHash = fileHash(result.FilePath)
	}); err != nil {
		progress.EmitError(err)
		return nil, err
	}

	progress.Emit(procdoc.StageComplete, "document resolved")
	return result, nil
}

// DocumentText retrieves the document of the requested type and extracts
// its plain text: resolve the URL, fetch it with the browser's session,
// parse the bytes. A scanned document surfaces as ESCANNED.
func (r *Retriever) DocumentText(ctx context.Context, protocolNumber, documentType string, progress procdoc.ProgressFunc) (*procdoc.DocumentTextResult, error) {
	progress.Emit(procdoc.StageInit, "starting text extraction for "+protocolNumber)
	if err := r.wait(ctx); err != nil {
		return nil, err
	}

	candidate, page, located, err := r.locateCandidate(ctx, protocolNumber, documentType, progress)
	if err != nil {
		progress.EmitError(err)
		return nil, err
	}
	defer page.Close()

	resolved, err := r.Resolver.ResolveURL(ctx, page, candidate, progress)
	if err != nil {
		progress.EmitError(err)
		return nil, err
	}

	session, err := r.Sessions.ExportSession(ctx, page)
	if err != nil {
		progress.EmitError(err)
		return nil, err
	}

	progress.Emit(procdoc.StageDownloading, "fetching the document")
	data, err := r.Fetcher.FetchDocument(ctx, resolved.URL, session)
	if err != nil {
		progress.EmitError(err)
		return nil, err
	}

	progress.Emit(procdoc.StageExtracting, "extracting document text")
	text, pageCount, err := r.Parser.ParseText(data)
	if err != nil {
		progress.EmitError(err)
		return nil, err
	}

	result := &procdoc.DocumentTextResult{
		Text:        text,
		PageCount:   pageCount,
		Source:      resolved.URL,
		Description: resolved.Description,
	}

	if _, err := r.archiveCase(ctx, located.ProtocolNumber, located.CasePageURL, procdoc.RetrievalKindText, func(ret *procdoc.Retrieval) {
		ret.Description = result.Description
		ret.URL = result.Source
		ret.Strategy = resolved.Strategy
		ret.PageCount = result.PageCount
		ret.ContentHash = contentHash(result.Text)
	}); err != nil {
		progress.EmitError(err)
		return nil, err
	}

	progress.Emit(procdoc.StageComplete, "document text extracted")
	return result, nil
}

// locateCandidate runs the shared front half of the document operations:
// locate the case, scan for candidates, select one. The returned page is
// live and owned by the caller.
func (r *Retriever) locateCandidate(ctx context.Context, protocolNumber, documentType string, progress procdoc.ProgressFunc) (procdoc.DocumentCandidate, *procdoc.CasePage, *procdoc.CaseSearchResult, error) {
	located, err := r.Locator.LocateCase(ctx, protocolNumber, progress)
	if err != nil {
		return procdoc.DocumentCandidate{}, nil, nil, err
	}
	if !located.Found {
		return procdoc.DocumentCandidate{}, nil, nil,
			procdoc.Errorf(procdoc.ENOTFOUND, "case %s not found on the portal", located.ProtocolNumber)
	}

	progress.Emit(procdoc.StageFindingDocument, "scanning movements for "+documentType)
	candidates, err := r.Finder.FindCandidates(ctx, located.Page, documentType)
	if err != nil {
		located.Page.Close()
		return procdoc.DocumentCandidate{}, nil, nil, err
	}

	candidate, err := procdoc.SelectCandidate(candidates)
	if err != nil {
		located.Page.Close()
		return procdoc.DocumentCandidate{}, nil, nil, err
	}

	return candidate, located.Page, located, nil
}

// archiveCase upserts the case identity and records a retrieval of the
// given kind against it. No-op when archiving is not wired.
func (r *Retriever) archiveCase(ctx context.Context, protocolNumber, caseURL, kind string, fill func(*procdoc.Retrieval)) (*procdoc.CaseRecord, error) {
	if r.Cases == nil {
		return nil, nil
	}

	rec := &procdoc.CaseRecord{
		ProtocolNumber: protocolNumber,
		CasePageURL:    caseURL,
	}
	if err := r.Cases.UpsertCase(ctx, rec); err != nil {
		return nil, fmt.Errorf("archiving case: %w", err)
	}
	if err := r.recordRetrieval(ctx, rec.ID, kind, fill); err != nil {
		return nil, err
	}
	return rec, nil
}

// recordRetrieval appends a retrieval row. No-op when archiving is not
// wired.
func (r *Retriever) recordRetrieval(ctx context.Context, caseID, kind string, fill func(*procdoc.Retrieval)) error {
	if r.Retrievals == nil {
		return nil
	}

	ret := &procdoc.Retrieval{
		CaseID: caseID,
		Kind:   kind,
	}
	if fill != nil {
		fill(ret)
	}
	if err := r.Retrievals.CreateRetrieval(ctx, ret); err != nil {
		return fmt.Errorf("recording retrieval: %w", err)
	}
	return nil
}

// writeSnapshot captures the case page as Markdown. Best effort: snapshot
// failures are logged, never surfaced, since the scrape itself succeeded.
func (r *Retriever) writeSnapshot(result *procdoc.MovementsResult) {
	if r.Extractor == nil || r.Converter == nil || r.Snapshots == nil || result.HTML == "" {
		return
	}

	extracted, err := r.Extractor.Extract(result.HTML)
	if err != nil {
		r.logger().Warn("snapshot extraction failed", "protocol", result.ProtocolNumber, "err", err)
		return
	}
	markdown, err := r.Converter.Convert(extracted.ContentHTML)
	if err != nil {
		r.logger().Warn("snapshot conversion failed", "protocol", result.ProtocolNumber, "err", err)
		return
	}

	path, err := r.Snapshots.WriteSnapshot(&procdoc.Snapshot{
		ProtocolNumber: result.ProtocolNumber,
		SourceURL:      result.SourceURL,
		Title:          extracted.Title,
		Markdown:       markdown,
		RetrievedAt:    result.RetrievedAt,
	})
	if err != nil {
		r.logger().Warn("snapshot write failed", "protocol", result.ProtocolNumber, "err", err)
		return
	}
	r.logger().Info("case page snapshot written", "protocol", result.ProtocolNumber, "path", path)
}

// contentHash computes a hash of the content using xxhash.
func contentHash(content string) string {
	return fmt.Sprintf("%x", xxhash.Sum64String(content))
}

// fileHash hashes a downloaded file's bytes. Empty when the path is empty
// or unreadable.
func fileHash(path string) string {
	if path == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%x", xxhash.Sum64(data))
}
