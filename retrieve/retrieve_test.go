package retrieve_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/procdoc/procdoc"
	"github.com/procdoc/procdoc/mock"
	"github.com/procdoc/procdoc/retrieve"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testProtocol = "1000001-22.2020.8.26.0100"

// stubHandle tracks whether the page behind a CasePage was closed.
type stubHandle struct{ closed bool }

func (h *stubHandle) Close() error {
	h.closed = true
	return nil
}

// foundCase builds a located-case result backed by a close-tracking handle.
func foundCase(protocol string) (*procdoc.CaseSearchResult, *stubHandle) {
	h := &stubHandle{}
	url := "https://portal.example/case?numero=" + protocol
	return &procdoc.CaseSearchResult{
		Found:          true,
		ProtocolNumber: protocol,
		CasePageURL:    url,
		Page:           procdoc.NewCasePage(h, url),
	}, h
}

// archiveRecorder collects what the retriever stores.
type archiveRecorder struct {
	cases      []*procdoc.CaseRecord
	retrievals []*procdoc.Retrieval
}

func (a *archiveRecorder) services() (*mock.CaseService, *mock.RetrievalService) {
	cases := &mock.CaseService{
		UpsertCaseFn: func(_ context.Context, rec *procdoc.CaseRecord) error {
			rec.ID = "case-1"
			a.cases = append(a.cases, rec)
			return nil
		},
	}
	retrievals := &mock.RetrievalService{
		CreateRetrievalFn: func(_ context.Context, ret *procdoc.Retrieval) error {
			a.retrievals = append(a.retrievals, ret)
			return nil
		},
	}
	return cases, retrievals
}

// collectProgress returns a progress callback and the slice it fills.
func collectProgress() (procdoc.ProgressFunc, *[]procdoc.ProgressUpdate) {
	var updates []procdoc.ProgressUpdate
	fn := procdoc.ProgressFunc(func(u procdoc.ProgressUpdate) {
		updates = append(updates, u)
	})
	return fn, &updates
}

func TestRetriever_SearchCase(t *testing.T) {
	t.Parallel()

	t.Run("archives a found case and closes the page", func(t *testing.T) {
		t.Parallel()

		located, handle := foundCase(testProtocol)
		var recorder archiveRecorder
		cases, retrievals := recorder.services()

		r := &retrieve.Retriever{
			Locator: &mock.CaseLocator{
				LocateCaseFn: func(_ context.Context, _ string, _ procdoc.ProgressFunc) (*procdoc.CaseSearchResult, error) {
					return located, nil
				},
			},
			Cases:      cases,
			Retrievals: retrievals,
		}

		progress, updates := collectProgress()
		result, err := r.SearchCase(context.Background(), testProtocol, progress)

		require.NoError(t, err)
		assert.True(t, result.Found)
		assert.Nil(t, result.Page, "the page should not survive SearchCase")
		assert.True(t, handle.closed)

		require.Len(t, recorder.cases, 1)
		assert.Equal(t, testProtocol, recorder.cases[0].ProtocolNumber)
		assert.Equal(t, located.CasePageURL, recorder.cases[0].CasePageURL)

		require.Len(t, recorder.retrievals, 1)
		assert.Equal(t, procdoc.RetrievalKindSearch, recorder.retrievals[0].Kind)
		assert.Equal(t, "case-1", recorder.retrievals[0].CaseID)
		assert.Equal(t, located.CasePageURL, recorder.retrievals[0].URL)

		require.NotEmpty(t, *updates)
		assert.Equal(t, procdoc.StageInit, (*updates)[0].Stage)
		assert.Equal(t, procdoc.StageComplete, (*updates)[len(*updates)-1].Stage)
	})

	t.Run("does not archive a case that was not found", func(t *testing.T) {
		t.Parallel()

		var recorder archiveRecorder
		cases, retrievals := recorder.services()

		r := &retrieve.Retriever{
			Locator: &mock.CaseLocator{
				LocateCaseFn: func(_ context.Context, protocol string, _ procdoc.ProgressFunc) (*procdoc.CaseSearchResult, error) {
					return &procdoc.CaseSearchResult{ProtocolNumber: protocol}, nil
				},
			},
			Cases:      cases,
			Retrievals: retrievals,
		}

		result, err := r.SearchCase(context.Background(), testProtocol, nil)

		require.NoError(t, err)
		assert.False(t, result.Found)
		assert.Empty(t, recorder.cases)
		assert.Empty(t, recorder.retrievals)
	})

	t.Run("propagates locator failures through progress", func(t *testing.T) {
		t.Parallel()

		r := &retrieve.Retriever{
			Locator: &mock.CaseLocator{
				LocateCaseFn: func(_ context.Context, _ string, _ procdoc.ProgressFunc) (*procdoc.CaseSearchResult, error) {
					return nil, procdoc.Errorf(procdoc.EAMBIGUOUS, "unrecognized result page")
				},
			},
		}

		progress, updates := collectProgress()
		_, err := r.SearchCase(context.Background(), testProtocol, progress)

		require.Error(t, err)
		assert.Equal(t, procdoc.EAMBIGUOUS, procdoc.ErrorCode(err))
		require.NotEmpty(t, *updates)
		last := (*updates)[len(*updates)-1]
		assert.Equal(t, procdoc.StageError, last.Stage)
		assert.Equal(t, err, last.Err)
	})

	t.Run("waits for the portal limiter before visiting", func(t *testing.T) {
		t.Parallel()

		var waits int
		located, _ := foundCase(testProtocol)
		r := &retrieve.Retriever{
			Locator: &mock.CaseLocator{
				LocateCaseFn: func(_ context.Context, _ string, _ procdoc.ProgressFunc) (*procdoc.CaseSearchResult, error) {
					return located, nil
				},
			},
			Limiter: &mock.PortalLimiter{
				WaitFn: func(_ context.Context) error {
					waits++
					return nil
				},
			},
		}

		_, err := r.SearchCase(context.Background(), testProtocol, nil)

		require.NoError(t, err)
		assert.Equal(t, 1, waits)
	})

	t.Run("stops before the portal when the limiter fails", func(t *testing.T) {
		t.Parallel()

		r := &retrieve.Retriever{
			Locator: &mock.CaseLocator{
				LocateCaseFn: func(_ context.Context, _ string, _ procdoc.ProgressFunc) (*procdoc.CaseSearchResult, error) {
					t.Error("the locator should not run when the limiter fails")
					return nil, nil
				},
			},
			Limiter: &mock.PortalLimiter{
				WaitFn: func(_ context.Context) error {
					return context.Canceled
				},
			},
		}

		_, err := r.SearchCase(context.Background(), testProtocol, nil)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestRetriever_CaseMovements(t *testing.T) {
	t.Parallel()

	movementsResult := func() *procdoc.MovementsResult {
		return &procdoc.MovementsResult{
			ProtocolNumber: testProtocol,
			Details: procdoc.CaseDetails{
				CaseNumber: testProtocol,
				Class:      "Procedimento Comum Cível",
			},
			Movements: []procdoc.Movement{
				{Date: "10/03/2020", Description: "Sentença registrada"},
			},
			Text:      "Processo: " + testProtocol + "\n\nMOVIMENTAÇÕES\n10/03/2020 - Sentença registrada",
			HTML:      "<html><body>case page</body></html>",
			SourceURL: "https://portal.example/case",
		}
	}

	t.Run("archives the scrape with its content hash", func(t *testing.T) {
		t.Parallel()

		var recorder archiveRecorder
		cases, retrievals := recorder.services()

		r := &retrieve.Retriever{
			Movements: &mock.MovementsExtractor{
				ExtractMovementsFn: func(_ context.Context, _ string, _ procdoc.ProgressFunc) (*procdoc.MovementsResult, error) {
					return movementsResult(), nil
				},
			},
			Cases:      cases,
			Retrievals: retrievals,
		}

		result, err := r.CaseMovements(context.Background(), testProtocol, nil)

		require.NoError(t, err)
		require.Len(t, recorder.cases, 1)
		rec := recorder.cases[0]
		assert.Equal(t, result.Text, rec.MovementsText)
		assert.Equal(t, result.Details, rec.Details)
		assert.Regexp(t, `^[0-9a-f]+$`, rec.ContentHash)

		require.Len(t, recorder.retrievals, 1)
		assert.Equal(t, procdoc.RetrievalKindMovements, recorder.retrievals[0].Kind)
		assert.Equal(t, rec.ContentHash, recorder.retrievals[0].ContentHash)
	})

	t.Run("writes a snapshot when the pipeline is wired", func(t *testing.T) {
		t.Parallel()

		var snapshot *procdoc.Snapshot
		r := &retrieve.Retriever{
			Movements: &mock.MovementsExtractor{
				ExtractMovementsFn: func(_ context.Context, _ string, _ procdoc.ProgressFunc) (*procdoc.MovementsResult, error) {
					return movementsResult(), nil
				},
			},
			Extractor: &mock.Extractor{
				ExtractFn: func(_ string) (*procdoc.ExtractResult, error) {
					return &procdoc.ExtractResult{Title: "Case record", ContentHTML: "<p>case page</p>"}, nil
				},
			},
			Converter: &mock.Converter{
				ConvertFn: func(_ string) (string, error) {
					return "case page", nil
				},
			},
			Snapshots: &mock.SnapshotWriter{
				WriteSnapshotFn: func(s *procdoc.Snapshot) (string, error) {
					snapshot = s
					return "/tmp/snap.md", nil
				},
			},
		}

		_, err := r.CaseMovements(context.Background(), testProtocol, nil)

		require.NoError(t, err)
		require.NotNil(t, snapshot)
		assert.Equal(t, testProtocol, snapshot.ProtocolNumber)
		assert.Equal(t, "https://portal.example/case", snapshot.SourceURL)
		assert.Equal(t, "Case record", snapshot.Title)
		assert.Equal(t, "case page", snapshot.Markdown)
	})

	t.Run("snapshot failures do not fail the scrape", func(t *testing.T) {
		t.Parallel()

		r := &retrieve.Retriever{
			Movements: &mock.MovementsExtractor{
				ExtractMovementsFn: func(_ context.Context, _ string, _ procdoc.ProgressFunc) (*procdoc.MovementsResult, error) {
					return movementsResult(), nil
				},
			},
			Extractor: &mock.Extractor{
				ExtractFn: func(_ string) (*procdoc.ExtractResult, error) {
					return nil, procdoc.Errorf(procdoc.EINTERNAL, "extraction broke")
				},
			},
			Converter: &mock.Converter{},
			Snapshots: &mock.SnapshotWriter{},
		}

		result, err := r.CaseMovements(context.Background(), testProtocol, nil)

		require.NoError(t, err)
		assert.NotNil(t, result)
	})

	t.Run("skips the snapshot without page markup", func(t *testing.T) {
		t.Parallel()

		written := 0
		r := &retrieve.Retriever{
			Movements: &mock.MovementsExtractor{
				ExtractMovementsFn: func(_ context.Context, _ string, _ procdoc.ProgressFunc) (*procdoc.MovementsResult, error) {
					result := movementsResult()
					result.HTML = ""
					return result, nil
				},
			},
			Extractor: &mock.Extractor{},
			Converter: &mock.Converter{},
			Snapshots: &mock.SnapshotWriter{
				WriteSnapshotFn: func(_ *procdoc.Snapshot) (string, error) {
					written++
					return "", nil
				},
			},
		}

		_, err := r.CaseMovements(context.Background(), testProtocol, nil)

		require.NoError(t, err)
		assert.Zero(t, written)
	})

	t.Run("propagates extraction failures", func(t *testing.T) {
		t.Parallel()

		r := &retrieve.Retriever{
			Movements: &mock.MovementsExtractor{
				ExtractMovementsFn: func(_ context.Context, _ string, _ procdoc.ProgressFunc) (*procdoc.MovementsResult, error) {
					return nil, procdoc.Errorf(procdoc.EPORTAL, "no movement data")
				},
			},
		}

		_, err := r.CaseMovements(context.Background(), testProtocol, nil)

		require.Error(t, err)
		assert.Equal(t, procdoc.EPORTAL, procdoc.ErrorCode(err))
	})
}

func TestRetriever_DocumentURL(t *testing.T) {
	t.Parallel()

	t.Run("resolves the first accessible document", func(t *testing.T) {
		t.Parallel()

		located, handle := foundCase(testProtocol)
		var recorder archiveRecorder
		cases, retrievals := recorder.services()

		var resolvedCandidate procdoc.DocumentCandidate
		r := &retrieve.Retriever{
			Locator: &mock.CaseLocator{
				LocateCaseFn: func(_ context.Context, _ string, _ procdoc.ProgressFunc) (*procdoc.CaseSearchResult, error) {
					return located, nil
				},
			},
			Finder: &mock.CandidateFinder{
				FindCandidatesFn: func(_ context.Context, _ *procdoc.CasePage, _ string) ([]procdoc.DocumentCandidate, error) {
					return []procdoc.DocumentCandidate{
						{Description: "Sentença (senha)", RequiresPassword: true},
						{Description: "Sentença registrada", LinkRef: "/pastadigital/getPDF.do?idDocumento=55"},
					}, nil
				},
			},
			Resolver: &mock.DocumentResolver{
				ResolveURLFn: func(_ context.Context, _ *procdoc.CasePage, candidate procdoc.DocumentCandidate, _ procdoc.ProgressFunc) (*procdoc.DocumentDownloadResult, error) {
					resolvedCandidate = candidate
					return &procdoc.DocumentDownloadResult{
						URL:         "https://portal.example/pastadigital/getPDF.do?idDocumento=55",
						Description: candidate.Description,
						Strategy:    "direct",
					}, nil
				},
			},
			Cases:      cases,
			Retrievals: retrievals,
		}

		result, err := r.DocumentURL(context.Background(), testProtocol, "sentença", nil)

		require.NoError(t, err)
		assert.Equal(t, "Sentença registrada", resolvedCandidate.Description,
			"the password-gated candidate should be skipped")
		assert.Equal(t, "direct", result.Strategy)
		assert.True(t, handle.closed, "the page should be closed after resolution")

		require.Len(t, recorder.retrievals, 1)
		ret := recorder.retrievals[0]
		assert.Equal(t, procdoc.RetrievalKindURL, ret.Kind)
		assert.Equal(t, result.URL, ret.URL)
		assert.Equal(t, "direct", ret.Strategy)
	})

	t.Run("returns ENOTFOUND when the case does not exist", func(t *testing.T) {
		t.Parallel()

		r := &retrieve.Retriever{
			Locator: &mock.CaseLocator{
				LocateCaseFn: func(_ context.Context, protocol string, _ procdoc.ProgressFunc) (*procdoc.CaseSearchResult, error) {
					return &procdoc.CaseSearchResult{ProtocolNumber: protocol}, nil
				},
			},
		}

		_, err := r.DocumentURL(context.Background(), testProtocol, "sentença", nil)

		require.Error(t, err)
		assert.Equal(t, procdoc.ENOTFOUND, procdoc.ErrorCode(err))
	})

	t.Run("returns ECREDENTIALS when every document is gated", func(t *testing.T) {
		t.Parallel()

		located, handle := foundCase(testProtocol)
		r := &retrieve.Retriever{
			Locator: &mock.CaseLocator{
				LocateCaseFn: func(_ context.Context, _ string, _ procdoc.ProgressFunc) (*procdoc.CaseSearchResult, error) {
					return located, nil
				},
			},
			Finder: &mock.CandidateFinder{
				FindCandidatesFn: func(_ context.Context, _ *procdoc.CasePage, _ string) ([]procdoc.DocumentCandidate, error) {
					return []procdoc.DocumentCandidate{
						{Description: "Sentença", RequiresPassword: true},
						{Description: "Sentença de mérito", RequiresPassword: true},
					}, nil
				},
			},
		}

		_, err := r.DocumentURL(context.Background(), testProtocol, "sentença", nil)

		require.Error(t, err)
		assert.Equal(t, procdoc.ECREDENTIALS, procdoc.ErrorCode(err))
		assert.True(t, handle.closed, "the page should be closed on selection failure")
	})

	t.Run("closes the page when resolution fails", func(t *testing.T) {
		t.Parallel()

		located, handle := foundCase(testProtocol)
		r := &retrieve.Retriever{
			Locator: &mock.CaseLocator{
				LocateCaseFn: func(_ context.Context, _ string, _ procdoc.ProgressFunc) (*procdoc.CaseSearchResult, error) {
					return located, nil
				},
			},
			Finder: &mock.CandidateFinder{
				FindCandidatesFn: func(_ context.Context, _ *procdoc.CasePage, _ string) ([]procdoc.DocumentCandidate, error) {
					return []procdoc.DocumentCandidate{{Description: "Sentença"}}, nil
				},
			},
			Resolver: &mock.DocumentResolver{
				ResolveURLFn: func(_ context.Context, _ *procdoc.CasePage, _ procdoc.DocumentCandidate, _ procdoc.ProgressFunc) (*procdoc.DocumentDownloadResult, error) {
					return nil, procdoc.Errorf(procdoc.EUNRESOLVED, "no strategy succeeded")
				},
			},
		}

		_, err := r.DocumentURL(context.Background(), testProtocol, "sentença", nil)

		require.Error(t, err)
		assert.Equal(t, procdoc.EUNRESOLVED, procdoc.ErrorCode(err))
		assert.True(t, handle.closed)
	})
}

func TestRetriever_DownloadDocument(t *testing.T) {
	t.Parallel()

	t.Run("records the downloaded file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "documento.pdf")
		require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 data"), 0o644))

		located, handle := foundCase(testProtocol)
		var recorder archiveRecorder
		cases, retrievals := recorder.services()

		r := &retrieve.Retriever{
			Locator: &mock.CaseLocator{
				LocateCaseFn: func(_ context.Context, _ string, _ procdoc.ProgressFunc) (*procdoc.CaseSearchResult, error) {
					return located, nil
				},
			},
			Finder: &mock.CandidateFinder{
				FindCandidatesFn: func(_ context.Context, _ *procdoc.CasePage, _ string) ([]procdoc.DocumentCandidate, error) {
					return []procdoc.DocumentCandidate{{Description: "Sentença registrada"}}, nil
				},
			},
			Resolver: &mock.DocumentResolver{
				DownloadFileFn: func(_ context.Context, _ *procdoc.CasePage, candidate procdoc.DocumentCandidate, _ procdoc.ProgressFunc) (*procdoc.DocumentDownloadResult, error) {
					return &procdoc.DocumentDownloadResult{
						FilePath:    path,
						Description: candidate.Description,
						Strategy:    "download",
					}, nil
				},
			},
			Cases:      cases,
			Retrievals: retrievals,
		}

		result, err := r.DownloadDocument(context.Background(), testProtocol, "sentença", nil)

		require.NoError(t, err)
		assert.Equal(t, path, result.FilePath)
		assert.True(t, handle.closed)

		require.Len(t, recorder.retrievals, 1)
		ret := recorder.retrievals[0]
		assert.Equal(t, procdoc.RetrievalKindDownload, ret.Kind)
		assert.Equal(t, path, ret.FilePath)
		assert.Regexp(t, `^[0-9a-f]+$`, ret.ContentHash, "the file contents should be hashed")
	})
}

func TestRetriever_DocumentText(t *testing.T) {
	t.Parallel()

	t.Run("runs the fetch and parse pipeline", func(t *testing.T) {
		t.Parallel()

		located, handle := foundCase(testProtocol)
		var recorder archiveRecorder
		cases, retrievals := recorder.services()

		session := procdoc.FetchSession{UserAgent: "test-agent"}
		var fetchedURL string
		var fetchedWith procdoc.FetchSession

		r := &retrieve.Retriever{
			Locator: &mock.CaseLocator{
				LocateCaseFn: func(_ context.Context, _ string, _ procdoc.ProgressFunc) (*procdoc.CaseSearchResult, error) {
					return located, nil
				},
			},
			Finder: &mock.CandidateFinder{
				FindCandidatesFn: func(_ context.Context, _ *procdoc.CasePage, _ string) ([]procdoc.DocumentCandidate, error) {
					return []procdoc.DocumentCandidate{{Description: "Sentença registrada", LinkRef: "/pastadigital/getPDF.do?idDocumento=55"}}, nil
				},
			},
			Resolver: &mock.DocumentResolver{
				ResolveURLFn: func(_ context.Context, _ *procdoc.CasePage, candidate procdoc.DocumentCandidate, _ procdoc.ProgressFunc) (*procdoc.DocumentDownloadResult, error) {
					return &procdoc.DocumentDownloadResult{
						URL:         "https://portal.example/pastadigital/getPDF.do?idDocumento=55",
						Description: candidate.Description,
						Strategy:    "direct",
					}, nil
				},
			},
			Sessions: &mock.SessionExporter{
				ExportSessionFn: func(_ context.Context, _ *procdoc.CasePage) (procdoc.FetchSession, error) {
					return session, nil
				},
			},
			Fetcher: &mock.DocumentFetcher{
				FetchDocumentFn: func(_ context.Context, url string, s procdoc.FetchSession) ([]byte, error) {
					fetchedURL = url
					fetchedWith = s
					return []byte("%PDF-1.4 bytes"), nil
				},
			},
			Parser: &mock.TextParser{
				ParseTextFn: func(_ []byte) (string, int, error) {
					return "SENTENÇA\n\nJulgo procedente o pedido.", 3, nil
				},
			},
			Cases:      cases,
			Retrievals: retrievals,
		}

		result, err := r.DocumentText(context.Background(), testProtocol, "sentença", nil)

		require.NoError(t, err)
		assert.Equal(t, "https://portal.example/pastadigital/getPDF.do?idDocumento=55", fetchedURL)
		assert.Equal(t, session, fetchedWith)
		assert.Equal(t, 3, result.PageCount)
		assert.Contains(t, result.Text, "Julgo procedente")
		assert.Equal(t, fetchedURL, result.Source)
		assert.True(t, handle.closed)

		require.Len(t, recorder.retrievals, 1)
		ret := recorder.retrievals[0]
		assert.Equal(t, procdoc.RetrievalKindText, ret.Kind)
		assert.Equal(t, 3, ret.PageCount)
		assert.Regexp(t, `^[0-9a-f]+$`, ret.ContentHash)
	})

	t.Run("propagates scanned documents without archiving", func(t *testing.T) {
		t.Parallel()

		located, handle := foundCase(testProtocol)
		var recorder archiveRecorder
		cases, retrievals := recorder.services()

		r := &retrieve.Retriever{
			Locator: &mock.CaseLocator{
				LocateCaseFn: func(_ context.Context, _ string, _ procdoc.ProgressFunc) (*procdoc.CaseSearchResult, error) {
					return located, nil
				},
			},
			Finder: &mock.CandidateFinder{
				FindCandidatesFn: func(_ context.Context, _ *procdoc.CasePage, _ string) ([]procdoc.DocumentCandidate, error) {
					return []procdoc.DocumentCandidate{{Description: "Sentença registrada"}}, nil
				},
			},
			Resolver: &mock.DocumentResolver{
				ResolveURLFn: func(_ context.Context, _ *procdoc.CasePage, _ procdoc.DocumentCandidate, _ procdoc.ProgressFunc) (*procdoc.DocumentDownloadResult, error) {
					return &procdoc.DocumentDownloadResult{URL: "https://portal.example/doc"}, nil
				},
			},
			Sessions: &mock.SessionExporter{
				ExportSessionFn: func(_ context.Context, _ *procdoc.CasePage) (procdoc.FetchSession, error) {
					return procdoc.FetchSession{}, nil
				},
			},
			Fetcher: &mock.DocumentFetcher{
				FetchDocumentFn: func(_ context.Context, _ string, _ procdoc.FetchSession) ([]byte, error) {
					return []byte("%PDF-1.4 scan"), nil
				},
			},
			Parser: &mock.TextParser{
				ParseTextFn: func(_ []byte) (string, int, error) {
					return "", 12, procdoc.Errorf(procdoc.ESCANNED, "no extractable text")
				},
			},
			Cases:      cases,
			Retrievals: retrievals,
		}

		_, err := r.DocumentText(context.Background(), testProtocol, "sentença", nil)

		require.Error(t, err)
		assert.Equal(t, procdoc.ESCANNED, procdoc.ErrorCode(err))
		assert.True(t, handle.closed)
		assert.Empty(t, recorder.retrievals)
	})
}
