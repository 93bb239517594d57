package main_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/procdoc/procdoc"
	main "github.com/procdoc/procdoc/cmd/procdoc"
	"github.com/procdoc/procdoc/mock"
	"github.com/procdoc/procdoc/retrieve"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// documentRetriever wires the locator, finder and resolver for a single
// accessible document.
func documentRetriever(t *testing.T, resolver *mock.DocumentResolver) (*retrieve.Retriever, *stubHandle) {
	t.Helper()

	result, handle := foundCase(testProtocol)
	locator := &mock.CaseLocator{
		LocateCaseFn: func(_ context.Context, _ string, _ procdoc.ProgressFunc) (*procdoc.CaseSearchResult, error) {
			return result, nil
		},
	}
	finder := &mock.CandidateFinder{
		FindCandidatesFn: func(_ context.Context, _ *procdoc.CasePage, documentType string) ([]procdoc.DocumentCandidate, error) {
			return []procdoc.DocumentCandidate{
				{Description: "Sentença registrada", LinkRef: "abc123", LinkID: "doc-55"},
			}, nil
		},
	}

	return &retrieve.Retriever{Locator: locator, Finder: finder, Resolver: resolver}, handle
}

func TestFetchCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("resolves the document URL", func(t *testing.T) {
		t.Parallel()

		resolver := &mock.DocumentResolver{
			ResolveURLFn: func(_ context.Context, _ *procdoc.CasePage, candidate procdoc.DocumentCandidate, _ procdoc.ProgressFunc) (*procdoc.DocumentDownloadResult, error) {
				return &procdoc.DocumentDownloadResult{
					URL:         "https://esaj.tjsp.jus.br/pastadigital/getPDF.do?idDocumento=55",
					Description: candidate.Description,
					Strategy:    "direct",
				}, nil
			},
			DownloadFileFn: func(_ context.Context, _ *procdoc.CasePage, _ procdoc.DocumentCandidate, _ procdoc.ProgressFunc) (*procdoc.DocumentDownloadResult, error) {
				t.Error("DownloadFile should not be called without --download")
				return nil, nil
			},
		}
		retriever, handle := documentRetriever(t, resolver)

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:       context.Background(),
			Stdout:    stdout,
			Stderr:    &bytes.Buffer{},
			Retriever: retriever,
		}

		cmd := &main.FetchCmd{Protocol: testProtocol, Type: "sentença"}
		err := cmd.Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), `Resolved "Sentença registrada" via direct`)
		assert.Contains(t, stdout.String(), "getPDF.do?idDocumento=55")
		assert.True(t, handle.closed, "the case page should be closed after resolution")
	})

	t.Run("downloads when requested", func(t *testing.T) {
		t.Parallel()

		resolver := &mock.DocumentResolver{
			ResolveURLFn: func(_ context.Context, _ *procdoc.CasePage, _ procdoc.DocumentCandidate, _ procdoc.ProgressFunc) (*procdoc.DocumentDownloadResult, error) {
				t.Error("ResolveURL should not be called with --download")
				return nil, nil
			},
			DownloadFileFn: func(_ context.Context, _ *procdoc.CasePage, candidate procdoc.DocumentCandidate, _ procdoc.ProgressFunc) (*procdoc.DocumentDownloadResult, error) {
				return &procdoc.DocumentDownloadResult{
					FilePath:    "/downloads/documento.pdf",
					Description: candidate.Description,
					Strategy:    "browser_download",
				}, nil
			},
		}
		retriever, handle := documentRetriever(t, resolver)

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:       context.Background(),
			Stdout:    stdout,
			Stderr:    &bytes.Buffer{},
			Retriever: retriever,
		}

		cmd := &main.FetchCmd{Protocol: testProtocol, Type: "sentença", Download: true}
		err := cmd.Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), `Downloaded "Sentença registrada" to /downloads/documento.pdf`)
		assert.True(t, handle.closed)
	})

	t.Run("reports credential-gated documents", func(t *testing.T) {
		t.Parallel()

		result, handle := foundCase(testProtocol)
		locator := &mock.CaseLocator{
			LocateCaseFn: func(_ context.Context, _ string, _ procdoc.ProgressFunc) (*procdoc.CaseSearchResult, error) {
				return result, nil
			},
		}
		finder := &mock.CandidateFinder{
			FindCandidatesFn: func(_ context.Context, _ *procdoc.CasePage, _ string) ([]procdoc.DocumentCandidate, error) {
				return []procdoc.DocumentCandidate{
					{Description: "Sentença (senha)", RequiresPassword: true},
				}, nil
			},
		}

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:       context.Background(),
			Stdout:    stdout,
			Stderr:    stderr,
			Retriever: &retrieve.Retriever{Locator: locator, Finder: finder},
		}

		cmd := &main.FetchCmd{Protocol: testProtocol, Type: "sentença"}
		err := cmd.Run(deps)

		require.Error(t, err)
		assert.Equal(t, procdoc.ECREDENTIALS, procdoc.ErrorCode(err))
		assert.Contains(t, stderr.String(), "require credentials")
		assert.Empty(t, stdout.String())
		assert.True(t, handle.closed)
	})
}
