package main_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/procdoc/procdoc"
	main "github.com/procdoc/procdoc/cmd/procdoc"
	"github.com/procdoc/procdoc/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// archivedRecord returns a case record as the archive would hand it back.
func archivedRecord() *procdoc.CaseRecord {
	return &procdoc.CaseRecord{
		ID:             "case-1",
		ProtocolNumber: testProtocol,
		CasePageURL:    "https://esaj.tjsp.jus.br/cpopg/show.do?processo.codigo=TESTCASE",
		Details: procdoc.CaseDetails{
			Class:   "Procedimento Comum Cível",
			Subject: "Indenização por Dano Material",
		},
		CreatedAt: time.Date(2020, 3, 10, 12, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2020, 3, 11, 9, 30, 0, 0, time.UTC),
	}
}

func TestHistoryCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("prints the archive with its retrievals", func(t *testing.T) {
		t.Parallel()

		cases := &mock.CaseService{
			FindCaseByProtocolFn: func(_ context.Context, protocolNumber string) (*procdoc.CaseRecord, error) {
				assert.Equal(t, testProtocol, protocolNumber)
				return archivedRecord(), nil
			},
		}
		retrievals := &mock.RetrievalService{
			FindRetrievalsFn: func(_ context.Context, filter procdoc.RetrievalFilter) ([]*procdoc.Retrieval, error) {
				require.NotNil(t, filter.CaseID)
				assert.Equal(t, "case-1", *filter.CaseID)
				return []*procdoc.Retrieval{
					{
						Kind:        procdoc.RetrievalKindText,
						Description: "Sentença registrada",
						PageCount:   12,
						CreatedAt:   time.Date(2020, 3, 11, 9, 30, 0, 0, time.UTC),
					},
					{
						Kind:      procdoc.RetrievalKindMovements,
						URL:       "https://esaj.tjsp.jus.br/cpopg/show.do?processo.codigo=TESTCASE",
						CreatedAt: time.Date(2020, 3, 10, 12, 0, 0, 0, time.UTC),
					},
				}, nil
			},
		}

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:        context.Background(),
			Stdout:     stdout,
			Stderr:     &bytes.Buffer{},
			Cases:      cases,
			Retrievals: retrievals,
		}

		cmd := &main.HistoryCmd{Protocol: testProtocol}
		err := cmd.Run(deps)

		require.NoError(t, err)
		out := stdout.String()
		assert.Contains(t, out, "Case "+testProtocol)
		assert.Contains(t, out, "Classe: Procedimento Comum Cível")
		assert.Contains(t, out, "Assunto: Indenização por Dano Material")
		assert.Contains(t, out, "Archived 2020-03-10 12:00, updated 2020-03-11 09:30")
		assert.Contains(t, out, "Retrievals (2):")
		assert.Contains(t, out, "2020-03-11 09:30  text       Sentença registrada (12 pages)")
		assert.Contains(t, out, "2020-03-10 12:00  movements")
	})

	t.Run("shows a case without retrievals", func(t *testing.T) {
		t.Parallel()

		cases := &mock.CaseService{
			FindCaseByProtocolFn: func(_ context.Context, _ string) (*procdoc.CaseRecord, error) {
				return archivedRecord(), nil
			},
		}
		retrievals := &mock.RetrievalService{
			FindRetrievalsFn: func(_ context.Context, _ procdoc.RetrievalFilter) ([]*procdoc.Retrieval, error) {
				return nil, nil
			},
		}

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:        context.Background(),
			Stdout:     stdout,
			Stderr:     &bytes.Buffer{},
			Cases:      cases,
			Retrievals: retrievals,
		}

		cmd := &main.HistoryCmd{Protocol: testProtocol}
		err := cmd.Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "No retrievals recorded.")
	})

	t.Run("suggests a search when nothing is archived", func(t *testing.T) {
		t.Parallel()

		cases := &mock.CaseService{
			FindCaseByProtocolFn: func(_ context.Context, _ string) (*procdoc.CaseRecord, error) {
				return nil, procdoc.Errorf(procdoc.ENOTFOUND, "case not found")
			},
		}

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: stdout,
			Stderr: stderr,
			Cases:  cases,
		}

		cmd := &main.HistoryCmd{Protocol: testProtocol}
		err := cmd.Run(deps)

		require.Error(t, err)
		assert.Contains(t, stderr.String(), "no archive for")
		assert.Contains(t, stderr.String(), "procdoc search "+testProtocol)
		assert.Empty(t, stdout.String())
	})
}
