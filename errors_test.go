package procdoc_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/procdoc/procdoc"
	"github.com/stretchr/testify/assert"
)

func TestErrorCode(t *testing.T) {
	t.Parallel()

	t.Run("returns code of application error", func(t *testing.T) {
		t.Parallel()

		err := procdoc.Errorf(procdoc.ENOTFOUND, "case not found")

		assert.Equal(t, procdoc.ENOTFOUND, procdoc.ErrorCode(err))
	})

	t.Run("unwraps wrapped application error", func(t *testing.T) {
		t.Parallel()

		inner := procdoc.Errorf(procdoc.EDOWNLOAD, "no file appeared")
		err := fmt.Errorf("fetching document: %w", inner)

		assert.Equal(t, procdoc.EDOWNLOAD, procdoc.ErrorCode(err))
	})

	t.Run("returns EINTERNAL for non-application error", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, procdoc.EINTERNAL, procdoc.ErrorCode(errors.New("boom")))
	})

	t.Run("returns empty string for nil", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "", procdoc.ErrorCode(nil))
	})
}

func TestErrorMessage(t *testing.T) {
	t.Parallel()

	t.Run("returns message of application error", func(t *testing.T) {
		t.Parallel()

		err := procdoc.Errorf(procdoc.EAMBIGUOUS, "result page was ambiguous; verify %q manually", "123")

		assert.Equal(t, `result page was ambiguous; verify "123" manually`, procdoc.ErrorMessage(err))
	})

	t.Run("returns generic message for non-application error", func(t *testing.T) {
		t.Parallel()

		msg := procdoc.ErrorMessage(errors.New("sql: connection reset"))

		assert.Contains(t, msg, "internal error")
		assert.NotContains(t, msg, "sql")
	})

	t.Run("returns empty string for nil", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "", procdoc.ErrorMessage(nil))
	})
}

func TestError_Error(t *testing.T) {
	t.Parallel()

	err := procdoc.Errorf(procdoc.EPORTAL, "search select missing")

	assert.Equal(t, "procdoc error: code=portal_changed message=search select missing", err.Error())
}
