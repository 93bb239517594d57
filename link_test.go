package procdoc_test

import (
	"testing"

	"github.com/procdoc/procdoc"
	"github.com/stretchr/testify/assert"
)

func TestDocumentIDFromRef(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ref  string
		want string
	}{
		{
			"idDocumento param",
			"/cpopg/abrirDocumentoVinculadoMovimentacao.do?processo.codigo=1A2B&idDocumento=991234",
			"991234",
		},
		{
			"cdDocumento fallback",
			"/cpopg/abrirDocumentoVinculadoMovimentacao.do?cdDocumento=7788",
			"7788",
		},
		{
			"idDocumento wins over cdDocumento",
			"/x.do?cdDocumento=2&idDocumento=1",
			"1",
		},
		{"no id params", "/cpopg/show.do?processo.codigo=1A2B", ""},
		{"unparsable", "::::not a url", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, procdoc.DocumentIDFromRef(tt.ref))
		})
	}
}

func TestBuildPDFURL(t *testing.T) {
	t.Parallel()

	t.Run("joins origin and id", func(t *testing.T) {
		t.Parallel()

		got := procdoc.BuildPDFURL("https://esaj.tjsp.jus.br", "991234")

		assert.Equal(t, "https://esaj.tjsp.jus.br/pastadigital/getPDF.do?idDocumento=991234", got)
	})

	t.Run("tolerates trailing slash and escapes the id", func(t *testing.T) {
		t.Parallel()

		got := procdoc.BuildPDFURL("https://esaj.tjsp.jus.br/", "9 9")

		assert.Equal(t, "https://esaj.tjsp.jus.br/pastadigital/getPDF.do?idDocumento=9+9", got)
	})
}

func TestHrefFromOnclick(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		onclick string
		want    string
	}{
		{
			"single quoted path",
			"abrirDocumento('/cpopg/abrirDocumentoVinculadoMovimentacao.do?idDocumento=1');return false;",
			"/cpopg/abrirDocumentoVinculadoMovimentacao.do?idDocumento=1",
		},
		{
			"double quoted absolute url",
			`window.open("https://esaj.tjsp.jus.br/pastadigital/getPDF.do?idDocumento=2")`,
			"https://esaj.tjsp.jus.br/pastadigital/getPDF.do?idDocumento=2",
		},
		{"no url argument", "toggleRow(this)", ""},
		{"quoted non-url argument", "marcar('abc')", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, procdoc.HrefFromOnclick(tt.onclick))
		})
	}
}

func TestViewerFileURL(t *testing.T) {
	t.Parallel()

	t.Run("decodes file parameter", func(t *testing.T) {
		t.Parallel()

		src := "/pastadigital/viewer.html?file=%2Fpastadigital%2FgetPDF.do%3FidDocumento%3D991234"

		assert.Equal(t, "/pastadigital/getPDF.do?idDocumento=991234", procdoc.ViewerFileURL(src))
	})

	t.Run("returns src verbatim without file parameter", func(t *testing.T) {
		t.Parallel()

		src := "/pastadigital/getPDF.do?idDocumento=991234"

		assert.Equal(t, src, procdoc.ViewerFileURL(src))
	})
}

func TestAbsoluteURL(t *testing.T) {
	t.Parallel()

	t.Run("resolves relative ref against page", func(t *testing.T) {
		t.Parallel()

		got := procdoc.AbsoluteURL("https://esaj.tjsp.jus.br/cpopg/show.do?id=1", "/pastadigital/getPDF.do?idDocumento=2")

		assert.Equal(t, "https://esaj.tjsp.jus.br/pastadigital/getPDF.do?idDocumento=2", got)
	})

	t.Run("keeps absolute ref", func(t *testing.T) {
		t.Parallel()

		got := procdoc.AbsoluteURL("https://esaj.tjsp.jus.br/cpopg/show.do", "https://other.example/x.pdf")

		assert.Equal(t, "https://other.example/x.pdf", got)
	})
}

func TestHasPasswordMarker(t *testing.T) {
	t.Parallel()

	assert.True(t, procdoc.HasPasswordMarker(`<a href="#" onclick="liberarAutoPorSenha('123')">doc</a>`))
	assert.False(t, procdoc.HasPasswordMarker(`<a href="/pastadigital/getPDF.do?idDocumento=1">doc</a>`))
}
