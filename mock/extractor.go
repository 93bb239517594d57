package mock

import "github.com/procdoc/procdoc"

var _ procdoc.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of procdoc.Extractor.
type Extractor struct {
	ExtractFn func(html string) (*procdoc.ExtractResult, error)
}

func (e *Extractor) Extract(html string) (*procdoc.ExtractResult, error) {
	return e.ExtractFn(html)
}
