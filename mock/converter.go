package mock

import "github.com/procdoc/procdoc"

var _ procdoc.Converter = (*Converter)(nil)

// Converter is a mock implementation of procdoc.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
