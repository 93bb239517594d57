package mock

import "github.com/procdoc/procdoc"

var _ procdoc.TextParser = (*TextParser)(nil)

// TextParser is a mock implementation of procdoc.TextParser.
type TextParser struct {
	ParseTextFn func(data []byte) (string, int, error)
}

func (p *TextParser) ParseText(data []byte) (string, int, error) {
	return p.ParseTextFn(data)
}
