package fetcher

import (
	"context"
	"encoding/xml"
	"errors"
	"io"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"
)

// CollectXMLText returns the text content of every element with the given
// local name (namespace ignored), in document order. A malformed document
// yields an error and whatever was decoded before the fault.
func CollectXMLText(ctx context.Context, r io.Reader, elementName string) ([]string, error) {
	decoder := xml.NewDecoder(r)
	decoder.CharsetReader = charsetReader

	var texts []string
	for {
		if err := ctx.Err(); err != nil {
			return texts, eris.Wrap(err, "xml: read cancelled")
		}

		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			return texts, nil
		}
		if err != nil {
			return texts, eris.Wrap(err, "xml: read token")
		}

		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != elementName {
			continue
		}

		var item struct {
			Text string `xml:",chardata"`
		}
		if err := decoder.DecodeElement(&item, &se); err != nil {
			return texts, eris.Wrap(err, "xml: decode element")
		}
		texts = append(texts, item.Text)
	}
}

// charsetReader decodes documents whose prolog declares a non-UTF-8
// encoding, such as windows-1251.
func charsetReader(charset string, input io.Reader) (io.Reader, error) {
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, eris.Wrapf(err, "xml: unsupported charset %q", charset)
	}
	return enc.NewDecoder().Reader(input), nil
}
