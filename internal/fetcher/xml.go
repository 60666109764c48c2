package fetcher

import (
	"encoding/xml"
	"io"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"
)

// DecodeXML decodes a single XML document into v. Documents that declare a
// non-UTF-8 charset are transcoded through the declared encoding.
func DecodeXML(r io.Reader, v any) error {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		enc, err := htmlindex.Get(charset)
		if err != nil {
			return nil, eris.Wrapf(err, "xml: unsupported charset %q", charset)
		}
		return enc.NewDecoder().Reader(input), nil
	}

	if err := dec.Decode(v); err != nil {
		return eris.Wrap(err, "xml: decode document")
	}
	return nil
}
