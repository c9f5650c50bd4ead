package extract

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// lookupCharset resolves a WHATWG charset label. An empty label means
// permissive UTF-8.
func lookupCharset(label string) (encoding.Encoding, error) {
	if strings.TrimSpace(label) == "" {
		return nil, nil
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, eris.Wrapf(err, "extract: unsupported charset %q", label)
	}
	return enc, nil
}

// decodeText turns raw bytes into a string without failing. UTF-16 input is
// detected by its byte order mark. Input that is not valid UTF-8 is decoded
// with fallback when one is configured; otherwise invalid sequences are
// dropped.
func decodeText(data []byte, fallback encoding.Encoding) string {
	switch {
	case bytes.HasPrefix(data, bomUTF16LE), bytes.HasPrefix(data, bomUTF16BE):
		dec := unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder()
		if out, err := dec.Bytes(data); err == nil {
			return strings.ToValidUTF8(string(out), "")
		}
	case bytes.HasPrefix(data, bomUTF8):
		data = data[len(bomUTF8):]
	}

	if utf8.Valid(data) {
		return string(data)
	}
	if fallback != nil {
		if out, err := fallback.NewDecoder().Bytes(data); err == nil {
			return string(out)
		}
	}
	return strings.ToValidUTF8(string(data), "")
}
