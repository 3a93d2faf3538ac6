package fbx

import (
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/japanese"
)

// DefaultEncoding decodes strings that are not valid UTF-8. Old exporters
// write names and paths in the system code page.
var DefaultEncoding encoding.Encoding = charmap.Windows1252

// LookupEncoding returns the legacy encoding with the given name, such as
// "windows-1252" or "shift_jis".
func LookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(name) {
	case "":
		return DefaultEncoding, nil
	case "sjis", "cp932":
		return japanese.ShiftJIS, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, errors.Wrapf(err, "unknown encoding %q", name)
	}
	return enc, nil
}

type stringDecoder struct {
	dec *encoding.Decoder
}

func newStringDecoder(enc encoding.Encoding) *stringDecoder {
	if enc == nil {
		enc = DefaultEncoding
	}
	return &stringDecoder{dec: enc.NewDecoder()}
}

// decode returns b as is when it is valid UTF-8.
func (d *stringDecoder) decode(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	s, err := d.dec.Bytes(b)
	if err != nil {
		return strings.ToValidUTF8(string(b), "�")
	}
	return string(s)
}
