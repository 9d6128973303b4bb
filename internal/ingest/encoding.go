package ingest

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// charsets maps accepted encoding names to their decoder tables. The
// source tables predate UTF-8: Chandler ships as Windows-1252 and
// Modelski as Latin-1.
var charsets = map[string]encoding.Encoding{
	"cp1252":       charmap.Windows1252,
	"windows-1252": charmap.Windows1252,
	"windows1252":  charmap.Windows1252,
	"latin-1":      charmap.ISO8859_1,
	"latin1":       charmap.ISO8859_1,
	"iso-8859-1":   charmap.ISO8859_1,
	"iso8859-1":    charmap.ISO8859_1,
	"latin-9":      charmap.ISO8859_15,
	"iso-8859-15":  charmap.ISO8859_15,
	"iso8859-15":   charmap.ISO8859_15,
}

// Charset resolves a user-supplied encoding name to a decoder. Names are
// matched case-insensitively.
func Charset(name string) (encoding.Encoding, error) {
	if enc, ok := charsets[strings.ToLower(strings.TrimSpace(name))]; ok {
		return enc, nil
	}
	return nil, fmt.Errorf("unsupported encoding %q (supported: cp1252, latin-1, iso-8859-15)", name)
}
