package ingest

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCharsetAliases(t *testing.T) {
	aliases := []string{
		"cp1252", "CP1252", "windows-1252", "windows1252",
		"latin-1", "Latin-1", "latin1", "iso-8859-1", "iso8859-1",
		"latin-9", "iso-8859-15", "ISO8859-15",
		" cp1252 ",
	}
	for _, name := range aliases {
		_, err := Charset(name)
		assert.NoError(t, err, "Charset(%q)", name)
	}
}

func TestCharsetUnsupported(t *testing.T) {
	for _, name := range []string{"utf-16", "shift-jis", "", "cp-1252"} {
		_, err := Charset(name)
		require.Error(t, err, "Charset(%q)", name)
		assert.Contains(t, err.Error(), "unsupported encoding")
	}
}

func TestCharsetDecodes(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		// 0x80 is the euro sign in cp1252 but not in the latin sets.
		{"cp1252", []byte{0x80, ' ', 0xf3}, "€ ó"},
		{"latin-1", []byte{0xe3, 0xa4}, "ã¤"},
		{"iso-8859-15", []byte{0xa4}, "€"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc, err := Charset(tt.name)
			require.NoError(t, err)

			got, err := io.ReadAll(enc.NewDecoder().Reader(bytes.NewReader(tt.input)))
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}
