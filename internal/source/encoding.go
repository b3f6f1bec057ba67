package source

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Encoding names the byte encoding of a file on disk.
type Encoding uint8

const (
	// EncodingUTF8 is the default. UTF-16 input with a BOM is still detected.
	EncodingUTF8 Encoding = iota
	EncodingUTF16
	EncodingWindows1252
	EncodingLatin1
)

func (e Encoding) String() string {
	switch e {
	case EncodingUTF8:
		return "utf-8"
	case EncodingUTF16:
		return "utf-16"
	case EncodingWindows1252:
		return "windows-1252"
	case EncodingLatin1:
		return "latin1"
	}
	return "unknown"
}

// ParseEncoding converts a --encoding flag value.
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "utf-8", "utf8":
		return EncodingUTF8, nil
	case "utf-16", "utf16":
		return EncodingUTF16, nil
	case "windows-1252", "cp1252":
		return EncodingWindows1252, nil
	case "latin1", "iso-8859-1":
		return EncodingLatin1, nil
	default:
		return EncodingUTF8, fmt.Errorf("unknown encoding %q (expected utf-8|utf-16|windows-1252|latin1)", s)
	}
}

var (
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

func (e Encoding) decoder(content []byte) *encoding.Decoder {
	switch e {
	case EncodingUTF16:
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
	case EncodingWindows1252:
		return charmap.Windows1252.NewDecoder()
	case EncodingLatin1:
		return charmap.ISO8859_1.NewDecoder()
	default:
		// UTF-8 по умолчанию, но UTF-16 с BOM всё равно распознаём
		if bytes.HasPrefix(content, bomUTF16LE) || bytes.HasPrefix(content, bomUTF16BE) {
			return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		}
		return nil
	}
}

// decode transcodes content to UTF-8. The flag reports whether a decoder ran.
func decode(content []byte, enc Encoding) ([]byte, bool, error) {
	dec := enc.decoder(content)
	if dec == nil {
		return content, false, nil
	}
	out, _, err := transform.Bytes(dec, content)
	if err != nil {
		return nil, false, fmt.Errorf("decode %s: %w", enc, err)
	}
	return out, true, nil
}
