package importer

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Encoding names a text encoding recognised in supplier exports.
type Encoding string

const (
	EncodingUTF8        Encoding = "utf-8"
	EncodingUTF16LE     Encoding = "utf-16le"
	EncodingUTF16BE     Encoding = "utf-16be"
	EncodingWindows1251 Encoding = "windows-1251"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

const (
	sniffWindow    = 1000
	cp1251MinRatio = 0.01
)

// DetectEncoding guesses the encoding of data. A BOM wins; otherwise valid
// UTF-8 with multibyte sequences is UTF-8, and a share of bytes in 0xC0..0xFF
// above 1% of the first 1000 bytes means Windows-1251.
func DetectEncoding(data []byte) Encoding {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return EncodingUTF8
	case bytes.HasPrefix(data, bomUTF16LE):
		return EncodingUTF16LE
	case bytes.HasPrefix(data, bomUTF16BE):
		return EncodingUTF16BE
	}

	if utf8.Valid(data) && hasMultibyte(data) {
		return EncodingUTF8
	}

	n := len(data)
	if n > sniffWindow {
		n = sniffWindow
	}
	if n == 0 {
		return EncodingUTF8
	}
	high := 0
	for _, b := range data[:n] {
		if b >= 0xC0 {
			high++
		}
	}
	if float64(high)/float64(n) > cp1251MinRatio {
		return EncodingWindows1251
	}
	return EncodingUTF8
}

func hasMultibyte(data []byte) bool {
	for _, b := range data {
		if b >= utf8.RuneSelf {
			return true
		}
	}
	return false
}

// Decode converts data to a UTF-8 string with any BOM removed. It never
// fails: bytes that cannot be decoded become U+FFFD and parsing goes on.
func Decode(data []byte) (string, Encoding) {
	enc := DetectEncoding(data)

	var dec *encoding.Decoder
	switch enc {
	case EncodingUTF16LE:
		dec = unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder()
	case EncodingUTF16BE:
		dec = unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder()
	case EncodingWindows1251:
		dec = charmap.Windows1251.NewDecoder()
	default:
		return strings.ToValidUTF8(string(bytes.TrimPrefix(data, bomUTF8)), "\uFFFD"), enc
	}

	out, _, err := transform.Bytes(dec, data)
	if err != nil {
		return strings.ToValidUTF8(string(data), "\uFFFD"), enc
	}
	return string(out), enc
}
