package surface

import (
	"bytes"

	"golang.org/x/text/unicode/norm"
)

var bomUTF8 = []byte{0xEF, 0xBB, 0xBF}

// normalize performs input normalization at the lexer boundary: it strips a
// leading UTF-8 BOM and applies Unicode NFC normalization, so that
// lexically equivalent source (e.g. a precomposed "é" vs a combining-mark
// spelling of it) produces identical token streams regardless of encoding.
func normalize(src string) string {
	b := bytes.TrimPrefix([]byte(src), bomUTF8)
	if !norm.NFC.IsNormal(b) {
		b = norm.NFC.Bytes(b)
	}
	return string(b)
}
