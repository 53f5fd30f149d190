// Package encoding normalises uploaded text files to UTF-8.
package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// sniffLen is how much of the input is inspected.
const sniffLen = 4096

var bomUTF8 = []byte{0xEF, 0xBB, 0xBF}

// byBOM maps byte order marks to the encoding they announce.
var byBOM = []struct {
	bom []byte
	enc encoding.Encoding
}{
	{bom: []byte{0xFF, 0xFE}, enc: unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)},
	{bom: []byte{0xFE, 0xFF}, enc: unicode.UTF16(unicode.BigEndian, unicode.UseBOM)},
}

// byCharset maps chardet results to decoders. Anything else falls back to
// Windows-1252, the usual encoding of spreadsheet exports on UK banking sites.
var byCharset = map[string]encoding.Encoding{
	"ISO-8859-1":   charmap.Windows1252,
	"windows-1252": charmap.Windows1252,
	"ISO-8859-9":   charmap.ISO8859_9,
	"ISO-8859-15":  charmap.ISO8859_15,
}

// NewUTF8Reader returns a reader yielding r's content as UTF-8. A UTF-8 BOM
// is stripped, UTF-16 with a BOM is decoded, valid UTF-8 passes through and
// anything else is decoded from the charset chardet guesses.
func NewUTF8Reader(r io.Reader) (io.Reader, error) {
	br := bufio.NewReaderSize(r, sniffLen)

	buf, err := br.Peek(sniffLen)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("peek: %w", err)
	}

	if bytes.HasPrefix(buf, bomUTF8) {
		_, _ = br.Discard(len(bomUTF8))
		return br, nil
	}

	for _, b := range byBOM {
		if bytes.HasPrefix(buf, b.bom) {
			return transform.NewReader(br, b.enc.NewDecoder()), nil
		}
	}

	if utf8.Valid(buf) {
		return br, nil
	}

	return transform.NewReader(br, guess(buf).NewDecoder()), nil
}

func guess(buf []byte) encoding.Encoding {
	result, err := chardet.NewTextDetector().DetectBest(buf)
	if err == nil {
		if enc, ok := byCharset[result.Charset]; ok {
			return enc
		}
	}

	return charmap.Windows1252
}
