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

// sniffSize is how much of the input is inspected before decoding starts.
const sniffSize = 4096

// Charset names an encoding this package knows how to decode.
type Charset string

const (
	UTF8        Charset = "UTF-8"
	UTF16LE     Charset = "UTF-16LE"
	UTF16BE     Charset = "UTF-16BE"
	Windows1252 Charset = "windows-1252"
	ISO8859_9   Charset = "ISO-8859-9"
	ISO8859_15  Charset = "ISO-8859-15"
)

var boms = []struct {
	prefix  []byte
	charset Charset
}{
	{[]byte{0xEF, 0xBB, 0xBF}, UTF8},
	{[]byte{0xFF, 0xFE}, UTF16LE},
	{[]byte{0xFE, 0xFF}, UTF16BE},
}

// chardetNames maps chardet results onto the decoders below. Latin-1 is read
// as windows-1252, its superset. UTF-8 is absent: Detect only asks chardet
// about samples that already failed UTF-8 validation.
var chardetNames = map[string]Charset{
	"ISO-8859-1":   Windows1252,
	"windows-1252": Windows1252,
	"ISO-8859-9":   ISO8859_9,
	"ISO-8859-15":  ISO8859_15,
}

func (c Charset) decoder() encoding.Encoding {
	switch c {
	case UTF16LE:
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)
	case UTF16BE:
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM)
	case ISO8859_9:
		return charmap.ISO8859_9
	case ISO8859_15:
		return charmap.ISO8859_15
	case Windows1252:
		return charmap.Windows1252
	}

	return nil
}

// Detect guesses the charset of a sample and reports whether it opens with
// a byte order mark.
//
// Detection order:
//  1. BOM
//  2. Valid UTF-8
//  3. chardet heuristics
//  4. windows-1252
func Detect(sample []byte) (Charset, bool) {
	for _, b := range boms {
		if bytes.HasPrefix(sample, b.prefix) {
			return b.charset, true
		}
	}

	if utf8.Valid(sample) {
		return UTF8, false
	}

	result, err := chardet.NewTextDetector().DetectBest(sample)
	if err == nil {
		if cs, ok := chardetNames[result.Charset]; ok {
			return cs, false
		}
	}

	return Windows1252, false
}

// NewUTF8Reader returns a reader that decodes r to UTF-8, dropping a UTF-8
// BOM if present. See Detect for how the source charset is chosen.
func NewUTF8Reader(r io.Reader) (io.Reader, error) {
	br := bufio.NewReaderSize(r, sniffSize)

	sample, err := br.Peek(sniffSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("peek: %w", err)
	}

	if len(sample) == sniffSize {
		sample = trimPartialRune(sample)
	}

	charset, hasBOM := Detect(sample)

	if charset == UTF8 {
		if hasBOM {
			_, _ = br.Discard(3)
		}

		return br, nil
	}

	return transform.NewReader(br, charset.decoder().NewDecoder()), nil
}

// trimPartialRune drops a multi-byte sequence cut off by the end of a
// truncated sample, so valid UTF-8 split mid-rune still validates.
func trimPartialRune(sample []byte) []byte {
	for i := len(sample) - 1; i >= 0 && i >= len(sample)-utf8.UTFMax; i-- {
		if !utf8.RuneStart(sample[i]) {
			continue
		}

		if !utf8.FullRune(sample[i:]) {
			return sample[:i]
		}

		break
	}

	return sample
}
