package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/unicode/norm"
)

// ErrUnsupportedEncoding is returned when a description is neither UTF-8
// nor in an encoding that can be detected and decoded.
var ErrUnsupportedEncoding = errors.New("unsupported text encoding")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF} //nolint:gochecknoglobals

// decodeText returns data as NFC-normalized UTF-8 and the name of the
// encoding it was read as. Valid UTF-8 is taken as is; anything else is
// sniffed with chardet.
func decodeText(data []byte) (string, string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	if utf8.Valid(data) {
		return norm.NFC.String(string(data)), "UTF-8", nil
	}

	best, err := chardet.NewTextDetector().DetectBest(data)
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrUnsupportedEncoding, err)
	}

	reader, err := charset.NewReaderLabel(best.Charset, bytes.NewReader(data))
	if err != nil {
		return "", "", fmt.Errorf("%w: %s", ErrUnsupportedEncoding, best.Charset)
	}

	decoded, err := io.ReadAll(reader)
	if err != nil {
		return "", "", fmt.Errorf("decoding %s: %w", best.Charset, err)
	}

	if !utf8.Valid(decoded) {
		return "", "", fmt.Errorf("%w: %s", ErrUnsupportedEncoding, best.Charset)
	}

	text := strings.TrimPrefix(string(decoded), "\uFEFF")

	return norm.NFC.String(text), best.Charset, nil
}
