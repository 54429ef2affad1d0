package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// maxDescriptionSize bounds a description after decompression.
const maxDescriptionSize = 16 << 20

// ErrTooLarge is returned for descriptions over maxDescriptionSize.
var ErrTooLarge = errors.New("machine description too large")

type codec struct {
	ext   string
	magic []byte
	open  func(io.Reader) (io.ReadCloser, error)
}

var codecs = []codec{ //nolint:gochecknoglobals
	{
		ext:   ".gz",
		magic: []byte{0x1f, 0x8b},
		open: func(r io.Reader) (io.ReadCloser, error) {
			return gzip.NewReader(r)
		},
	},
	{
		ext:   ".zst",
		magic: []byte{0x28, 0xb5, 0x2f, 0xfd},
		open: func(r io.Reader) (io.ReadCloser, error) {
			dec, err := zstd.NewReader(r)
			if err != nil {
				return nil, err
			}

			return dec.IOReadCloser(), nil
		},
	},
	{
		ext:   ".lz4",
		magic: []byte{0x04, 0x22, 0x4d, 0x18},
		open: func(r io.Reader) (io.ReadCloser, error) {
			return io.NopCloser(lz4.NewReader(r)), nil
		},
	},
	{
		// Brotli streams carry no magic number; only the extension tells.
		ext: ".br",
		open: func(r io.Reader) (io.ReadCloser, error) {
			return io.NopCloser(brotli.NewReader(r)), nil
		},
	},
}

// decompress unpacks data when name ends in a known compression extension
// or data starts with a known magic number. It returns the payload and
// name without the compression extension.
func decompress(name string, data []byte) ([]byte, string, error) {
	ext := strings.ToLower(filepath.Ext(name))

	for _, c := range codecs {
		byExt := ext == c.ext
		if !byExt && (len(c.magic) == 0 || !bytes.HasPrefix(data, c.magic)) {
			continue
		}

		rc, err := c.open(bytes.NewReader(data))
		if err != nil {
			return nil, name, fmt.Errorf("opening %s stream: %w", c.ext, err)
		}

		out, err := readLimited(rc)

		closeErr := rc.Close()
		if err == nil {
			err = closeErr
		}

		if err != nil {
			return nil, name, fmt.Errorf("decompressing %s: %w", name, err)
		}

		if byExt {
			name = strings.TrimSuffix(name, name[len(name)-len(ext):])
		}

		return out, name, nil
	}

	return data, name, nil
}

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxDescriptionSize+1))
	if err != nil {
		return nil, err
	}

	if len(data) > maxDescriptionSize {
		return nil, ErrTooLarge
	}

	return data, nil
}
