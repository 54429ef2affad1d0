package transport

import (
	"errors"
	"io"
	"net/http"

	"github.com/fereidani/httpdecompressor"
)

// ErrNilRoundTripper is returned by the decompressor when built without a
// base transport.
var ErrNilRoundTripper = errors.New("transport: nil round tripper")

// NewDecompressor wraps rt so that response bodies are decoded according
// to Content-Encoding (gzip, deflate, br, zstd, ...).
func NewDecompressor(rt http.RoundTripper) http.RoundTripper {
	return &decompressor{roundTripper: rt}
}

type decompressor struct {
	roundTripper http.RoundTripper
}

func (d *decompressor) RoundTrip(req *http.Request) (*http.Response, error) {
	if d.roundTripper == nil {
		return nil, ErrNilRoundTripper
	}

	rsp, err := d.roundTripper.RoundTrip(req)
	if err != nil {
		return rsp, err
	}

	origBody := rsp.Body

	bodyReader, err := httpdecompressor.Reader(rsp)
	if err != nil {
		_ = origBody.Close()

		return nil, err
	}

	if bodyReader == origBody {
		return rsp, nil
	}

	rsp.Body = &decodedBody{Reader: bodyReader, decoder: bodyReader, body: origBody}
	rsp.Header.Del("Content-Encoding")
	rsp.Header.Del("Content-Length")
	rsp.ContentLength = -1

	return rsp, nil
}

// decodedBody closes the decoder before the underlying body.
type decodedBody struct {
	io.Reader

	decoder io.Closer
	body    io.Closer
}

func (b *decodedBody) Close() error {
	return errors.Join(b.decoder.Close(), b.body.Close())
}

var _ http.RoundTripper = (*decompressor)(nil)
