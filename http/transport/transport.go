// Package transport builds the HTTP client used to fetch machine
// descriptions from remote locations: pooled connections, cached DNS
// lookups and transparent response decompression.
//
// The following environment variables tune the transport:
//
//   - HTTP_TRANSPORT_MAX_IDLE_CONNS (default 100)
//   - HTTP_TRANSPORT_IDLE_CONN_TIMEOUT (default 90s)
//   - HTTP_TRANSPORT_TLS_HANDSHAKE_TIMEOUT (default 10s)
//   - HTTP_TRANSPORT_DIAL_TIMEOUT (default 30s)
//   - HTTP_TRANSPORT_DIAL_KEEPALIVE (default 30s)
//   - HTTP_CLIENT_TIMEOUT (default 60s)
package transport

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/amp-labs/amp-automata/config"
	"github.com/amp-labs/amp-automata/logger"
)

const (
	defaultIdleConnTimeout      = 90 * time.Second
	defaultMaxIdleConns         = 100
	defaultTLSHandshakeTimeout  = 10 * time.Second
	defaultTransportDialTimeout = 30 * time.Second
	defaultKeepAlive            = 30 * time.Second
	defaultClientTimeout        = 60 * time.Second
)

// Option adjusts transport construction.
type Option func(*options)

type options struct {
	disableDNSCache bool
}

// WithoutDNSCache dials through the system resolver on every connection.
func WithoutDNSCache() Option {
	return func(o *options) {
		o.disableDNSCache = true
	}
}

// New returns an http.Transport with defaults taken from net/http that
// can be overridden with environment variables.
func New(ctx context.Context, opts ...Option) *http.Transport {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	dialTimeout := config.EnvDuration("HTTP_TRANSPORT_DIAL_TIMEOUT").ValueOrElse(defaultTransportDialTimeout)
	keepAlive := config.EnvDuration("HTTP_TRANSPORT_DIAL_KEEPALIVE").ValueOrElse(defaultKeepAlive)

	dialer := &net.Dialer{Timeout: dialTimeout, KeepAlive: keepAlive}

	trans := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         dialer.DialContext,
		MaxIdleConns:        config.EnvInt("HTTP_TRANSPORT_MAX_IDLE_CONNS").ValueOrElse(defaultMaxIdleConns),
		IdleConnTimeout:     config.EnvDuration("HTTP_TRANSPORT_IDLE_CONN_TIMEOUT").ValueOrElse(defaultIdleConnTimeout),
		TLSHandshakeTimeout: config.EnvDuration("HTTP_TRANSPORT_TLS_HANDSHAKE_TIMEOUT").ValueOrElse(defaultTLSHandshakeTimeout),
		// Decompression is done by the decompressor wrapper, which also
		// understands br and zstd.
		DisableCompression: true,
	}

	if !o.disableDNSCache {
		useDNSCacheDialer(trans, dialer)
	}

	logger.Get(ctx).DebugContext(ctx, "http transport created",
		"dns_cache", !o.disableDNSCache, "max_idle_conns", trans.MaxIdleConns)

	return trans
}

// NewClient returns a client over New that decompresses response bodies.
func NewClient(ctx context.Context, opts ...Option) *http.Client {
	return &http.Client{
		Transport: NewDecompressor(New(ctx, opts...)),
		Timeout:   config.EnvDuration("HTTP_CLIENT_TIMEOUT").ValueOrElse(defaultClientTimeout),
	}
}
