package transport

import (
	"context"
	"net"
	"net/http"

	"github.com/rs/dnscache"
)

// dnsResolver is shared by every transport built with DNS caching.
var dnsResolver = &dnscache.Resolver{} //nolint:gochecknoglobals

// useDNSCacheDialer makes trans resolve hosts through dnsResolver and try
// each returned address in turn.
func useDNSCacheDialer(trans *http.Transport, dialer *net.Dialer) {
	trans.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
		host, port, err := net.SplitHostPort(addr)
		if err != nil {
			return nil, err
		}

		ips, err := dnsResolver.LookupHost(ctx, host)
		if err != nil {
			return nil, err
		}

		var conn net.Conn

		for _, ip := range ips {
			conn, err = dialer.DialContext(ctx, network, net.JoinHostPort(ip, port))
			if err == nil {
				return conn, nil
			}
		}

		return nil, err
	}
}
