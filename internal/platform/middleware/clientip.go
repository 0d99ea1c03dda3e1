// Copyright (c) 2026 Aula. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"

	"github.com/taibuivan/aula/internal/platform/constants"
	"github.com/taibuivan/aula/internal/platform/ctxutil"
)

// # Client Address

// TrustedProxies lists the networks whose forwarding headers are believed.
// The zero value trusts nobody, so the socket peer is always the client.
type TrustedProxies []netip.Prefix

/*
ParseTrustedProxies reads single addresses ("10.0.0.5") and networks
("10.0.0.0/8") into a [TrustedProxies].

Returns:
  - TrustedProxies: Parsed networks, empty for no entries
  - error: The first malformed entry
*/
func ParseTrustedProxies(entries []string) (TrustedProxies, error) {
	proxies := make(TrustedProxies, 0, len(entries))

	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		if strings.Contains(entry, "/") {
			prefix, err := netip.ParsePrefix(entry)
			if err != nil {
				return nil, fmt.Errorf("middleware: invalid trusted proxy %q: %w", entry, err)
			}
			proxies = append(proxies, prefix.Masked())
			continue
		}

		addr, err := netip.ParseAddr(entry)
		if err != nil {
			return nil, fmt.Errorf("middleware: invalid trusted proxy %q: %w", entry, err)
		}
		addr = addr.Unmap()
		proxies = append(proxies, netip.PrefixFrom(addr, addr.BitLen()))
	}

	return proxies, nil
}

// trusts reports whether addr belongs to a trusted proxy.
func (proxies TrustedProxies) trusts(addr netip.Addr) bool {
	for _, prefix := range proxies {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

/*
Resolve returns the client address of request.

Description: Forwarding headers are read only when the socket peer is a
trusted proxy. X-Forwarded-For is walked from the right and the first hop
outside the trusted networks wins, so entries a client prepends are never
reached. X-Real-IP is the fallback for proxies that only set that header.
*/
func (proxies TrustedProxies) Resolve(request *http.Request) string {
	peer := remoteHost(request)

	peerAddr, err := netip.ParseAddr(peer)
	if err != nil || !proxies.trusts(peerAddr.Unmap()) {
		return peer
	}

	if forwarded := request.Header.Values(constants.HeaderXForwardedFor); len(forwarded) > 0 {
		hops := strings.Split(strings.Join(forwarded, ","), ",")

		for i := len(hops) - 1; i >= 0; i-- {
			hop, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
			if err != nil {
				break
			}
			if !proxies.trusts(hop.Unmap()) || i == 0 {
				return hop.Unmap().String()
			}
		}
	}

	if realIP, err := netip.ParseAddr(strings.TrimSpace(request.Header.Get(constants.HeaderXRealIP))); err == nil {
		return realIP.Unmap().String()
	}

	return peer
}

// ClientIP resolves the client address once per request and stores it in the
// context for [RealIP]. Register it first in the chain.
func ClientIP(proxies TrustedProxies) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			ctx := ctxutil.WithClientIP(request.Context(), proxies.Resolve(request))
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RealIP returns the address resolved by [ClientIP]. Without that middleware
// it falls back to the socket peer and never to client-supplied headers.
func RealIP(request *http.Request) string {
	if ip := ctxutil.GetClientIP(request.Context()); ip != "" {
		return ip
	}
	return remoteHost(request)
}

// remoteHost strips the port from the socket peer address.
func remoteHost(request *http.Request) string {
	host, _, err := net.SplitHostPort(request.RemoteAddr)
	if err != nil {
		return request.RemoteAddr
	}
	return host
}
