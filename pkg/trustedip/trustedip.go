// Copyright (C) 2021 Storj Labs, Inc.
// See LICENSE for copying information.

// Package trustedip resolves the client IP of a request, honoring the
// forwarding headers only when the peer is a trusted proxy.
package trustedip

import (
	"net/http"
	"regexp"
	"strings"
)

// List is a list of trusted IPs for conveniently verifying if an IP is trusted.
type List struct {
	// ips is the list of trusted IPs. It's used when untrustAll is false. When
	// empty it trusts any IP.
	ips        map[string]struct{}
	untrustAll bool
}

// NewListUntrustAll creates a new List which doesn't trust in any IP.
func NewListUntrustAll() List {
	return List{untrustAll: true}
}

// NewListTrustAll creates a new List which trusts any IP.
func NewListTrustAll() List {
	return List{}
}

// NewListTrustIPs creates a new List which trusts the passed ips.
//
// NOTE: ips are not checked to be well formatted and their values are what they
// kept in the list.
func NewListTrustIPs(ips ...string) List {
	l := List{ips: make(map[string]struct{}, len(ips))}

	for _, ip := range ips {
		l.ips[ip] = struct{}{}
	}

	return l
}

// IsTrusted returns true if ip is trusted, otherwise false.
func (l List) IsTrusted(ip string) bool {
	if l.untrustAll {
		return false
	}

	if len(l.ips) == 0 {
		return true
	}

	_, ok := l.ips[ip]
	return ok
}

var forwardForClientIPRegExp = regexp.MustCompile(`(?i)(?:^|[;,])\s*for=("[^"]+"|[^;,\s]+)`)

// GetClientIP gets the IP of the client from the 'Forwarded',
// 'X-Forwarded-For', or 'X-Real-Ip' headers if r.RemoteAddr is a trusted IP,
// checking them in that specific order. If the IP isn't trusted or none of
// those headers is present then it returns r.RemoteAddr without the port.
// It panics if r is nil.
func GetClientIP(l List, r *http.Request) string {
	if l.IsTrusted(stripPort(r.RemoteAddr)) {
		if ip, ok := GetIPFromHeaders(r.Header); ok {
			return ip
		}
	}

	return stripPort(r.RemoteAddr)
}

// GetIPFromHeaders gets the IP of the client from the first existing header in
// this order: 'Forwarded', 'X-Forwarded-For', and 'X-Real-Ip'. It returns the
// IP and true when any of those headers is present, otherwise false.
//
// NOTE: it doesn't check that the IP value get from wherever source is a well
// formatted IP v4 nor v6.
func GetIPFromHeaders(headers http.Header) (string, bool) {
	if header := headers.Get("Forwarded"); header != "" {
		// Get the first value of the 'for' identifier present in the header
		// because it's the one that contains the client IP.
		// See https://datatracker.ietf.org/doc/html/rfc7239
		matches := forwardForClientIPRegExp.FindStringSubmatch(header)
		if len(matches) > 1 {
			return stripPort(strings.Trim(matches[1], `"`)), true
		}
	}

	if header := headers.Get("X-Forwarded-For"); header != "" {
		// Get the first value because it's the client IP.
		// Header syntax: X-Forwarded-For: <client>, <proxy1>, <proxy2>
		// See https://developer.mozilla.org/en-US/docs/Web/HTTP/Headers/X-Forwarded-For
		return strings.SplitN(header, ",", 2)[0], true
	}

	if header := headers.Get("X-Real-Ip"); header != "" {
		// The header value is just the client IP. This header is mostly sent
		// by NGINX.
		// See https://www.nginx.com/resources/wiki/start/topics/examples/forwarded/
		return header, true
	}

	return "", false
}

// stripPort returns addr without the port. Addresses that don't follow the
// 'host:port' or '[host]:port' forms are returned unchanged.
func stripPort(addr string) string {
	if addr == "" {
		return ""
	}

	// a bracketed address is assumed to be of the '[host]:port' form.
	if addr[0] == '[' {
		idx := strings.LastIndex(addr, ":")
		if idx < 2 {
			return addr
		}
		return addr[1 : idx-1]
	}

	// without brackets only a single colon can separate a port.
	if strings.Count(addr, ":") != 1 {
		return addr
	}
	return addr[:strings.Index(addr, ":")]
}
