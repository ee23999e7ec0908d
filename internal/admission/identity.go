// Copyright 2022 p1nant0m <wgblike@gmail.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package admission

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
	"net/netip"
	"strings"

	"github.com/p1nant0m/packet-eater/internal/errors"
)

// ParseOrigin normalizes a client address. It accepts a bare address or
// host:port, drops any IPv6 zone and unmaps IPv4-in-IPv6 addresses.
func ParseOrigin(origin string) (netip.Addr, error) {
	origin = strings.TrimSpace(origin)
	if host, _, err := net.SplitHostPort(origin); err == nil {
		origin = host
	}
	origin = strings.TrimSuffix(strings.TrimPrefix(origin, "["), "]")

	addr, err := netip.ParseAddr(origin)
	if err != nil {
		return netip.Addr{}, errors.Malformed("origin %q is not an ip address", origin)
	}
	return addr.WithZone("").Unmap(), nil
}

// Identifier is the hex SHA-256 of the normalized address.
func Identifier(addr netip.Addr) string {
	sum := sha256.Sum256([]byte(addr.String()))
	return hex.EncodeToString(sum[:])
}

// IsLocal reports whether addr belongs to the loopback, private or
// link-local ranges. Such submitters are whitelisted on first contact.
func IsLocal(addr netip.Addr) bool {
	return addr.IsLoopback() || addr.IsPrivate() || addr.IsLinkLocalUnicast()
}
