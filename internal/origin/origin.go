// Package origin classifies the network origin of incoming requests so the
// server can decide how much to trust them. Requests from the local machine
// or a private LAN skip API key checks; everything else must authenticate.
package origin

import "strings"

// Class is the trust category assigned to a requester address.
type Class int

const (
	// Public is any address that is neither loopback nor private LAN,
	// including malformed or empty addresses.
	Public Class = iota
	// Loopback is the local machine.
	Loopback
	// PrivateLAN is an RFC 1918 private network address.
	PrivateLAN
)

// String returns the lowercase name of the class.
func (c Class) String() string {
	switch c {
	case Loopback:
		return "loopback"
	case PrivateLAN:
		return "private_lan"
	default:
		return "public"
	}
}

// Trusted reports whether requests from this class may skip API key
// authentication.
func (c Class) Trusted() bool {
	return c == Loopback || c == PrivateLAN
}

// Classify categorizes a requester IP address by its textual form. The input
// is the bare host (no port). Anything unrecognized, including malformed or
// empty strings, classifies as Public.
func Classify(addr string) Class {
	switch addr {
	case "127.0.0.1", "::1", "::ffff:127.0.0.1":
		return Loopback
	}
	if strings.HasPrefix(addr, "192.168.") || strings.HasPrefix(addr, "10.") {
		return PrivateLAN
	}
	if second, ok := strings.CutPrefix(addr, "172."); ok {
		if i := strings.IndexByte(second, '.'); i > 0 {
			if octet, valid := parseOctet(second[:i]); valid && octet >= 16 && octet <= 31 {
				return PrivateLAN
			}
		}
	}
	return Public
}

func parseOctet(s string) (int, bool) {
	if len(s) == 0 || len(s) > 3 {
		return 0, false
	}
	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}
