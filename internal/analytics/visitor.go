// Package analytics records profile views and link clicks and derives
// dashboard statistics from them.
package analytics

import (
	"net"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/linkpage/linkpage/internal/model"
)

const maxMetaLength = 500

// Visitor is the request metadata attached to a recorded event.
type Visitor struct {
	IPAddress string
	UserAgent string
	Referrer  string
}

// NewVisitor builds a Visitor from raw request values.
func NewVisitor(remoteAddr, userAgent, referrer string) Visitor {
	return Visitor{
		IPAddress: NormalizeIP(remoteAddr),
		UserAgent: TruncateUserAgent(userAgent),
		Referrer:  SanitizeReferrer(referrer),
	}
}

// NormalizeIP strips a port from addr. Empty or unparseable addresses
// become the unknown placeholder.
func NormalizeIP(addr string) string {
	addr = strings.TrimSpace(addr)
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}
	if net.ParseIP(addr) == nil {
		return model.UnknownIP
	}
	return addr
}

// SanitizeReferrer strips query parameters and fragments and truncates the
// result.
func SanitizeReferrer(ref string) string {
	if ref == "" {
		return ""
	}

	parsed, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	parsed.RawQuery = ""
	parsed.Fragment = ""

	return truncate(parsed.String(), maxMetaLength)
}

// TruncateUserAgent truncates ua to at most 500 bytes of valid UTF-8.
func TruncateUserAgent(ua string) string {
	return truncate(ua, maxMetaLength)
}

// truncate cuts s to at most n bytes on a rune boundary and drops invalid
// UTF-8, which text columns reject.
func truncate(s string, n int) string {
	s = strings.ToValidUTF8(s, "")
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
