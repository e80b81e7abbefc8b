package middleware

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP returns the caller's IP. With trustProxy the first X-Forwarded-For
// hop wins; otherwise only RemoteAddr is used, since the header is spoofable
// when nothing in front of the app rewrites it.
func ClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			first, _, _ := strings.Cut(fwd, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return strings.TrimSpace(host)
}
