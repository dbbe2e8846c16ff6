package client

import (
	"net"
	"net/http"
	"strings"
)

// AuthorIP returns the address of the person who submitted r, for the
// author_ip parameter. X-Forwarded-For is only consulted when trustForwarded
// is set, i.e. the application sits behind exactly one proxy it controls; the
// last entry is the one that proxy appended.
func AuthorIP(r *http.Request, trustForwarded bool) string {
	if trustForwarded {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			parts := strings.Split(fwd, ",")
			if last := strings.TrimSpace(parts[len(parts)-1]); last != "" {
				return last
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
