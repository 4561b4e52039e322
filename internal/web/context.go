package web

import (
	"net"
	"net/http"

	"github.com/JonMunkholm/members/internal/core"
)

// withActor tags the request context with the caller's IP and user agent so
// they travel with the import-completed event.
func withActor(r *http.Request) *http.Request {
	ctx := core.ContextWithActor(r.Context(), core.Actor{
		IP:        clientIP(r),
		UserAgent: r.UserAgent(),
		Source:    "http",
	})
	return r.WithContext(ctx)
}

// clientIP strips the port from RemoteAddr when present.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
