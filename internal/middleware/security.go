package middleware

import (
	"net"
	"net/http"
	"strings"
)

// apiSecurityHeaders are set on every response; the API serves JSON only.
var apiSecurityHeaders = map[string]string{
	"X-Content-Type-Options":    "nosniff",
	"X-Frame-Options":           "DENY",
	"Content-Security-Policy":   "default-src 'none'; frame-ancestors 'none'",
	"Referrer-Policy":           "no-referrer",
	"Strict-Transport-Security": "max-age=31536000; includeSubDomains",
}

// SecurityHeaders sets security-related response headers. /api responses are also
// marked Cache-Control: no-store.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		for k, v := range apiSecurityHeaders {
			h.Set(k, v)
		}
		if strings.HasPrefix(r.URL.Path, "/api/") {
			h.Set("Cache-Control", "no-store")
		}
		next.ServeHTTP(w, r)
	})
}

// HostCheck rejects requests whose Host is not allowedHost (bare hostname, e.g.
// api.moodlog.app). An empty allowedHost disables the check. /health is exempt.
func HostCheck(allowedHost string) func(http.Handler) http.Handler {
	allowedHost = strings.TrimSpace(allowedHost)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if allowedHost == "" || r.URL.Path == "/health" {
				next.ServeHTTP(w, r)
				return
			}
			reqHost := r.Host
			if host, _, err := net.SplitHostPort(reqHost); err == nil {
				reqHost = host
			}
			if !strings.EqualFold(strings.TrimSpace(reqHost), allowedHost) {
				writeError(w, http.StatusForbidden, "Forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ProductionSecurity returns middlewares for production, in order:
// SecurityHeaders, HostCheck, GlobalRateLimit, LoginRateLimit.
func ProductionSecurity(allowedHost string, global, login *Limiter) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		SecurityHeaders,
		HostCheck(allowedHost),
		GlobalRateLimit(global),
		LoginRateLimit(login),
	}
}
