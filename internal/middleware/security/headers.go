// Package security applies defensive HTTP response headers.
package security

import (
	"net/http"
)

// HeadersConfig holds security headers configuration.
type HeadersConfig struct {
	XFrameOptions       string
	XContentTypeOptions string
	ReferrerPolicy      string
	CacheControl        string
}

// DefaultHeadersConfig returns defaults suited to a JSON API: responses are
// never framed, sniffed or cached.
func DefaultHeadersConfig() HeadersConfig {
	return HeadersConfig{
		XFrameOptions:       "DENY",
		XContentTypeOptions: "nosniff",
		ReferrerPolicy:      "strict-origin-when-cross-origin",
		CacheControl:        "no-store",
	}
}

// HeadersMiddleware applies security headers to responses.
type HeadersMiddleware struct {
	config HeadersConfig
}

// NewHeadersMiddleware creates a new security headers middleware.
func NewHeadersMiddleware(config HeadersConfig) *HeadersMiddleware {
	return &HeadersMiddleware{config: config}
}

// Apply sets the configured headers on a single response.
func (h *HeadersMiddleware) Apply(w http.ResponseWriter) {
	if h.config.XContentTypeOptions != "" {
		w.Header().Set("X-Content-Type-Options", h.config.XContentTypeOptions)
	}
	if h.config.XFrameOptions != "" {
		w.Header().Set("X-Frame-Options", h.config.XFrameOptions)
	}
	if h.config.ReferrerPolicy != "" {
		w.Header().Set("Referrer-Policy", h.config.ReferrerPolicy)
	}
	if h.config.CacheControl != "" {
		w.Header().Set("Cache-Control", h.config.CacheControl)
	}
}

// Middleware returns the HTTP middleware function.
func (h *HeadersMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.Apply(w)
		next.ServeHTTP(w, r)
	})
}
