package middleware

import (
	"fmt"
	"net/http"

	"github.com/sprinkle-fairydust/site-api/internal/config"
)

type header struct {
	name, value string
}

// SecurityHeaders sets the configured security headers on every response.
// The header set is resolved once from cfg.
func SecurityHeaders(cfg *config.SecurityConfig) func(http.Handler) http.Handler {
	headers := securityHeaderSet(cfg)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			for _, hdr := range headers {
				h.Set(hdr.name, hdr.value)
			}
			h.Del("X-Powered-By")
			h.Del("Server")

			next.ServeHTTP(w, r)
		})
	}
}

func securityHeaderSet(cfg *config.SecurityConfig) []header {
	var headers []header
	add := func(name, value string) {
		if value != "" {
			headers = append(headers, header{name, value})
		}
	}

	if cfg.ContentTypeNosniff {
		add("X-Content-Type-Options", "nosniff")
	}
	add("X-Frame-Options", cfg.FrameOptions)
	add("Content-Security-Policy", cfg.ContentSecurityPolicy)
	add("Referrer-Policy", cfg.ReferrerPolicy)
	add("Permissions-Policy", cfg.PermissionsPolicy)

	if cfg.EnableHSTS {
		hsts := fmt.Sprintf("max-age=%d", cfg.HSTSMaxAge)
		if cfg.HSTSIncludeSubdomains {
			hsts += "; includeSubDomains"
		}
		if cfg.HSTSPreload {
			hsts += "; preload"
		}
		add("Strict-Transport-Security", hsts)
	}
	return headers
}

// documentHeaders only apply to rendered pages
var documentHeaders = []string{
	"Content-Security-Policy",
	"X-Frame-Options",
	"Permissions-Policy",
	"Strict-Transport-Security",
}

// ImageResponse drops the page-oriented security headers for routes that
// answer with an image, such as the email open pixel. Mail client image
// proxies ignore them and some reject oversized header sets.
func ImageResponse(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, h := range documentHeaders {
			w.Header().Del(h)
		}
		next.ServeHTTP(w, r)
	})
}
