package middleware

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
)

// CORS answers browser preflights and decorates responses for allowed origins.
// An origin of "*" admits any origin; with credentials enabled the request
// origin is echoed instead of the literal wildcard. Header values are joined
// once when the middleware is built.
func CORS(cfg *CORSConfig) Func {
	if !cfg.Enabled || len(cfg.Origins) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	anyOrigin := slices.Contains(cfg.Origins, "*")
	methods := strings.Join(cfg.AllowedMethods, ", ")
	headers := strings.Join(cfg.AllowedHeaders, ", ")
	exposed := strings.Join(cfg.ExposedHeaders, ", ")

	var maxAge string
	if cfg.MaxAge > 0 {
		maxAge = strconv.Itoa(cfg.MaxAge)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Add("Vary", "Origin")

			origin := r.Header.Get("Origin")
			preflight := r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != ""

			if origin != "" && (anyOrigin || slices.Contains(cfg.Origins, origin)) {
				allow := origin
				if anyOrigin && !cfg.AllowCredentials {
					allow = "*"
				}
				h.Set("Access-Control-Allow-Origin", allow)
				if cfg.AllowCredentials {
					h.Set("Access-Control-Allow-Credentials", "true")
				}
				if exposed != "" {
					h.Set("Access-Control-Expose-Headers", exposed)
				}
				if preflight {
					h.Set("Access-Control-Allow-Methods", methods)
					h.Set("Access-Control-Allow-Headers", headers)
					if maxAge != "" {
						h.Set("Access-Control-Max-Age", maxAge)
					}
				}
			}

			if preflight {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
