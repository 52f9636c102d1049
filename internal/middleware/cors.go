package middleware

import (
	"net/http"
	"strings"
)

// CORS adds Access-Control headers for configured origins and short-circuits
// OPTIONS preflight requests. A "*" entry allows every origin; otherwise the
// request origin is reflected back only when it matches the allow list.
func CORS(allowedOrigins []string, next http.Handler) http.Handler {
	allowAll := false
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if origin == "*" {
			allowAll = true
			break
		}
		allowed[strings.ToLower(origin)] = struct{}{}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" {
			_, match := allowed[strings.ToLower(origin)]
			if allowAll {
				w.Header().Set("Access-Control-Allow-Origin", "*")
			} else if match {
				w.Header().Set("Access-Control-Allow-Origin", origin)
			}
			if allowAll || match {
				w.Header().Set("Vary", "Origin")
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
				w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,PATCH,DELETE,OPTIONS")
			}
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
