package http

import (
	"net/http"
	"path"
)

// corsMiddleware allows any origin to call the proxy. userinfo additionally
// accepts an Authorization header.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		if path.Base(r.URL.Path) == "userinfo" {
			h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		} else {
			h.Set("Access-Control-Allow-Headers", "Content-Type")
		}
		next.ServeHTTP(w, r)
	})
}

func preflightHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
