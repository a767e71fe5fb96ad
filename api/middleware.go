package api

import (
	"firechat/auth"
	"firechat/services"
	"net/http"
	"strings"
)

// RequireAuth validates the bearer token of every request and injects the
// caller identity into the request context.
func RequireAuth(authService services.IAuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				respondError(w, http.StatusUnauthorized, "authorization token is missing")
				return
			}
			principal, err := authService.Authenticate(token)
			if err != nil {
				respondError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), principal, token)))
		})
	}
}

// Expecting the standard "Bearer <token>" format
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || strings.TrimSpace(token) == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}
