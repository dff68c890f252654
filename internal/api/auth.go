// SPDX-License-Identifier: MIT

package api

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/danibene/respiring/internal/log"
)

// authMiddleware enforces the configured API token. An empty token disables
// authentication, which is the expected setup for localhost use.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := s.cfg.API.Token
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		reqToken := extractToken(r)
		if reqToken == "" {
			log.WithComponentFromContext(r.Context(), "auth").Warn().
				Str("event", "auth.missing_token").
				Msg("authorization header missing")
			writeUnauthorized(w)
			return
		}

		if !authorizeToken(reqToken, token) {
			log.WithComponentFromContext(r.Context(), "auth").Warn().
				Str("event", "auth.invalid_token").
				Msg("invalid api token")
			writeUnauthorized(w)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// extractToken pulls the credential from the request. Precedence:
//
//  1. Authorization: Bearer <token>
//  2. Header: X-API-Token (legacy)
//
// Query parameters are never accepted; tokens in URLs leak through proxies
// and browser history.
func extractToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(auth[len("Bearer "):])
	}
	if t := r.Header.Get("X-API-Token"); t != "" {
		return t
	}
	return ""
}

// authorizeToken compares tokens in constant time to prevent timing attacks.
func authorizeToken(got, expected string) bool {
	if strings.TrimSpace(expected) == "" || got == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(expected)) == 1
}
