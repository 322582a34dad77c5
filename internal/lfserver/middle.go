package lfserver

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
	"time"
)

// middleware wraps a handler with additional behavior, the same shape the
// teacher's server middleware uses.
type middleware func(next http.Handler) http.Handler

// requireAuth rejects any request without a valid Bearer token for creds,
// delaying the response briefly to deprioritize bad-auth traffic the same
// way an unauthenticated login attempt is deprioritized elsewhere.
func requireAuth(secret []byte, creds Credentials, unauthDelay time.Duration) middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			tok, err := bearerToken(req)
			if err != nil {
				r := jsonUnauthorized("", err.Error())
				time.Sleep(unauthDelay)
				r.writeResponse(w, req)
				return
			}
			if err := validateJWT(tok, secret, creds); err != nil {
				r := jsonUnauthorized("", "invalid token: %s", err.Error())
				time.Sleep(unauthDelay)
				r.writeResponse(w, req)
				return
			}
			next.ServeHTTP(w, req)
		})
	}
}

func bearerToken(req *http.Request) (string, error) {
	authHeader := strings.TrimSpace(req.Header.Get("Authorization"))
	if authHeader == "" {
		return "", fmt.Errorf("no authorization header present")
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(strings.TrimSpace(parts[0]), "bearer") {
		return "", fmt.Errorf("authorization header not in Bearer format")
	}
	return strings.TrimSpace(parts[1]), nil
}

// dontPanic recovers from a panic in the wrapped handler and turns it into
// an HTTP-500 instead of taking down the whole server.
func dontPanic() middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			defer panicTo500(w, req)
			next.ServeHTTP(w, req)
		})
	}
}

func panicTo500(w http.ResponseWriter, req *http.Request) {
	if panicErr := recover(); panicErr != nil {
		r := jsonInternalServerError("panic: %v\nSTACK TRACE: %s", panicErr, string(debug.Stack()))
		r.writeResponse(w, req)
	}
}
