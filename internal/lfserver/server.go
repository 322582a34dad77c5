package lfserver

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"
)

// Config configures a Server.
type Config struct {
	// Addr, Port are combined into the listen address; Addr may be empty
	// to bind all interfaces.
	Addr string
	Port int

	// Secret signs issued JWTs. Mixed with the operator's password hash,
	// so rotating the password also invalidates old tokens.
	Secret []byte

	Creds Credentials

	// Store persists compiled lexicons. Defaults to an in-memory Store if
	// nil.
	Store Store

	// UnauthDelay slows down 401/403/500 responses to deprioritize bad
	// traffic; defaults to one second.
	UnauthDelay time.Duration
}

// Server serves the lexforge HTTP API.
type Server struct {
	addr string
	h    http.Handler
}

// New builds a Server from cfg, ready to ListenAndServe.
func New(cfg Config) (*Server, error) {
	if len(cfg.Secret) == 0 {
		return nil, fmt.Errorf("lfserver: a non-empty token secret is required")
	}
	if cfg.Creds.Username == "" {
		return nil, fmt.Errorf("lfserver: credentials with a non-empty username are required")
	}

	store := cfg.Store
	if store == nil {
		store = NewMemStore()
	}
	unauthDelay := cfg.UnauthDelay
	if unauthDelay == 0 {
		unauthDelay = time.Second
	}

	api := API{Store: store, Secret: cfg.Secret, Creds: cfg.Creds, UnauthDelay: unauthDelay}

	return &Server{
		addr: net.JoinHostPort(cfg.Addr, strconv.Itoa(cfg.Port)),
		h:    api.Router(),
	}, nil
}

// ListenAndServe starts serving and blocks until the listener fails.
func (s *Server) ListenAndServe() error {
	return http.ListenAndServe(s.addr, s.h)
}
