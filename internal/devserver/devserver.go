// Package devserver implements `vamosc watch`: an HTTP server that recompiles a .vamos source on
// every change and pushes the result to connected clients over a websocket, adapted from the
// teacher's own hub/service.go HTTP-plus-websocket server shape.
package devserver

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vamos-lang/vamosc/internal/compiler"
	"github.com/vamos-lang/vamosc/internal/config"
	"github.com/vamos-lang/vamosc/internal/devserver/auth"
	"github.com/vamos-lang/vamosc/internal/devserver/hub"
	"github.com/vamos-lang/vamosc/internal/vlog"
)

// Server recompiles cfg.Source on demand and broadcasts the result to every connected watcher.
type Server struct {
	cfg     config.Config
	hub     *hub.Hub
	checker *auth.Checker
	log     vlog.Logger
	upgrade websocket.Upgrader
}

// New constructs a Server for cfg, authorizing connections against tokenHashPath (empty disables
// authorization, matching auth.LoadChecker's own default-open behavior).
func New(cfg config.Config, tokenHashPath string, log vlog.Logger) (*Server, error) {
	checker, err := auth.LoadChecker(tokenHashPath)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = vlog.Root
	}
	return &Server{
		cfg:     cfg,
		hub:     hub.New(log),
		checker: checker,
		log:     log,
		upgrade: websocket.Upgrader{HandshakeTimeout: 10 * time.Second},
	}, nil
}

// Recompile runs the compiler once and broadcasts the result to every connected client.
func (s *Server) Recompile() {
	_, err := compiler.Compile(s.cfg)
	d := hub.Diagnostic{Source: s.cfg.Source, OK: err == nil}
	if err != nil {
		d.Message = err.Error()
	}
	s.hub.Broadcast(d)
}

// ServeHTTP upgrades authorized requests to a websocket connection and registers them with the
// hub; every later Recompile call pushes to it.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !s.checker.Allow(r.URL.Query().Get("token")) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	conn, err := s.upgrade.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "err", err)
		return
	}
	s.hub.Register(conn)
}

// Clients reports how many watchers are currently connected.
func (s *Server) Clients() int { return s.hub.Len() }
