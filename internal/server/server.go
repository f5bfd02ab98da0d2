// Package server serves viewports, paths and level metadata to websocket
// clients.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/lawnchairsociety/mazeforge/internal/config"
	"github.com/lawnchairsociety/mazeforge/internal/level"
	"github.com/lawnchairsociety/mazeforge/internal/logger"
)

const shutdownTimeout = 5 * time.Second

// Server answers requests about a single level.
type Server struct {
	level       *level.Level
	cfg         config.ServerConfig
	log         *slog.Logger
	limiter     *ConnLimiter
	badRequests *BadRequestLimiter
	upgrader    websocket.Upgrader
	started     time.Time

	mu       sync.Mutex
	sessions map[string]*session
	wg       sync.WaitGroup
}

// New builds a server for lvl. A nil log falls back to the package logger.
func New(lvl *level.Level, cfg config.ServerConfig, log *slog.Logger) *Server {
	if log == nil {
		log = logger.With("component", "server")
	}
	s := &Server{
		level:       lvl,
		cfg:         cfg,
		log:         log,
		limiter:     NewConnLimiter(cfg.Connections),
		badRequests: NewBadRequestLimiter(cfg.RateLimit),
		started:     time.Now(),
		sessions:    make(map[string]*session),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

// Handler routes /ws and /healthz.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleUpgrade)
	mux.HandleFunc("/healthz", s.handleHealth)
	return mux
}

// ListenAndServe listens on addr and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts the
// HTTP server down, closes open sessions and waits for them to finish.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Server listening", "addr", ln.Addr().String())
		errCh <- httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		s.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := httpServer.Shutdown(shutdownCtx)
	s.Close()
	if err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.log.Info("Server stopped")
	return nil
}

// Close disconnects every session and waits for their goroutines.
func (s *Server) Close() {
	s.mu.Lock()
	for _, sess := range s.sessions {
		sess.close(websocket.CloseGoingAway, "server shutting down")
	}
	s.mu.Unlock()

	s.wg.Wait()
	s.badRequests.Stop()
}

// Sessions returns the number of connected clients.
func (s *Server) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	allowed := s.cfg.WebSocket.IsOriginAllowed(origin, r.Host)
	if !allowed {
		s.log.Warn("WebSocket connection rejected - origin not allowed",
			"origin", origin,
			"host", r.Host,
			"remote_addr", r.RemoteAddr)
	}
	return allowed
}

func (s *Server) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	ip := clientIP(r)

	if locked, left := s.badRequests.Locked(ip); locked {
		s.log.Warn("WebSocket connection rejected - client locked out", "client_ip", ip, "remaining", left)
		w.Header().Set("Retry-After", strconv.Itoa(int(left.Seconds())+1))
		http.Error(w, "Too many bad requests. Please try again later.", http.StatusTooManyRequests)
		return
	}
	if !s.limiter.TryAcquire(ip) {
		s.log.Warn("WebSocket connection rejected - limit exceeded", "remote_addr", r.RemoteAddr, "client_ip", ip)
		http.Error(w, "Too many connections. Please try again later.", http.StatusTooManyRequests)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error("WebSocket upgrade failed", "error", err, "client_ip", ip)
		s.limiter.Release(ip)
		return
	}

	sess := newSession(s, conn, uuid.NewString(), ip)
	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.limiter.Release(ip)
		defer func() {
			s.mu.Lock()
			delete(s.sessions, sess.id)
			s.mu.Unlock()
		}()
		sess.run()
	}()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	total, ips := s.limiter.Stats()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":      "ok",
		"uptime":      time.Since(s.started).Round(time.Second).String(),
		"connections": total,
		"client_ips":  ips,
		"cols":        s.level.Cols(),
		"rows":        s.level.Rows(),
	})
}
