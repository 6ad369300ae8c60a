package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	pkglog "SharedBoard/internal/log"
	"SharedBoard/internal/wire"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // participants connect from anywhere on the LAN
	},
}

// Server exposes a hub over HTTP.
type Server struct {
	hub *Hub
}

func NewServer(hub *Hub) *Server {
	return &Server{hub: hub}
}

// RegisterRoutes mounts the websocket endpoint and the health check.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws", s.HandleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
}

// ListenAndServe serves the relay on addr until ctx is done, then shuts
// the listener down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an already bound listener, which it closes.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)

	srv := &http.Server{
		Handler:      pkglog.HTTPMiddleware(s.hub.log)(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.hub.log.Info().Str("addr", ln.Addr().String()).Msg("relay listening")
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// HandleWebSocket upgrades the request and runs the client's pumps.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	l := pkglog.Ctx(r.Context())

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		l.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := newClient(uuid.New().String(), s.hub, conn)
	if !s.hub.Register(client) {
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump(s.handleFrame, s.handleGone)
}

// handleFrame stamps the sender id into the frame and fans it out to
// everyone else.
func (s *Server) handleFrame(c *Client, data []byte) {
	stamped, err := wire.Stamp(data, c.ID)
	if err != nil {
		s.hub.log.Warn().Err(err).Str(pkglog.FieldClientID, c.ID).Int(pkglog.FieldSize, len(data)).Msg("dropping frame")
		return
	}
	s.hub.Broadcast(context.Background(), stamped, c.ID)
}

// handleGone closes whatever stroke the departed client left open.
func (s *Server) handleGone(c *Client) {
	s.hub.Broadcast(context.Background(), wire.Departure(c.ID), c.ID)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"clients": s.hub.Count(),
	})
}
