// Package relay fans stroke frames out between participants. It never
// interprets a frame beyond stamping the sender id into it.
package relay

import (
	"context"
	"sync"

	pkglog "SharedBoard/internal/log"

	"github.com/rs/zerolog"
)

// frame is one payload headed for every local client except Exclude.
type frame struct {
	data    []byte
	exclude string
}

// Hub tracks the connected clients of one relay instance. A single
// goroutine (Run) owns membership and delivery.
type Hub struct {
	cfg       Config
	log       zerolog.Logger
	backplane Backplane

	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan frame
	done       chan struct{}
	mu         sync.RWMutex
}

type HubOption func(*Hub)

// WithBackplane shares traffic with other relay instances.
func WithBackplane(b Backplane) HubOption {
	return func(h *Hub) { h.backplane = b }
}

// WithLogger replaces the global logger.
func WithLogger(l zerolog.Logger) HubOption {
	return func(h *Hub) { h.log = l }
}

func NewHub(cfg Config, opts ...HubOption) *Hub {
	h := &Hub{
		cfg:        cfg.withDefaults(),
		log:        pkglog.L(),
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan frame, 256),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.log = h.log.With().Str(pkglog.FieldComponent, "hub").Logger()
	return h
}

// Run is the hub's main loop. It returns when ctx is done, after closing
// every client's send queue.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)

	var remote <-chan []byte
	if h.backplane != nil {
		ch, err := h.backplane.Subscribe(ctx)
		if err != nil {
			return err
		}
		remote = ch
	}

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for id, c := range h.clients {
				close(c.send)
				delete(h.clients, id)
			}
			h.mu.Unlock()
			h.log.Info().Msg("hub stopped")
			return nil

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c.ID] = c
			h.mu.Unlock()
			h.log.Info().Str(pkglog.FieldClientID, c.ID).Msg("client registered")

		case c := <-h.unregister:
			h.remove(c)

		case f := <-h.broadcast:
			h.deliver(f)

		case data, ok := <-remote:
			if !ok {
				h.log.Warn().Msg("backplane subscription closed")
				remote = nil
				continue
			}
			h.deliver(frame{data: data})
		}
	}
}

// Register adds a client. It reports false once the hub has stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a client and closes its send queue.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Broadcast sends data to every local client except exclude, and to the
// other relay instances when a backplane is configured.
func (h *Hub) Broadcast(ctx context.Context, data []byte, exclude string) {
	select {
	case h.broadcast <- frame{data: data, exclude: exclude}:
	case <-h.done:
		return
	}
	if h.backplane != nil {
		if err := h.backplane.Publish(ctx, data); err != nil {
			h.log.Error().Err(err).Msg("backplane publish failed")
		}
	}
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) deliver(f frame) {
	h.mu.RLock()
	var slow []*Client
	for id, c := range h.clients {
		if id == f.exclude {
			continue
		}
		select {
		case c.send <- f.data:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.log.Warn().Str(pkglog.FieldClientID, c.ID).Msg("send buffer full, dropping client")
		h.remove(c)
	}
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	if cur, ok := h.clients[c.ID]; ok && cur == c {
		delete(h.clients, c.ID)
		close(c.send)
		h.mu.Unlock()
		h.log.Info().Str(pkglog.FieldClientID, c.ID).Msg("client unregistered")
		return
	}
	h.mu.Unlock()
}
