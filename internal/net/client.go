package net

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	pkglog "SharedBoard/internal/log"

	"github.com/coder/websocket"
	"github.com/rs/zerolog"
)

var (
	// ErrNotConnected is returned by Send while no connection is up.
	ErrNotConnected = errors.New("net: not connected")
	// ErrAlreadyConnected is returned by Connect on a live client.
	ErrAlreadyConnected = errors.New("net: already connected")
	// ErrClosed is returned by Connect after Close.
	ErrClosed = errors.New("net: client closed")
)

// Config controls how the client talks to the relay.
// A zero timeout disables it.
type Config struct {
	URL              string
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
	SendBuffer       int
	ReadLimit        int64
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		HandshakeTimeout: 10 * time.Second,
		WriteTimeout:     10 * time.Second,
		SendBuffer:       256,
		ReadLimit:        64 * 1024,
	}
}

// Client is one participant's connection to the relay. Frames are opaque
// bytes here; encoding is the caller's business.
type Client struct {
	cfg Config
	log zerolog.Logger

	mu        sync.Mutex
	state     ConnectionState
	ws        *websocket.Conn
	writeCh   chan []byte
	runCtx    context.Context
	cancel    context.CancelFunc
	onReceive func([]byte)
	onState   func(ConnectionState)
}

func NewClient(cfg Config) *Client {
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = DefaultConfig().SendBuffer
	}
	return &Client{
		cfg: cfg,
		log: pkglog.L().With().Str(pkglog.FieldComponent, "client").Logger(),
	}
}

// SetLogger overrides the logger.
func (c *Client) SetLogger(l zerolog.Logger) { c.log = l }

// OnReceive registers the callback for inbound frames. It runs on the read
// loop goroutine and must not block for long.
func (c *Client) OnReceive(fn func(data []byte)) {
	c.mu.Lock()
	c.onReceive = fn
	c.mu.Unlock()
}

// OnState registers the callback for connection state changes.
func (c *Client) OnState(fn func(ConnectionState)) {
	c.mu.Lock()
	c.onState = fn
	c.mu.Unlock()
}

// State returns the current connection state.
func (c *Client) State() ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connect dials the relay and starts the read and write loops. A client
// that lost its connection may Connect again; nothing sent while it was
// down is replayed.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	switch c.state {
	case StateConnected, StateConnecting:
		c.mu.Unlock()
		return ErrAlreadyConnected
	case StateClosed:
		c.mu.Unlock()
		return ErrClosed
	}
	c.mu.Unlock()

	if c.cfg.URL == "" {
		return errors.New("net: empty URL")
	}
	c.setState(StateConnecting)

	dialCtx := ctx
	if c.cfg.HandshakeTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, c.cfg.HandshakeTimeout)
		defer cancel()
	}
	ws, _, err := websocket.Dial(dialCtx, c.cfg.URL, nil)
	if err != nil {
		c.setState(StateDisconnected)
		return fmt.Errorf("dial %s: %w", c.cfg.URL, err)
	}
	if c.cfg.ReadLimit > 0 {
		ws.SetReadLimit(c.cfg.ReadLimit)
	}

	runCtx, cancel := context.WithCancel(context.Background())
	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		cancel()
		ws.CloseNow()
		return ErrClosed
	}
	c.ws = ws
	c.writeCh = make(chan []byte, c.cfg.SendBuffer)
	c.runCtx, c.cancel = runCtx, cancel
	c.mu.Unlock()
	c.setState(StateConnected)
	c.log.Info().Str("url", c.cfg.URL).Msg("connected to relay")

	go c.readLoop(runCtx, ws)
	go c.writeLoop(runCtx, ws, c.writeCh)
	return nil
}

// Send queues one frame for the write loop. It blocks while the queue is
// full, until ctx is done or the connection drops.
func (c *Client) Send(ctx context.Context, data []byte) error {
	c.mu.Lock()
	if c.state != StateConnected {
		c.mu.Unlock()
		return ErrNotConnected
	}
	ch, done := c.writeCh, c.runCtx.Done()
	c.mu.Unlock()

	select {
	case ch <- data:
		return nil
	case <-done:
		return ErrNotConnected
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close shuts the client down for good.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		return nil
	}
	c.state = StateClosed
	ws, cancel := c.ws, c.cancel
	c.ws = nil
	c.mu.Unlock()

	var err error
	if ws != nil {
		err = ws.Close(websocket.StatusNormalClosure, "client close")
	}
	if cancel != nil {
		cancel()
	}
	c.notify(StateClosed)
	return err
}

func (c *Client) readLoop(ctx context.Context, ws *websocket.Conn) {
	for {
		typ, data, err := ws.Read(ctx)
		if err != nil {
			if !isExpectedDisconnect(ctx, err) {
				c.log.Warn().Err(err).Msg("read loop exit")
			}
			c.drop(ws)
			return
		}
		if typ != websocket.MessageText {
			continue
		}
		c.mu.Lock()
		fn := c.onReceive
		c.mu.Unlock()
		if fn != nil {
			fn(data)
		}
	}
}

func (c *Client) writeLoop(ctx context.Context, ws *websocket.Conn, ch <-chan []byte) {
	for {
		select {
		case data := <-ch:
			if err := c.write(ctx, ws, data); err != nil {
				if !isExpectedDisconnect(ctx, err) {
					c.log.Warn().Err(err).Msg("write loop exit")
				}
				c.drop(ws)
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (c *Client) write(ctx context.Context, ws *websocket.Conn, data []byte) error {
	if c.cfg.WriteTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.WriteTimeout)
		defer cancel()
	}
	return ws.Write(ctx, websocket.MessageText, data)
}

// drop tears down ws after a read or write failure. It is a no-op when ws
// is no longer the live connection.
func (c *Client) drop(ws *websocket.Conn) {
	c.mu.Lock()
	if c.ws != ws || c.state != StateConnected {
		c.mu.Unlock()
		return
	}
	c.ws = nil
	cancel := c.cancel
	c.mu.Unlock()

	cancel()
	ws.CloseNow()
	c.setState(StateDisconnected)
	c.log.Info().Msg("disconnected from relay")
}

func (c *Client) setState(s ConnectionState) {
	c.mu.Lock()
	if c.state == StateClosed || c.state == s {
		c.mu.Unlock()
		return
	}
	c.state = s
	c.mu.Unlock()
	c.notify(s)
}

func (c *Client) notify(s ConnectionState) {
	c.mu.Lock()
	fn := c.onState
	c.mu.Unlock()
	if fn != nil {
		fn(s)
	}
}

func isExpectedDisconnect(ctx context.Context, err error) bool {
	if err == nil {
		return false
	}
	if ctx != nil && ctx.Err() != nil {
		return true
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
		return true
	}
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return true
	default:
		return false
	}
}
