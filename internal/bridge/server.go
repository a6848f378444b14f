package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/tychio/da-rmmv-plugins/internal/config"
	"github.com/tychio/da-rmmv-plugins/internal/hostmap"
	"github.com/tychio/da-rmmv-plugins/internal/logger"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = pongWait * 9 / 10
)

// Server serves the host bridge on /ws.
type Server struct {
	cfg      config.BridgeConfig
	svc      Services
	handlers map[string]handlerFunc
	limiter  *Limiter
	upgrader websocket.Upgrader
	log      *slog.Logger

	mu    sync.Mutex
	conns map[uuid.UUID]*conn
}

// conn is one host connection. gorilla/websocket allows a single writer, so
// writes go through writeMu.
type conn struct {
	id      uuid.UUID
	ws      *websocket.Conn
	addr    string
	writeMu sync.Mutex
}

func (c *conn) send(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteJSON(v)
}

func (c *conn) ping() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

// New creates a bridge over svc. When svc.Quests is set, entering the active
// quest's map is broadcast as a "task.enter" event.
func New(cfg config.BridgeConfig, svc Services) *Server {
	s := &Server{
		cfg:     cfg,
		svc:     svc,
		limiter: NewLimiter(cfg.MaxConnections, cfg.MaxPerIP),
		log:     logger.With("bridge"),
		conns:   make(map[uuid.UUID]*conn),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			allowed := s.cfg.IsOriginAllowed(origin, r.Host)
			if !allowed {
				s.log.Warn("Bridge connection rejected - origin not allowed",
					"origin", origin,
					"host", r.Host,
					"remote_addr", r.RemoteAddr)
			}
			return allowed
		},
	}
	s.registerHandlers()

	if svc.Quests != nil {
		svc.Quests.OnEnter(func(mapID int, m *hostmap.MapData) {
			s.Broadcast(Event{Event: "task.enter", Data: map[string]any{
				"map_id": mapID,
				"task":   svc.Quests.Current(),
			}})
		})
	}
	return s
}

// Handler returns the HTTP handler serving /ws.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleUpgrade)
	return mux
}

// ListenAndServe serves until ctx is cancelled, then closes every
// connection and shuts the listener down.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Bridge listening", "address", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.closeAll()
	s.log.Info("Bridge stopped")
	return err
}

func (s *Server) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	addr := clientAddr(r)

	if !s.limiter.Acquire(addr) {
		s.log.Warn("Bridge connection rejected - limit exceeded",
			"remote_addr", r.RemoteAddr,
			"client_ip", addr)
		http.Error(w, "Too many connections. Please try again later.", http.StatusTooManyRequests)
		return
	}

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error("Bridge upgrade failed", "error", err)
		s.limiter.Release(addr)
		return
	}

	c := &conn{id: uuid.New(), ws: ws, addr: addr}
	s.mu.Lock()
	s.conns[c.id] = c
	s.mu.Unlock()

	go s.serveConn(c)
}

func (s *Server) serveConn(c *conn) {
	log := s.log.With("conn", c.id.String())
	log.Info("Host connected", "client_ip", c.addr)

	done := make(chan struct{})
	defer func() {
		close(done)
		s.mu.Lock()
		delete(s.conns, c.id)
		s.mu.Unlock()
		s.limiter.Release(c.addr)
		c.ws.Close()
		log.Info("Host disconnected")
	}()

	if s.cfg.MaxMessageSize > 0 {
		c.ws.SetReadLimit(s.cfg.MaxMessageSize)
	}
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})
	go s.keepAlive(c, done)

	if err := c.send(Event{Event: "hello", Data: map[string]any{"conn": c.id.String(), "ops": s.Ops()}}); err != nil {
		return
	}

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("Bridge read failed", "error", err)
			}
			return
		}
		c.ws.SetReadDeadline(time.Now().Add(pongWait))

		var req Request
		var resp Response
		if err := json.Unmarshal(data, &req); err != nil {
			resp = fail("", &badRequestError{msg: "malformed request: " + err.Error()})
		} else {
			resp = s.Dispatch(req)
		}
		if err := c.send(resp); err != nil {
			log.Warn("Bridge write failed", "error", err)
			return
		}
	}
}

func (s *Server) keepAlive(c *conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := c.ping(); err != nil {
				return
			}
		}
	}
}

// Broadcast sends ev to every connection.
func (s *Server) Broadcast(ev Event) {
	s.mu.Lock()
	conns := make([]*conn, 0, len(s.conns))
	for _, c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	for _, c := range conns {
		if err := c.send(ev); err != nil {
			s.log.Debug("Broadcast failed", "conn", c.id.String(), "error", err)
		}
	}
}

// Connections returns the number of open connections.
func (s *Server) Connections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

func (s *Server) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.conns {
		c.writeMu.Lock()
		c.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		c.writeMu.Unlock()
		c.ws.Close()
	}
}
