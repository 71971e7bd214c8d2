// Package server exposes a local WebSocket control endpoint so external
// tools can drive the browser: navigate, move through history, and manage
// tabs remotely.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/lotas/blattwerk/internal/applog"
	"nhooyr.io/websocket"
)

// Command is a remote-control request from a connected client.
type Command struct {
	Type  string `json:"type"`
	URL   string `json:"url,omitempty"`
	Index *int   `json:"index,omitempty"`
}

// StateTab is one tab in a state payload.
type StateTab struct {
	ID           string `json:"id"`
	URL          string `json:"url"`
	Title        string `json:"title"`
	Loading      bool   `json:"loading"`
	CanGoBack    bool   `json:"can_go_back"`
	CanGoForward bool   `json:"can_go_forward"`
	Active       bool   `json:"active"`
}

// State is the full tab state pushed to the client.
type State struct {
	Type   string     `json:"type"`
	Active int        `json:"active"`
	Tabs   []StateTab `json:"tabs"`
}

// ErrorMsg reports a rejected command back to the client.
type ErrorMsg struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// Server manages the WebSocket connection to a control client.
type Server struct {
	port    int
	cmds    chan Command
	mu      sync.Mutex
	conn    *websocket.Conn
	connCtx context.Context
}

// New creates a new Server. Port 0 means the caller manages the listener.
func New(port int) *Server {
	return &Server{
		port: port,
		cmds: make(chan Command, 64),
	}
}

// Port returns the configured port.
func (s *Server) Port() int {
	return s.port
}

// Commands returns the channel of validated commands from the client.
func (s *Server) Commands() <-chan Command {
	return s.cmds
}

// Connected reports whether a control client is connected.
func (s *Server) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

// SendState pushes the current tab state to the connected client.
func (s *Server) SendState(st State) error {
	st.Type = "state"
	return s.send(st)
}

// SendError reports a rejected command to the connected client.
func (s *Server) SendError(text string) error {
	return s.send(ErrorMsg{Type: "error", Error: text})
}

func (s *Server) send(v any) error {
	s.mu.Lock()
	conn := s.conn
	ctx := s.connCtx
	s.mu.Unlock()

	if conn == nil {
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return conn.Write(ctx, websocket.MessageText, data)
}

// Handler returns an http.Handler that accepts WebSocket upgrades. Only one
// client is served at a time; a new connection replaces the old one.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			applog.Error("ws.accept", err)
			return
		}

		conn.SetReadLimit(256 << 10) // commands are tiny; anything larger is a broken client

		ctx := r.Context()
		s.mu.Lock()
		if s.conn != nil {
			applog.Info("ws.replaced")
			s.conn.CloseNow()
		}
		s.conn = conn
		s.connCtx = ctx
		s.mu.Unlock()

		applog.Info("ws.connected", "remote", r.RemoteAddr)

		defer func() {
			s.mu.Lock()
			if s.conn == conn {
				s.conn = nil
				s.connCtx = nil
			}
			s.mu.Unlock()
			conn.CloseNow()
			applog.Info("ws.disconnected")
		}()

		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				return
			}
			cmd, err := ParseCommand(data)
			if err != nil {
				applog.Error("ws.parse", err)
				s.SendError(err.Error())
				continue
			}
			applog.Info("ws.recv", "type", cmd.Type)
			select {
			case s.cmds <- cmd:
			default:
				applog.Error("ws.queue", fmt.Errorf("command queue full, dropping %s", cmd.Type))
			}
		}
	})
}

// ListenAndServe starts the control server on the configured port. Binds to
// loopback only.
func (s *Server) ListenAndServe(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/", s.Handler())

	addr := fmt.Sprintf("127.0.0.1:%d", s.port)
	applog.Info("server.start", "addr", addr)
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		srv.Close()
	}()

	return srv.ListenAndServe()
}
