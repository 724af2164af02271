package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/pokearena/arena/internal/logging"
	"github.com/pokearena/arena/internal/screen"
	"github.com/pokearena/arena/internal/session"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Browser terminals connect from arbitrary origins; identity comes
	// from the in-session email verification, not the Origin header.
	CheckOrigin: func(*http.Request) bool { return true },
}

// wsControl is the JSON control message browser clients send on the text
// channel. Binary messages carry raw terminal bytes.
type wsControl struct {
	Type string `json:"type"`
	Cols int    `json:"cols"`
	Rows int    `json:"rows"`
}

// startWebServer exposes the arena to browser terminals at /terminal.
func (s *Server) startWebServer(ctx context.Context) {
	mux := http.NewServeMux()
	mux.HandleFunc("/terminal", func(w http.ResponseWriter, r *http.Request) {
		s.handleWebSocket(ctx, w, r)
	})

	addr := net.JoinHostPort(s.cfg.Web.Host, fmt.Sprintf("%d", s.cfg.Web.Port))
	s.webSrv = &http.Server{Addr: addr, Handler: mux}

	logging.Info("WebSocket endpoint enabled",
		zap.String("web_addr", addr), zap.String("path", "/terminal"))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.webSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Error("Web server failed", zap.Error(err))
		}
	}()
}

// handleWebSocket upgrades the request and bridges the socket to a
// Supervisor, mirroring what serveSessionChannel does for SSH.
func (s *Server) handleWebSocket(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn("WebSocket upgrade failed",
			zap.String("remote_addr", r.RemoteAddr), zap.Error(err))
		return
	}
	remoteAddr := conn.RemoteAddr().String()
	logging.LogConnection(remoteAddr, "websocket_upgraded")

	inbound := make(chan []byte, inboundBuffer)
	resizes := make(chan session.Viewport, 4)
	out := screen.NewOutbound(s.cfg.Session.OutboundBuffer)

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// Reader: binary frames are terminal bytes, text frames are control
	// messages. Closing inbound tells the supervisor the peer is gone.
	go func() {
		defer close(inbound)
		for {
			msgType, data, err := conn.ReadMessage()
			if err != nil {
				logging.Debug("WebSocket read ended",
					zap.String("remote_addr", remoteAddr), zap.Error(err))
				return
			}
			switch msgType {
			case websocket.BinaryMessage:
				select {
				case inbound <- data:
				case <-out.Done():
					return
				}
			case websocket.TextMessage:
				var ctl wsControl
				if err := json.Unmarshal(data, &ctl); err != nil {
					logging.Debug("Bad control message",
						zap.String("remote_addr", remoteAddr), zap.Error(err))
					continue
				}
				if ctl.Type == "resize" && ctl.Cols > 0 && ctl.Rows > 0 {
					select {
					case resizes <- session.Viewport{Cols: ctl.Cols, Rows: ctl.Rows}:
					case <-out.Done():
						return
					}
				}
			}
		}
	}()

	// Writer: drains frames and keeps the connection alive with pings.
	go func() {
		pingTicker := time.NewTicker(pingPeriod)
		defer pingTicker.Stop()
		for {
			select {
			case frame := <-out.Recv():
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
					out.Close()
					return
				}
			case <-pingTicker.C:
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					out.Close()
					return
				}
			case <-out.Done():
				return
			}
		}
	}()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			_ = conn.Close()
			logging.LogConnection(remoteAddr, "websocket_closed")
		}()
		sup := NewSupervisor(&Conn{
			RemoteAddr: remoteAddr,
			Inbound:    inbound,
			Resizes:    resizes,
			Outbound:   out,
		}, s.deps)
		sup.Run(ctx)
	}()
}
