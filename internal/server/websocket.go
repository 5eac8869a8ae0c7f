package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/MeKo-Tech/bubblex/internal/pipeline"
	"github.com/gorilla/websocket"
)

const (
	wsReadTimeout  = 60 * time.Second
	wsPingInterval = 30 * time.Second
	wsWriteTimeout = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// wsConn serializes writes to a websocket connection.
type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsConn) send(msg WSMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// ocrWebSocketHandler accepts OCRRequest messages and streams progress
// frames followed by a result or error frame per request.
func (s *Server) ocrWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Failed to upgrade connection to WebSocket", "error", err)
		return
	}
	defer func() { _ = conn.Close() }()

	websocketConnections.Inc()
	defer websocketConnections.Dec()
	slog.Info("WebSocket connection established", "remote_addr", r.RemoteAddr)

	conn.SetReadLimit(s.cfg.MaxUploadMB * 1024 * 1024)
	_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	})

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(wsPingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteTimeout)); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	wc := &wsConn{conn: conn}
	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("WebSocket read error", "error", err)
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}
		if err := s.handleWebSocketMessage(r, wc, data); err != nil {
			slog.Debug("WebSocket write failed", "error", err)
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	}
}

func (s *Server) handleWebSocketMessage(r *http.Request, wc *wsConn, data []byte) error {
	var req OCRRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return wc.send(WSMessage{Type: "error", Error: "Invalid JSON: " + err.Error()})
	}

	progress := pipeline.ProgressFunc(func(stage pipeline.Stage, current, total int) {
		if err := wc.send(WSMessage{Type: "progress", Stage: stage, Current: current, Total: total}); err != nil {
			slog.Debug("Dropped progress frame", "error", err)
		}
	})

	resp, err := s.runOCR(r.Context(), req, progress)
	if err != nil {
		var re *requestError
		if !errors.As(err, &re) {
			slog.Error("OCR processing failed", "error", err)
		}
		return wc.send(WSMessage{Type: "error", Error: err.Error()})
	}
	return wc.send(WSMessage{Type: "result", OCRResponse: resp})
}
