package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	staticmd "github.com/alnah/go-staticmd"
)

// Websocket timing.
const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// Message types pushed to and accepted from the browser.
const (
	MessageHello  = "hello"
	MessageFrame  = "frame"
	MessageError  = "error"
	MessageUpdate = "update"
)

// Message is one server-to-browser websocket message.
type Message struct {
	Type   string          `json:"type"`
	Client string          `json:"client,omitempty"`
	Frame  *staticmd.Frame `json:"frame,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// Request is one browser-to-server websocket message. Only MessageUpdate
// is understood; it replaces the whole document.
type Request struct {
	Type  string         `json:"type"`
	Input staticmd.Input `json:"input"`
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already answered the request.
		s.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := uuid.NewString()
	log := s.log.With("client", client)
	log.Info("preview client connected")
	defer log.Info("preview client disconnected")

	frames, unsubscribe := s.preview.Subscribe()
	defer unsubscribe()

	replies := make(chan Message, 4)
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.readLoop(conn, replies, log)
	}()

	s.writeLoop(conn, client, frames, replies, done, log)
	_ = conn.Close()
	<-done
}

// writeLoop is the only writer on conn. It returns when the client goes
// away, a write fails, or the preview closes.
func (s *Server) writeLoop(conn *websocket.Conn, client string, frames <-chan staticmd.Frame, replies <-chan Message, done <-chan struct{}, log *slog.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	write := func(msg Message) bool {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(msg); err != nil {
			log.Debug("websocket write failed", "error", err)
			return false
		}
		return true
	}

	if !write(Message{Type: MessageHello, Client: client}) {
		return
	}

	for {
		select {
		case frame, ok := <-frames:
			if !ok {
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "preview closed"))
				return
			}
			if !write(Message{Type: MessageFrame, Frame: &frame}) {
				return
			}
		case msg := <-replies:
			if !write(msg) {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

// readLoop applies update requests until the connection fails. Replies
// are dropped when the writer is not keeping up.
func (s *Server) readLoop(conn *websocket.Conn, replies chan<- Message, log *slog.Logger) {
	conn.SetReadLimit(MaxDocumentBytes)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	reply := func(text string) {
		select {
		case replies <- Message{Type: MessageError, Error: text}:
		default:
		}
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug("websocket read failed", "error", err)
			}
			return
		}

		var req Request
		if err := json.Unmarshal(data, &req); err != nil {
			reply("invalid JSON: " + err.Error())
			continue
		}
		switch req.Type {
		case MessageUpdate:
			if err := s.update(req.Input); err != nil {
				reply(err.Error())
			}
		default:
			reply("unknown message type " + req.Type)
		}
	}
}
