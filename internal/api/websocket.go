package api

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"github.com/cobol-converter/backend/internal/jobs"
)

// WebSocket message types for the job watch protocol
const (
	// Client -> Server messages
	MsgTypePing = "ping"

	// Server -> Client messages
	MsgTypePong     = "pong"
	MsgTypeStatus   = "job:status"
	MsgTypeComplete = "job:complete"
	MsgTypeError    = "error"
)

// WSMessage is the envelope of every WebSocket message
type WSMessage struct {
	Type      string          `json:"type"`
	ID        string          `json:"id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// WSErrorResponse is the payload of an error message
type WSErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// JobStreamHandler pushes job status over WebSocket
type JobStreamHandler interface {
	HandleJobSocket(c echo.Context) error
}

// WebSocketHandler streams conversion job status to WebSocket clients
type WebSocketHandler struct {
	runner   JobRunner
	upgrader websocket.Upgrader
	interval time.Duration
}

// NewWebSocketHandler creates a handler polling job state every interval
func NewWebSocketHandler(runner JobRunner, interval time.Duration) *WebSocketHandler {
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	return &WebSocketHandler{
		runner:   runner,
		interval: interval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 16 * 1024,
		},
	}
}

// wsConn serializes writes; the read loop answers pings concurrently.
type wsConn struct {
	*websocket.Conn
	mu sync.Mutex
}

func (c *wsConn) send(msg WSMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	msg.Timestamp = time.Now().UnixMilli()
	return c.WriteJSON(msg)
}

// HandleJobSocket sends a job:status message whenever the job changes state
// and a final job:complete message once it has finished, then closes.
func (wsh *WebSocketHandler) HandleJobSocket(c echo.Context) error {
	id := c.Param("id")
	if _, ok := wsh.runner.Get(id); !ok {
		return NewNotFoundError("job", id)
	}

	raw, err := wsh.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	ws := &wsConn{Conn: raw}
	defer ws.Close()

	closed := make(chan struct{})
	go wsh.readLoop(ws, closed)

	ticker := time.NewTicker(wsh.interval)
	defer ticker.Stop()

	var last jobs.Status
	for {
		job, ok := wsh.runner.Get(id)
		if !ok {
			wsh.sendError(ws, "job not found: "+id, "NOT_FOUND")
			return nil
		}

		if job.Done() {
			ws.send(WSMessage{Type: MsgTypeComplete, ID: id, Payload: mustJSON(job)})
			ws.mu.Lock()
			ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, string(job.Status)))
			ws.mu.Unlock()
			return nil
		}
		if job.Status != last {
			if err := ws.send(WSMessage{Type: MsgTypeStatus, ID: id, Payload: mustJSON(job)}); err != nil {
				return nil
			}
			last = job.Status
		}

		select {
		case <-closed:
			return nil
		case <-c.Request().Context().Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (wsh *WebSocketHandler) readLoop(ws *wsConn, closed chan<- struct{}) {
	defer close(closed)
	for {
		var msg WSMessage
		if err := ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Warnf("[WebSocket] Connection error: %v", err)
			}
			return
		}

		switch msg.Type {
		case MsgTypePing:
			ws.send(WSMessage{Type: MsgTypePong})
		default:
			wsh.sendError(ws, "Unknown message type: "+msg.Type, "INVALID_TYPE")
		}
	}
}

func (wsh *WebSocketHandler) sendError(ws *wsConn, message, code string) {
	if err := ws.send(WSMessage{
		Type:    MsgTypeError,
		Payload: mustJSON(WSErrorResponse{Message: message, Code: code}),
	}); err != nil {
		log.Warnf("[WebSocket] Failed to send message: %v", err)
	}
}

func mustJSON(v interface{}) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		return []byte("{}")
	}
	return data
}

var _ JobStreamHandler = (*WebSocketHandler)(nil)
