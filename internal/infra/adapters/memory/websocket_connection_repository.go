package memory

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ostanin/huddle/internal/application/constant"
	"github.com/ostanin/huddle/internal/application/metric"
)

const (
	writeWait      = 10 * time.Second
	sendBufferSize = 256
)

// WebsocketConnectionRepository tracks the live connections by session id.
// Write on a session that is no longer connected is a silent no-op: the
// signaling channel is best-effort and the sender is never notified.
type WebsocketConnectionRepository interface {
	Add(uuid.UUID, *websocket.Conn)
	Remove(sessionID uuid.UUID)

	Write(uuid.UUID, any)
}

// wsClient owns the only goroutine doing data writes on its connection.
// Callers enqueue through the buffered send channel and never touch the
// socket, so a stalled peer can block at most its own pump.
type wsClient struct {
	conn *websocket.Conn

	send chan any
	done chan struct{}
	once sync.Once
}

func (c *wsClient) stop() {
	c.once.Do(func() { close(c.done) })
}

func (c *wsClient) writePump(sessionID uuid.UUID) {
	for {
		select {
		case <-c.done:
			return
		case payload := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}

			if err := c.conn.WriteJSON(payload); err != nil {
				// Failure stays on this recipient. Disconnect detection
				// belongs to the read loop, which removes the session.
				slog.Error(
					"write to websocket",
					slog.Any(constant.Error, err),
					slog.Any(constant.SessionID, sessionID),
				)
				return
			}
		}
	}
}

type wsConnectionRepository struct {
	// wsConns хранит map[session_id]*wsClient
	wsConns map[uuid.UUID]*wsClient

	mu sync.RWMutex
}

func NewWSConnectionRepository() WebsocketConnectionRepository {
	return &wsConnectionRepository{
		wsConns: make(map[uuid.UUID]*wsClient, 10),
	}
}

func (w *wsConnectionRepository) Add(sessionID uuid.UUID, conn *websocket.Conn) {
	client := &wsClient{
		conn: conn,
		send: make(chan any, sendBufferSize),
		done: make(chan struct{}),
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.wsConns[sessionID] = client

	go client.writePump(sessionID)

	metric.IncrementWSActiveConnections()
}

func (w *wsConnectionRepository) Remove(sessionID uuid.UUID) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if client, exists := w.wsConns[sessionID]; exists {
		client.stop()
		delete(w.wsConns, sessionID)

		metric.DecrementWSActiveConnections()
	}
}

// Write enqueues payload for sessionID and never blocks. A recipient whose
// buffer is full has stopped reading; its payloads are dropped so that
// fan-out to everyone else keeps moving.
func (w *wsConnectionRepository) Write(sessionID uuid.UUID, payload any) {
	client, ok := w.getClient(sessionID)
	if !ok {
		return
	}

	select {
	case client.send <- payload:
	case <-client.done:
	default:
		slog.Warn(
			"slow websocket consumer, payload dropped",
			slog.Any(constant.SessionID, sessionID),
		)
	}
}

func (w *wsConnectionRepository) getClient(sessionID uuid.UUID) (*wsClient, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	client, ok := w.wsConns[sessionID]
	return client, ok
}
