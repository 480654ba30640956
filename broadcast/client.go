package broadcast

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// PushClient binds one websocket connection to one or more subscribers and
// serializes every write through a single pump. Closing the connection, or
// any pump error, detaches every subscription immediately.
type PushClient struct {
	conn   *websocket.Conn
	logger *slog.Logger

	mu   sync.Mutex
	subs []*Subscriber

	out       chan UpdateMessage
	done      chan struct{}
	closeOnce sync.Once
}

func NewPushClient(conn *websocket.Conn, logger *slog.Logger) *PushClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &PushClient{
		conn:   conn,
		logger: logger,
		out:    make(chan UpdateMessage, 32),
		done:   make(chan struct{}),
	}
}

// Attach starts forwarding a subscriber's stream onto the connection.
func (c *PushClient) Attach(sub *Subscriber) {
	c.mu.Lock()
	c.subs = append(c.subs, sub)
	c.mu.Unlock()
	go c.forward(sub)
}

// Run starts the read and write pumps. It returns immediately; the pumps
// run until the peer disconnects or a write fails.
func (c *PushClient) Run() {
	go c.writePump()
	go c.readPump()
}

// Close tears the connection down and unsubscribes from every topic.
func (c *PushClient) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.mu.Lock()
		subs := c.subs
		c.subs = nil
		c.mu.Unlock()
		for _, sub := range subs {
			sub.Close()
		}
		_ = c.conn.Close()
	})
}

// forward drains one subscriber into the shared outbound channel. The
// subscriber queue stays bounded; only this goroutine may block, never the
// publisher.
func (c *PushClient) forward(sub *Subscriber) {
	for {
		select {
		case msg := <-sub.Out():
			select {
			case c.out <- msg:
			case <-c.done:
				return
			}
		case <-sub.ResyncSignal():
			select {
			case c.out <- resyncMessage(sub.TournamentID, sub.Topic):
			case <-c.done:
				return
			}
		case <-sub.Done():
			return
		case <-c.done:
			return
		}
	}
}

func (c *PushClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()
	for {
		select {
		case msg := <-c.out:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				c.logger.Debug("push write failed", slog.Any("error", err))
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

// readPump discards inbound frames; the stream is one-way. It exists to
// service pong handling and to notice disconnects promptly.
func (c *PushClient) readPump() {
	defer c.Close()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("push connection closed unexpectedly", slog.Any("error", err))
			}
			return
		}
	}
}
