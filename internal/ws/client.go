package ws

import (
	"encoding/json"
	"time"

	"campus_essentials/models"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096
)

// Conn is the part of a websocket connection the pumps use.
type Conn interface {
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	ID string

	hub  *Hub
	conn Conn

	// Buffered channel of outbound frames.
	send chan []byte

	// identity from the session token
	authUserID uint

	// joined delivery group, 0 while anonymous; guarded by hub.mu
	userID uint
}

// inbound is a client to server frame.
type inbound struct {
	Type   string `json:"type"`
	UserID uint   `json:"user_id"`
}

func NewClient(hub *Hub, conn Conn, authUserID uint) *Client {
	return &Client{
		ID:         uuid.NewString(),
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, sendBuffer),
		authUserID: authUserID,
	}
}

// Serve registers the client and runs both pumps until the connection ends.
func (c *Client) Serve() {
	c.hub.Register(c)
	go c.WritePump()
	c.ReadPump()
}

// ReadPump pumps frames from the websocket connection to the hub.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Debug("websocket read", "client", c.ID, "error", err)
			}
			break
		}
		c.handleMessage(message)
	}
}

// WritePump pumps frames from the hub to the websocket connection, one frame
// per websocket message.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(message []byte) {
	var in inbound
	if err := json.Unmarshal(message, &in); err != nil {
		c.hub.send(c, models.EventError, errorData("malformed frame"))
		return
	}

	switch in.Type {
	case "join":
		if err := c.hub.Join(c, in.UserID); err != nil {
			c.hub.send(c, models.EventError, errorData(err.Error()))
			return
		}
		c.hub.send(c, models.EventJoined, map[string]uint{"user_id": in.UserID})
	default:
		c.hub.send(c, models.EventError, errorData("unknown frame type"))
	}
}

func errorData(msg string) map[string]string {
	return map[string]string{"message": msg}
}
