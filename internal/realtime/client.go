package realtime

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/yukikurage/collab-api/internal/constants"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufferSize = 64
)

type inboundMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type projectRef struct {
	ProjectID string `json:"projectId"`
}

// Client is one websocket connection. Outbound events are queued in a
// bounded buffer; a full buffer drops the event for this client only.
type Client struct {
	id     string
	userID string
	conn   *websocket.Conn
	hub    *Hub
	send   chan Event
	done   chan struct{}
	log    *zap.SugaredLogger

	// mu orders joins against close so a closed client is never re-added.
	mu     sync.Mutex
	closed bool
}

func NewClient(conn *websocket.Conn, hub *Hub, userID string, log *zap.SugaredLogger) *Client {
	id := uuid.NewString()
	return &Client{
		id:     id,
		userID: userID,
		conn:   conn,
		hub:    hub,
		send:   make(chan Event, sendBufferSize),
		done:   make(chan struct{}),
		log:    log.With("connection", id, "user", userID),
	}
}

func (c *Client) ID() string {
	return c.id
}

func (c *Client) Send(evt Event) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- evt:
		return true
	default:
		return false
	}
}

// Run serves the connection until it closes, then removes every membership.
func (c *Client) Run() {
	go c.writePump()
	c.readPump()
}

func (c *Client) close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.done)
	c.mu.Unlock()

	c.hub.UnsubscribeAll(c)
	c.conn.Close()
	c.log.Debug("websocket connection closed")
}

// join subscribes to channel unless the connection is already closing.
func (c *Client) join(channel string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	c.hub.Subscribe(channel, c)
	return true
}

func (c *Client) readPump() {
	defer c.close()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg inboundMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warnw("websocket read failed", "error", err)
			}
			return
		}
		c.handle(msg)
	}
}

func (c *Client) handle(msg inboundMessage) {
	switch msg.Event {
	case constants.EventJoinProject:
		if projectID := parseProjectID(msg.Data); projectID != "" && c.join(ProjectChannel(projectID)) {
			c.log.Debugw("joined project channel", "project", projectID)
		}
	case constants.EventLeaveProject:
		if projectID := parseProjectID(msg.Data); projectID != "" {
			c.hub.Unsubscribe(ProjectChannel(projectID), c)
		}
	default:
		c.log.Debugw("ignored websocket message", "event", msg.Event)
	}
}

// parseProjectID accepts either {"projectId":"..."} or a bare JSON string.
func parseProjectID(raw json.RawMessage) string {
	var ref projectRef
	if err := json.Unmarshal(raw, &ref); err == nil && ref.ProjectID != "" {
		return strings.TrimSpace(ref.ProjectID)
	}
	var id string
	if err := json.Unmarshal(raw, &id); err == nil {
		return strings.TrimSpace(id)
	}
	return ""
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case <-c.done:
			return
		case evt := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteJSON(evt); err != nil {
				c.log.Warnw("websocket write failed", "event", evt.Name, "error", err)
				return
			}
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
