package relay

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufferSize = 256
)

// Conn is one live client link: a websocket plus the identity the external
// authentication collaborator bound to it at upgrade time. A user may hold
// several at once.
type Conn struct {
	id        string
	user      Identity
	ws        *websocket.Conn
	relay     *Relay
	log       *log.Logger
	send      chan *Event
	stop      chan struct{}
	stopOnce  sync.Once
	createdAt time.Time

	// rooms is the set of room ids this connection has joined. It is
	// guarded by the relay's lock, not by the connection.
	rooms map[string]struct{}
}

func NewConn(id string, user Identity, ws *websocket.Conn, r *Relay, l *log.Logger) *Conn {
	return &Conn{
		id:        id,
		user:      user,
		ws:        ws,
		relay:     r,
		log:       l,
		send:      make(chan *Event, sendBufferSize),
		stop:      make(chan struct{}),
		createdAt: Now(),
		rooms:     make(map[string]struct{}),
	}
}

func (c *Conn) Id() string { return c.id }

func (c *Conn) User() Identity { return c.user }

// Write pumps queued events to the websocket and keeps the link alive with
// pings. It exits when the connection is stopped or the peer is unreachable.
func (c *Conn) Write() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.ws.Close()
		c.log.Printf("write pump for connection %q exiting", c.id)
	}()

	for {
		select {
		case ev := <-c.send:
			bytes, err := json.Marshal(ev)
			if err != nil {
				c.log.Printf("failed to serialize %q event: %v", ev.Name, err)
				continue
			}

			if !c.writeMessage(websocket.TextMessage, bytes) {
				return
			}
		case <-c.stop:
			return
		case <-ticker.C:
			if !c.writeMessage(websocket.PingMessage, nil) {
				return
			}
		}
	}
}

// Read pumps inbound client events through the relay's dispatch table. On
// exit it unregisters the connection, which removes it from every room and
// triggers the presence rebroadcasts.
func (c *Conn) Read() {
	defer func() {
		c.ws.Close()
		c.relay.Unregister(c.id)
		c.log.Printf("read pump for connection %q exiting", c.id)
	}()

	c.ws.SetReadLimit(maxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error { c.ws.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		_, raw, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				c.log.Printf("ws: read: %v", err)
			}
			break
		}

		var ev ClientEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			c.log.Printf("error parsing client event from %q: %v", c.id, err)
			continue
		}

		c.relay.dispatchClientEvent(c, &ev)
	}
}

// queueEvent places ev on the send buffer without blocking. It reports false
// when the buffer is full, which the dispatcher treats as a dropped delivery.
func (c *Conn) queueEvent(ev *Event) bool {
	select {
	case <-c.stop:
		return false
	default:
	}

	select {
	case c.send <- ev:
		return true
	default:
		return false
	}
}

func (c *Conn) writeMessage(msgType int, data []byte) bool {
	c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.ws.WriteMessage(msgType, data); err != nil {
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
			websocket.CloseNormalClosure) {
			c.log.Printf("write message: %s", err)
		}
		return false
	}

	return true
}

func (c *Conn) shutdown() {
	c.stopOnce.Do(func() { close(c.stop) })
}
