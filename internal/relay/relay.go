package relay

import (
	"encoding/json"
	"log"
	"sync"

	"taskboard/internal/stats"
)

type clientEventHandler func(c *Conn, data json.RawMessage)

// Relay tracks live connections, their room memberships and the per-user
// connection sets used for personal-channel delivery. All shared state is
// guarded by a single lock so that a presence snapshot always reflects a
// fully-applied membership change.
type Relay struct {
	log   *log.Logger
	stats stats.StatsProvider

	mu        sync.RWMutex
	conns     map[string]*Conn
	userConns map[int]map[string]*Conn
	rooms     map[string]map[string]*Conn

	// handlers maps client event names to their handlers. It is populated
	// once during wiring, before any connection is accepted, and read-only
	// afterwards.
	handlers map[string]clientEventHandler
}

func NewRelay(logger *log.Logger, sp stats.StatsProvider) *Relay {
	r := &Relay{
		log:       logger,
		stats:     sp,
		conns:     make(map[string]*Conn),
		userConns: make(map[int]map[string]*Conn),
		rooms:     make(map[string]map[string]*Conn),
		handlers:  make(map[string]clientEventHandler),
	}

	for _, name := range []string{
		"ActiveConnections",
		"ActiveRooms",
		"EventsDispatched",
	} {
		sp.RegisterMetric(name)
	}

	return r
}

func (r *Relay) handle(name string, h clientEventHandler) {
	r.handlers[name] = h
}

func (r *Relay) dispatchClientEvent(c *Conn, ev *ClientEvent) {
	h, ok := r.handlers[ev.Name]
	if !ok {
		r.log.Printf("unknown client event %q from connection %q", ev.Name, c.id)
		return
	}

	h(c, ev.Data)
}

// deliver queues ev on c's send buffer. A full buffer means the connection is
// slow or gone; the event is dropped rather than blocking delivery to the
// rest of the room.
func (r *Relay) deliver(c *Conn, ev *Event) bool {
	if !c.queueEvent(ev) {
		r.log.Printf("dropped %q event for connection %q: send buffer full", ev.Name, c.id)
		return false
	}

	r.stats.Incr("EventsDispatched")
	return true
}

// Shutdown stops every live connection. Each connection's read pump
// unregisters it as it exits.
func (r *Relay) Shutdown() {
	r.mu.RLock()
	conns := make([]*Conn, 0, len(r.conns))
	for _, c := range r.conns {
		conns = append(conns, c)
	}
	r.mu.RUnlock()

	r.log.Printf("shutting down %d connections", len(conns))
	for _, c := range conns {
		c.shutdown()
	}
}
