package relay

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBroadcastToRoom(t *testing.T) {
	r, _ := newTestRelay(t)

	c1 := newTestConn(t, r, "conn-1", 1, "alice")
	c2 := newTestConn(t, r, "conn-2", 2, "bob")
	c3 := newTestConn(t, r, "conn-3", 3, "carol")
	for _, c := range []*Conn{c1, c2, c3} {
		assert.NoError(t, r.Register(c))
	}

	room := ProjectRoom("p1")
	assert.NoError(t, r.Join(room, "conn-1"))
	assert.NoError(t, r.Join(room, "conn-2"))
	// carol is registered but not in the room
	drainEvents(c1)
	drainEvents(c2)

	delivered := r.BroadcastToRoom(room, EventTaskCreated, "payload", "")
	assert.Equal(t, 2, delivered)

	for _, c := range []*Conn{c1, c2} {
		ev := receiveEvent(t, c)
		assert.Equal(t, EventTaskCreated, ev.Name)
		assert.Equal(t, "payload", ev.Payload)
	}
	assert.Empty(t, c3.send, "expected no delivery outside the room")
}

func TestBroadcastToRoom_ExcludesActor(t *testing.T) {
	r, _ := newTestRelay(t)

	c1 := newTestConn(t, r, "conn-1", 1, "alice")
	c2 := newTestConn(t, r, "conn-2", 2, "bob")
	assert.NoError(t, r.Register(c1))
	assert.NoError(t, r.Register(c2))

	room := ProjectRoom("p1")
	assert.NoError(t, r.Join(room, "conn-1"))
	assert.NoError(t, r.Join(room, "conn-2"))
	drainEvents(c1)
	drainEvents(c2)

	delivered := r.BroadcastToRoom(room, EventTaskUpdated, nil, "conn-1")
	assert.Equal(t, 1, delivered)

	ev := receiveEvent(t, c2)
	assert.Equal(t, EventTaskUpdated, ev.Name)
	assert.Empty(t, c1.send, "expected no echo to the excluded connection")
}

func TestBroadcastToRoom_UnknownRoom(t *testing.T) {
	r, _ := newTestRelay(t)

	assert.Zero(t, r.BroadcastToRoom(ProjectRoom("nope"), EventTaskCreated, nil, ""),
		"expected zero deliveries for a room no one joined")
}

func TestBroadcastToRoom_DropsOnFullBuffer(t *testing.T) {
	r, _ := newTestRelay(t)

	c := newTestConn(t, r, "conn-1", 1, "alice")
	assert.NoError(t, r.Register(c))

	room := ProjectRoom("p1")
	assert.NoError(t, r.Join(room, "conn-1"))

	ev := NewEvent(EventUserActivity, nil)
	for c.queueEvent(ev) {
	}

	assert.Zero(t, r.BroadcastToRoom(room, EventTaskCreated, nil, ""),
		"expected delivery to be dropped when the send buffer is full")
}

func TestSendToUser(t *testing.T) {
	r, _ := newTestRelay(t)

	// alice has two live connections, neither in any room
	c1 := newTestConn(t, r, "conn-1", 1, "alice")
	c2 := newTestConn(t, r, "conn-2", 1, "alice")
	c3 := newTestConn(t, r, "conn-3", 2, "bob")
	for _, c := range []*Conn{c1, c2, c3} {
		assert.NoError(t, r.Register(c))
	}

	delivered := r.SendToUser(1, EventNewNotification, "payload")
	assert.Equal(t, 2, delivered, "expected delivery to each of the user's connections")

	for _, c := range []*Conn{c1, c2} {
		ev := receiveEvent(t, c)
		assert.Equal(t, EventNewNotification, ev.Name)
	}
	assert.Empty(t, c3.send, "expected no delivery to other users")
}

func TestSendToUser_Offline(t *testing.T) {
	r, _ := newTestRelay(t)

	assert.Zero(t, r.SendToUser(99, EventNewNotification, nil),
		"expected zero deliveries for an offline user")
}
