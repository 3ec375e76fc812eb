package relay

// BroadcastToRoom queues a named event to every connection currently in the
// room, minus excludeConnId when the originating actor should not receive an
// echo of its own action. Delivery is fire-and-forget per connection: a slow
// or vanished member never blocks or fails delivery to the rest. Returns the
// number of connections the event was queued to.
func (r *Relay) BroadcastToRoom(roomId, name string, payload any, excludeConnId string) int {
	r.mu.RLock()
	targets := make([]*Conn, 0, len(r.rooms[roomId]))
	for _, c := range r.rooms[roomId] {
		if c.id == excludeConnId {
			continue
		}
		targets = append(targets, c)
	}
	r.mu.RUnlock()

	ev := NewEvent(name, payload)
	var delivered int
	for _, c := range targets {
		if r.deliver(c, ev) {
			delivered++
		}
	}

	return delivered
}

// SendToUser queues a named event to each of the user's live connections.
// Zero deliveries is a valid, silent outcome: the durable record was already
// persisted by the caller, so live delivery is best-effort acceleration, not
// the system of record.
func (r *Relay) SendToUser(userId int, name string, payload any) int {
	r.mu.RLock()
	targets := make([]*Conn, 0, len(r.userConns[userId]))
	for _, c := range r.userConns[userId] {
		targets = append(targets, c)
	}
	r.mu.RUnlock()

	ev := NewEvent(name, payload)
	var delivered int
	for _, c := range targets {
		if r.deliver(c, ev) {
			delivered++
		}
	}

	return delivered
}
