package relay

import "sort"

// Join adds a connection to a room, creating the room on first join.
// Joining a room the connection is already in is a no-op apart from the
// presence rebroadcast: client reconnect logic may replay a join without
// first confirming prior state, and server-side bookkeeping must tolerate
// that.
func (r *Relay) Join(roomId, connId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.conns[connId]
	if !ok {
		return ErrConnectionNotFound
	}

	room := r.rooms[roomId]
	if room == nil {
		room = make(map[string]*Conn)
		r.rooms[roomId] = room
		r.stats.Incr("ActiveRooms")
	}

	room[c.id] = c
	c.rooms[roomId] = struct{}{}
	r.log.Printf("connection %q joined room %q", c.id, roomId)

	if IsProjectRoom(roomId) {
		r.broadcastPresenceLocked(roomId)
	}

	return nil
}

// Leave removes a connection from a room. Leaving a room the connection is
// not in, or leaving with an unknown connection id, is a no-op.
func (r *Relay) Leave(roomId, connId string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.conns[connId]
	if !ok {
		return
	}

	r.removeFromRoomLocked(roomId, c)
}

// MembersOf returns the connection ids currently in a room, sorted for
// stable output.
func (r *Relay) MembersOf(roomId string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := make([]string, 0, len(r.rooms[roomId]))
	for id := range r.rooms[roomId] {
		members = append(members, id)
	}
	sort.Strings(members)

	return members
}

// removeFromRoomLocked drops c from roomId, reclaims the room if it is now
// empty and otherwise rebroadcasts presence for collaboration rooms. Callers
// must hold the write lock.
func (r *Relay) removeFromRoomLocked(roomId string, c *Conn) {
	room := r.rooms[roomId]
	if room == nil {
		return
	}

	if _, ok := room[c.id]; !ok {
		return
	}

	delete(room, c.id)
	delete(c.rooms, roomId)
	r.log.Printf("connection %q left room %q", c.id, roomId)

	if len(room) == 0 {
		delete(r.rooms, roomId)
		r.stats.Decr("ActiveRooms")
		return
	}

	if IsProjectRoom(roomId) {
		r.broadcastPresenceLocked(roomId)
	}
}
