package relay

// Register records a new live connection and adds it to its user's personal
// channel. It fails with ErrDuplicateConnection if the id is already known.
func (r *Relay) Register(c *Conn) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conns[c.id]; ok {
		return ErrDuplicateConnection
	}

	r.conns[c.id] = c

	userConns := r.userConns[c.user.UserId]
	if userConns == nil {
		userConns = make(map[string]*Conn)
		r.userConns[c.user.UserId] = userConns
	}
	userConns[c.id] = c

	r.stats.Incr("ActiveConnections")
	r.log.Printf("registered connection %q for user %q", c.id, c.user.Username)

	return nil
}

// Unregister removes a connection from the registry, its personal channel and
// every room it joined, broadcasting a fresh presence snapshot for each
// affected collaboration room. Unregistering an unknown id is a no-op since
// disconnects race with application-level cleanup.
func (r *Relay) Unregister(connId string) {
	r.mu.Lock()
	c, ok := r.conns[connId]
	if !ok {
		r.mu.Unlock()
		return
	}

	delete(r.conns, connId)

	if userConns, ok := r.userConns[c.user.UserId]; ok {
		delete(userConns, connId)
		if len(userConns) == 0 {
			delete(r.userConns, c.user.UserId)
		}
	}

	for roomId := range c.rooms {
		r.removeFromRoomLocked(roomId, c)
	}
	r.mu.Unlock()

	c.shutdown()
	r.stats.Decr("ActiveConnections")
	r.log.Printf("unregistered connection %q for user %q", connId, c.user.Username)
}

// Lookup returns the identity bound to a connection id.
func (r *Relay) Lookup(connId string) (Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.conns[connId]
	if !ok {
		return Identity{}, ErrConnectionNotFound
	}

	return c.user, nil
}

// ConnectionsForUser returns the user's live connections. An empty result is
// a valid outcome, not an error: the user is simply offline.
func (r *Relay) ConnectionsForUser(userId int) []*Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := make([]*Conn, 0, len(r.userConns[userId]))
	for _, c := range r.userConns[userId] {
		conns = append(conns, c)
	}

	return conns
}
