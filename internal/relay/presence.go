package relay

import "sort"

// Presence returns the set of distinct users with at least one connection in
// the room. A user with two connections in the same room appears once.
func (r *Relay) Presence(roomId string) []Member {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.presenceLocked(roomId)
}

func (r *Relay) presenceLocked(roomId string) []Member {
	seen := make(map[int]struct{})
	members := make([]Member, 0, len(r.rooms[roomId]))
	for _, c := range r.rooms[roomId] {
		if _, ok := seen[c.user.UserId]; ok {
			continue
		}
		seen[c.user.UserId] = struct{}{}
		members = append(members, Member{UserId: c.user.UserId, Username: c.user.Username})
	}

	sort.Slice(members, func(i, j int) bool { return members[i].UserId < members[j].UserId })

	return members
}

// broadcastPresenceLocked recomputes the room's presence snapshot and queues
// it to every member, including whoever just joined or left, so each client's
// view is self-consistent. Callers must hold the lock: the snapshot is taken
// in the same critical section as the membership change it reflects.
func (r *Relay) broadcastPresenceLocked(roomId string) {
	ev := NewEvent(EventOnlineMembers, r.presenceLocked(roomId))
	for _, c := range r.rooms[roomId] {
		r.deliver(c, ev)
	}
}
