package model

import "time"

// Snapshot is a point-in-time copy of both collections taken under one
// consistent read. Reports are computed from snapshots only.
type Snapshot struct {
	ID      string
	TakenAt time.Time
	Users   []User
	Items   []Item
}

// UserIndex maps user ids to users for owner joins.
func (s *Snapshot) UserIndex() map[int64]User {
	index := make(map[int64]User, len(s.Users))
	for _, u := range s.Users {
		index[u.ID] = u
	}
	return index
}
