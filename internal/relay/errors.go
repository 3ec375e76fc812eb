package relay

import "errors"

var (
	// ErrDuplicateConnection is returned when a connection id is registered twice.
	ErrDuplicateConnection = errors.New("connection already registered")
	// ErrConnectionNotFound is returned when an operation references a
	// connection id the registry has never seen or has already dropped.
	ErrConnectionNotFound = errors.New("connection not found")
)
