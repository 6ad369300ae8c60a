package net

// ConnectionState is where a Client is in its lifecycle.
type ConnectionState int

const (
	// StateDisconnected means no connection is up. Drawing still works
	// locally.
	StateDisconnected ConnectionState = iota

	// StateConnecting means the client is dialing the relay.
	StateConnecting

	// StateConnected means frames flow both ways.
	StateConnected

	// StateClosed means Close was called.
	StateClosed
)

func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}
