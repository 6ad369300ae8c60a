package state

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// Clock identifies a participant and numbers its outgoing messages.
type Clock struct {
	site string
	seq  atomic.Uint64
}

func NewClock() *Clock {
	return &Clock{site: uuid.NewString()}
}

// Site is the participant's random id, also used as its local owner key.
func (c *Clock) Site() string { return c.site }

// Next returns the next sequence number, starting at 1.
func (c *Clock) Next() uint64 {
	return c.seq.Add(1)
}
