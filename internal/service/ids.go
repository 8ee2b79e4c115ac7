package service

import (
	"sync"
	"time"
)

// idClock issues millisecond-timestamp ids that never repeat within the process,
// bumping by one when two accounts are created in the same millisecond.
type idClock struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func newIDClock(now func() time.Time) *idClock {
	return &idClock{now: now}
}

func (c *idClock) Next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.now().UnixMilli()
	if id <= c.last {
		id = c.last + 1
	}
	c.last = id
	return id
}
