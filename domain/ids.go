package domain

import (
	"math"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// IDGenerator hands out task ids that are unique within a session.
type IDGenerator interface {
	Next() ID
}

// TimestampIDs produces numeric ids from the wall clock in milliseconds.
// When the clock has not moved since the previous id the value is bumped by
// one, so ids are strictly increasing.
type TimestampIDs struct {
	last int64
	now  func() time.Time
}

// NewTimestampIDs returns a generator reading time.Now.
func NewTimestampIDs() *TimestampIDs {
	return &TimestampIDs{now: time.Now}
}

// Next returns the current time in milliseconds, or the previous id plus one
// when the clock has not moved past it.
func (g *TimestampIDs) Next() ID {
	clock := g.now
	if clock == nil {
		clock = time.Now
	}
	for {
		now := clock().UnixMilli()
		last := atomic.LoadInt64(&g.last)
		if now <= last {
			now = last + 1
		}
		if atomic.CompareAndSwapInt64(&g.last, last, now) {
			return NumericID(now)
		}
	}
}

// UUIDIDs produces random string ids.
type UUIDIDs struct{}

// Next returns a random version 4 UUID.
func (UUIDIDs) Next() ID { return StringID(uuid.NewString()) }

// maxObservedID bounds Observe. Larger ids are beyond any clock reading, so
// generated ids cannot reach them and they are ignored.
const maxObservedID = 1<<53 - 1

// Observe moves the generator past a numeric id that came from elsewhere,
// such as an imported document, so later ids cannot collide with it.
// Fractional and exponent forms count by their integral ceiling.
func (g *TimestampIDs) Observe(id ID) {
	if !id.numeric {
		return
	}
	f, err := strconv.ParseFloat(id.raw, 64)
	if err != nil || f < 0 || f > maxObservedID {
		return
	}
	n := int64(math.Ceil(f))
	for {
		last := atomic.LoadInt64(&g.last)
		if n <= last || atomic.CompareAndSwapInt64(&g.last, last, n) {
			return
		}
	}
}
