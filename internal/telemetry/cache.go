package telemetry

import "sync/atomic"

// Cache holds the latest known PositionRecord per tracked device. Writes
// replace the whole record with a single pointer swap, so a concurrent reader
// observes either the previous record or the new one, never a partial value.
type Cache struct {
	aerial atomic.Pointer[PositionRecord]
	ground atomic.Pointer[PositionRecord]
}

// NewCache returns a cache with both device slots empty.
func NewCache() *Cache {
	return &Cache{}
}

// Set replaces the record in the given slot. Unknown slots are ignored.
func (c *Cache) Set(slot Slot, rec *PositionRecord) {
	switch slot {
	case SlotAerial:
		c.aerial.Store(rec)
	case SlotGround:
		c.ground.Store(rec)
	}
}

// Get returns the latest record for the given slot. The second return is
// false when the slot has never been written ("no data yet").
func (c *Cache) Get(slot Slot) (*PositionRecord, bool) {
	var rec *PositionRecord
	switch slot {
	case SlotAerial:
		rec = c.aerial.Load()
	case SlotGround:
		rec = c.ground.Load()
	}
	return rec, rec != nil
}
