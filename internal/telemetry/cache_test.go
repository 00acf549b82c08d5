package telemetry

import (
	"sync"
	"testing"
)

func TestCache_empty_slot(t *testing.T) {
	c := NewCache()
	if rec, ok := c.Get(SlotAerial); ok || rec != nil {
		t.Errorf("empty slot: got (%v, %v), want (nil, false)", rec, ok)
	}
}

func TestCache_set_then_get(t *testing.T) {
	c := NewCache()
	c.Set(SlotGround, &PositionRecord{Latitude: 1, Longitude: 2})

	rec, ok := c.Get(SlotGround)
	if !ok {
		t.Fatal("expected a record after Set")
	}
	if rec.Latitude != 1 || rec.Longitude != 2 {
		t.Errorf("got (%v, %v), want (1, 2)", rec.Latitude, rec.Longitude)
	}

	// The other slot stays independent.
	if _, ok := c.Get(SlotAerial); ok {
		t.Error("aerial slot should still be empty")
	}
}

func TestCache_overwrite(t *testing.T) {
	c := NewCache()
	c.Set(SlotAerial, &PositionRecord{Latitude: 1})
	c.Set(SlotAerial, &PositionRecord{Latitude: 9})

	rec, _ := c.Get(SlotAerial)
	if rec.Latitude != 9 {
		t.Errorf("latitude = %v, want 9 (latest wins)", rec.Latitude)
	}
}

func TestCache_concurrent_readers_see_whole_records(t *testing.T) {
	c := NewCache()
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				v := float64(n)
				c.Set(SlotAerial, &PositionRecord{Latitude: v, Longitude: v})
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				if rec, ok := c.Get(SlotAerial); ok && rec.Latitude != rec.Longitude {
					t.Errorf("torn record observed: (%v, %v)", rec.Latitude, rec.Longitude)
					return
				}
			}
		}()
	}
	wg.Wait()
}
