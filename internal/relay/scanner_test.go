package relay

import (
	"bytes"
	"testing"
)

func jpegFrame(payload ...byte) []byte {
	f := []byte{0xFF, 0xD8}
	f = append(f, payload...)
	return append(f, 0xFF, 0xD9)
}

func TestFrameScanner_single_frame(t *testing.T) {
	s := newFrameScanner(0)
	frame := jpegFrame(0x01, 0x02, 0x03)
	s.append(frame)

	got, ok := s.next()
	if !ok {
		t.Fatal("expected a complete frame")
	}
	if !bytes.Equal(got, frame) {
		t.Errorf("frame = %x, want %x", got, frame)
	}
	if s.pending() != 0 {
		t.Errorf("pending = %d, want 0 after emission", s.pending())
	}
}

func TestFrameScanner_two_frames_in_order(t *testing.T) {
	s := newFrameScanner(0)
	f1 := jpegFrame(0xAA)
	f2 := jpegFrame(0xBB)
	s.append(append(append([]byte{}, f1...), f2...))

	got1, ok := s.next()
	if !ok || !bytes.Equal(got1, f1) {
		t.Fatalf("first frame = %x, want %x", got1, f1)
	}
	got2, ok := s.next()
	if !ok || !bytes.Equal(got2, f2) {
		t.Fatalf("second frame = %x, want %x", got2, f2)
	}
	if _, ok := s.next(); ok {
		t.Error("no third frame expected")
	}
	if s.pending() != 0 {
		t.Errorf("pending = %d, want 0", s.pending())
	}
}

func TestFrameScanner_noise_before_start_is_discarded(t *testing.T) {
	s := newFrameScanner(0)
	frame := jpegFrame(0x42)
	s.append(append([]byte{0x00, 0x11, 0xD9, 0xFF}, frame...))

	got, ok := s.next()
	if !ok {
		t.Fatal("expected a frame past the noise")
	}
	if !bytes.Equal(got, frame) {
		t.Errorf("frame = %x, want %x", got, frame)
	}
	if s.pending() != 0 {
		t.Errorf("pending = %d, want 0 (noise dropped with the frame)", s.pending())
	}
}

func TestFrameScanner_incomplete_frame_waits(t *testing.T) {
	s := newFrameScanner(0)
	s.append([]byte{0xFF, 0xD8, 0x01, 0x02})

	if _, ok := s.next(); ok {
		t.Fatal("incomplete frame must not be emitted")
	}

	// End marker arrives split across appends.
	s.append([]byte{0xFF})
	if _, ok := s.next(); ok {
		t.Fatal("still incomplete")
	}
	s.append([]byte{0xD9})

	got, ok := s.next()
	if !ok {
		t.Fatal("expected frame once end marker completed")
	}
	want := []byte{0xFF, 0xD8, 0x01, 0x02, 0xFF, 0xD9}
	if !bytes.Equal(got, want) {
		t.Errorf("frame = %x, want %x", got, want)
	}
}

func TestFrameScanner_budget_trims_to_last_start(t *testing.T) {
	s := newFrameScanner(16)

	// Garbage, then a start marker with a frame still in flight.
	s.append(append(bytes.Repeat([]byte{0x00}, 20), 0xFF, 0xD8, 0x01))
	if s.pending() != 3 {
		t.Errorf("pending = %d, want 3 (trimmed to last start marker)", s.pending())
	}

	s.append([]byte{0x02, 0xFF, 0xD9})
	got, ok := s.next()
	if !ok {
		t.Fatal("frame should survive the trim")
	}
	want := []byte{0xFF, 0xD8, 0x01, 0x02, 0xFF, 0xD9}
	if !bytes.Equal(got, want) {
		t.Errorf("frame = %x, want %x", got, want)
	}
}

func TestFrameScanner_budget_resets_markerless_garbage(t *testing.T) {
	s := newFrameScanner(16)
	s.append(bytes.Repeat([]byte{0x00}, 64))
	if s.pending() != 0 {
		t.Errorf("pending = %d, want 0 after reset", s.pending())
	}
}
