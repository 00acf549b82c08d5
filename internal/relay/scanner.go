package relay

import "bytes"

var (
	soiMarker = []byte{0xFF, 0xD8} // JPEG start of image
	eoiMarker = []byte{0xFF, 0xD9} // JPEG end of image
)

// frameScanner accumulates raw capture-process output and yields complete
// JPEG frames delimited by the SOI/EOI markers. Bytes preceding a frame's
// start marker are noise (partial frames, container chatter) and are dropped
// together with the emitted frame, so the buffer never retains consumed data.
type frameScanner struct {
	buf []byte
	max int // byte budget before the buffer is trimmed; <= 0 disables
}

func newFrameScanner(maxBuffer int) *frameScanner {
	return &frameScanner{max: maxBuffer}
}

// append adds freshly read capture output to the accumulation buffer and
// enforces the byte budget: when no complete frame has shown up within max
// bytes, everything before the last start marker (or the whole buffer) goes.
func (s *frameScanner) append(p []byte) {
	s.buf = append(s.buf, p...)

	if s.max > 0 && len(s.buf) > s.max {
		if start := bytes.LastIndex(s.buf, soiMarker); start > 0 {
			s.buf = s.buf[:copy(s.buf, s.buf[start:])]
		} else {
			// Either no start marker at all, or a sole marker followed by
			// more than the budget without an end: the stream is garbage.
			s.buf = s.buf[:0]
		}
	}
}

// next extracts the earliest complete frame. It returns false when the buffer
// holds no complete frame yet; callers then wait for more input.
func (s *frameScanner) next() ([]byte, bool) {
	start := bytes.Index(s.buf, soiMarker)
	if start < 0 {
		return nil, false
	}

	end := bytes.Index(s.buf[start+len(soiMarker):], eoiMarker)
	if end < 0 {
		return nil, false
	}
	frameEnd := start + len(soiMarker) + end + len(eoiMarker)

	frame := make([]byte, frameEnd-start)
	copy(frame, s.buf[start:frameEnd])

	s.buf = s.buf[:copy(s.buf, s.buf[frameEnd:])]
	return frame, true
}

// pending reports how many unparsed bytes the scanner is holding.
func (s *frameScanner) pending() int {
	return len(s.buf)
}
