package relay

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
)

func testEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewEngine(cfg, log, nil)
}

func TestCopyFrames_emits_each_frame_as_one_part(t *testing.T) {
	e := testEngine(t, Config{})

	f1 := jpegFrame(0x01, 0x02)
	f2 := jpegFrame(0x03, 0x04, 0x05)
	input := append([]byte{0xDE, 0xAD}, f1...) // leading noise
	input = append(input, f2...)

	var out bytes.Buffer
	frames, err := e.copyFrames(bytes.NewReader(input), &out, func() {})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if frames != 2 {
		t.Fatalf("frames = %d, want 2", frames)
	}

	got := out.String()
	if n := strings.Count(got, "--frame\r\n"); n != 2 {
		t.Errorf("part count = %d, want 2", n)
	}

	part1 := fmt.Sprintf("--frame\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n%s\r\n", len(f1), f1)
	part2 := fmt.Sprintf("--frame\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n%s\r\n", len(f2), f2)
	if got != part1+part2 {
		t.Errorf("multipart body mismatch:\ngot  %q\nwant %q", got, part1+part2)
	}
}

func TestCopyFrames_flushes_per_frame(t *testing.T) {
	e := testEngine(t, Config{})

	input := append(jpegFrame(0x01), jpegFrame(0x02)...)
	flushes := 0
	var out bytes.Buffer
	if _, err := e.copyFrames(bytes.NewReader(input), &out, func() { flushes++ }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if flushes != 2 {
		t.Errorf("flushes = %d, want one per frame", flushes)
	}
}

func TestCopyFrames_incomplete_tail_is_not_emitted(t *testing.T) {
	e := testEngine(t, Config{})

	input := append(jpegFrame(0x01), 0xFF, 0xD8, 0x02) // trailing partial frame
	var out bytes.Buffer
	frames, err := e.copyFrames(bytes.NewReader(input), &out, func() {})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if frames != 1 {
		t.Errorf("frames = %d, want 1 (partial tail dropped at EOF)", frames)
	}
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, fmt.Errorf("viewer gone")
}

func TestCopyFrames_stops_on_write_error(t *testing.T) {
	e := testEngine(t, Config{})

	input := append(jpegFrame(0x01), jpegFrame(0x02)...)
	frames, err := e.copyFrames(bytes.NewReader(input), failingWriter{}, func() {})
	if err == nil {
		t.Fatal("expected write error to surface")
	}
	if frames != 0 {
		t.Errorf("frames = %d, want 0", frames)
	}
}

func TestStream_process_exit_ends_response(t *testing.T) {
	// "true" exits immediately with no output: the session must terminate
	// cleanly with an empty multipart body.
	e := testEngine(t, Config{Command: "true", Device: "/dev/null", FrameRate: 10, Width: 640})

	req := httptest.NewRequest(http.MethodGet, "/stream", nil)
	rec := httptest.NewRecorder()
	e.Stream(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "multipart/x-mixed-replace; boundary=frame" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cc := rec.Header().Get("Cache-Control"); cc != "no-cache" {
		t.Errorf("Cache-Control = %q, want no-cache", cc)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("body length = %d, want 0", rec.Body.Len())
	}
}

func TestStream_missing_capture_binary_is_500(t *testing.T) {
	e := testEngine(t, Config{Command: "definitely-not-a-real-binary-1b4c"})

	req := httptest.NewRequest(http.MethodGet, "/stream", nil)
	rec := httptest.NewRecorder()
	e.Stream(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 when the capture process cannot start, got %d", rec.Code)
	}
}
