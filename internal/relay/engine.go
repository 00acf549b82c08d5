package relay

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/exec"

	"github.com/google/uuid"

	"uav-gateway/internal/platform/metrics"
)

// boundary is the fixed multipart boundary token of the push stream.
const boundary = "frame"

// readChunkSize is the size of one read from the capture process's stdout.
const readChunkSize = 32 * 1024

// DefaultMaxBuffer bounds the accumulation buffer of a session. A capture
// process that emits this much without a complete frame is misbehaving; the
// scanner trims rather than grow without bound.
const DefaultMaxBuffer = 4 * 1024 * 1024

// Config holds the capture parameters shared by all relay sessions.
type Config struct {
	// Command is the capture binary, normally "ffmpeg". Tests substitute it.
	Command string

	// Device is the capture device selector, e.g. "/dev/video0".
	Device string

	// FrameRate is the fixed output frame rate.
	FrameRate int

	// Width scales the output; height follows the aspect ratio.
	Width int

	// MaxBuffer bounds a session's accumulation buffer in bytes.
	// Zero means DefaultMaxBuffer.
	MaxBuffer int
}

// Engine owns live relay sessions: one external capture process per viewer
// connection, its MJPEG output re-framed into a multipart push stream.
type Engine struct {
	cfg     Config
	log     *slog.Logger
	metrics *metrics.Metrics
}

// NewEngine returns an Engine with the given capture configuration. Metrics
// may be nil to disable metric recording.
func NewEngine(cfg Config, log *slog.Logger, m *metrics.Metrics) *Engine {
	if cfg.Command == "" {
		cfg.Command = "ffmpeg"
	}
	if cfg.MaxBuffer <= 0 {
		cfg.MaxBuffer = DefaultMaxBuffer
	}
	return &Engine{cfg: cfg, log: log, metrics: m}
}

// Stream handles GET /stream. It holds the connection open and pushes frames
// until the viewer disconnects or the capture process exits, whichever comes
// first; either way the other side is torn down before the handler returns.
func (e *Engine) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	sessionID := uuid.NewString()
	log := e.log.With(slog.String("session", sessionID))

	cmd := exec.Command(e.cfg.Command, e.captureArgs()...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		log.Error("capture stdout pipe", slog.String("error", err.Error()))
		http.Error(w, "starting capture", http.StatusInternalServerError)
		return
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		log.Error("capture stderr pipe", slog.String("error", err.Error()))
		http.Error(w, "starting capture", http.StatusInternalServerError)
		return
	}

	if err := cmd.Start(); err != nil {
		log.Error("capture process failed to start", slog.String("error", err.Error()))
		http.Error(w, "starting capture", http.StatusInternalServerError)
		return
	}

	log.Info("relay session started", slog.String("device", e.cfg.Device))
	if e.metrics != nil {
		e.metrics.RelaySessionStarted()
		defer e.metrics.RelaySessionEnded()
	}

	// Diagnostic output is observed but never ends the session.
	go func() {
		scan := bufio.NewScanner(stderr)
		for scan.Scan() {
			log.Debug("capture stderr", slog.String("line", scan.Text()))
		}
	}()

	// Viewer disconnect interrupts the capture process, which in turn ends
	// the read loop below with EOF. If the process exits first, the handler
	// returns, the request context is cancelled and the signal lands on an
	// already-finished process, which is harmless.
	go func() {
		<-r.Context().Done()
		_ = cmd.Process.Signal(os.Interrupt)
	}()

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary="+boundary)
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	frames, err := e.copyFrames(stdout, w, flusher.Flush)
	if err != nil {
		log.Debug("relay write interrupted", slog.String("error", err.Error()))
	}

	if err := cmd.Wait(); err != nil {
		log.Debug("capture process exited", slog.String("error", err.Error()))
	}
	log.Info("relay session ended", slog.Int("frames", frames))
}

// copyFrames reads raw capture output from r, extracts complete JPEG frames
// and writes each as one multipart part to w, flushing after every frame.
// It returns when r is exhausted or w rejects a write, with the number of
// frames relayed.
func (e *Engine) copyFrames(r io.Reader, w io.Writer, flush func()) (int, error) {
	scan := newFrameScanner(e.cfg.MaxBuffer)
	chunk := make([]byte, readChunkSize)
	frames := 0

	for {
		n, err := r.Read(chunk)
		if n > 0 {
			scan.append(chunk[:n])
			for {
				frame, ok := scan.next()
				if !ok {
					break
				}
				if werr := writePart(w, frame); werr != nil {
					return frames, werr
				}
				flush()
				frames++
				if e.metrics != nil {
					e.metrics.AddFramesRelayed(1)
				}
			}
		}
		if err != nil {
			if err == io.EOF {
				return frames, nil
			}
			return frames, err
		}
	}
}

// writePart emits one frame as a multipart part: boundary line, part headers,
// frame bytes, trailing separator.
func writePart(w io.Writer, frame []byte) error {
	if _, err := fmt.Fprintf(w, "--%s\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", boundary, len(frame)); err != nil {
		return err
	}
	if _, err := w.Write(frame); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\r\n")
	return err
}

func (e *Engine) captureArgs() []string {
	return []string{
		"-f", "v4l2",
		"-i", e.cfg.Device,
		"-r", fmt.Sprintf("%d", e.cfg.FrameRate),
		"-vf", fmt.Sprintf("scale=%d:-1", e.cfg.Width),
		"-c:v", "mjpeg",
		"-f", "mjpeg",
		"pipe:1",
	}
}
