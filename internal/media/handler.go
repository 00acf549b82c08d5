package media

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
)

const videoContentType = "video/mp4"

// Handler serves recorded videos and frame images with byte-range support.
type Handler struct {
	videos *Root
	frames *Root
	log    *slog.Logger
}

// NewHandler returns a Handler serving videos and frames from their
// respective content roots.
func NewHandler(videos, frames *Root, log *slog.Logger) *Handler {
	return &Handler{videos: videos, frames: frames, log: log}
}

// ServeVideo handles GET /videos/{container}/{name}. Videos are always
// served as video/mp4 and honor single-range partial content requests.
func (h *Handler) ServeVideo(w http.ResponseWriter, r *http.Request) {
	h.serveAsset(w, r, h.videos, videoContentType)
}

// ServeFrame handles GET /frames/{container}/{name}. The content type is
// inferred from the file extension, defaulting to image/jpeg.
func (h *Handler) ServeFrame(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "image/jpeg"
	}
	h.serveAsset(w, r, h.frames, contentType)
}

func (h *Handler) serveAsset(w http.ResponseWriter, r *http.Request, root *Root, contentType string) {
	container := chi.URLParam(r, "container")
	name := chi.URLParam(r, "name")

	path, size, err := root.Resolve(container, name)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	rangeHeader := r.Header.Get("Range")
	if rangeHeader == "" {
		h.serveFull(w, path, size, contentType)
		return
	}

	br, err := ParseRange(rangeHeader, size)
	switch {
	case errors.Is(err, ErrUnsatisfiableRange):
		w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", size))
		w.WriteHeader(http.StatusRequestedRangeNotSatisfiable)
		return
	case err != nil:
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	h.servePartial(w, path, size, br, contentType)
}

func (h *Handler) serveFull(w http.ResponseWriter, path string, size int64, contentType string) {
	f, err := os.Open(path)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", fmt.Sprintf("%d", size))
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, f); err != nil {
		h.log.Debug("full copy interrupted", slog.String("path", path), slog.String("error", err.Error()))
	}
}

func (h *Handler) servePartial(w http.ResponseWriter, path string, size int64, br ByteRange, contentType string) {
	f, err := os.Open(path)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	defer f.Close()

	if _, err := f.Seek(br.Start, io.SeekStart); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", fmt.Sprintf("%d", br.Length()))
	w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", br.Start, br.End, size))
	w.Header().Set("Accept-Ranges", "bytes")
	w.WriteHeader(http.StatusPartialContent)

	if _, err := io.CopyN(w, f, br.Length()); err != nil {
		h.log.Debug("partial copy interrupted", slog.String("path", path), slog.String("error", err.Error()))
	}
}
