package telemetry

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"uav-gateway/internal/platform/metrics"
)

// maxMessageBytes bounds the accepted size of one telemetry message body.
const maxMessageBytes = 4096

// Handler exposes the telemetry HTTP endpoints.
type Handler struct {
	cache   *Cache
	log     *slog.Logger
	metrics *metrics.Metrics
}

// NewHandler returns a Handler backed by the given cache. Metrics may be nil
// to disable metric recording (e.g. in tests).
func NewHandler(cache *Cache, log *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{cache: cache, log: log, metrics: m}
}

// Ingest returns the handler for POST /telemetry/{device}. The request body
// is the raw transmitter message; a successful decode replaces the slot's
// record, a failed decode leaves it untouched and responds 400.
func (h *Handler) Ingest(slot Slot) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxMessageBytes))
		if err != nil {
			h.log.Error("reading telemetry body", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "reading request body"})
			return
		}

		rec, err := Decode(string(body))
		if err != nil {
			h.log.Debug("telemetry rejected",
				slog.String("device", string(slot)),
				slog.String("error", err.Error()))
			if h.metrics != nil {
				h.metrics.IncTelemetryRejected()
			}
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}

		h.cache.Set(slot, rec)
		h.log.Debug("telemetry stored",
			slog.String("device", string(slot)),
			slog.Float64("lat", rec.Latitude),
			slog.Float64("lon", rec.Longitude))
		if h.metrics != nil {
			h.metrics.IncTelemetryMessages()
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// Latest returns the handler for GET /telemetry/{device}: the cached record,
// or 404 while the slot has never been written.
func (h *Handler) Latest(slot Slot) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, ok := h.cache.Get(slot)
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "no data yet"})
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

// Distance handles GET /telemetry/distance. It reads both device slots and
// reports the haversine distance in meters, or 500 while either slot is empty.
func (h *Handler) Distance(w http.ResponseWriter, r *http.Request) {
	aerial, okA := h.cache.Get(SlotAerial)
	ground, okG := h.cache.Get(SlotGround)
	if !okA || !okG {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "telemetry unavailable"})
		return
	}

	meters := Haversine(aerial.Latitude, aerial.Longitude, ground.Latitude, ground.Longitude)
	writeJSON(w, http.StatusOK, map[string]float64{"meters": meters})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
