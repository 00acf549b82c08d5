package geocode

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// Handler exposes the reverse-geocoding endpoint.
type Handler struct {
	resolver *Resolver
	log      *slog.Logger
}

// NewHandler returns a Handler using the given Resolver.
func NewHandler(resolver *Resolver, log *slog.Logger) *Handler {
	return &Handler{resolver: resolver, log: log}
}

// Reverse handles GET /location/{lat}/{lon}.
func (h *Handler) Reverse(w http.ResponseWriter, r *http.Request) {
	lat, errLat := strconv.ParseFloat(chi.URLParam(r, "lat"), 64)
	lon, errLon := strconv.ParseFloat(chi.URLParam(r, "lon"), 64)
	if errLat != nil || errLon != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid coordinates"})
		return
	}

	place, err := h.resolver.Reverse(r.Context(), lat, lon)
	if err != nil {
		h.log.Error("reverse geocode failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, place)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
