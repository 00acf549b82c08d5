package reports

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// Handler exposes CRUD endpoints for reports and anomalies.
type Handler struct {
	store *Store
	log   *slog.Logger
}

// NewHandler returns a Handler backed by the given store.
func NewHandler(store *Store, log *slog.Logger) *Handler {
	return &Handler{store: store, log: log}
}

// Routes mounts all report and anomaly endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.Get("/", h.ListReports)
		r.Post("/", h.CreateReport)
		r.Get("/{id}", h.GetReport)
		r.Put("/{id}", h.UpdateReport)
		r.Delete("/{id}", h.DeleteReport)
	})
	r.Route("/anomalies", func(r chi.Router) {
		r.Get("/", h.ListAnomalies)
		r.Post("/", h.CreateAnomaly)
		r.Put("/{id}", h.UpdateAnomaly)
		r.Delete("/{id}", h.DeleteAnomaly)
	})
}

// ListReports handles GET /reports.
func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	reps, err := h.store.ListReports(r.Context())
	if err != nil {
		h.internalError(w, "listing reports", err)
		return
	}
	if reps == nil {
		reps = []Report{}
	}
	writeJSON(w, http.StatusOK, reps)
}

// GetReport handles GET /reports/{id}.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	rep, found, err := h.store.GetReport(r.Context(), id)
	if err != nil {
		h.internalError(w, "getting report", err)
		return
	}
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "report not found"})
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// CreateReport handles POST /reports.
func (h *Handler) CreateReport(w http.ResponseWriter, r *http.Request) {
	var rep Report
	if err := json.NewDecoder(r.Body).Decode(&rep); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid report body"})
		return
	}
	id, err := h.store.CreateReport(r.Context(), rep)
	if err != nil {
		h.internalError(w, "creating report", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

// UpdateReport handles PUT /reports/{id}.
func (h *Handler) UpdateReport(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var rep Report
	if err := json.NewDecoder(r.Body).Decode(&rep); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid report body"})
		return
	}
	found, err := h.store.UpdateReport(r.Context(), id, rep)
	if err != nil {
		h.internalError(w, "updating report", err)
		return
	}
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "report not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// DeleteReport handles DELETE /reports/{id}. Child anomalies go with it.
func (h *Handler) DeleteReport(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.store.DeleteReport(r.Context(), id); err != nil {
		h.internalError(w, "deleting report", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListAnomalies handles GET /anomalies.
func (h *Handler) ListAnomalies(w http.ResponseWriter, r *http.Request) {
	as, err := h.store.ListAnomalies(r.Context())
	if err != nil {
		h.internalError(w, "listing anomalies", err)
		return
	}
	if as == nil {
		as = []Anomaly{}
	}
	writeJSON(w, http.StatusOK, as)
}

// CreateAnomaly handles POST /anomalies.
func (h *Handler) CreateAnomaly(w http.ResponseWriter, r *http.Request) {
	var a Anomaly
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid anomaly body"})
		return
	}
	id, err := h.store.CreateAnomaly(r.Context(), a)
	if err != nil {
		h.internalError(w, "creating anomaly", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

// UpdateAnomaly handles PUT /anomalies/{id}. Resolving a report's last
// pending anomaly resolves the report too.
func (h *Handler) UpdateAnomaly(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var a Anomaly
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid anomaly body"})
		return
	}
	found, err := h.store.UpdateAnomaly(r.Context(), id, a)
	if err != nil {
		h.internalError(w, "updating anomaly", err)
		return
	}
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "anomaly not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// DeleteAnomaly handles DELETE /anomalies/{id}.
func (h *Handler) DeleteAnomaly(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.store.DeleteAnomaly(r.Context(), id); err != nil {
		h.internalError(w, "deleting anomaly", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) internalError(w http.ResponseWriter, msg string, err error) {
	h.log.Error(msg, slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
