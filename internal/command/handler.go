package command

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Handler exposes the actuator command mailbox over HTTP.
type Handler struct {
	mailbox *Mailbox
	log     *slog.Logger
}

// NewHandler returns a Handler for the given mailbox.
func NewHandler(mailbox *Mailbox, log *slog.Logger) *Handler {
	return &Handler{mailbox: mailbox, log: log}
}

// Set handles POST /command: body {"command": "..."} fills the slot,
// overwriting any command the actuator has not picked up yet.
func (h *Handler) Set(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Command string `json:"command"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Command == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing command"})
		return
	}

	h.mailbox.Set(body.Command)
	h.log.Debug("command queued", slog.String("command", body.Command))
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Take handles GET /command: returns the pending command and clears the
// slot, or 404 when nothing is pending.
func (h *Handler) Take(w http.ResponseWriter, r *http.Request) {
	cmd, ok := h.mailbox.Take()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no pending command"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"command": cmd})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
