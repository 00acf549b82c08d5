package command

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi/v5"
)

func TestMailbox_take_clears_slot(t *testing.T) {
	m := NewMailbox()

	if _, ok := m.Take(); ok {
		t.Fatal("empty mailbox must report no command")
	}

	m.Set("return-home")
	cmd, ok := m.Take()
	if !ok || cmd != "return-home" {
		t.Fatalf("got (%q, %v), want (return-home, true)", cmd, ok)
	}
	if _, ok := m.Take(); ok {
		t.Error("slot must be empty after Take")
	}
}

func TestMailbox_set_overwrites(t *testing.T) {
	m := NewMailbox()
	m.Set("hover")
	m.Set("land")

	cmd, _ := m.Take()
	if cmd != "land" {
		t.Errorf("got %q, want the latest command", cmd)
	}
}

func newCommandRouter(t *testing.T) *chi.Mux {
	t.Helper()
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	h := NewHandler(NewMailbox(), log)

	r := chi.NewRouter()
	r.Post("/command", h.Set)
	r.Get("/command", h.Take)
	return r
}

func TestCommandEndpoints(t *testing.T) {
	r := newCommandRouter(t)

	// Empty slot reads 404.
	req := httptest.NewRequest(http.MethodGet, "/command", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("empty mailbox: expected 404, got %d", rec.Code)
	}

	// Set then take.
	b, _ := json.Marshal(map[string]string{"command": "land"})
	req = httptest.NewRequest(http.MethodPost, "/command", bytes.NewReader(b))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("set: expected 200, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/command", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("take: expected 200, got %d", rec.Code)
	}
	var got map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got["command"] != "land" {
		t.Errorf("command = %q, want land", got["command"])
	}

	// Slot cleared by the take.
	req = httptest.NewRequest(http.MethodGet, "/command", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("after take: expected 404, got %d", rec.Code)
	}
}

func TestCommandSet_missing_body(t *testing.T) {
	r := newCommandRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/command", bytes.NewReader([]byte("{}")))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}
