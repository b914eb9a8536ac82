package svcbot

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
)

// NewHealthRouter builds the bot's small HTTP surface: a liveness check and
// the last persisted process snapshot. It exposes read-only state only; all
// control stays behind the chat transport.
func NewHealthRouter(snapshotPath string, logger *slog.Logger) *mux.Router {
	if logger == nil {
		logger = slog.Default()
	}

	r := mux.NewRouter()

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	r.HandleFunc("/processes", func(w http.ResponseWriter, _ *http.Request) {
		if snapshotPath == "" {
			http.Error(w, "snapshots not enabled", http.StatusNotFound)
			return
		}
		snap, err := ReadSnapshot(snapshotPath)
		if err != nil {
			logger.Warn("reading snapshot failed", "path", snapshotPath, "error", err)
			http.Error(w, "no snapshot available", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(snap)
	}).Methods(http.MethodGet)

	return r
}
