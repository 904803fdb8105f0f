package app

import (
	"encoding/json"
	"net/http"

	"ReelMonitor/internal/util"
)

// handleLatest returns the latest statistics of every receiver.
func (a *App) handleLatest(w http.ResponseWriter, r *http.Request) {
	if a.stats == nil {
		http.Error(w, "state store disabled", http.StatusNotFound)
		return
	}
	latest, err := a.stats.LatestStats()
	if err != nil {
		http.Error(w, "failed to read statistics", http.StatusInternalServerError)
		return
	}
	writeJSON(w, latest)
}

// handleHealth reports the open logfiles and the beacon uptime.
func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{"status": "ok", "clients": a.Hub.Count()}
	if a.status != nil {
		body["logfiles"] = a.status.ActiveLogfiles()
		body["uptimeMs"] = a.status.Uptime()
	}
	writeJSON(w, body)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		util.Warn("[app] failed to write response: %v", err)
	}
}
