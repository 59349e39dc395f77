package handlers

import (
	"net/http"
	"sort"
	"time"

	"github.com/Nour0506/LogistiCo/internal/services"
)

type RetryHandler struct {
	Retries *services.GeocodeRetryQueue
}

type retryEntryResponse struct {
	Kind     string `json:"kind"`
	EntityID string `json:"entity_id"`
	Address  string `json:"address"`
	Attempts int    `json:"attempts"`
	Status   string `json:"status"`
	LastErr  string `json:"last_error,omitempty"`
	NextAt   string `json:"next_attempt_at,omitempty"`
}

// List exposes the geocode retry queue, terminal entries included, so
// operators can see which entities still sit at the sentinel position.
func (h *RetryHandler) List(w http.ResponseWriter, r *http.Request) {
	entries := h.Retries.Entries()
	sort.Slice(entries, func(i, j int) bool { return entries[i].EntityID < entries[j].EntityID })

	out := make([]retryEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp := retryEntryResponse{
			Kind:     string(e.Kind),
			EntityID: e.EntityID,
			Address:  e.Address,
			Attempts: e.Attempts,
			Status:   e.Status,
			LastErr:  e.LastErr,
		}
		if e.Status == services.RetryPending {
			resp.NextAt = e.NextAt.Format(time.RFC3339)
		}
		out = append(out, resp)
	}

	writeJSON(w, r, http.StatusOK, map[string]any{"retries": out})
}
