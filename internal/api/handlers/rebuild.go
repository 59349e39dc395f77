package handlers

import (
	"log"
	"net/http"

	"github.com/Nour0506/LogistiCo/internal/api/dto"
	"github.com/Nour0506/LogistiCo/internal/services"
)

type RebuildHandler struct {
	Engine *services.DistanceEngine
}

// Rebuild recomputes the whole distance index from current entity positions.
// A rebuild already in flight is not an error; the request simply reports it.
func (h *RebuildHandler) Rebuild(w http.ResponseWriter, r *http.Request) {
	if err := h.Engine.RebuildAll(r.Context()); err != nil {
		log.Printf("op=rebuild err=%v", err)
		writeError(w, r, http.StatusInternalServerError, "rebuild failed")
		return
	}
	writeJSON(w, r, http.StatusAccepted, dto.RebuildResponse{Status: "ok"})
}
