package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/Nour0506/LogistiCo/internal/api/dto"
	"github.com/Nour0506/LogistiCo/internal/domain"
	"github.com/Nour0506/LogistiCo/internal/ports"
	"github.com/Nour0506/LogistiCo/internal/services"
)

// EntityEventHandler receives entity change notifications from the CRUD
// collaborator and keeps the distance index in step. The entity record is
// already committed by the caller; this service only resolves positions and
// maintains derived distances.
type EntityEventHandler struct {
	Store    ports.EntityStore
	Geocoder ports.Geocoder
	Engine   *services.DistanceEngine
	Retries  *services.GeocodeRetryQueue
}

// Upserted handles POST /events/entity. When the entity carries no usable
// position, the address is geocoded inline; a geocode failure leaves the
// sentinel position and schedules a background retry instead of failing the
// event.
func (h *EntityEventHandler) Upserted(w http.ResponseWriter, r *http.Request) {
	var req dto.EntityEventRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	kind, err := domain.ParseEntityKind(strings.TrimSpace(req.Kind))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.Entity.ID == "" {
		writeError(w, r, http.StatusBadRequest, "entity.id is required")
		return
	}

	entity, err := h.Store.GetEntity(r.Context(), kind, req.Entity.ID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "entity not found")
			return
		}
		writeError(w, r, http.StatusInternalServerError, "load entity failed")
		return
	}

	resp := dto.EntityEventResponse{Status: "accepted", EntityID: entity.ID}
	positioned := entity.Positioned()

	if !positioned && entity.Address != "" {
		pos, gerr := h.Geocoder.Resolve(r.Context(), entity.Address, entity.Name)
		if gerr != nil {
			log.Printf("op=entity_event kind=%s id=%s geocode_err=%v", kind, entity.ID, gerr)
			h.Retries.Enqueue(kind, entity.ID, entity.Address)
			resp.RetryScheduled = true
			writeJSON(w, r, http.StatusAccepted, resp)
			return
		}
		if err := h.Store.UpdatePosition(r.Context(), kind, entity.ID, pos); err != nil {
			writeError(w, r, http.StatusInternalServerError, "persist position failed")
			return
		}
		positioned = true
	}

	if err := h.Engine.OnEntityUpserted(r.Context(), kind, entity.ID); err != nil {
		log.Printf("op=entity_event kind=%s id=%s err=%v", kind, entity.ID, err)
		writeError(w, r, http.StatusInternalServerError, "distance update failed")
		return
	}

	resp.Positioned = positioned
	writeJSON(w, r, http.StatusAccepted, resp)
}

// Deleted handles DELETE /events/entity/{kind}/{id}.
func (h *EntityEventHandler) Deleted(w http.ResponseWriter, r *http.Request) {
	kind, err := domain.ParseEntityKind(r.PathValue("kind"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	id := r.PathValue("id")
	if id == "" {
		writeError(w, r, http.StatusBadRequest, "entity id is required")
		return
	}

	if err := h.Engine.OnEntityDeleted(r.Context(), kind, id); err != nil {
		log.Printf("op=entity_event_delete kind=%s id=%s err=%v", kind, id, err)
		writeError(w, r, http.StatusInternalServerError, "distance cleanup failed")
		return
	}

	writeJSON(w, r, http.StatusAccepted, map[string]string{"status": "accepted", "entity_id": id})
}
