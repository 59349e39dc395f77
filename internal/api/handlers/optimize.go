package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/Nour0506/LogistiCo/internal/api/dto"
	"github.com/Nour0506/LogistiCo/internal/services"
)

type OptimizeHandler struct {
	Optimizer *services.SourceOptimizer
}

// Source recommends the warehouse, and when its stock falls short the
// supplier, best placed to feed a prospective contract.
func (h *OptimizeHandler) Source(w http.ResponseWriter, r *http.Request) {
	var req dto.OptimizeSourceRequest

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

	rec, err := h.Optimizer.FindOptimalSource(r.Context(), services.SourceRequest{
		SalePointIDs: req.SalePointIDs,
		ProductID:    req.ProductID,
		ProductName:  req.ProductName,
		Quantity:     req.RequiredQuantity,
		WarehouseID:  req.WarehouseID,
	})
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	resp := dto.OptimizeSourceResponse{
		Warehouse:  toRankedSource(rec.Warehouse),
		Shortfall:  rec.Shortfall,
		Candidates: make([]dto.RankedSourceResponse, 0, len(rec.Candidates)),
	}
	if rec.Supplier != nil {
		s := toRankedSource(*rec.Supplier)
		resp.Supplier = &s
	}
	for _, c := range rec.Candidates {
		resp.Candidates = append(resp.Candidates, toRankedSource(c))
	}

	writeJSON(w, r, http.StatusOK, resp)
}

func toRankedSource(s services.RankedSource) dto.RankedSourceResponse {
	return dto.RankedSourceResponse{
		EntityID:  s.EntityID,
		Name:      s.Name,
		Available: s.Available,
		Score:     s.Score,
	}
}
