package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/Nour0506/LogistiCo/internal/api/dto"
	"github.com/Nour0506/LogistiCo/internal/domain"
	"github.com/Nour0506/LogistiCo/internal/services"
)

const dateLayout = "2006-01-02"

type PlanHandler struct {
	Planner *services.RoutePlanner
}

// Plan builds distribution plans for the requested contracts. A contract
// failure never fails the batch; the response carries both plans and errors.
// Only a batch where every contract failed is reported as a client error.
func (h *PlanHandler) Plan(w http.ResponseWriter, r *http.Request) {
	var req dto.PlanRequest

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

	if len(req.ContractIDs) == 0 {
		writeError(w, r, http.StatusBadRequest, "contract_ids is required")
		return
	}

	planDate := time.Now()
	if req.PlanDate != "" {
		parsed, err := time.Parse(dateLayout, req.PlanDate)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "plan_date must be YYYY-MM-DD")
			return
		}
		planDate = parsed
	}

	result, err := h.Planner.PlanRoutes(r.Context(), req.ContractIDs, planDate)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "planning failed")
		return
	}

	resp := toListPlanResponse(result)
	if len(resp.Plans) == 0 && len(resp.Errors) > 0 {
		writeJSON(w, r, http.StatusBadRequest, resp)
		return
	}
	writeJSON(w, r, http.StatusOK, resp)
}

func toListPlanResponse(result *services.PlanResult) dto.ListPlanResponse {
	resp := dto.ListPlanResponse{
		Plans:  make([]dto.PlanResponse, 0, len(result.Plans)),
		Errors: make([]dto.PlanErrorResponse, 0, len(result.Errors)),
	}
	for _, p := range result.Plans {
		resp.Plans = append(resp.Plans, toPlanResponse(p))
	}
	for _, e := range result.Errors {
		resp.Errors = append(resp.Errors, dto.PlanErrorResponse{ContractID: e.ContractID, Message: e.Message})
	}
	return resp
}

func toPlanResponse(p *domain.DistributionPlan) dto.PlanResponse {
	out := dto.PlanResponse{
		ContractID:   p.ContractID,
		ContractName: p.ContractName,
		DeliveryDate: p.DeliveryDate.Format(dateLayout),
		DayOfWeek:    p.DayOfWeek,
		Warehouse:    p.Warehouse,
		Supplier:     p.Supplier,
		SalePoints:   p.SalePoints,
		Product:      p.Product,
		Quantity:     p.Quantity,
		Route:        toRouteResponse(p.Route),
	}
	if p.Truck != nil {
		out.Truck = &dto.TruckResponse{ID: p.Truck.ID, Vehicle: p.Truck.Vehicle, Type: p.Truck.Type}
	}
	if p.Transporter != nil {
		out.Transporter = &dto.TransporterResponse{
			ID:        p.Transporter.ID,
			FirstName: p.Transporter.FirstName,
			LastName:  p.Transporter.LastName,
		}
	}
	return out
}

func toRouteResponse(r domain.Route) dto.RouteResponse {
	waypoints := make([]dto.WaypointResponse, 0, len(r.Waypoints))
	for _, wp := range r.Waypoints {
		waypoints = append(waypoints, dto.WaypointResponse{
			Kind:                 string(wp.Kind),
			EntityID:             wp.EntityID,
			Name:                 wp.Name,
			Location:             wp.Location.CoordsToList(),
			DistanceFromPrevious: wp.DistanceFromPrevious,
			CumulativeDistance:   wp.CumulativeDistance,
			Sequence:             wp.Sequence,
		})
	}
	return dto.RouteResponse{
		Waypoints:          waypoints,
		TotalDistanceKm:    r.TotalDistanceKm,
		TotalTimeMinutes:   r.TotalTimeMinutes,
		SalesPointsVisited: r.SalesPointsVisited,
		HasSupplier:        r.HasSupplier,
	}
}
