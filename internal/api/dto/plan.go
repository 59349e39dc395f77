package dto

type PlanRequest struct {
	ContractIDs []string `json:"contract_ids"`
	PlanDate    string   `json:"plan_date"`
}

type WaypointResponse struct {
	Kind                 string    `json:"kind"`
	EntityID             string    `json:"entity_id"`
	Name                 string    `json:"name"`
	Location             []float64 `json:"location"`
	DistanceFromPrevious float64   `json:"distance_from_previous_km"`
	CumulativeDistance   float64   `json:"cumulative_distance_km"`
	Sequence             int       `json:"sequence"`
}

type RouteResponse struct {
	Waypoints          []WaypointResponse `json:"waypoints"`
	TotalDistanceKm    float64            `json:"total_distance_km"`
	TotalTimeMinutes   int                `json:"total_time_minutes"`
	SalesPointsVisited int                `json:"sales_points_visited"`
	HasSupplier        bool               `json:"has_supplier"`
}

type TruckResponse struct {
	ID      string `json:"id"`
	Vehicle string `json:"vehicle"`
	Type    string `json:"type"`
}

type TransporterResponse struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type PlanResponse struct {
	ContractID   string               `json:"contract_id"`
	ContractName string               `json:"contract_name"`
	DeliveryDate string               `json:"delivery_date"`
	DayOfWeek    string               `json:"day_of_week"`
	Warehouse    string               `json:"warehouse"`
	Supplier     string               `json:"supplier,omitempty"`
	SalePoints   []string             `json:"sale_points"`
	Product      string               `json:"product"`
	Quantity     float64              `json:"quantity"`
	Truck        *TruckResponse       `json:"truck,omitempty"`
	Transporter  *TransporterResponse `json:"transporter,omitempty"`
	Route        RouteResponse        `json:"route"`
}

type PlanErrorResponse struct {
	ContractID string `json:"contract_id"`
	Message    string `json:"message"`
}

type ListPlanResponse struct {
	Plans  []PlanResponse      `json:"plans"`
	Errors []PlanErrorResponse `json:"errors"`
}
