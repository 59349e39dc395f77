package dto

type OptimizeSourceRequest struct {
	SalePointIDs     []string `json:"sales_point_ids"`
	ProductID        string   `json:"product_id"`
	ProductName      string   `json:"product_name"`
	RequiredQuantity float64  `json:"required_quantity"`
	WarehouseID      string   `json:"warehouse_id,omitempty"`
}

type RankedSourceResponse struct {
	EntityID  string  `json:"entity_id"`
	Name      string  `json:"name"`
	Available float64 `json:"available"`
	Score     float64 `json:"score"`
}

type OptimizeSourceResponse struct {
	Warehouse  RankedSourceResponse   `json:"warehouse"`
	Supplier   *RankedSourceResponse  `json:"supplier,omitempty"`
	Shortfall  float64                `json:"shortfall,omitempty"`
	Candidates []RankedSourceResponse `json:"candidates"`
}
