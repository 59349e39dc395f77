package domain

import "time"

// WaypointKind tags what a route visits at a given stop.
type WaypointKind string

const (
	WaypointWarehouse       WaypointKind = "warehouse"
	WaypointSupplier        WaypointKind = "supplier"
	WaypointSalePoint       WaypointKind = "salespoint"
	WaypointWarehouseReturn WaypointKind = "warehouse-return"
)

// Waypoint is a single stop in a delivery route. Sequence numbers start at 1
// and increase strictly; CumulativeDistance is non-decreasing along the route.
type Waypoint struct {
	Kind                 WaypointKind
	EntityID             string
	Name                 string
	Location             Coordinates
	DistanceFromPrevious float64
	CumulativeDistance   float64
	Sequence             int
}

// Route is the ordered waypoint sequence for one delivery, with aggregate
// distance and time estimates. It is immutable planning data.
type Route struct {
	Waypoints          []Waypoint
	TotalDistanceKm    float64
	TotalTimeMinutes   int
	SalesPointsVisited int
	HasSupplier        bool
}

// AssignedTruck is the vehicle selected for a plan.
type AssignedTruck struct {
	ID      string
	Vehicle string
	Type    string
}

// AssignedTransporter is the driver selected for a plan. A plan may carry no
// transporter when none matches and the policy tolerates it.
type AssignedTransporter struct {
	ID        string
	FirstName string
	LastName  string
}

// DistributionPlan is one computed delivery route for one contract on one
// delivery date.
type DistributionPlan struct {
	ContractID   string
	ContractName string
	DeliveryDate time.Time
	DayOfWeek    string
	Warehouse    string
	Supplier     string
	SalePoints   []string
	Product      string
	Quantity     float64
	Truck        *AssignedTruck
	Transporter  *AssignedTransporter
	Route        Route
}
