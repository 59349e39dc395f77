package domain

// Truck statuses as reported by the fleet CRUD layer.
const (
	TruckAvailable   = "available"
	TruckInTransit   = "in transit"
	TruckMaintenance = "maintenance"
)

// Transporter statuses.
const (
	TransporterAvailable = "available"
	TransporterOnMission = "on mission"
	TransporterOnLeave   = "on leave"
)

// Truck is a delivery vehicle. Type is the licence category required to
// drive it (A1, A, B, B+E, C, C+E, D, D1, D+E, H).
type Truck struct {
	ID        string
	Vehicle   string
	Type      string
	Status    string
	Capacity  float64
	CompanyID string
}

// CanCarry reports whether the truck has capacity for the given quantity.
func (t *Truck) CanCarry(quantity float64) bool {
	return t.Capacity >= quantity
}

// Transporter is a driver. Licence is the driving-licence category and must
// match the truck type for an assignment.
type Transporter struct {
	ID        string
	FirstName string
	LastName  string
	CompanyID string
	Licence   string
	Status    string
}

// CanDrive reports whether the transporter may be assigned to the truck.
// Tenant isolation is a configurable policy, not a hard invariant: when
// strictCompany is false, cross-company assignments are allowed.
func (tr *Transporter) CanDrive(t *Truck, strictCompany bool) bool {
	if tr.Licence != t.Type {
		return false
	}
	if strictCompany && tr.CompanyID != t.CompanyID {
		return false
	}
	return true
}
