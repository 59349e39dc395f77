package dto

type EntityEventRequest struct {
	Kind   string        `json:"kind"`
	Entity EntityPayload `json:"entity"`
}

type EntityPayload struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Address string   `json:"address"`
	Lon     *float64 `json:"lon"`
	Lat     *float64 `json:"lat"`
}

type EntityEventResponse struct {
	Status     string `json:"status"`
	EntityID   string `json:"entity_id"`
	Positioned bool   `json:"positioned"`
	// RetryScheduled is set when geocoding failed and the address was
	// queued for background re-resolution.
	RetryScheduled bool `json:"retry_scheduled,omitempty"`
}

type RebuildResponse struct {
	Status string `json:"status"`
}
