package domain

// Immutable geographic coordinates (longitude, latitude).
//
// The zero value (0,0) is reserved as a sentinel meaning "position not yet
// resolved" (geocoding pending or failed). It is never treated as a
// legitimate business location.
type Coordinates struct {
	Lon float64
	Lat float64
}

// Valid reports whether the coordinates describe a usable position:
// both components in range and not the (0,0) sentinel.
func (c Coordinates) Valid() bool {
	if c.Lon == 0 && c.Lat == 0 {
		return false
	}
	return c.Lon >= -180 && c.Lon <= 180 && c.Lat >= -90 && c.Lat <= 90
}

// Return coordinates as [lon, lat] for external API compatibility.
func (c Coordinates) CoordsToList() []float64 { return []float64{c.Lon, c.Lat} }
