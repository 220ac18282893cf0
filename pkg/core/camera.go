// pkg/core/camera.go
package core

import "fmt"

// Camera is a saved viewport pose.
type Camera struct {
	Center  LonLat
	Zoom    float64
	Bearing float64
	Pitch   float64
}

// Basemap is the selectable background map style.
type Basemap string

const (
	BasemapStreet    Basemap = "street"
	BasemapGray      Basemap = "gray"
	BasemapSatellite Basemap = "satellite"
)

// Valid reports whether b is a known basemap.
func (b Basemap) Valid() bool {
	switch b {
	case BasemapStreet, BasemapGray, BasemapSatellite:
		return true
	}
	return false
}

// ParseBasemap converts a string to a Basemap.
func ParseBasemap(s string) (Basemap, error) {
	b := Basemap(s)
	if !b.Valid() {
		return "", fmt.Errorf("unknown basemap %q", s)
	}
	return b, nil
}

// Dark reports whether the basemap has dark imagery. Used to pick a
// contrasting overlay border color.
func (b Basemap) Dark() bool {
	return b == BasemapSatellite
}
