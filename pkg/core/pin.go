// pkg/core/pin.go
package core

import (
	"encoding/json"
	"fmt"
)

// LonLat is a WGS84 coordinate pair. It marshals as a [lon, lat] array to
// match the persisted document shape.
type LonLat struct {
	Lon float64
	Lat float64
}

// MarshalJSON encodes the coordinate as a two-element array.
func (p LonLat) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.Lon, p.Lat})
}

// UnmarshalJSON decodes a [lon, lat] array.
func (p *LonLat) UnmarshalJSON(data []byte) error {
	var arr []float64
	if err := json.Unmarshal(data, &arr); err != nil {
		return err
	}
	if len(arr) != 2 {
		return fmt.Errorf("coordinate must have 2 elements, got %d", len(arr))
	}
	p.Lon = arr[0]
	p.Lat = arr[1]
	return nil
}

// Pin is a user-placed point annotation. ID is the pin's identity for its
// whole lifetime; DisplayNumber is only a label and carries no uniqueness
// guarantee. Category is fixed at creation.
type Pin struct {
	ID            string   `json:"id"`
	Position      LonLat   `json:"position"`
	DisplayNumber int      `json:"displayNumber"`
	Category      Category `json:"category"`
}
