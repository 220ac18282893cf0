// pkg/core/mapstate.go
package core

import (
	"encoding/json"
	"sort"
)

// CountyOverlay describes the optional county boundary layer. The overlay is
// rendered iff Enabled and at least one county is selected.
type CountyOverlay struct {
	Enabled          bool     `json:"enabled"`
	SelectedCounties []string `json:"selectedCounties"`
}

// Active reports whether the overlay should be rendered.
func (o CountyOverlay) Active() bool {
	return o.Enabled && len(o.SelectedCounties) > 0
}

// NormalizeCounties sorts and de-duplicates a county name list, giving the
// selection set semantics with a deterministic order.
func NormalizeCounties(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// MapState is the complete serializable editor state: camera pose, basemap,
// categorized pins, active category and county overlay. It is the sole unit
// exchanged with the template store and must round-trip losslessly.
type MapState struct {
	Camera          Camera
	Basemap         Basemap
	PinsByCategory  map[Category][]Pin
	CurrentCategory Category
	CountyOverlay   CountyOverlay
}

// NewMapState returns an empty state with every bucket initialized, the
// street basemap and the sales category active.
func NewMapState() MapState {
	s := MapState{
		Basemap:         BasemapStreet,
		PinsByCategory:  make(map[Category][]Pin, len(Categories)),
		CurrentCategory: CategorySales,
		CountyOverlay:   CountyOverlay{SelectedCounties: []string{}},
	}
	for _, c := range Categories {
		s.PinsByCategory[c] = []Pin{}
	}
	return s
}

// mapStateDoc is the persisted document shape. Pins are stored in one array
// per category; older documents carry a single flat "pins" array instead.
type mapStateDoc struct {
	Center           LonLat         `json:"center"`
	Zoom             float64        `json:"zoom"`
	Bearing          float64        `json:"bearing"`
	Pitch            float64        `json:"pitch"`
	Basemap          Basemap        `json:"basemap"`
	SalePins         []Pin          `json:"salePins"`
	RentPins         []Pin          `json:"rentPins"`
	LandPins         []Pin          `json:"landPins"`
	LegacyPins       []Pin          `json:"pins,omitempty"`
	CurrentCategory  Category       `json:"currentCategory"`
	CountyBoundaries *CountyOverlay `json:"countyBoundaries,omitempty"`
}

// MarshalJSON encodes the state in the current document shape. Every bucket
// is always written, empty buckets as [].
func (s MapState) MarshalJSON() ([]byte, error) {
	doc := mapStateDoc{
		Center:          s.Camera.Center,
		Zoom:            s.Camera.Zoom,
		Bearing:         s.Camera.Bearing,
		Pitch:           s.Camera.Pitch,
		Basemap:         s.Basemap,
		SalePins:        bucketOrEmpty(s.PinsByCategory, CategorySales),
		RentPins:        bucketOrEmpty(s.PinsByCategory, CategoryRent),
		LandPins:        bucketOrEmpty(s.PinsByCategory, CategoryLand),
		CurrentCategory: s.CurrentCategory,
		CountyBoundaries: &CountyOverlay{
			Enabled:          s.CountyOverlay.Enabled,
			SelectedCounties: NormalizeCounties(s.CountyOverlay.SelectedCounties),
		},
	}
	return json.Marshal(doc)
}

// UnmarshalJSON decodes either document shape. A legacy flat "pins" array is
// normalized into the sales bucket; missing fields fall back to defaults.
func (s *MapState) UnmarshalJSON(data []byte) error {
	var doc mapStateDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	out := NewMapState()
	out.Camera = Camera{Center: doc.Center, Zoom: doc.Zoom, Bearing: doc.Bearing, Pitch: doc.Pitch}
	if doc.Basemap.Valid() {
		out.Basemap = doc.Basemap
	}
	if doc.CurrentCategory.Valid() {
		out.CurrentCategory = doc.CurrentCategory
	}
	if doc.CountyBoundaries != nil {
		out.CountyOverlay = CountyOverlay{
			Enabled:          doc.CountyBoundaries.Enabled,
			SelectedCounties: NormalizeCounties(doc.CountyBoundaries.SelectedCounties),
		}
	}

	if doc.SalePins == nil && doc.RentPins == nil && doc.LandPins == nil && doc.LegacyPins != nil {
		// Legacy shape: everything lands in sales.
		out.PinsByCategory[CategorySales] = normalizeBucket(doc.LegacyPins, CategorySales)
	} else {
		out.PinsByCategory[CategorySales] = normalizeBucket(doc.SalePins, CategorySales)
		out.PinsByCategory[CategoryRent] = normalizeBucket(doc.RentPins, CategoryRent)
		out.PinsByCategory[CategoryLand] = normalizeBucket(doc.LandPins, CategoryLand)
	}

	*s = out
	return nil
}

func bucketOrEmpty(m map[Category][]Pin, c Category) []Pin {
	if pins := m[c]; pins != nil {
		return pins
	}
	return []Pin{}
}

// normalizeBucket stamps the owning category on pins that lack one. Legacy
// documents stored pins without a category field.
func normalizeBucket(pins []Pin, c Category) []Pin {
	out := make([]Pin, len(pins))
	copy(out, pins)
	for i := range out {
		if !out[i].Category.Valid() {
			out[i].Category = c
		}
	}
	return out
}
