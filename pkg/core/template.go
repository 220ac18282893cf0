// pkg/core/template.go
package core

import "time"

// Template is a named, persisted snapshot of map state.
type Template struct {
	ID        string
	Name      string
	Note      string
	CreatedAt time.Time
	UpdatedAt time.Time
	MapState  MapState
}

// TemplateSummary is the listing row shown in the template picker.
type TemplateSummary struct {
	ID        string
	Name      string
	Note      string
	UpdatedAt time.Time
}
