package model

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"github.com/wright-research/jlawson-maps/pkg/core"
)

// DatabaseModels is a list of all the structs exported here which represent
// tables in the database schema
var DatabaseModels = []interface{}{
	&Template{},
}

// Template is the persisted template row. The map state is stored as one
// JSON document; its shape is owned by pkg/core.
type Template struct {
	ID        string         `json:"id" gorm:"primaryKey;size:36"`
	Name      string         `json:"name" gorm:"size:255;not null;index"`
	Note      string         `json:"note" gorm:"size:2047"`
	MapState  datatypes.JSON `json:"mapState"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt" gorm:"index"`
}

// ToCore decodes the row into the domain type.
func (t *Template) ToCore() (core.Template, error) {
	var state core.MapState
	if len(t.MapState) > 0 {
		if err := json.Unmarshal(t.MapState, &state); err != nil {
			return core.Template{}, fmt.Errorf("decoding map state for template %s: %w", t.ID, err)
		}
	} else {
		state = core.NewMapState()
	}
	return core.Template{
		ID:        t.ID,
		Name:      t.Name,
		Note:      t.Note,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
		MapState:  state,
	}, nil
}

// Summary returns the listing row.
func (t *Template) Summary() core.TemplateSummary {
	return core.TemplateSummary{
		ID:        t.ID,
		Name:      t.Name,
		Note:      t.Note,
		UpdatedAt: t.UpdatedAt,
	}
}

// EncodeState serializes a MapState for storage.
func EncodeState(state core.MapState) (datatypes.JSON, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("encoding map state: %w", err)
	}
	return datatypes.JSON(data), nil
}
