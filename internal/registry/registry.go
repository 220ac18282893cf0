// Package registry is the single source of truth for pins, independent of
// any rendering concern. All mutation goes through it; the map view binder
// only mirrors what it holds.
package registry

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/wright-research/jlawson-maps/pkg/core"
)

// ErrInvalidNumber is returned when a renumber request is not a positive integer.
var ErrInvalidNumber = errors.New("display number must be a positive integer")

// ErrPinNotFound is returned when the pin id is unknown.
var ErrPinNotFound = errors.New("pin not found")

// ErrUnknownCategory is returned for a category outside the closed set.
var ErrUnknownCategory = errors.New("unknown category")

// location addresses a pin inside its category bucket.
type location struct {
	category core.Category
	idx      int
}

// Registry owns the ordered per-category pin sequences. Pin ids come from a
// process-wide high-water-mark counter so an id is never reused, even across
// restore cycles.
type Registry struct {
	mu     sync.RWMutex
	pins   map[core.Category][]core.Pin
	index  map[string]location
	nextID int
	active core.Category
}

// New creates an empty registry with the sales category active.
func New() *Registry {
	r := &Registry{
		pins:   make(map[core.Category][]core.Pin, len(core.Categories)),
		index:  make(map[string]location),
		active: core.CategorySales,
	}
	for _, c := range core.Categories {
		r.pins[c] = []core.Pin{}
	}
	return r
}

// AddPin appends a pin to the category's sequence. The display number is the
// current bucket length plus one; numbering is independent per category.
func (r *Registry) AddPin(category core.Category, pos core.LonLat) (core.Pin, error) {
	if !category.Valid() {
		return core.Pin{}, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	pin := core.Pin{
		ID:            fmt.Sprintf("pin-%d", r.nextID),
		Position:      pos,
		DisplayNumber: len(r.pins[category]) + 1,
		Category:      category,
	}
	r.index[pin.ID] = location{category: category, idx: len(r.pins[category])}
	r.pins[category] = append(r.pins[category], pin)
	return pin, nil
}

// MovePin updates a pin's position in place. Called at drag frequency, so it
// must stay O(1).
func (r *Registry) MovePin(id string, pos core.LonLat) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	loc, ok := r.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrPinNotFound, id)
	}
	r.pins[loc.category][loc.idx].Position = pos
	return nil
}

// RenumberPin overwrites a pin's display number. Numbers are labels, not
// identities: duplicates across pins are allowed.
func (r *Registry) RenumberPin(id string, number int) error {
	if number <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidNumber, number)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	loc, ok := r.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrPinNotFound, id)
	}
	r.pins[loc.category][loc.idx].DisplayNumber = number
	return nil
}

// DeletePin removes a pin from its category sequence. Sibling display
// numbers are left alone; gaps are expected.
func (r *Registry) DeletePin(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	loc, ok := r.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrPinNotFound, id)
	}
	bucket := r.pins[loc.category]
	r.pins[loc.category] = append(bucket[:loc.idx], bucket[loc.idx+1:]...)
	delete(r.index, id)
	for i := loc.idx; i < len(r.pins[loc.category]); i++ {
		r.index[r.pins[loc.category][i].ID] = location{category: loc.category, idx: i}
	}
	return nil
}

// SetActiveCategory changes which category receives new pins.
func (r *Registry) SetActiveCategory(c core.Category) error {
	if !c.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, c)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = c
	return nil
}

// ActiveCategory returns the category new pins are created in.
func (r *Registry) ActiveCategory() core.Category {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active
}

// Get returns a pin by id.
func (r *Registry) Get(id string) (core.Pin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	loc, ok := r.index[id]
	if !ok {
		return core.Pin{}, false
	}
	return r.pins[loc.category][loc.idx], true
}

// Pins returns a copy of one category's ordered sequence.
func (r *Registry) Pins(c core.Category) []core.Pin {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.Pin, len(r.pins[c]))
	copy(out, r.pins[c])
	return out
}

// All returns copies of every pin in category order.
func (r *Registry) All() []core.Pin {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []core.Pin
	for _, c := range core.Categories {
		out = append(out, r.pins[c]...)
	}
	return out
}

// Serialize returns a deep copy of the per-category sequences.
func (r *Registry) Serialize() map[core.Category][]core.Pin {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[core.Category][]core.Pin, len(core.Categories))
	for _, c := range core.Categories {
		bucket := make([]core.Pin, len(r.pins[c]))
		copy(bucket, r.pins[c])
		out[c] = bucket
	}
	return out
}

// Restore bulk-replaces the registry contents and advances the id counter
// past the highest numeric suffix found, so ids allocated after a reload
// never collide with restored ones.
func (r *Registry) Restore(data map[core.Category][]core.Pin) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.index = make(map[string]location)
	maxID := 0
	for _, c := range core.Categories {
		bucket := make([]core.Pin, len(data[c]))
		copy(bucket, data[c])
		r.pins[c] = bucket
		for i, p := range bucket {
			r.index[p.ID] = location{category: c, idx: i}
			if n, ok := numericSuffix(p.ID); ok && n > maxID {
				maxID = n
			}
		}
	}
	if maxID > r.nextID {
		r.nextID = maxID
	}
}

// numericSuffix extracts n from a "pin-<n>" id.
func numericSuffix(id string) (int, bool) {
	rest, ok := strings.CutPrefix(id, "pin-")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return n, true
}
