// pkg/core/category.go
package core

import "fmt"

// Category classifies a pin. Pins in different categories are numbered and
// shown independently.
type Category string

const (
	CategorySales Category = "sales"
	CategoryRent  Category = "rent"
	CategoryLand  Category = "land"
)

// Categories lists all categories in a fixed order.
var Categories = []Category{CategorySales, CategoryRent, CategoryLand}

// bucketKeys maps each category to its key in the persisted document.
var bucketKeys = map[Category]string{
	CategorySales: "salePins",
	CategoryRent:  "rentPins",
	CategoryLand:  "landPins",
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	_, ok := bucketKeys[c]
	return ok
}

// BucketKey returns the persisted document key for this category's pins.
func (c Category) BucketKey() string {
	return bucketKeys[c]
}

// ParseCategory converts a string to a Category.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}
