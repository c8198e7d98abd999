package supplier

import (
	"fmt"
	"math"
)

// MaxRating is the upper bound of a supplier rating.
const MaxRating = 5.0

// Supplier is the display profile attached to search results.
type Supplier struct {
	ID     string  `json:"id"`
	Name   string  `json:"name,omitempty"`
	INN    string  `json:"inn,omitempty"`
	Rating float64 `json:"rating"`
	Color  string  `json:"color,omitempty"`
}

// New validates and creates a supplier profile.
func New(id, name, inn string, rating float64, color string) (Supplier, error) {
	if id == "" {
		return Supplier{}, fmt.Errorf("supplier id is required")
	}
	if math.IsNaN(rating) || rating < 0 || rating > MaxRating {
		return Supplier{}, fmt.Errorf("rating must be between 0 and %g", MaxRating)
	}
	return Supplier{ID: id, Name: name, INN: inn, Rating: rating, Color: color}, nil
}

// DisplayName returns the name, falling back to the id.
func (s Supplier) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return s.ID
}
