package listing

import (
	"strings"

	"github.com/Muga-ai/findahome/models"
)

// Form carries the user-entered listing fields of a create or edit session.
// Numeric fields are pointers because "present and numeric" is part of the
// validation contract: a nil pointer means the field was left blank or did
// not parse.
type Form struct {
	Title       string
	Description string
	Location    string
	Price       *float64
	Beds        *float64
	Baths       *float64
	Size        *float64
	VirtualTour string
	IsFeatured  bool
	Status      models.ListingStatus
}

// invalidFields returns the names of fields that fail the submission
// preconditions, in a stable order.
func (f Form) invalidFields() []string {
	var fields []string
	if strings.TrimSpace(f.Title) == "" {
		fields = append(fields, "title")
	}
	if strings.TrimSpace(f.Location) == "" {
		fields = append(fields, "location")
	}
	for _, n := range []struct {
		name  string
		value *float64
	}{
		{"price", f.Price},
		{"beds", f.Beds},
		{"baths", f.Baths},
		{"size", f.Size},
	} {
		if n.value == nil || *n.value < 0 {
			fields = append(fields, n.name)
		}
	}
	if f.Status != "" {
		switch f.Status {
		case models.StatusActive, models.StatusPending, models.StatusSold:
		default:
			fields = append(fields, "status")
		}
	}
	return fields
}

// virtualTourValue normalizes a blank virtual tour to nil so the persisted
// document carries null rather than an empty string.
func (f Form) virtualTourValue() *string {
	v := strings.TrimSpace(f.VirtualTour)
	if v == "" {
		return nil
	}
	return &v
}
