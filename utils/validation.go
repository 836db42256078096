package utils

import "strconv"

// ParseOptionalNumber converts a form field to a numeric pointer. A blank or
// non-numeric value yields nil, which the submission validation reports as a
// missing field.
func ParseOptionalNumber(raw string) *float64 {
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}
