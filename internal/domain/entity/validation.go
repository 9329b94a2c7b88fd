package entity

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Rating bounds (inclusive).
const (
	MinRating = 1
	MaxRating = 5
)

// DateLayout is the layout used when the server assigns an article date.
const DateLayout = "2006-01-02"

var dateLayouts = []string{
	DateLayout,
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// ParseDate parses an article date string. Accepted layouts are
// "2006-01-02", RFC3339 and "2006-01-02 15:04:05".
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &ValidationError{Field: "createDate", Message: fmt.Sprintf("invalid date %q", s)}
}

// ValidateRating checks that a rating is a finite number within [MinRating, MaxRating].
func ValidateRating(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &ValidationError{Field: "rating", Message: "must be a finite number"}
	}
	if v < MinRating || v > MaxRating {
		return &ValidationError{Field: "rating", Message: fmt.Sprintf("must be between %d and %d", MinRating, MaxRating)}
	}
	return nil
}

// Required returns a ValidationError when value is blank.
func Required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{Field: field, Message: "is required"}
	}
	return nil
}
