package schedule

import (
	"fmt"
	"time"
)

// ValidateDate rejects calendar days before today. Time of day is ignored on
// both sides; today itself is valid.
func ValidateDate(candidate, today time.Time) error {
	if dayOf(candidate).Before(dayOf(today)) {
		return ErrDateInPast
	}
	return nil
}

// ValidateAge checks the member age against configured bounds.
func ValidateAge(age, min, max int) error {
	if age < min || age > max {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrAgeOutOfRange, age, min, max)
	}
	return nil
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
