package schedule

import (
	"errors"
	"fmt"
)

var (
	ErrSlotUnavailable = errors.New("time slot is already booked")
	ErrUnknownSlot     = errors.New("time slot is not in the canonical set")
	ErrDateInPast      = errors.New("date is in the past")
	ErrDateTooFar      = errors.New("date is beyond the booking horizon")
	ErrAgeOutOfRange   = errors.New("age is out of the allowed range")
)

// AvailableSlots returns all slots minus the booked ones, preserving the
// canonical display order of all.
func AvailableSlots(all []string, booked map[string]struct{}) []string {
	free := make([]string, 0, len(all))
	for _, slot := range all {
		if _, taken := booked[slot]; taken {
			continue
		}
		free = append(free, slot)
	}
	return free
}

// BookedSet converts a slot list into the set form the validators take.
func BookedSet(slots []string) map[string]struct{} {
	set := make(map[string]struct{}, len(slots))
	for _, s := range slots {
		set[s] = struct{}{}
	}
	return set
}

// ValidateSlot checks a candidate slot against a freshly fetched booked set.
// The booked set can change between form render and submit, so callers must
// re-run this right before the insert; even then the storage uniqueness
// constraint on (trainer, date, slot) is the real guarantee, not this check.
func ValidateSlot(candidate string, booked map[string]struct{}) error {
	if _, taken := booked[candidate]; taken {
		return ErrSlotUnavailable
	}
	return nil
}

// ValidateKnownSlot rejects labels outside the canonical set. IDs and labels
// are compared as exact strings; a mismatched type upstream is a caller bug.
func ValidateKnownSlot(candidate string, all []string) error {
	for _, slot := range all {
		if slot == candidate {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownSlot, candidate)
}
