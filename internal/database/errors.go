package database

import (
	"errors"

	"gymdesk/internal/schedule"
)

var (
	// ErrSlotUnavailable surfaces both the pre-insert check and the unique
	// index on (trainer_id, date, time_slot). Shared with the schedule
	// package so callers match one sentinel at every layer.
	ErrSlotUnavailable = schedule.ErrSlotUnavailable

	ErrBookingNotFound        = errors.New("booking not found")
	ErrTrainerNotFound        = errors.New("trainer not found")
	ErrConcurrentModification = errors.New("booking was modified concurrently")
)
