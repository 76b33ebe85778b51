package models

import "time"

type Booking struct {
	ID          int64     `json:"id"`
	Reference   string    `json:"reference"`
	TrainerID   string    `json:"trainer_id"`
	Date        time.Time `json:"date"`
	TimeSlot    string    `json:"time_slot"`
	MemberName  string    `json:"member_name"`
	MemberAge   int       `json:"member_age"`
	MemberEmail string    `json:"member_email"`
	Status      string    `json:"status"` // pending, confirmed, cancelled, rescheduled, completed
	Comment     string    `json:"comment"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Version     int64     `json:"version"`
}

// SlotAvailability describes one slot of a trainer's day for schedule views.
type SlotAvailability struct {
	Date      time.Time `json:"date"`
	TrainerID string    `json:"trainer_id"`
	TimeSlot  string    `json:"time_slot"`
	Booked    bool      `json:"booked"`
}
