package domain

import (
	"context"
	"time"

	"gymdesk/internal/cart"
	"gymdesk/internal/models"
)

type Repository interface {
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	GetBookingByReference(ctx context.Context, reference string) (*models.Booking, error)
	CreateBookingWithLock(ctx context.Context, booking *models.Booking) error
	UpdateBookingStatusWithVersion(ctx context.Context, id int64, version int64, status string) error
	RescheduleBookingWithVersion(ctx context.Context, id int64, version int64, newDate time.Time, newSlot string) error
	ListBookedSlots(ctx context.Context, trainerID string, date time.Time) ([]string, error)
	ListBookedSlotsExcluding(ctx context.Context, trainerID string, date time.Time, excludeBookingID int64) ([]string, error)
	GetBookingsByDateRange(ctx context.Context, start, end time.Time) ([]*models.Booking, error)
	GetTrainerBookings(ctx context.Context, trainerID string, start, end time.Time) ([]*models.Booking, error)
	GetDailyBookings(ctx context.Context, start, end time.Time) (map[string][]*models.Booking, error)
	GetActiveTrainers(ctx context.Context) ([]models.Trainer, error)
	GetTrainerByID(ctx context.Context, id string) (*models.Trainer, error)
	UpsertTrainers(ctx context.Context, trainers []models.Trainer) error
	DeactivateTrainer(ctx context.Context, id string) error
	SetTrainers(trainers []models.Trainer)
}

type CartRepository interface {
	GetCart(ctx context.Context, sessionID string) (*cart.Cart, error)
	SaveCart(ctx context.Context, c *cart.Cart) error
	ClearCart(ctx context.Context, sessionID string) error
	CheckRateLimit(ctx context.Context, sessionID string, limit int, window time.Duration) (bool, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

type ExportWorker interface {
	EnqueueScheduleExport(ctx context.Context, startDate, endDate time.Time) error
}

type BookingService interface {
	ValidateBookingDate(date time.Time) error
	CreateBooking(ctx context.Context, booking *models.Booking) error
	ConfirmBooking(ctx context.Context, bookingID int64, version int64) error
	CancelBooking(ctx context.Context, bookingID int64, version int64) error
	CompleteBooking(ctx context.Context, bookingID int64, version int64) error
	RescheduleBooking(ctx context.Context, bookingID int64, version int64, newDate time.Time, newSlot string) error
	GetAvailableSlots(ctx context.Context, trainerID string, date time.Time) ([]string, error)
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	GetBookingByReference(ctx context.Context, reference string) (*models.Booking, error)
	GetBookingsByDateRange(ctx context.Context, start, end time.Time) ([]*models.Booking, error)
}

type CartService interface {
	AddItem(ctx context.Context, sessionID, productID string, quantity int) (*cart.Cart, error)
	RemoveItem(ctx context.Context, sessionID, productID string, quantity int) (*cart.Cart, error)
	SetItemQuantity(ctx context.Context, sessionID, productID string, quantity int) (*cart.Cart, error)
	ClearCart(ctx context.Context, sessionID string) error
	GetSummary(ctx context.Context, sessionID string) (*cart.Summary, error)
	Checkout(ctx context.Context, sessionID string) (*cart.Summary, error)
}

type TrainerService interface {
	GetActiveTrainers(ctx context.Context) ([]models.Trainer, error)
	GetTrainerByID(ctx context.Context, id string) (*models.Trainer, error)
	DeactivateTrainer(ctx context.Context, id string) error
}
