package service

import (
	"context"
	"errors"
	"time"

	"gymdesk/internal/database"
	"gymdesk/internal/domain"
	"gymdesk/internal/events"
	"gymdesk/internal/metrics"
	"gymdesk/internal/models"
	"gymdesk/internal/schedule"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type BookingService struct {
	repo           domain.Repository
	eventBus       domain.EventPublisher
	exportWorker   domain.ExportWorker
	timeSlots      []string
	minAge         int
	maxAge         int
	maxBookingDays int
	logger         *zerolog.Logger
}

func NewBookingService(repo domain.Repository, eventBus domain.EventPublisher, exportWorker domain.ExportWorker, timeSlots []string, minAge, maxAge, maxBookingDays int, logger *zerolog.Logger) *BookingService {
	if len(timeSlots) == 0 {
		timeSlots = append([]string(nil), models.DefaultTimeSlots...)
	}
	if minAge <= 0 {
		minAge = models.DefaultMinAge
	}
	if maxAge <= 0 {
		maxAge = models.DefaultMaxAge
	}
	if maxBookingDays <= 0 {
		maxBookingDays = models.DefaultMaxBookingDays
	}
	return &BookingService{
		repo:           repo,
		eventBus:       eventBus,
		exportWorker:   exportWorker,
		timeSlots:      timeSlots,
		minAge:         minAge,
		maxAge:         maxAge,
		maxBookingDays: maxBookingDays,
		logger:         logger,
	}
}

func (s *BookingService) ValidateBookingDate(date time.Time) error {
	if err := schedule.ValidateDate(date, time.Now()); err != nil {
		return err
	}

	// Проверяем максимальную дату
	maxDate := time.Now().AddDate(0, 0, s.maxBookingDays)
	if date.After(maxDate) {
		return schedule.ErrDateTooFar
	}

	return nil
}

func (s *BookingService) CreateBooking(ctx context.Context, booking *models.Booking) error {
	if err := s.ValidateBookingDate(booking.Date); err != nil {
		return err
	}
	if err := schedule.ValidateAge(booking.MemberAge, s.minAge, s.maxAge); err != nil {
		return err
	}
	if err := schedule.ValidateKnownSlot(booking.TimeSlot, s.timeSlots); err != nil {
		return err
	}

	// Повторная проверка по свежему состоянию. Слот мог уйти между
	// рендером формы и сабмитом; окончательную гарантию даёт уникальный
	// индекс в базе, а не эта проверка.
	booked, err := s.repo.ListBookedSlots(ctx, booking.TrainerID, booking.Date)
	if err != nil {
		return err
	}
	if err := schedule.ValidateSlot(booking.TimeSlot, schedule.BookedSet(booked)); err != nil {
		metrics.IncSlotConflict()
		return err
	}

	if booking.Reference == "" {
		booking.Reference = uuid.NewString()
	}
	if booking.Status == "" {
		booking.Status = models.StatusPending
	}

	if err := s.repo.CreateBookingWithLock(ctx, booking); err != nil {
		if errors.Is(err, database.ErrSlotUnavailable) {
			metrics.IncSlotConflict()
		}
		return err
	}

	metrics.IncBookingCreated()
	s.publishEvent(events.EventBookingCreated, booking)
	s.enqueueExport(ctx)

	return nil
}

func (s *BookingService) ConfirmBooking(ctx context.Context, bookingID int64, version int64) error {
	return s.updateStatus(ctx, bookingID, version, models.StatusConfirmed, events.EventBookingConfirmed)
}

func (s *BookingService) CancelBooking(ctx context.Context, bookingID int64, version int64) error {
	return s.updateStatus(ctx, bookingID, version, models.StatusCancelled, events.EventBookingCancelled)
}

func (s *BookingService) CompleteBooking(ctx context.Context, bookingID int64, version int64) error {
	return s.updateStatus(ctx, bookingID, version, models.StatusCompleted, events.EventBookingCompleted)
}

func (s *BookingService) updateStatus(ctx context.Context, bookingID int64, version int64, status, eventType string) error {
	err := s.repo.UpdateBookingStatusWithVersion(ctx, bookingID, version, status)
	if err != nil {
		return err
	}

	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err == nil {
		s.publishEvent(eventType, booking)
		s.enqueueExport(ctx)
	}

	return nil
}

// RescheduleBooking moves a booking to a new date and slot. The booking's own
// slot never conflicts with itself, so moving within the same day to the same
// slot is a no-op that succeeds.
func (s *BookingService) RescheduleBooking(ctx context.Context, bookingID int64, version int64, newDate time.Time, newSlot string) error {
	if err := s.ValidateBookingDate(newDate); err != nil {
		return err
	}
	if err := schedule.ValidateKnownSlot(newSlot, s.timeSlots); err != nil {
		return err
	}

	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return err
	}

	booked, err := s.repo.ListBookedSlotsExcluding(ctx, booking.TrainerID, newDate, bookingID)
	if err != nil {
		return err
	}
	if err := schedule.ValidateSlot(newSlot, schedule.BookedSet(booked)); err != nil {
		metrics.IncSlotConflict()
		return err
	}

	err = s.repo.RescheduleBookingWithVersion(ctx, bookingID, version, newDate, newSlot)
	if err != nil {
		if errors.Is(err, database.ErrSlotUnavailable) {
			metrics.IncSlotConflict()
		}
		return err
	}

	updated, err := s.repo.GetBooking(ctx, bookingID)
	if err == nil {
		s.publishEvent(events.EventBookingRescheduled, updated)
		s.enqueueExport(ctx)
	}

	return nil
}

// GetAvailableSlots returns free slots for the trainer and date in canonical
// display order. The result is advisory and may be stale by submit time.
func (s *BookingService) GetAvailableSlots(ctx context.Context, trainerID string, date time.Time) ([]string, error) {
	booked, err := s.repo.ListBookedSlots(ctx, trainerID, date)
	if err != nil {
		return nil, err
	}
	return schedule.AvailableSlots(s.timeSlots, schedule.BookedSet(booked)), nil
}

func (s *BookingService) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	return s.repo.GetBooking(ctx, id)
}

func (s *BookingService) GetBookingByReference(ctx context.Context, reference string) (*models.Booking, error) {
	return s.repo.GetBookingByReference(ctx, reference)
}

func (s *BookingService) GetBookingsByDateRange(ctx context.Context, start, end time.Time) ([]*models.Booking, error) {
	return s.repo.GetBookingsByDateRange(ctx, start, end)
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID:  booking.ID,
		Reference:  booking.Reference,
		TrainerID:  booking.TrainerID,
		Date:       booking.Date,
		TimeSlot:   booking.TimeSlot,
		MemberName: booking.MemberName,
		Status:     booking.Status,
		Comment:    booking.Comment,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("booking_id", booking.ID).Msg("publish event error")
	}
}

func (s *BookingService) enqueueExport(ctx context.Context) {
	if s.exportWorker == nil {
		return
	}
	if err := s.exportWorker.EnqueueScheduleExport(ctx, time.Time{}, time.Time{}); err != nil {
		s.logger.Error().Err(err).Msg("export enqueue error")
	}
}
