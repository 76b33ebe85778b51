package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gymdesk/internal/models"

	"github.com/mattn/go-sqlite3"
)

const bookingColumns = `id, reference, trainer_id, date(date), time_slot, member_name,
                 member_age, member_email, status, comment, created_at,
                 updated_at, version`

// ListBookedSlots returns the authoritative set of taken slot labels for a
// trainer and calendar day. Cancelled bookings do not hold a slot.
func (db *DB) ListBookedSlots(ctx context.Context, trainerID string, date time.Time) ([]string, error) {
	return db.listBookedSlots(ctx, trainerID, date, 0)
}

// ListBookedSlotsExcluding is ListBookedSlots minus one booking, so an edit
// that keeps its own slot never conflicts with itself.
func (db *DB) ListBookedSlotsExcluding(ctx context.Context, trainerID string, date time.Time, excludeBookingID int64) ([]string, error) {
	return db.listBookedSlots(ctx, trainerID, date, excludeBookingID)
}

func (db *DB) listBookedSlots(ctx context.Context, trainerID string, date time.Time, excludeID int64) ([]string, error) {
	query := `SELECT time_slot FROM bookings
              WHERE trainer_id = ? AND date(date) = date(?) AND status != ? AND id != ?`
	rows, err := db.QueryContext(ctx, query, trainerID, date.Format("2006-01-02"), models.StatusCancelled, excludeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list booked slots: %w", err)
	}
	defer rows.Close()

	var slots []string
	for rows.Next() {
		var slot string
		if err := rows.Scan(&slot); err != nil {
			return nil, fmt.Errorf("failed to scan booked slot: %w", err)
		}
		slots = append(slots, slot)
	}
	return slots, rows.Err()
}

// CreateBookingWithLock re-checks the slot inside a transaction and inserts.
// The unique index on (trainer_id, date, time_slot) backs the check: even a
// race that slips past the count lands on ErrSlotUnavailable, not a dup row.
func (db *DB) CreateBookingWithLock(ctx context.Context, booking *models.Booking) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var taken int
	queryCount := `SELECT COUNT(*) FROM bookings
                   WHERE trainer_id = ? AND date(date) = date(?) AND time_slot = ? AND status != ?`
	err = tx.QueryRowContext(ctx, queryCount, booking.TrainerID,
		booking.Date.Format("2006-01-02"), booking.TimeSlot, models.StatusCancelled).Scan(&taken)
	if err != nil {
		return fmt.Errorf("failed to check slot in tx: %w", err)
	}
	if taken > 0 {
		return ErrSlotUnavailable
	}

	queryInsert := `INSERT INTO bookings (
                reference, trainer_id, date, time_slot, member_name, member_age,
                member_email, status, comment, created_at, updated_at, version
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := tx.ExecContext(ctx, queryInsert,
		booking.Reference,
		booking.TrainerID,
		booking.Date.Format("2006-01-02"),
		booking.TimeSlot,
		booking.MemberName,
		booking.MemberAge,
		booking.MemberEmail,
		booking.Status,
		booking.Comment,
		now,
		now,
		1,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrSlotUnavailable
		}
		return fmt.Errorf("failed to insert booking in tx: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id in tx: %w", err)
	}
	booking.ID = id
	booking.CreatedAt = now
	booking.UpdatedAt = now
	booking.Version = 1

	return tx.Commit()
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	return db.scanBookingRow(db.QueryRowContext(ctx, query, id))
}

func (db *DB) GetBookingByReference(ctx context.Context, reference string) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE reference = ?`
	return db.scanBookingRow(db.QueryRowContext(ctx, query, reference))
}

func (db *DB) scanBookingRow(row *sql.Row) (*models.Booking, error) {
	var booking models.Booking
	var dateStr string
	err := row.Scan(
		&booking.ID, &booking.Reference, &booking.TrainerID, &dateStr, &booking.TimeSlot,
		&booking.MemberName, &booking.MemberAge, &booking.MemberEmail, &booking.Status,
		&booking.Comment, &booking.CreatedAt, &booking.UpdatedAt, &booking.Version,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	booking.Date, err = time.Parse("2006-01-02", dateStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse booking date %s: %w", dateStr, err)
	}
	return &booking, nil
}

func (db *DB) UpdateBookingStatusWithVersion(ctx context.Context, id, fromVersion int64, status string) error {
	query := `UPDATE bookings SET status = ?, version = version + 1, updated_at = ? WHERE id = ? AND version = ?`
	result, err := db.ExecContext(ctx, query, status, time.Now(), id, fromVersion)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrConcurrentModification
	}
	return nil
}

// RescheduleBookingWithVersion moves a booking to a new date and slot. The
// target slot is re-checked inside the transaction with the booking's own row
// excluded, so keeping the original slot on an edit is always allowed.
func (db *DB) RescheduleBookingWithVersion(ctx context.Context, id, fromVersion int64, newDate time.Time, newSlot string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var trainerID string
	err = tx.QueryRowContext(ctx, `SELECT trainer_id FROM bookings WHERE id = ?`, id).Scan(&trainerID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrBookingNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load booking for reschedule: %w", err)
	}

	var taken int
	queryCount := `SELECT COUNT(*) FROM bookings
                   WHERE trainer_id = ? AND date(date) = date(?) AND time_slot = ? AND status != ? AND id != ?`
	err = tx.QueryRowContext(ctx, queryCount, trainerID,
		newDate.Format("2006-01-02"), newSlot, models.StatusCancelled, id).Scan(&taken)
	if err != nil {
		return fmt.Errorf("failed to check slot for reschedule: %w", err)
	}
	if taken > 0 {
		return ErrSlotUnavailable
	}

	query := `UPDATE bookings SET date = ?, time_slot = ?, status = ?, version = version + 1, updated_at = ?
              WHERE id = ? AND version = ?`
	result, err := tx.ExecContext(ctx, query,
		newDate.Format("2006-01-02"), newSlot, models.StatusRescheduled, time.Now(), id, fromVersion)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrSlotUnavailable
		}
		return fmt.Errorf("failed to reschedule booking: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrConcurrentModification
	}

	return tx.Commit()
}

func (db *DB) GetBookingsByDateRange(ctx context.Context, startDate, endDate time.Time) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + `
              FROM bookings WHERE date(date) >= ? AND date(date) <= ? ORDER BY date ASC, time_slot ASC`
	rows, err := db.QueryContext(ctx, query, startDate.Format("2006-01-02"), endDate.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("failed to get bookings by date range: %w", err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		b := &models.Booking{}
		var dateStr string
		err := rows.Scan(
			&b.ID, &b.Reference, &b.TrainerID, &dateStr, &b.TimeSlot,
			&b.MemberName, &b.MemberAge, &b.MemberEmail, &b.Status,
			&b.Comment, &b.CreatedAt, &b.UpdatedAt, &b.Version,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		b.Date, err = time.Parse("2006-01-02", dateStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse booking date %s: %w", dateStr, err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func (db *DB) GetTrainerBookings(ctx context.Context, trainerID string, startDate, endDate time.Time) ([]*models.Booking, error) {
	bookings, err := db.GetBookingsByDateRange(ctx, startDate, endDate)
	if err != nil {
		return nil, err
	}

	filtered := bookings[:0]
	for _, b := range bookings {
		if b.TrainerID == trainerID {
			filtered = append(filtered, b)
		}
	}
	return filtered, nil
}

func (db *DB) GetDailyBookings(ctx context.Context, startDate, endDate time.Time) (map[string][]*models.Booking, error) {
	bookings, err := db.GetBookingsByDateRange(ctx, startDate, endDate)
	if err != nil {
		return nil, err
	}

	daily := make(map[string][]*models.Booking)
	for _, b := range bookings {
		dateKey := b.Date.Format("2006-01-02")
		daily[dateKey] = append(daily[dateKey], b)
	}
	return daily, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
