package database

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"gymdesk/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestConcurrentBooking(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	date := time.Now().AddDate(0, 0, 1)
	slot := "9:00 AM - 10:00 AM"

	const numGoroutines = 10
	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	results := make(chan error, numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			defer wg.Done()
			booking := &models.Booking{
				Reference:  fmt.Sprintf("ref-race-%d", id),
				TrainerID:  "tr-1",
				Date:       date,
				TimeSlot:   slot,
				MemberName: fmt.Sprintf("Member %d", id),
				MemberAge:  30,
				Status:     models.StatusPending,
			}
			results <- db.CreateBookingWithLock(ctx, booking)
		}(i)
	}

	wg.Wait()
	close(results)

	successCount := 0
	failCount := 0
	for err := range results {
		if err == nil {
			successCount++
		} else {
			assert.True(t, errors.Is(err, ErrSlotUnavailable), "unexpected error: %v", err)
			failCount++
		}
	}

	// Exactly one writer wins the slot
	assert.Equal(t, 1, successCount, "only one booking should take the slot")
	assert.Equal(t, numGoroutines-1, failCount, "all other bookings should fail")

	// Verify in DB
	booked, err := db.ListBookedSlots(ctx, "tr-1", date)
	assert.NoError(t, err)
	assert.Equal(t, []string{slot}, booked)

	bookings, err := db.GetBookingsByDateRange(ctx, date, date)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(bookings))
}
