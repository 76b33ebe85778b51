package service

import (
	"io"
	"testing"
	"time"

	"gymdesk/internal/events"
	"gymdesk/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent []tgbotapi.MessageConfig
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{}, nil
}

func TestTelegramNotifier(t *testing.T) {
	logger := zerolog.New(io.Discard)

	t.Run("NotifyBooking", func(t *testing.T) {
		sender := &fakeSender{}
		notifier := NewTelegramNotifier(sender, []int64{1, 2}, "", &logger)

		booking := &models.Booking{
			ID:         7,
			TrainerID:  "t1",
			Date:       time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
			TimeSlot:   "8:00 AM - 9:00 AM",
			MemberName: "Anna",
			Status:     models.StatusPending,
		}
		notifier.NotifyBooking(events.EventBookingCreated, booking)

		require.Len(t, sender.sent, 2)
		assert.Equal(t, int64(1), sender.sent[0].ChatID)
		assert.Equal(t, int64(2), sender.sent[1].ChatID)
		assert.Contains(t, sender.sent[0].Text, "Anna")
		assert.Contains(t, sender.sent[0].Text, "10.09.2026")
		assert.Contains(t, sender.sent[0].Text, "8:00 AM - 9:00 AM")
	})

	t.Run("SubscribeDeliversBusEvents", func(t *testing.T) {
		sender := &fakeSender{}
		notifier := NewTelegramNotifier(sender, []int64{5}, "", &logger)
		bus := events.NewEventBus()
		notifier.Subscribe(bus)

		err := bus.PublishJSON(events.EventBookingCancelled, events.BookingEventPayload{
			BookingID:  3,
			TrainerID:  "t2",
			MemberName: "Boris",
			Status:     models.StatusCancelled,
		})
		require.NoError(t, err)

		require.Len(t, sender.sent, 1)
		assert.Contains(t, sender.sent[0].Text, "Boris")
		assert.Contains(t, sender.sent[0].Text, "отмен")
	})

	t.Run("NilBookingIgnored", func(t *testing.T) {
		sender := &fakeSender{}
		notifier := NewTelegramNotifier(sender, []int64{5}, "", &logger)
		notifier.NotifyBooking(events.EventBookingCreated, nil)
		assert.Empty(t, sender.sent)
	})
}
