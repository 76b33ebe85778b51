package service

import (
	"encoding/json"
	"fmt"

	"gymdesk/internal/events"
	"gymdesk/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// TelegramSender is the subset of the bot API the notifier needs.
type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier pushes booking updates to a list of staff chats.
type TelegramNotifier struct {
	bot       TelegramSender
	chatIDs   []int64
	parseMode string
	logger    *zerolog.Logger
}

func NewTelegramNotifier(bot TelegramSender, chatIDs []int64, parseMode string, logger *zerolog.Logger) *TelegramNotifier {
	return &TelegramNotifier{
		bot:       bot,
		chatIDs:   chatIDs,
		parseMode: parseMode,
		logger:    logger,
	}
}

// Subscribe wires the notifier to booking events on the bus.
func (n *TelegramNotifier) Subscribe(bus *events.EventBus) {
	if bus == nil {
		return
	}
	for _, eventType := range []string{
		events.EventBookingCreated,
		events.EventBookingConfirmed,
		events.EventBookingCancelled,
		events.EventBookingRescheduled,
	} {
		et := eventType
		bus.Subscribe(et, func(event *events.Event) error {
			var payload events.BookingEventPayload
			if err := json.Unmarshal(event.Payload, &payload); err != nil {
				n.logger.Error().Err(err).Str("event_type", et).Msg("decode booking event")
				return err
			}
			n.broadcast(n.formatPayload(et, payload))
			return nil
		})
	}
}

// NotifyBooking sends a direct notification outside the event bus path.
func (n *TelegramNotifier) NotifyBooking(eventType string, booking *models.Booking) {
	if booking == nil {
		return
	}
	n.broadcast(n.formatPayload(eventType, events.BookingEventPayload{
		BookingID:  booking.ID,
		Reference:  booking.Reference,
		TrainerID:  booking.TrainerID,
		Date:       booking.Date,
		TimeSlot:   booking.TimeSlot,
		MemberName: booking.MemberName,
		Status:     booking.Status,
		Comment:    booking.Comment,
	}))
}

func (n *TelegramNotifier) broadcast(text string) {
	for _, chatID := range n.chatIDs {
		msg := tgbotapi.NewMessage(chatID, text)
		msg.ParseMode = n.parseMode
		if _, err := n.bot.Send(msg); err != nil {
			n.logger.Error().Err(err).Int64("chat_id", chatID).Msg("telegram send error")
		}
	}
}

func (n *TelegramNotifier) formatPayload(eventType string, p events.BookingEventPayload) string {
	var title string
	switch eventType {
	case events.EventBookingCreated:
		title = "Новая запись"
	case events.EventBookingConfirmed:
		title = "Запись подтверждена"
	case events.EventBookingCancelled:
		title = "Запись отменена"
	case events.EventBookingRescheduled:
		title = "Запись перенесена"
	default:
		title = "Обновление записи"
	}

	text := fmt.Sprintf("%s\n%s, %s\nТренер: %s\nКлиент: %s\nСтатус: %s",
		title,
		p.Date.Format("02.01.2006"),
		p.TimeSlot,
		p.TrainerID,
		p.MemberName,
		p.Status,
	)
	if p.Comment != "" {
		text += "\nКомментарий: " + p.Comment
	}
	return text
}
