package models

const (
	StatusPending     = "pending"
	StatusConfirmed   = "confirmed"
	StatusCancelled   = "cancelled"
	StatusRescheduled = "rescheduled"
	StatusCompleted   = "completed"
)

const (
	// DefaultCartTTL время жизни корзины сессии в Redis
	DefaultCartTTL = 24 * 60 * 60 // 24 часа в секундах

	// DefaultMinAge / DefaultMaxAge границы возраста для записи к тренеру
	DefaultMinAge = 18
	DefaultMaxAge = 65

	// DefaultMaxBookingDays максимальный горизонт записи
	DefaultMaxBookingDays = 90

	// WorkerQueueSize размер очереди воркера экспорта
	WorkerQueueSize = 128

	// RateLimitRequests количество запросов в окне
	RateLimitRequests = 20

	// RateLimitWindow окно ограничения частоты запросов
	RateLimitWindow = 60 // 1 минута в секундах

	// DefaultExportRangeDays диапазон расписания в экспорте по умолчанию
	DefaultExportRangeDays = 14
)

// DefaultTimeSlots канонический набор слотов; переопределяется в конфиге.
var DefaultTimeSlots = []string{
	"8:00 AM - 9:00 AM",
	"9:00 AM - 10:00 AM",
	"10:00 AM - 11:00 AM",
	"11:00 AM - 12:00 PM",
	"12:00 PM - 1:00 PM",
	"1:00 PM - 2:00 PM",
	"2:00 PM - 3:00 PM",
	"3:00 PM - 4:00 PM",
	"4:00 PM - 5:00 PM",
}
