package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gymdesk/internal/metrics"
	"gymdesk/internal/models"
)

const dateLayout = "2006-01-02"

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GET /api/v1/availability/{trainerID}?date=YYYY-MM-DD
func (s *HTTPServer) handleAvailability(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("availability")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	const prefix = "/api/v1/availability/"
	trainerID := strings.TrimSpace(strings.TrimPrefix(r.URL.Path, prefix))
	if trainerID == "" || strings.Contains(trainerID, "/") {
		writeError(w, http.StatusBadRequest, "trainer_id is required")
		return
	}

	dateStr := strings.TrimSpace(r.URL.Query().Get("date"))
	if dateStr == "" {
		writeError(w, http.StatusBadRequest, "date is required")
		return
	}
	date, err := time.Parse(dateLayout, dateStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
		return
	}

	if _, err := s.trainers.GetTrainerByID(r.Context(), trainerID); err != nil {
		writeServiceError(w, err)
		return
	}

	slots, err := s.bookings.GetAvailableSlots(r.Context(), trainerID, date)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"trainer_id":      trainerID,
		"date":            dateStr,
		"available_slots": slots,
	})
}

// GET /api/v1/trainers
func (s *HTTPServer) handleTrainers(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("trainers")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	trainers, err := s.trainers.GetActiveTrainers(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"trainers": trainers})
}

// POST /api/v1/bookings | GET /api/v1/bookings?start=...&end=...
func (s *HTTPServer) handleBookings(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("bookings")
	switch r.Method {
	case http.MethodPost:
		s.createBooking(w, r)
	case http.MethodGet:
		s.listBookings(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

type createBookingRequest struct {
	TrainerID   string `json:"trainer_id"`
	Date        string `json:"date"`
	TimeSlot    string `json:"time_slot"`
	MemberName  string `json:"member_name"`
	MemberAge   int    `json:"member_age"`
	MemberEmail string `json:"member_email"`
	Comment     string `json:"comment"`
}

func (s *HTTPServer) createBooking(w http.ResponseWriter, r *http.Request) {
	var body createBookingRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if strings.TrimSpace(body.TrainerID) == "" {
		writeError(w, http.StatusBadRequest, "trainer_id is required")
		return
	}
	if strings.TrimSpace(body.MemberName) == "" {
		writeError(w, http.StatusBadRequest, "member_name is required")
		return
	}
	date, err := time.Parse(dateLayout, strings.TrimSpace(body.Date))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
		return
	}

	if _, err := s.trainers.GetTrainerByID(r.Context(), body.TrainerID); err != nil {
		writeServiceError(w, err)
		return
	}

	booking := &models.Booking{
		TrainerID:   body.TrainerID,
		Date:        date,
		TimeSlot:    body.TimeSlot,
		MemberName:  strings.TrimSpace(body.MemberName),
		MemberAge:   body.MemberAge,
		MemberEmail: strings.TrimSpace(body.MemberEmail),
		Comment:     body.Comment,
	}

	if err := s.bookings.CreateBooking(r.Context(), booking); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, booking)
}

func (s *HTTPServer) listBookings(w http.ResponseWriter, r *http.Request) {
	startStr := strings.TrimSpace(r.URL.Query().Get("start"))
	endStr := strings.TrimSpace(r.URL.Query().Get("end"))
	if startStr == "" || endStr == "" {
		writeError(w, http.StatusBadRequest, "start and end are required")
		return
	}

	start, err := time.Parse(dateLayout, startStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start date")
		return
	}
	end, err := time.Parse(dateLayout, endStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid end date")
		return
	}

	bookings, err := s.bookings.GetBookingsByDateRange(r.Context(), start, end)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})
}

// Paths under /api/v1/bookings/:
//
//	GET  {id} or {reference}
//	POST {id}/confirm, {id}/cancel, {id}/complete, {id}/reschedule
func (s *HTTPServer) handleBookingByPath(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("bookings")
	const prefix = "/api/v1/bookings/"
	rest := strings.TrimPrefix(r.URL.Path, prefix)
	parts := strings.Split(strings.Trim(rest, "/"), "/")

	switch {
	case len(parts) == 1 && parts[0] != "":
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		s.getBooking(w, r, parts[0])
	case len(parts) == 2:
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		id, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid booking id")
			return
		}
		s.updateBooking(w, r, id, parts[1])
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *HTTPServer) getBooking(w http.ResponseWriter, r *http.Request, key string) {
	var booking *models.Booking
	var err error
	if id, convErr := strconv.ParseInt(key, 10, 64); convErr == nil {
		booking, err = s.bookings.GetBooking(r.Context(), id)
	} else {
		booking, err = s.bookings.GetBookingByReference(r.Context(), key)
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

type updateBookingRequest struct {
	Version int64  `json:"version"`
	NewDate string `json:"new_date,omitempty"`
	NewSlot string `json:"new_slot,omitempty"`
}

func (s *HTTPServer) updateBooking(w http.ResponseWriter, r *http.Request, id int64, action string) {
	var body updateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	var err error
	switch action {
	case "confirm":
		err = s.bookings.ConfirmBooking(r.Context(), id, body.Version)
	case "cancel":
		err = s.bookings.CancelBooking(r.Context(), id, body.Version)
	case "complete":
		err = s.bookings.CompleteBooking(r.Context(), id, body.Version)
	case "reschedule":
		var newDate time.Time
		newDate, err = time.Parse(dateLayout, strings.TrimSpace(body.NewDate))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid new_date; expected YYYY-MM-DD")
			return
		}
		err = s.bookings.RescheduleBooking(r.Context(), id, body.Version, newDate, body.NewSlot)
	default:
		writeError(w, http.StatusNotFound, "unknown action")
		return
	}

	if err != nil {
		writeServiceError(w, err)
		return
	}

	booking, err := s.bookings.GetBooking(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

// Paths under /api/v1/cart/:
//
//	GET  {session}
//	POST {session}/add, {session}/remove, {session}/set, {session}/clear, {session}/checkout
func (s *HTTPServer) handleCart(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("cart")
	const prefix = "/api/v1/cart/"
	rest := strings.TrimPrefix(r.URL.Path, prefix)
	parts := strings.Split(strings.Trim(rest, "/"), "/")

	sessionID := strings.TrimSpace(parts[0])
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "session id is required")
		return
	}

	switch {
	case len(parts) == 1:
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		summary, err := s.carts.GetSummary(r.Context(), sessionID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, summary)
	case len(parts) == 2:
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		s.mutateCart(w, r, sessionID, parts[1])
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

type cartItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (s *HTTPServer) mutateCart(w http.ResponseWriter, r *http.Request, sessionID, action string) {
	switch action {
	case "clear":
		if err := s.carts.ClearCart(r.Context(), sessionID); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
		return
	case "checkout":
		summary, err := s.carts.Checkout(r.Context(), sessionID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, summary)
		return
	}

	var body cartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(body.ProductID) == "" {
		writeError(w, http.StatusBadRequest, "product_id is required")
		return
	}

	// quantity omitted means one unit for add/remove
	if body.Quantity == 0 && (action == "add" || action == "remove") {
		body.Quantity = 1
	}

	var err error
	switch action {
	case "add":
		_, err = s.carts.AddItem(r.Context(), sessionID, body.ProductID, body.Quantity)
	case "remove":
		_, err = s.carts.RemoveItem(r.Context(), sessionID, body.ProductID, body.Quantity)
	case "set":
		_, err = s.carts.SetItemQuantity(r.Context(), sessionID, body.ProductID, body.Quantity)
	default:
		writeError(w, http.StatusNotFound, "unknown action")
		return
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}

	summary, err := s.carts.GetSummary(r.Context(), sessionID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
