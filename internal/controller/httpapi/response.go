package httpapi

import (
	"encoding/json"
	"net/http"
)

const (
	msgBookingSuccessful = "Booking successful"
	msgSlotFull          = "Slot Full"
	msgSlotNotFound      = "Slot not found"
	msgInternalError     = "Internal Error"
	msgInvalidBody       = "Invalid request body"
	msgServerError       = "Server error"
	msgTooManyRequests   = "Too many requests"
)

// BookResponse ответ на POST /book
type BookResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	BookingID int64  `json:"bookingId,omitempty"`
}

// ErrorResponse ответ с ошибкой для остальных маршрутов
type ErrorResponse struct {
	Error   string         `json:"error"`
	Details map[string]any `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}
