package service

import "github.com/Freeeeeet/clinic_booking/internal/model"

const (
	ResultConfirmed = "CONFIRMED"
	ResultFailed    = "FAILED"
)

// BookingResult итог одной попытки бронирования: CONFIRMED или FAILED с причиной
type BookingResult struct {
	Status    string        `json:"status"`
	BookingID int64         `json:"booking_id,omitempty"`
	Reason    FailureReason `json:"reason,omitempty"`
}

// ResultOf сворачивает ответ Book в BookingResult
func ResultOf(booking *model.Booking, err error) BookingResult {
	if err != nil {
		return BookingResult{Status: ResultFailed, Reason: KindOf(err).Reason()}
	}
	return BookingResult{Status: ResultConfirmed, BookingID: booking.ID}
}
