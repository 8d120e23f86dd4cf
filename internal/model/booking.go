package model

import "time"

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
)

type Booking struct {
	ID        int64         `json:"id"`
	UserID    string        `json:"user_id"` // непрозрачный идентификатор клиента
	SlotID    int64         `json:"slot_id"`
	Status    BookingStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
}
