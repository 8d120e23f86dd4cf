package model

import "time"

type Slot struct {
	ID          int64     `json:"id"`
	DoctorID    int64     `json:"doctor_id"`
	StartTime   time.Time `json:"start_time"`
	TotalSeats  int       `json:"total_seats"`  // задаётся при создании, не меняется
	BookedSeats int       `json:"booked_seats"` // меняет только BookingService
}

// HasFreeSeat сообщает, осталось ли в слоте хотя бы одно место
func (s *Slot) HasFreeSeat() bool {
	return s.BookedSeats < s.TotalSeats
}

// SlotListing слот вместе с именем врача, в том виде, в котором его отдаём наружу
type SlotListing struct {
	ID          int64     `json:"id"`
	DoctorName  string    `json:"doctor_name"`
	StartTime   time.Time `json:"start_time"`
	TotalSeats  int       `json:"total_seats"`
	BookedSeats int       `json:"booked_seats"`
}

// FreeSeats возвращает количество свободных мест (не меньше нуля)
func (s *SlotListing) FreeSeats() int {
	if s.BookedSeats >= s.TotalSeats {
		return 0
	}
	return s.TotalSeats - s.BookedSeats
}

// SlotAudit сверка счётчика мест с фактическим числом подтверждённых записей
type SlotAudit struct {
	SlotID            int64 `json:"slot_id"`
	TotalSeats        int   `json:"total_seats"`
	BookedSeats       int   `json:"booked_seats"`
	ConfirmedBookings int   `json:"confirmed_bookings"`
}

// Consistent проверяет инвариант 0 <= booked <= total и booked == confirmed
func (a SlotAudit) Consistent() bool {
	return a.BookedSeats >= 0 &&
		a.BookedSeats <= a.TotalSeats &&
		a.BookedSeats == a.ConfirmedBookings
}
