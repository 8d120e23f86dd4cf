package repository

import (
	"context"
	"errors"

	"github.com/Freeeeeet/clinic_booking/internal/model"
)

var (
	// ErrSlotNotFound слот с таким id не существует
	ErrSlotNotFound = errors.New("slot not found")
	// ErrLockTimeout не дождались блокировки слота за отведённое время
	ErrLockTimeout = errors.New("slot lock wait timeout")
	// ErrSlotNotLocked запись в слот без предварительной блокировки
	ErrSlotNotLocked = errors.New("slot is not locked by this transaction")
	// ErrTxClosed транзакция уже зафиксирована или откатана
	ErrTxClosed = errors.New("transaction is already closed")
	// ErrSeatOverflow инкремент привёл бы к booked_seats > total_seats
	ErrSeatOverflow = errors.New("booked seats would exceed total seats")
)

// Tx единица работы с эксклюзивной блокировкой слота.
// Блокировка берётся в GetSlotForUpdate и держится до Commit или Rollback.
// Изменения видны другим читателям только после Commit.
type Tx interface {
	GetSlotForUpdate(ctx context.Context, slotID int64) (*model.Slot, error)
	IncrementBookedSeats(ctx context.Context, slotID int64) error
	CreateBooking(ctx context.Context, booking *model.Booking) error
	Commit(ctx context.Context) error
	// Rollback после Commit ничего не делает
	Rollback(ctx context.Context) error
}

// Store хранилище слотов, врачей и записей.
// GetSlot и GetSlotListing возвращают nil, nil, если слота нет.
type Store interface {
	Begin(ctx context.Context) (Tx, error)

	ListSlots(ctx context.Context) ([]*model.SlotListing, error)
	GetSlotListing(ctx context.Context, slotID int64) (*model.SlotListing, error)
	GetSlot(ctx context.Context, slotID int64) (*model.Slot, error)
	CountConfirmedBookings(ctx context.Context, slotID int64) (int, error)
	ListBookingsBySlot(ctx context.Context, slotID int64) ([]*model.Booking, error)

	CreateDoctor(ctx context.Context, doctor *model.Doctor) error
	CreateSlot(ctx context.Context, slot *model.Slot) error
	CountSlots(ctx context.Context) (int, error)

	Ping(ctx context.Context) error
	Close()
}
