package service

import (
	"errors"
	"fmt"
)

// ErrorKind категория отказа при бронировании
type ErrorKind int

const (
	// KindInternal неожиданная ошибка
	KindInternal ErrorKind = iota
	// KindNotFound слота с таким id нет
	KindNotFound
	// KindCapacityExceeded в слоте не осталось мест
	KindCapacityExceeded
	// KindTransientInfra не дождались блокировки или потеряли соединение
	KindTransientInfra
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindCapacityExceeded:
		return "capacity_exceeded"
	case KindTransientInfra:
		return "transient_infra"
	default:
		return "internal"
	}
}

// FailureReason причина отказа, которую видит клиент
type FailureReason string

const (
	ReasonNotFound FailureReason = "NOT_FOUND"
	ReasonSlotFull FailureReason = "SLOT_FULL"
	ReasonInternal FailureReason = "INTERNAL"
)

// Reason сводит категорию к причине для клиента: инфраструктурные сбои неотличимы от внутренних
func (k ErrorKind) Reason() FailureReason {
	switch k {
	case KindNotFound:
		return ReasonNotFound
	case KindCapacityExceeded:
		return ReasonSlotFull
	default:
		return ReasonInternal
	}
}

var (
	ErrSlotNotFound = errors.New("slot not found")
	ErrSlotFull     = errors.New("slot is full")
)

// BookingError отказ в бронировании. Транзакция к моменту возврата уже откатана.
type BookingError struct {
	Kind   ErrorKind
	SlotID int64
	Err    error
}

func (e *BookingError) Error() string {
	return fmt.Sprintf("book slot %d: %s: %v", e.SlotID, e.Kind, e.Err)
}

func (e *BookingError) Unwrap() error {
	return e.Err
}

// Reason причина отказа для клиента
func (e *BookingError) Reason() FailureReason {
	return e.Kind.Reason()
}

// KindOf возвращает категорию ошибки бронирования; для посторонних ошибок KindInternal
func KindOf(err error) ErrorKind {
	var bookingErr *BookingError
	if errors.As(err, &bookingErr) {
		return bookingErr.Kind
	}
	return KindInternal
}
