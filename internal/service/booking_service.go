package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Freeeeeet/clinic_booking/internal/model"
	"github.com/Freeeeeet/clinic_booking/internal/repository"
	"github.com/Freeeeeet/clinic_booking/internal/repository/base"
	"go.uber.org/zap"
)

// TxBeginner источник транзакций с блокировкой слота
type TxBeginner interface {
	Begin(ctx context.Context) (repository.Tx, error)
}

// BookingService единственный, кто меняет booked_seats.
// Попытки записи в один слот сериализуются блокировкой слота, в разные слоты идут параллельно.
type BookingService struct {
	store  TxBeginner
	logger *zap.Logger
}

func NewBookingService(store TxBeginner, logger *zap.Logger) *BookingService {
	return &BookingService{
		store:  store,
		logger: logger,
	}
}

// Book бронирует одно место в слоте для userID.
// Ровно одна попытка, без повторов. Каждый успешный вызов создаёт новую запись.
// При отказе возвращает *BookingError; к этому моменту транзакция откатана и блокировка снята.
func (s *BookingService) Book(ctx context.Context, userID string, slotID int64) (booking *model.Booking, err error) {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, s.fail(slotID, userID, classify(err), fmt.Errorf("begin transaction: %w", err))
	}
	defer func() {
		if err == nil {
			return
		}
		// Откат не должен зависеть от отменённого контекста запроса
		if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil {
			s.logger.Error("Failed to rollback booking transaction",
				zap.Int64("slot_id", slotID),
				zap.Error(rbErr),
			)
		}
	}()

	// Читаем слот только под блокировкой, иначе можно принять решение по устаревшим данным
	slot, err := tx.GetSlotForUpdate(ctx, slotID)
	if err != nil {
		if errors.Is(err, repository.ErrSlotNotFound) {
			return nil, s.fail(slotID, userID, KindNotFound, ErrSlotNotFound)
		}
		return nil, s.fail(slotID, userID, classify(err), fmt.Errorf("lock slot: %w", err))
	}

	if !slot.HasFreeSeat() {
		return nil, s.fail(slotID, userID, KindCapacityExceeded, ErrSlotFull)
	}

	err = tx.IncrementBookedSeats(ctx, slotID)
	if err != nil {
		return nil, s.fail(slotID, userID, classify(err), fmt.Errorf("increment booked seats: %w", err))
	}

	booking = &model.Booking{
		UserID: userID,
		SlotID: slotID,
		Status: model.BookingStatusConfirmed,
	}

	err = tx.CreateBooking(ctx, booking)
	if err != nil {
		return nil, s.fail(slotID, userID, classify(err), fmt.Errorf("create booking: %w", err))
	}

	err = tx.Commit(ctx)
	if err != nil {
		return nil, s.fail(slotID, userID, classify(err), fmt.Errorf("commit transaction: %w", err))
	}

	s.logger.Info("Slot booked",
		zap.Int64("booking_id", booking.ID),
		zap.String("user_id", userID),
		zap.Int64("slot_id", slotID),
		zap.Int("booked_seats", slot.BookedSeats+1),
		zap.Int("total_seats", slot.TotalSeats),
	)

	return booking, nil
}

func (s *BookingService) fail(slotID int64, userID string, kind ErrorKind, err error) *BookingError {
	fields := []zap.Field{
		zap.Int64("slot_id", slotID),
		zap.String("user_id", userID),
		zap.Stringer("kind", kind),
		zap.Error(err),
	}

	switch kind {
	case KindNotFound, KindCapacityExceeded:
		s.logger.Info("Booking rejected", fields...)
	case KindTransientInfra:
		s.logger.Warn("Booking aborted", fields...)
	default:
		s.logger.Error("Booking failed", fields...)
	}

	return &BookingError{Kind: kind, SlotID: slotID, Err: err}
}

func classify(err error) ErrorKind {
	switch {
	case errors.Is(err, repository.ErrLockTimeout),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled),
		base.IsTransient(err):
		return KindTransientInfra
	default:
		return KindInternal
	}
}
