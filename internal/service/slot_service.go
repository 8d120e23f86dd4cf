package service

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/clinic_booking/internal/model"
	"go.uber.org/zap"
)

// SlotReader чтение слотов без блокировок
type SlotReader interface {
	ListSlots(ctx context.Context) ([]*model.SlotListing, error)
	GetSlotListing(ctx context.Context, slotID int64) (*model.SlotListing, error)
	GetSlot(ctx context.Context, slotID int64) (*model.Slot, error)
	CountConfirmedBookings(ctx context.Context, slotID int64) (int, error)
}

// SlotService отдаёт слоты для показа. Видит только зафиксированные бронирования.
type SlotService struct {
	slots  SlotReader
	logger *zap.Logger
}

func NewSlotService(slots SlotReader, logger *zap.Logger) *SlotService {
	return &SlotService{
		slots:  slots,
		logger: logger,
	}
}

// ListSlots получает все слоты по возрастанию времени начала
func (s *SlotService) ListSlots(ctx context.Context) ([]*model.SlotListing, error) {
	slots, err := s.slots.ListSlots(ctx)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	return slots, nil
}

// GetSlot получает слот по ID, nil если слота нет
func (s *SlotService) GetSlot(ctx context.Context, slotID int64) (*model.SlotListing, error) {
	slot, err := s.slots.GetSlotListing(ctx, slotID)
	if err != nil {
		return nil, fmt.Errorf("get slot: %w", err)
	}
	return slot, nil
}

// Audit сверяет booked_seats с количеством подтверждённых записей.
// Чтения идут без блокировки, поэтому во время активных бронирований возможны ложные расхождения.
func (s *SlotService) Audit(ctx context.Context, slotID int64) (*model.SlotAudit, error) {
	slot, err := s.slots.GetSlot(ctx, slotID)
	if err != nil {
		return nil, fmt.Errorf("get slot: %w", err)
	}
	if slot == nil {
		return nil, nil
	}

	confirmed, err := s.slots.CountConfirmedBookings(ctx, slotID)
	if err != nil {
		return nil, fmt.Errorf("count confirmed bookings: %w", err)
	}

	return &model.SlotAudit{
		SlotID:            slot.ID,
		TotalSeats:        slot.TotalSeats,
		BookedSeats:       slot.BookedSeats,
		ConfirmedBookings: confirmed,
	}, nil
}

// AuditAll проверяет все слоты и возвращает те, где инвариант нарушен
func (s *SlotService) AuditAll(ctx context.Context) ([]*model.SlotAudit, error) {
	slots, err := s.slots.ListSlots(ctx)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}

	var broken []*model.SlotAudit
	for _, slot := range slots {
		audit, err := s.Audit(ctx, slot.ID)
		if err != nil {
			return nil, err
		}
		if audit == nil || audit.Consistent() {
			continue
		}

		// Между двумя чтениями могло зафиксироваться бронирование, перепроверяем
		audit, err = s.Audit(ctx, slot.ID)
		if err != nil {
			return nil, err
		}
		if audit == nil || audit.Consistent() {
			continue
		}

		s.logger.Warn("Slot seat counter diverged from bookings",
			zap.Int64("slot_id", audit.SlotID),
			zap.Int("total_seats", audit.TotalSeats),
			zap.Int("booked_seats", audit.BookedSeats),
			zap.Int("confirmed_bookings", audit.ConfirmedBookings),
		)
		broken = append(broken, audit)
	}

	return broken, nil
}
