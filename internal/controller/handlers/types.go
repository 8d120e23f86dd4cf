package handlers

import (
	"context"

	"github.com/Freeeeeet/clinic_booking/internal/model"
	"go.uber.org/zap"
)

// Booker бронирование места в слоте
type Booker interface {
	Book(ctx context.Context, userID string, slotID int64) (*model.Booking, error)
}

// SlotLister список слотов для показа
type SlotLister interface {
	ListSlots(ctx context.Context) ([]*model.SlotListing, error)
}

// Handlers содержит все зависимости для обработки команд
type Handlers struct {
	booker Booker
	slots  SlotLister
	logger *zap.Logger
}

// NewHandlers создаёт новый обработчик команд
func NewHandlers(booker Booker, slots SlotLister, logger *zap.Logger) *Handlers {
	return &Handlers{
		booker: booker,
		slots:  slots,
		logger: logger,
	}
}
