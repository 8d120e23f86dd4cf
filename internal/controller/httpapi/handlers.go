package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/Freeeeeet/clinic_booking/internal/model"
	"github.com/Freeeeeet/clinic_booking/internal/service"
	"github.com/go-playground/validator/v10"
	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// Booker бронирование места в слоте
type Booker interface {
	Book(ctx context.Context, userID string, slotID int64) (*model.Booking, error)
}

// SlotQuerier чтение слотов для показа
type SlotQuerier interface {
	ListSlots(ctx context.Context) ([]*model.SlotListing, error)
	GetSlot(ctx context.Context, slotID int64) (*model.SlotListing, error)
	Audit(ctx context.Context, slotID int64) (*model.SlotAudit, error)
}

// Pinger проверка доступности хранилища
type Pinger interface {
	Ping(ctx context.Context) error
}

// SlotID не валидируем: несуществующий id, в том числе <= 0, это ответ 404 от бронирования
type bookRequest struct {
	UserID string `json:"userId" validate:"required,max=255"`
	SlotID int64  `json:"slotId"`
}

type Handlers struct {
	booker   Booker
	slots    SlotQuerier
	store    Pinger
	validate *validator.Validate
	logger   *zap.Logger
}

func NewHandlers(booker Booker, slots SlotQuerier, store Pinger, logger *zap.Logger) *Handlers {
	return &Handlers{
		booker:   booker,
		slots:    slots,
		store:    store,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

// ListSlots GET /slots
func (h *Handlers) ListSlots(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	slots, err := h.slots.ListSlots(r.Context())
	if err != nil {
		h.logger.Error("Failed to list slots", zap.Error(err))
		h.write(w, "ListSlots", http.StatusInternalServerError, ErrorResponse{Error: msgServerError})
		return
	}

	h.write(w, "ListSlots", http.StatusOK, slots)
}

// GetSlot GET /slots/:id
func (h *Handlers) GetSlot(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	slotID, ok := h.slotIDParam(w, ps, "GetSlot")
	if !ok {
		return
	}

	slot, err := h.slots.GetSlot(r.Context(), slotID)
	if err != nil {
		h.logger.Error("Failed to get slot", zap.Int64("slot_id", slotID), zap.Error(err))
		h.write(w, "GetSlot", http.StatusInternalServerError, ErrorResponse{Error: msgServerError})
		return
	}

	if slot == nil {
		h.write(w, "GetSlot", http.StatusNotFound, ErrorResponse{Error: msgSlotNotFound})
		return
	}

	h.write(w, "GetSlot", http.StatusOK, slot)
}

// AuditSlot GET /slots/:id/audit
func (h *Handlers) AuditSlot(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	slotID, ok := h.slotIDParam(w, ps, "AuditSlot")
	if !ok {
		return
	}

	audit, err := h.slots.Audit(r.Context(), slotID)
	if err != nil {
		h.logger.Error("Failed to audit slot", zap.Int64("slot_id", slotID), zap.Error(err))
		h.write(w, "AuditSlot", http.StatusInternalServerError, ErrorResponse{Error: msgServerError})
		return
	}

	if audit == nil {
		h.write(w, "AuditSlot", http.StatusNotFound, ErrorResponse{Error: msgSlotNotFound})
		return
	}

	h.write(w, "AuditSlot", http.StatusOK, struct {
		*model.SlotAudit
		Consistent bool `json:"consistent"`
	}{audit, audit.Consistent()})
}

// Book POST /book
func (h *Handlers) Book(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req bookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.write(w, "Book", http.StatusBadRequest, BookResponse{Status: service.ResultFailed, Message: msgInvalidBody})
		return
	}

	if err := h.validate.Struct(req); err != nil {
		h.write(w, "Book", http.StatusBadRequest, BookResponse{
			Status:  service.ResultFailed,
			Message: validationMessage(err),
		})
		return
	}

	booking, err := h.booker.Book(r.Context(), req.UserID, req.SlotID)
	result := service.ResultOf(booking, err)

	switch result.Reason {
	case "":
		h.write(w, "Book", http.StatusOK, BookResponse{
			Status:    result.Status,
			Message:   msgBookingSuccessful,
			BookingID: result.BookingID,
		})
	case service.ReasonSlotFull:
		h.write(w, "Book", http.StatusBadRequest, BookResponse{Status: result.Status, Message: msgSlotFull})
	case service.ReasonNotFound:
		h.write(w, "Book", http.StatusNotFound, BookResponse{Status: result.Status, Message: msgSlotNotFound})
	default:
		h.write(w, "Book", http.StatusInternalServerError, BookResponse{Status: result.Status, Message: msgInternalError})
	}
}

// Health GET /health
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := h.store.Ping(r.Context()); err != nil {
		h.logger.Warn("Health check failed", zap.Error(err))
		h.write(w, "Health", http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	h.write(w, "Health", http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) slotIDParam(w http.ResponseWriter, ps httprouter.Params, handler string) (int64, bool) {
	raw := ps.ByName("id")
	slotID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || slotID <= 0 {
		h.write(w, handler, http.StatusBadRequest, ErrorResponse{
			Error:   "invalid slot id",
			Details: map[string]any{"id": raw},
		})
		return 0, false
	}
	return slotID, true
}

func (h *Handlers) write(w http.ResponseWriter, handler string, statusCode int, data any) {
	if err := writeJSON(w, statusCode, data); err != nil {
		h.logger.Error("Failed to write JSON response",
			zap.String("handler", handler),
			zap.Error(err),
		)
	}
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return msgInvalidBody
	}

	switch verrs[0].Field() {
	case "UserID":
		if verrs[0].Tag() == "max" {
			return "userId is too long"
		}
		return "userId is required"
	default:
		return msgInvalidBody
	}
}
