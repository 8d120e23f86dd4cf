package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/clinic_booking/internal/model"
	"github.com/Freeeeeet/clinic_booking/internal/repository/base"
	"github.com/jackc/pgx/v5"
)

type BookingRepository struct {
	*base.Repository
}

func NewBookingRepository(db base.Querier) *BookingRepository {
	return &BookingRepository{Repository: base.NewRepository(db)}
}

// WithTx возвращает репозиторий, работающий внутри транзакции
func (r *BookingRepository) WithTx(tx pgx.Tx) *BookingRepository {
	return NewBookingRepository(tx)
}

// Create создаёт новое бронирование
func (r *BookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	query := `
		INSERT INTO bookings (user_id, slot_id, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.QueryRow(
		ctx, query,
		booking.UserID,
		booking.SlotID,
		booking.Status,
	).Scan(&booking.ID, &booking.CreatedAt)

	if err != nil {
		return fmt.Errorf("create booking: %w", err)
	}

	return nil
}

// GetBySlotID получает все бронирования слота в порядке создания
func (r *BookingRepository) GetBySlotID(ctx context.Context, slotID int64) ([]*model.Booking, error) {
	query := `
		SELECT id, user_id, slot_id, status, created_at
		FROM bookings
		WHERE slot_id = $1
		ORDER BY id ASC
	`

	rows, err := r.Query(ctx, query, slotID)
	if err != nil {
		return nil, fmt.Errorf("get bookings by slot: %w", err)
	}
	defer rows.Close()

	bookings := make([]*model.Booking, 0)
	for rows.Next() {
		var booking model.Booking
		err := rows.Scan(
			&booking.ID,
			&booking.UserID,
			&booking.SlotID,
			&booking.Status,
			&booking.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, &booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookings: %w", err)
	}

	return bookings, nil
}

// CountConfirmedBySlotID считает подтверждённые бронирования слота
func (r *BookingRepository) CountConfirmedBySlotID(ctx context.Context, slotID int64) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM bookings
		WHERE slot_id = $1 AND status = $2
	`

	var count int
	err := r.QueryRow(ctx, query, slotID, model.BookingStatusConfirmed).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count confirmed bookings: %w", err)
	}

	return count, nil
}
