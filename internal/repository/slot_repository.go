package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/clinic_booking/internal/model"
	"github.com/Freeeeeet/clinic_booking/internal/repository/base"
	"github.com/jackc/pgx/v5"
)

type SlotRepository struct {
	*base.Repository
}

func NewSlotRepository(db base.Querier) *SlotRepository {
	return &SlotRepository{Repository: base.NewRepository(db)}
}

// WithTx возвращает репозиторий, работающий внутри транзакции
func (r *SlotRepository) WithTx(tx pgx.Tx) *SlotRepository {
	return NewSlotRepository(tx)
}

// Create создаёт новый слот
func (r *SlotRepository) Create(ctx context.Context, slot *model.Slot) error {
	query := `
		INSERT INTO slots (doctor_id, start_time, total_seats, booked_seats)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := r.QueryRow(
		ctx, query,
		slot.DoctorID,
		slot.StartTime,
		slot.TotalSeats,
		slot.BookedSeats,
	).Scan(&slot.ID)

	if err != nil {
		return fmt.Errorf("create slot: %w", err)
	}

	return nil
}

// GetByID получает слот по ID без блокировки
func (r *SlotRepository) GetByID(ctx context.Context, id int64) (*model.Slot, error) {
	query := `
		SELECT id, doctor_id, start_time, total_seats, booked_seats
		FROM slots
		WHERE id = $1
	`

	slot, err := scanSlot(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get slot by id: %w", err)
	}

	return slot, nil
}

// GetForUpdate читает слот и блокирует его строку до конца транзакции.
// Имеет смысл только на репозитории, полученном через WithTx.
func (r *SlotRepository) GetForUpdate(ctx context.Context, id int64) (*model.Slot, error) {
	query := `
		SELECT id, doctor_id, start_time, total_seats, booked_seats
		FROM slots
		WHERE id = $1
		FOR UPDATE
	`

	slot, err := scanSlot(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, ErrSlotNotFound
		}
		if base.IsLockTimeout(err) {
			return nil, fmt.Errorf("lock slot %d: %w: %w", id, ErrLockTimeout, err)
		}
		return nil, fmt.Errorf("lock slot: %w", err)
	}

	return slot, nil
}

// IncrementBookedSeats занимает одно место в слоте.
// Условие в WHERE не даёт выйти за total_seats, даже если вызывающий забыл про блокировку.
func (r *SlotRepository) IncrementBookedSeats(ctx context.Context, id int64) error {
	query := `
		UPDATE slots
		SET booked_seats = booked_seats + 1
		WHERE id = $1 AND booked_seats < total_seats
	`

	affected, err := r.ExecAffected(ctx, query, id)
	if err != nil {
		return fmt.Errorf("increment booked seats: %w", err)
	}

	if affected == 0 {
		return ErrSeatOverflow
	}

	return nil
}

// ListWithDoctors получает все слоты с именами врачей, по возрастанию времени начала
func (r *SlotRepository) ListWithDoctors(ctx context.Context) ([]*model.SlotListing, error) {
	query := `
		SELECT s.id, d.name, s.start_time, s.total_seats, s.booked_seats
		FROM slots s
		JOIN doctors d ON s.doctor_id = d.id
		ORDER BY s.start_time ASC, s.id ASC
	`

	rows, err := r.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	defer rows.Close()

	slots := make([]*model.SlotListing, 0)
	for rows.Next() {
		var slot model.SlotListing
		err := rows.Scan(
			&slot.ID,
			&slot.DoctorName,
			&slot.StartTime,
			&slot.TotalSeats,
			&slot.BookedSeats,
		)
		if err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		slots = append(slots, &slot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate slots: %w", err)
	}

	return slots, nil
}

// GetListingByID получает один слот с именем врача
func (r *SlotRepository) GetListingByID(ctx context.Context, id int64) (*model.SlotListing, error) {
	query := `
		SELECT s.id, d.name, s.start_time, s.total_seats, s.booked_seats
		FROM slots s
		JOIN doctors d ON s.doctor_id = d.id
		WHERE s.id = $1
	`

	var slot model.SlotListing
	err := r.QueryRow(ctx, query, id).Scan(
		&slot.ID,
		&slot.DoctorName,
		&slot.StartTime,
		&slot.TotalSeats,
		&slot.BookedSeats,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get slot listing: %w", err)
	}

	return &slot, nil
}

// Count возвращает общее количество слотов
func (r *SlotRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.QueryRow(ctx, `SELECT COUNT(*) FROM slots`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count slots: %w", err)
	}
	return count, nil
}

func scanSlot(row pgx.Row) (*model.Slot, error) {
	var slot model.Slot
	err := row.Scan(
		&slot.ID,
		&slot.DoctorID,
		&slot.StartTime,
		&slot.TotalSeats,
		&slot.BookedSeats,
	)
	if err != nil {
		return nil, err
	}
	return &slot, nil
}
