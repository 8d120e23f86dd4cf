package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/clinic_booking/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore хранилище поверх пула pgx.
// Блокировка слота это SELECT ... FOR UPDATE, ожидание ограничено lock_timeout транзакции.
type PostgresStore struct {
	pool        *pgxpool.Pool
	lockTimeout time.Duration
	slots       *SlotRepository
	bookings    *BookingRepository
	doctors     *DoctorRepository
}

func NewPostgresStore(pool *pgxpool.Pool, lockTimeout time.Duration) *PostgresStore {
	return &PostgresStore{
		pool:        pool,
		lockTimeout: lockTimeout,
		slots:       NewSlotRepository(pool),
		bookings:    NewBookingRepository(pool),
		doctors:     NewDoctorRepository(pool),
	}
}

// Begin открывает транзакцию read committed и выставляет lock_timeout
func (s *PostgresStore) Begin(ctx context.Context) (Tx, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}

	if s.lockTimeout > 0 {
		// SET не принимает параметры, значение целое число миллисекунд
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = %d", lockTimeoutMillis(s.lockTimeout))
		if _, err := tx.Exec(ctx, stmt); err != nil {
			_ = tx.Rollback(context.WithoutCancel(ctx))
			return nil, fmt.Errorf("set lock timeout: %w", err)
		}
	}

	return &postgresTx{
		tx:       tx,
		slots:    s.slots.WithTx(tx),
		bookings: s.bookings.WithTx(tx),
		locked:   make(map[int64]struct{}),
	}, nil
}

// lockTimeoutMillis округляет вверх до целых миллисекунд, не меньше 1: lock_timeout = 0 снимает ограничение
func lockTimeoutMillis(d time.Duration) int64 {
	ms := (d + time.Millisecond - 1) / time.Millisecond
	return max(1, int64(ms))
}

func (s *PostgresStore) ListSlots(ctx context.Context) ([]*model.SlotListing, error) {
	return s.slots.ListWithDoctors(ctx)
}

func (s *PostgresStore) GetSlotListing(ctx context.Context, slotID int64) (*model.SlotListing, error) {
	return s.slots.GetListingByID(ctx, slotID)
}

func (s *PostgresStore) GetSlot(ctx context.Context, slotID int64) (*model.Slot, error) {
	return s.slots.GetByID(ctx, slotID)
}

func (s *PostgresStore) CountConfirmedBookings(ctx context.Context, slotID int64) (int, error) {
	return s.bookings.CountConfirmedBySlotID(ctx, slotID)
}

func (s *PostgresStore) ListBookingsBySlot(ctx context.Context, slotID int64) ([]*model.Booking, error) {
	return s.bookings.GetBySlotID(ctx, slotID)
}

func (s *PostgresStore) CreateDoctor(ctx context.Context, doctor *model.Doctor) error {
	return s.doctors.Create(ctx, doctor)
}

func (s *PostgresStore) CreateSlot(ctx context.Context, slot *model.Slot) error {
	return s.slots.Create(ctx, slot)
}

func (s *PostgresStore) CountSlots(ctx context.Context) (int, error) {
	return s.slots.Count(ctx)
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close закрывает пул
func (s *PostgresStore) Close() {
	s.pool.Close()
}

type postgresTx struct {
	tx       pgx.Tx
	slots    *SlotRepository
	bookings *BookingRepository
	locked   map[int64]struct{}
}

func (t *postgresTx) GetSlotForUpdate(ctx context.Context, slotID int64) (*model.Slot, error) {
	slot, err := t.slots.GetForUpdate(ctx, slotID)
	if err != nil {
		return nil, err
	}
	t.locked[slotID] = struct{}{}
	return slot, nil
}

func (t *postgresTx) IncrementBookedSeats(ctx context.Context, slotID int64) error {
	if _, ok := t.locked[slotID]; !ok {
		return ErrSlotNotLocked
	}
	return t.slots.IncrementBookedSeats(ctx, slotID)
}

func (t *postgresTx) CreateBooking(ctx context.Context, booking *model.Booking) error {
	if _, ok := t.locked[booking.SlotID]; !ok {
		return ErrSlotNotLocked
	}
	return t.bookings.Create(ctx, booking)
}

func (t *postgresTx) Commit(ctx context.Context) error {
	if err := t.tx.Commit(ctx); err != nil {
		if errors.Is(err, pgx.ErrTxClosed) {
			return ErrTxClosed
		}
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (t *postgresTx) Rollback(ctx context.Context) error {
	err := t.tx.Rollback(ctx)
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("rollback transaction: %w", err)
	}
	return nil
}
