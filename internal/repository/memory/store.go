// Package memory хранилище в памяти процесса.
// Используется для локального запуска без PostgreSQL и в тестах.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Freeeeeet/clinic_booking/internal/model"
	"github.com/Freeeeeet/clinic_booking/internal/repository"
)

var _ repository.Store = (*Store)(nil)

// Store хранит данные в map под RWMutex.
// Транзакция копит изменения у себя и применяет их в Commit одним куском,
// поэтому читатели никогда не видят незафиксированных изменений.
type Store struct {
	mu       sync.RWMutex
	doctors  map[int64]model.Doctor
	slots    map[int64]model.Slot
	bookings []model.Booking

	nextDoctorID  atomic.Int64
	nextSlotID    atomic.Int64
	nextBookingID atomic.Int64

	locks       *lockTable
	lockTimeout time.Duration
	now         func() time.Time
}

type Option func(*Store)

// WithClock подменяет источник времени для created_at
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func NewStore(lockTimeout time.Duration, opts ...Option) *Store {
	s := &Store{
		doctors:     make(map[int64]model.Doctor),
		slots:       make(map[int64]model.Slot),
		locks:       newLockTable(),
		lockTimeout: lockTimeout,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Begin(ctx context.Context) (repository.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return &tx{
		store:      s,
		snapshots:  make(map[int64]model.Slot),
		increments: make(map[int64]int),
	}, nil
}

func (s *Store) ListSlots(ctx context.Context) ([]*model.SlotListing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	listings := make([]*model.SlotListing, 0, len(s.slots))
	for _, slot := range s.slots {
		doctor, ok := s.doctors[slot.DoctorID]
		if !ok {
			continue
		}
		listings = append(listings, listing(slot, doctor))
	}

	sort.Slice(listings, func(i, j int) bool {
		if listings[i].StartTime.Equal(listings[j].StartTime) {
			return listings[i].ID < listings[j].ID
		}
		return listings[i].StartTime.Before(listings[j].StartTime)
	})

	return listings, nil
}

func (s *Store) GetSlotListing(ctx context.Context, slotID int64) (*model.SlotListing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	slot, ok := s.slots[slotID]
	if !ok {
		return nil, nil
	}
	doctor, ok := s.doctors[slot.DoctorID]
	if !ok {
		return nil, nil
	}
	return listing(slot, doctor), nil
}

func (s *Store) GetSlot(ctx context.Context, slotID int64) (*model.Slot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	slot, ok := s.slots[slotID]
	if !ok {
		return nil, nil
	}
	return &slot, nil
}

func (s *Store) CountConfirmedBookings(ctx context.Context, slotID int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, b := range s.bookings {
		if b.SlotID == slotID && b.Status == model.BookingStatusConfirmed {
			count++
		}
	}
	return count, nil
}

func (s *Store) ListBookingsBySlot(ctx context.Context, slotID int64) ([]*model.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bookings := make([]*model.Booking, 0)
	for _, b := range s.bookings {
		if b.SlotID == slotID {
			b := b
			bookings = append(bookings, &b)
		}
	}
	return bookings, nil
}

func (s *Store) CreateDoctor(ctx context.Context, doctor *model.Doctor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doctor.ID = s.nextDoctorID.Add(1)
	s.doctors[doctor.ID] = *doctor
	return nil
}

func (s *Store) CreateSlot(ctx context.Context, slot *model.Slot) error {
	if slot.TotalSeats <= 0 {
		return fmt.Errorf("create slot: total seats must be positive, got %d", slot.TotalSeats)
	}
	if slot.BookedSeats < 0 || slot.BookedSeats > slot.TotalSeats {
		return fmt.Errorf("create slot: booked seats %d out of range [0, %d]", slot.BookedSeats, slot.TotalSeats)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.doctors[slot.DoctorID]; !ok {
		return fmt.Errorf("create slot: doctor %d not found", slot.DoctorID)
	}

	slot.ID = s.nextSlotID.Add(1)
	s.slots[slot.ID] = *slot
	return nil
}

func (s *Store) hasSlot(slotID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.slots[slotID]
	return ok
}

func (s *Store) CountSlots(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.slots), nil
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) Close() {}

func listing(slot model.Slot, doctor model.Doctor) *model.SlotListing {
	return &model.SlotListing{
		ID:          slot.ID,
		DoctorName:  doctor.Name,
		StartTime:   slot.StartTime,
		TotalSeats:  slot.TotalSeats,
		BookedSeats: slot.BookedSeats,
	}
}
