package memory

import (
	"context"
	"errors"
	"fmt"

	"github.com/Freeeeeet/clinic_booking/internal/model"
	"github.com/Freeeeeet/clinic_booking/internal/repository"
)

var errConcurrentUpdate = errors.New("slot changed outside of its lock")

// tx транзакция хранилища в памяти. Не предназначена для использования из нескольких горутин.
type tx struct {
	store *Store

	held       []int64              // слоты, чей семафор захвачен этой транзакцией
	snapshots  map[int64]model.Slot // состояние слота на момент захвата блокировки
	increments map[int64]int
	bookings   []model.Booking
	closed     bool
}

func (t *tx) GetSlotForUpdate(ctx context.Context, slotID int64) (*model.Slot, error) {
	if t.closed {
		return nil, repository.ErrTxClosed
	}

	if !t.holds(slotID) {
		// Слоты не удаляются, поэтому отсутствующий слот можно отвергнуть без блокировки.
		// Иначе каждый запрос с выдуманным id оставлял бы семафор в таблице.
		if !t.store.hasSlot(slotID) {
			return nil, repository.ErrSlotNotFound
		}

		if err := t.store.locks.acquire(ctx, slotID, t.store.lockTimeout); err != nil {
			return nil, err
		}
		t.held = append(t.held, slotID)

		t.store.mu.RLock()
		slot, ok := t.store.slots[slotID]
		t.store.mu.RUnlock()

		if ok {
			t.snapshots[slotID] = slot
		}
	}

	snapshot, ok := t.snapshots[slotID]
	if !ok {
		return nil, repository.ErrSlotNotFound
	}

	slot := snapshot
	slot.BookedSeats += t.increments[slotID]
	return &slot, nil
}

func (t *tx) IncrementBookedSeats(ctx context.Context, slotID int64) error {
	if t.closed {
		return repository.ErrTxClosed
	}

	snapshot, ok := t.snapshots[slotID]
	if !ok {
		return repository.ErrSlotNotLocked
	}

	if snapshot.BookedSeats+t.increments[slotID] >= snapshot.TotalSeats {
		return repository.ErrSeatOverflow
	}

	t.increments[slotID]++
	return nil
}

func (t *tx) CreateBooking(ctx context.Context, booking *model.Booking) error {
	if t.closed {
		return repository.ErrTxClosed
	}

	if _, ok := t.snapshots[booking.SlotID]; !ok {
		return repository.ErrSlotNotLocked
	}

	booking.ID = t.store.nextBookingID.Add(1)
	booking.CreatedAt = t.store.now()
	t.bookings = append(t.bookings, *booking)
	return nil
}

// Commit проверяет, что никто не менял слоты мимо блокировки (compare-and-swap по booked_seats),
// и применяет все изменения разом. При любой ошибке ничего не записывается.
func (t *tx) Commit(ctx context.Context) error {
	if t.closed {
		return repository.ErrTxClosed
	}
	t.closed = true
	defer t.releaseLocks()

	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	for slotID, inc := range t.increments {
		current, ok := t.store.slots[slotID]
		if !ok {
			return fmt.Errorf("commit transaction: slot %d: %w", slotID, repository.ErrSlotNotFound)
		}
		if current.BookedSeats != t.snapshots[slotID].BookedSeats {
			return fmt.Errorf("commit transaction: slot %d: %w", slotID, errConcurrentUpdate)
		}
		if current.BookedSeats+inc > current.TotalSeats {
			return fmt.Errorf("commit transaction: slot %d: %w", slotID, repository.ErrSeatOverflow)
		}
	}

	for slotID, inc := range t.increments {
		slot := t.store.slots[slotID]
		slot.BookedSeats += inc
		t.store.slots[slotID] = slot
	}
	t.store.bookings = append(t.store.bookings, t.bookings...)

	return nil
}

func (t *tx) Rollback(ctx context.Context) error {
	if t.closed {
		return nil
	}
	t.closed = true
	t.releaseLocks()
	return nil
}

func (t *tx) holds(slotID int64) bool {
	for _, id := range t.held {
		if id == slotID {
			return true
		}
	}
	return false
}

func (t *tx) releaseLocks() {
	for _, slotID := range t.held {
		t.store.locks.release(slotID)
	}
	t.held = nil
}
