package memory

import (
	"context"
	"testing"
	"time"

	"github.com/Freeeeeet/clinic_booking/internal/model"
	"github.com/Freeeeeet/clinic_booking/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedSlot(t *testing.T, s *Store, doctor string, start time.Time, seats int) *model.Slot {
	t.Helper()
	ctx := context.Background()

	d := &model.Doctor{Name: doctor}
	require.NoError(t, s.CreateDoctor(ctx, d))

	slot := &model.Slot{DoctorID: d.ID, StartTime: start, TotalSeats: seats}
	require.NoError(t, s.CreateSlot(ctx, slot))
	return slot
}

func TestListSlots_OrderedByStartTime(t *testing.T) {
	s := NewStore(time.Second)
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	late := seedSlot(t, s, "Dr. Late", base.Add(2*time.Hour), 1)
	early := seedSlot(t, s, "Dr. Early", base, 2)
	mid := seedSlot(t, s, "Dr. Mid", base.Add(time.Hour), 3)

	slots, err := s.ListSlots(context.Background())
	require.NoError(t, err)
	require.Len(t, slots, 3)

	assert.Equal(t, []int64{early.ID, mid.ID, late.ID}, []int64{slots[0].ID, slots[1].ID, slots[2].ID})
	assert.Equal(t, "Dr. Early", slots[0].DoctorName)
	assert.Equal(t, 2, slots[0].TotalSeats)
	assert.Equal(t, 0, slots[0].BookedSeats)
}

func TestCreateSlot_Validation(t *testing.T) {
	s := NewStore(time.Second)
	ctx := context.Background()

	d := &model.Doctor{Name: "Dr. House"}
	require.NoError(t, s.CreateDoctor(ctx, d))

	assert.Error(t, s.CreateSlot(ctx, &model.Slot{DoctorID: d.ID, TotalSeats: 0}))
	assert.Error(t, s.CreateSlot(ctx, &model.Slot{DoctorID: d.ID, TotalSeats: 1, BookedSeats: 2}))
	assert.Error(t, s.CreateSlot(ctx, &model.Slot{DoctorID: d.ID + 100, TotalSeats: 1}))

	count, err := s.CountSlots(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestTx_UncommittedChangesAreInvisible(t *testing.T) {
	s := NewStore(time.Second)
	ctx := context.Background()
	slot := seedSlot(t, s, "Dr. Who", time.Now(), 2)

	tx, err := s.Begin(ctx)
	require.NoError(t, err)

	locked, err := tx.GetSlotForUpdate(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, locked.BookedSeats)

	require.NoError(t, tx.IncrementBookedSeats(ctx, slot.ID))
	booking := &model.Booking{UserID: "u1", SlotID: slot.ID, Status: model.BookingStatusConfirmed}
	require.NoError(t, tx.CreateBooking(ctx, booking))
	assert.NotZero(t, booking.ID)

	// Внутри транзакции видим свой инкремент
	locked, err = tx.GetSlotForUpdate(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, locked.BookedSeats)

	listing, err := s.GetSlotListing(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, listing.BookedSeats)

	confirmed, err := s.CountConfirmedBookings(ctx, slot.ID)
	require.NoError(t, err)
	assert.Zero(t, confirmed)

	require.NoError(t, tx.Commit(ctx))

	listing, err = s.GetSlotListing(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, listing.BookedSeats)

	bookings, err := s.ListBookingsBySlot(ctx, slot.ID)
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, "u1", bookings[0].UserID)
}

func TestTx_RollbackDiscardsAndReleases(t *testing.T) {
	s := NewStore(50 * time.Millisecond)
	ctx := context.Background()
	slot := seedSlot(t, s, "Dr. Who", time.Now(), 1)

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	_, err = tx.GetSlotForUpdate(ctx, slot.ID)
	require.NoError(t, err)
	require.NoError(t, tx.IncrementBookedSeats(ctx, slot.ID))
	require.NoError(t, tx.Rollback(ctx))

	// Повторный откат безопасен
	require.NoError(t, tx.Rollback(ctx))
	assert.ErrorIs(t, tx.Commit(ctx), repository.ErrTxClosed)

	got, err := s.GetSlot(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.BookedSeats)

	// Блокировка снята: другая транзакция берёт её без ожидания
	tx2, err := s.Begin(ctx)
	require.NoError(t, err)
	_, err = tx2.GetSlotForUpdate(ctx, slot.ID)
	require.NoError(t, err)
	require.NoError(t, tx2.Rollback(ctx))
}

func TestTx_LockTimeout(t *testing.T) {
	s := NewStore(30 * time.Millisecond)
	ctx := context.Background()
	slot := seedSlot(t, s, "Dr. Who", time.Now(), 1)

	holder, err := s.Begin(ctx)
	require.NoError(t, err)
	_, err = holder.GetSlotForUpdate(ctx, slot.ID)
	require.NoError(t, err)
	defer holder.Rollback(ctx)

	waiter, err := s.Begin(ctx)
	require.NoError(t, err)

	start := time.Now()
	_, err = waiter.GetSlotForUpdate(ctx, slot.ID)
	assert.ErrorIs(t, err, repository.ErrLockTimeout)
	assert.Less(t, time.Since(start), time.Second)
	require.NoError(t, waiter.Rollback(ctx))
}

func TestTx_DistinctSlotsDoNotBlock(t *testing.T) {
	s := NewStore(30 * time.Millisecond)
	ctx := context.Background()
	a := seedSlot(t, s, "Dr. A", time.Now(), 1)
	b := seedSlot(t, s, "Dr. B", time.Now(), 1)

	holder, err := s.Begin(ctx)
	require.NoError(t, err)
	_, err = holder.GetSlotForUpdate(ctx, a.ID)
	require.NoError(t, err)
	defer holder.Rollback(ctx)

	other, err := s.Begin(ctx)
	require.NoError(t, err)
	_, err = other.GetSlotForUpdate(ctx, b.ID)
	require.NoError(t, err)
	require.NoError(t, other.Rollback(ctx))
}

func TestTx_MissingSlot(t *testing.T) {
	s := NewStore(time.Second)
	ctx := context.Background()

	tx, err := s.Begin(ctx)
	require.NoError(t, err)

	_, err = tx.GetSlotForUpdate(ctx, 404)
	assert.ErrorIs(t, err, repository.ErrSlotNotFound)
	assert.ErrorIs(t, tx.IncrementBookedSeats(ctx, 404), repository.ErrSlotNotLocked)
	require.NoError(t, tx.Rollback(ctx))
}

func TestTx_MissingSlotLeavesNoLockEntry(t *testing.T) {
	s := NewStore(time.Second)
	ctx := context.Background()
	slot := seedSlot(t, s, "Dr. House", time.Now(), 1)

	for id := int64(1000); id < 1100; id++ {
		tx, err := s.Begin(ctx)
		require.NoError(t, err)
		_, err = tx.GetSlotForUpdate(ctx, id)
		require.ErrorIs(t, err, repository.ErrSlotNotFound)
		require.NoError(t, tx.Rollback(ctx))
	}
	assert.Zero(t, s.locks.size())

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	_, err = tx.GetSlotForUpdate(ctx, slot.ID)
	require.NoError(t, err)
	require.NoError(t, tx.Rollback(ctx))
	assert.Equal(t, 1, s.locks.size())
}

func TestTx_CommitStampsCreatedAt(t *testing.T) {
	fixed := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)
	s := NewStore(time.Second, WithClock(func() time.Time { return fixed }))
	ctx := context.Background()
	slot := seedSlot(t, s, "Dr. Quinn", time.Now(), 2)

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	_, err = tx.GetSlotForUpdate(ctx, slot.ID)
	require.NoError(t, err)
	require.NoError(t, tx.IncrementBookedSeats(ctx, slot.ID))

	booking := &model.Booking{UserID: "u1", SlotID: slot.ID, Status: model.BookingStatusConfirmed}
	require.NoError(t, tx.CreateBooking(ctx, booking))
	require.NoError(t, tx.Commit(ctx))

	assert.Equal(t, fixed, booking.CreatedAt)

	bookings, err := s.ListBookingsBySlot(ctx, slot.ID)
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, fixed, bookings[0].CreatedAt)
	assert.Equal(t, booking.ID, bookings[0].ID)
}

func TestTx_WritesRequireLock(t *testing.T) {
	s := NewStore(time.Second)
	ctx := context.Background()
	slot := seedSlot(t, s, "Dr. Who", time.Now(), 1)

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	assert.ErrorIs(t, tx.IncrementBookedSeats(ctx, slot.ID), repository.ErrSlotNotLocked)
	assert.ErrorIs(t, tx.CreateBooking(ctx, &model.Booking{SlotID: slot.ID}), repository.ErrSlotNotLocked)
}

func TestTx_IncrementNeverExceedsCapacity(t *testing.T) {
	s := NewStore(time.Second)
	ctx := context.Background()
	slot := seedSlot(t, s, "Dr. Who", time.Now(), 1)

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	_, err = tx.GetSlotForUpdate(ctx, slot.ID)
	require.NoError(t, err)
	require.NoError(t, tx.IncrementBookedSeats(ctx, slot.ID))
	assert.ErrorIs(t, tx.IncrementBookedSeats(ctx, slot.ID), repository.ErrSeatOverflow)
}

func TestTx_CommitDetectsOutOfLockChange(t *testing.T) {
	s := NewStore(time.Second)
	ctx := context.Background()
	slot := seedSlot(t, s, "Dr. Who", time.Now(), 3)

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	_, err = tx.GetSlotForUpdate(ctx, slot.ID)
	require.NoError(t, err)
	require.NoError(t, tx.IncrementBookedSeats(ctx, slot.ID))

	// Имитируем запись мимо блокировки
	s.mu.Lock()
	changed := s.slots[slot.ID]
	changed.BookedSeats = 2
	s.slots[slot.ID] = changed
	s.mu.Unlock()

	assert.ErrorIs(t, tx.Commit(ctx), errConcurrentUpdate)

	got, err := s.GetSlot(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.BookedSeats)
}

func TestBegin_CanceledContext(t *testing.T) {
	s := NewStore(time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Begin(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
