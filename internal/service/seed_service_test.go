package service

import (
	"context"
	"testing"
	"time"

	"github.com/Freeeeeet/clinic_booking/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestSeedDemo(t *testing.T) {
	store := memory.NewStore(time.Second)
	now := func() time.Time { return time.Date(2026, 10, 18, 15, 30, 0, 0, time.UTC) }
	svc := NewSeedService(store, now, zaptest.NewLogger(t))
	ctx := context.Background()

	created, err := svc.SeedDemo(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, created)

	slots, err := store.ListSlots(ctx)
	require.NoError(t, err)
	require.Len(t, slots, 5)

	first := slots[0]
	assert.Equal(t, time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC), first.StartTime)
	assert.Equal(t, "Dr. Anna Smith", first.DoctorName)
	for _, s := range slots {
		assert.Zero(t, s.BookedSeats)
		assert.Positive(t, s.TotalSeats)
	}

	// Повторный запуск ничего не добавляет
	created, err = svc.SeedDemo(ctx)
	require.NoError(t, err)
	assert.Zero(t, created)

	count, err := store.CountSlots(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}
