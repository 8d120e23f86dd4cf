package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Freeeeeet/clinic_booking/internal/model"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

type countingAuditor struct {
	calls atomic.Int32
	err   error
}

func (a *countingAuditor) AuditAll(ctx context.Context) ([]*model.SlotAudit, error) {
	a.calls.Add(1)
	if a.err != nil {
		return nil, a.err
	}
	return []*model.SlotAudit{{SlotID: 1, TotalSeats: 1, BookedSeats: 1}}, nil
}

func TestScheduler_RunsAuditUntilStopped(t *testing.T) {
	auditor := &countingAuditor{}
	s := NewScheduler(auditor, 5*time.Millisecond, zaptest.NewLogger(t))

	s.Start(context.Background())
	assert.Eventually(t, func() bool { return auditor.calls.Load() >= 2 }, time.Second, time.Millisecond)
	s.Stop()

	calls := auditor.calls.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, calls, auditor.calls.Load())

	// Повторный Stop не паникует
	s.Stop()
}

func TestScheduler_StopsOnContextCancel(t *testing.T) {
	auditor := &countingAuditor{err: errors.New("db down")}
	s := NewScheduler(auditor, 5*time.Millisecond, zaptest.NewLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	assert.Eventually(t, func() bool { return auditor.calls.Load() >= 1 }, time.Second, time.Millisecond)
	cancel()

	select {
	case <-s.done:
	case <-time.After(time.Second):
		t.Fatal("audit task did not stop after context cancel")
	}
}

func TestScheduler_Disabled(t *testing.T) {
	auditor := &countingAuditor{}
	s := NewScheduler(auditor, 0, zaptest.NewLogger(t))

	s.Start(context.Background())
	s.Stop()

	assert.Zero(t, auditor.calls.Load())
}

func TestScheduler_StopWithoutStart(t *testing.T) {
	auditor := &countingAuditor{}
	s := NewScheduler(auditor, 5*time.Millisecond, zaptest.NewLogger(t))

	stopped := make(chan struct{})
	go func() {
		s.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop blocked without a prior Start")
	}

	// Start после Stop не запускает задачу
	s.Start(context.Background())
	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, auditor.calls.Load())
}
