package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Freeeeeet/clinic_booking/internal/repository"
	"golang.org/x/sync/semaphore"
)

const lockShards = 32

// lockTable таблица эксклюзивных блокировок по id слота.
// Шардирование нужно, чтобы поиск семафора для разных слотов не упирался в один мьютекс.
type lockTable struct {
	shards [lockShards]lockShard
}

type lockShard struct {
	mu    sync.Mutex
	slots map[int64]*semaphore.Weighted
}

func newLockTable() *lockTable {
	t := &lockTable{}
	for i := range t.shards {
		t.shards[i].slots = make(map[int64]*semaphore.Weighted)
	}
	return t
}

func (t *lockTable) get(slotID int64) *semaphore.Weighted {
	shard := &t.shards[uint64(slotID)%lockShards]
	shard.mu.Lock()
	defer shard.mu.Unlock()

	sem, ok := shard.slots[slotID]
	if !ok {
		sem = semaphore.NewWeighted(1)
		shard.slots[slotID] = sem
	}
	return sem
}

// acquire блокирует слот. Ожидание ограничено timeout (если > 0) и ctx.
func (t *lockTable) acquire(ctx context.Context, slotID int64, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if err := t.get(slotID).Acquire(ctx, 1); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("lock slot %d: %w: %w", slotID, repository.ErrLockTimeout, err)
		}
		return fmt.Errorf("lock slot %d: %w", slotID, err)
	}
	return nil
}

func (t *lockTable) release(slotID int64) {
	t.get(slotID).Release(1)
}

// size количество семафоров в таблице
func (t *lockTable) size() int {
	n := 0
	for i := range t.shards {
		shard := &t.shards[i]
		shard.mu.Lock()
		n += len(shard.slots)
		shard.mu.Unlock()
	}
	return n
}
