package app

import (
	"context"
	"sync"
	"time"

	"github.com/Freeeeeet/clinic_booking/internal/model"
	"go.uber.org/zap"
)

// SlotAuditor проверка инварианта мест по всем слотам
type SlotAuditor interface {
	AuditAll(ctx context.Context) ([]*model.SlotAudit, error)
}

// Scheduler управляет фоновыми задачами
type Scheduler struct {
	auditor  SlotAuditor
	interval time.Duration
	logger   *zap.Logger
	stopChan chan struct{}
	done     chan struct{}

	// done закрывает ровно один путь: Start с нулевым интервалом, задача или Stop без Start
	startOnce sync.Once
	stopOnce  sync.Once
}

// NewScheduler создаёт новый планировщик
func NewScheduler(auditor SlotAuditor, interval time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		auditor:  auditor,
		interval: interval,
		logger:   logger,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start запускает фоновые задачи. Нулевой интервал отключает аудит.
// Повторный вызов и вызов после Stop ничего не делают.
func (s *Scheduler) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		if s.interval <= 0 {
			s.logger.Info("Slot audit disabled")
			close(s.done)
			return
		}

		s.logger.Info("Starting background scheduler", zap.Duration("audit_interval", s.interval))

		go s.runAuditTask(ctx)
	})
}

// Stop останавливает фоновые задачи и ждёт их завершения
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background scheduler")
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
	// Если Start не вызывался, задачи нет и ждать некого
	s.startOnce.Do(func() {
		close(s.done)
	})
	<-s.done
}

// runAuditTask периодически сверяет счётчики мест с записями
func (s *Scheduler) runAuditTask(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.auditSlots(ctx)
		case <-s.stopChan:
			s.logger.Info("Slot audit task stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Slot audit task cancelled")
			return
		}
	}
}

func (s *Scheduler) auditSlots(ctx context.Context) {
	broken, err := s.auditor.AuditAll(ctx)
	if err != nil {
		s.logger.Error("Failed to audit slots", zap.Error(err))
		return
	}

	if len(broken) > 0 {
		s.logger.Error("Slot audit found inconsistent slots", zap.Int("count", len(broken)))
		return
	}

	s.logger.Debug("Slot audit completed")
}
