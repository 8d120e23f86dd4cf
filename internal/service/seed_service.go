package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/clinic_booking/internal/model"
	"go.uber.org/zap"
)

// Seeder запись справочных данных (врачи, слоты) в обход бронирования
type Seeder interface {
	CreateDoctor(ctx context.Context, doctor *model.Doctor) error
	CreateSlot(ctx context.Context, slot *model.Slot) error
	CountSlots(ctx context.Context) (int, error)
}

// demoSlot слот демо-расписания: смещение от начала завтрашнего дня и вместимость
type demoSlot struct {
	offset time.Duration
	seats  int
}

var demoSchedule = map[string][]demoSlot{
	"Dr. Anna Smith": {
		{offset: 9 * time.Hour, seats: 1},
		{offset: 10 * time.Hour, seats: 3},
		{offset: 14 * time.Hour, seats: 2},
	},
	"Dr. Ivan Petrov": {
		{offset: 9*time.Hour + 30*time.Minute, seats: 5},
		{offset: 11 * time.Hour, seats: 1},
	},
}

// SeedService наполняет пустое хранилище демо-данными
type SeedService struct {
	store  Seeder
	now    func() time.Time
	logger *zap.Logger
}

func NewSeedService(store Seeder, now func() time.Time, logger *zap.Logger) *SeedService {
	if now == nil {
		now = time.Now
	}
	return &SeedService{
		store:  store,
		now:    now,
		logger: logger,
	}
}

// SeedDemo создаёт врачей и слоты на завтра, если слотов ещё нет.
// Возвращает количество созданных слотов.
func (s *SeedService) SeedDemo(ctx context.Context) (int, error) {
	count, err := s.store.CountSlots(ctx)
	if err != nil {
		return 0, fmt.Errorf("count slots: %w", err)
	}

	if count > 0 {
		s.logger.Info("Store already has slots, skipping demo seed", zap.Int("slots", count))
		return 0, nil
	}

	now := s.now().UTC()
	tomorrow := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)

	created := 0
	for _, name := range []string{"Dr. Anna Smith", "Dr. Ivan Petrov"} {
		doctor := &model.Doctor{Name: name}
		if err := s.store.CreateDoctor(ctx, doctor); err != nil {
			return created, fmt.Errorf("create doctor: %w", err)
		}

		for _, ds := range demoSchedule[name] {
			slot := &model.Slot{
				DoctorID:   doctor.ID,
				StartTime:  tomorrow.Add(ds.offset),
				TotalSeats: ds.seats,
			}
			if err := s.store.CreateSlot(ctx, slot); err != nil {
				return created, fmt.Errorf("create slot: %w", err)
			}
			created++
		}
	}

	s.logger.Info("Demo data seeded", zap.Int("slots", created))

	return created, nil
}
