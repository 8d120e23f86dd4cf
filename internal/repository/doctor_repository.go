package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/clinic_booking/internal/model"
	"github.com/Freeeeeet/clinic_booking/internal/repository/base"
)

type DoctorRepository struct {
	*base.Repository
}

func NewDoctorRepository(db base.Querier) *DoctorRepository {
	return &DoctorRepository{Repository: base.NewRepository(db)}
}

// Create создаёт врача
func (r *DoctorRepository) Create(ctx context.Context, doctor *model.Doctor) error {
	err := r.QueryRow(ctx, `INSERT INTO doctors (name) VALUES ($1) RETURNING id`, doctor.Name).Scan(&doctor.ID)
	if err != nil {
		return fmt.Errorf("create doctor: %w", err)
	}
	return nil
}
