package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/smilecare/scheduler-api/internal/model"
	apperrors "github.com/smilecare/scheduler-api/pkg/errors"
)

// Read-only lookups for the scheduling core's reference entities.

func (r *dentistRepository) Get(ctx context.Context, id uuid.UUID) (*model.Dentist, error) {
	query := `
		SELECT id, name, email, specialty, status, created_at, updated_at
		FROM dentists
		WHERE id = $1
	`
	var dentist model.Dentist
	err := r.db.GetContext(ctx, &dentist, query, id)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("dentist", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get dentist: %w", err)
	}
	return &dentist, nil
}

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	query := `
		SELECT id, name, email, phone, created_at, updated_at
		FROM patients
		WHERE id = $1
	`
	var patient model.Patient
	err := r.db.GetContext(ctx, &patient, query, id)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("patient", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return &patient, nil
}

func (r *serviceRepository) Get(ctx context.Context, id uuid.UUID) (*model.Service, error) {
	query := `
		SELECT id, name, description, duration, price, status, created_at, updated_at
		FROM services
		WHERE id = $1
	`
	var service model.Service
	err := r.db.GetContext(ctx, &service, query, id)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("service", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get service: %w", err)
	}
	return &service, nil
}
