package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prperemyshlev/easyped-service/internal/domain"
	"github.com/prperemyshlev/easyped-service/pkg/database"
)

const patientColumns = `id, name, age, blood_type, emergency_contacts, observations, qr_code, created_by, is_active, created_at, updated_at`

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

// patientRepository implements PatientRepository interface
type patientRepository struct {
	db      *database.Postgres
	timeout time.Duration
}

// NewPatientRepository creates a new patient repository
func NewPatientRepository(db *database.Postgres, timeout time.Duration) PatientRepository {
	return &patientRepository{db: db, timeout: timeout}
}

// Create inserts a new patient record
func (r *patientRepository) Create(ctx context.Context, patient *domain.Patient) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		INSERT INTO patients (` + patientColumns + `)
		VALUES ($1, $2, $3, $4, $5::jsonb, $6, $7, $8, $9, $10, $11)
	`

	if patient.ID == "" {
		patient.ID = uuid.New().String()
	}

	now := time.Now().UTC()
	if patient.CreatedAt.IsZero() {
		patient.CreatedAt = now
	}
	if patient.UpdatedAt.IsZero() {
		patient.UpdatedAt = now
	}

	contacts, err := encodeContacts(patient.EmergencyContacts)
	if err != nil {
		return err
	}

	_, err = r.db.DB.ExecContext(ctx, query,
		patient.ID,
		patient.Name,
		patient.Age,
		string(patient.BloodType),
		contacts,
		patient.Observations,
		patient.QRToken,
		patient.CreatedBy,
		patient.IsActive,
		patient.CreatedAt,
		patient.UpdatedAt,
	)
	if err != nil {
		if constraint, ok := uniqueConstraint(err); ok && constraint == "patients_qr_code_key" {
			return fmt.Errorf("qr code collision: %w", ErrDuplicateQRToken)
		}
		if constraint, ok := foreignKeyConstraint(err); ok && constraint == "patients_created_by_fkey" {
			return fmt.Errorf("owner %s: %w", patient.CreatedBy, ErrUnknownOwner)
		}
		return fmt.Errorf("failed to create patient: %w", err)
	}

	return nil
}

// GetByID retrieves an active patient by ID
func (r *patientRepository) GetByID(ctx context.Context, id string) (*domain.Patient, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("patient with id %s not found: %w", id, ErrNotFound)
	}

	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	query := `SELECT ` + patientColumns + ` FROM patients WHERE id = $1 AND is_active = TRUE`

	patient, err := scanPatient(r.db.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("patient with id %s not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get patient by id: %w", err)
	}

	return patient, nil
}

// GetByQRToken retrieves an active patient by its public QR token
func (r *patientRepository) GetByQRToken(ctx context.Context, qrToken string) (*domain.Patient, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	query := `SELECT ` + patientColumns + ` FROM patients WHERE qr_code = $1 AND is_active = TRUE`

	patient, err := scanPatient(r.db.DB.QueryRowContext(ctx, query, qrToken))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("patient with qr code not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get patient by qr code: %w", err)
	}

	return patient, nil
}

// ListByOwner returns all active patients created by ownerID, newest first
func (r *patientRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Patient, error) {
	if _, err := uuid.Parse(ownerID); err != nil {
		return []*domain.Patient{}, nil
	}

	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT ` + patientColumns + `
		FROM patients
		WHERE created_by = $1 AND is_active = TRUE
		ORDER BY created_at DESC
	`

	rows, err := r.db.DB.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients by owner: %w", err)
	}
	defer rows.Close()

	patients := []*domain.Patient{}
	for rows.Next() {
		patient, err := scanPatient(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan patient: %w", err)
		}
		patients = append(patients, patient)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate patients: %w", err)
	}

	return patients, nil
}

// Update merges the non-nil fields of patch into an active patient in one statement
func (r *patientRepository) Update(ctx context.Context, id string, patch *domain.PatientPatch) (*domain.Patient, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("patient with id %s not found: %w", id, ErrNotFound)
	}

	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		UPDATE patients
		SET name = COALESCE($2::text, name),
			age = COALESCE($3::integer, age),
			blood_type = COALESCE($4::text, blood_type),
			emergency_contacts = COALESCE($5::jsonb, emergency_contacts),
			observations = COALESCE($6::text, observations),
			updated_at = $7
		WHERE id = $1 AND is_active = TRUE
		RETURNING ` + patientColumns

	var name, bloodType, contacts, observations sql.NullString
	var age sql.NullInt64

	if patch.Name != nil {
		name = sql.NullString{String: *patch.Name, Valid: true}
	}
	if patch.Age != nil {
		age = sql.NullInt64{Int64: int64(*patch.Age), Valid: true}
	}
	if patch.BloodType != nil {
		bloodType = sql.NullString{String: string(*patch.BloodType), Valid: true}
	}
	if patch.EmergencyContacts != nil {
		encoded, err := encodeContacts(patch.EmergencyContacts)
		if err != nil {
			return nil, err
		}
		contacts = sql.NullString{String: encoded, Valid: true}
	}
	if patch.Observations != nil {
		observations = sql.NullString{String: *patch.Observations, Valid: true}
	}

	patient, err := scanPatient(r.db.DB.QueryRowContext(ctx, query,
		id, name, age, bloodType, contacts, observations, time.Now().UTC(),
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("patient with id %s not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update patient: %w", err)
	}

	return patient, nil
}

// SoftDelete marks an active patient inactive
func (r *patientRepository) SoftDelete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("patient with id %s not found: %w", id, ErrNotFound)
	}

	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	query := `UPDATE patients SET is_active = FALSE, updated_at = $2 WHERE id = $1 AND is_active = TRUE`

	result, err := r.db.DB.ExecContext(ctx, query, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("patient with id %s not found: %w", id, ErrNotFound)
	}

	return nil
}

func scanPatient(row rowScanner) (*domain.Patient, error) {
	patient := &domain.Patient{}
	var bloodType string
	var contacts []byte

	err := row.Scan(
		&patient.ID,
		&patient.Name,
		&patient.Age,
		&bloodType,
		&contacts,
		&patient.Observations,
		&patient.QRToken,
		&patient.CreatedBy,
		&patient.IsActive,
		&patient.CreatedAt,
		&patient.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	patient.BloodType = domain.BloodType(bloodType)
	if err := json.Unmarshal(contacts, &patient.EmergencyContacts); err != nil {
		return nil, fmt.Errorf("failed to decode emergency contacts: %w", err)
	}
	if patient.EmergencyContacts == nil {
		patient.EmergencyContacts = []domain.EmergencyContact{}
	}

	return patient, nil
}

func encodeContacts(contacts []domain.EmergencyContact) (string, error) {
	if contacts == nil {
		contacts = []domain.EmergencyContact{}
	}
	encoded, err := json.Marshal(contacts)
	if err != nil {
		return "", fmt.Errorf("failed to encode emergency contacts: %w", err)
	}
	return string(encoded), nil
}
