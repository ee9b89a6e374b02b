package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/prperemyshlev/easyped-service/internal/domain"
	"github.com/prperemyshlev/easyped-service/internal/dto"
	"github.com/prperemyshlev/easyped-service/internal/repository"
	"github.com/prperemyshlev/easyped-service/pkg/observability"
	"go.uber.org/zap"
)

// qrTokenAttempts bounds QR token generation: the first token plus one regeneration
const qrTokenAttempts = 2

var (
	errPatientNotFound = domain.NotFound("Patient not found")
	errQRTokenTaken    = domain.Conflict("Could not allocate a unique QR code, please retry")
	errUnknownOwner    = domain.Unauthorized("User not found")
)

// patientService implements PatientService interface
type patientService struct {
	patientRepo repository.PatientRepository
	cache       PublicViewCache
	qr          *QRRenderer
	metrics     *observability.PatientMetrics
	logger      *zap.Logger
	newQRToken  func() string
}

// PatientServiceOption customizes a patient service
type PatientServiceOption func(*patientService)

// WithQRTokenGenerator replaces the uuid based QR token generator
func WithQRTokenGenerator(gen func() string) PatientServiceOption {
	return func(s *patientService) {
		s.newQRToken = gen
	}
}

// NewPatientService creates a new patient service. cache and metrics may be nil.
func NewPatientService(
	patientRepo repository.PatientRepository,
	cache PublicViewCache,
	qr *QRRenderer,
	metrics *observability.PatientMetrics,
	logger *zap.Logger,
	opts ...PatientServiceOption,
) PatientService {
	s := &patientService{
		patientRepo: patientRepo,
		cache:       cache,
		qr:          qr,
		metrics:     metrics,
		logger:      logger,
		newQRToken:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create registers a patient owned by ownerID and renders its QR code
func (s *patientService) Create(ctx context.Context, ownerID string, req *dto.CreatePatientRequest) (*dto.CreatedPatient, error) {
	patient, err := parseCreatePatient(req)
	if err != nil {
		return nil, err
	}
	patient.CreatedBy = ownerID

	if err := s.insertWithQRToken(ctx, patient); err != nil {
		return nil, err
	}

	dataURL, err := s.qr.Render(patient.QRToken)
	if err != nil {
		return nil, fmt.Errorf("failed to render qr code: %w", err)
	}

	s.metrics.Created(ctx)
	s.logger.Info("Patient created",
		zap.String("patient_id", patient.ID),
		zap.String("owner_id", ownerID),
	)

	return &dto.CreatedPatient{
		ID:            patient.ID,
		Name:          patient.Name,
		QRCode:        patient.QRToken,
		QRCodeDataURL: dataURL,
	}, nil
}

func (s *patientService) insertWithQRToken(ctx context.Context, patient *domain.Patient) error {
	for attempt := 1; attempt <= qrTokenAttempts; attempt++ {
		patient.QRToken = s.newQRToken()

		err := s.patientRepo.Create(ctx, patient)
		if err == nil {
			return nil
		}
		if errors.Is(err, repository.ErrUnknownOwner) {
			return errUnknownOwner
		}
		if !errors.Is(err, repository.ErrDuplicateQRToken) {
			return fmt.Errorf("failed to create patient: %w", err)
		}

		s.logger.Warn("QR token collision", zap.Int("attempt", attempt))
	}
	return errQRTokenTaken
}

// ListOwned lists the active patients of ownerID
func (s *patientService) ListOwned(ctx context.Context, ownerID string) ([]*domain.Patient, error) {
	patients, err := s.patientRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}

// GetOwned returns a full record with its QR image
func (s *patientService) GetOwned(ctx context.Context, ownerID, id string) (*dto.OwnedPatient, error) {
	patient, err := s.loadOwned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	dataURL, err := s.qr.Render(patient.QRToken)
	if err != nil {
		return nil, fmt.Errorf("failed to render qr code: %w", err)
	}

	return &dto.OwnedPatient{Patient: patient, QRCodeDataURL: dataURL}, nil
}

// GetPublic returns the emergency projection of the active record behind qrToken
func (s *patientService) GetPublic(ctx context.Context, qrToken string) (*domain.PublicPatient, error) {
	if s.cache != nil {
		view, found, err := s.cache.Get(ctx, qrToken)
		switch {
		case err != nil:
			s.logger.Warn("Public view cache read failed", zap.Error(err))
		case found && view == nil:
			s.metrics.PublicLookup(ctx, observability.LookupNotFound)
			return nil, errPatientNotFound
		case found:
			s.metrics.PublicLookup(ctx, observability.LookupCacheHit)
			return view, nil
		}
	}

	patient, err := s.patientRepo.GetByQRToken(ctx, qrToken)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.metrics.PublicLookup(ctx, observability.LookupNotFound)
			return nil, errPatientNotFound
		}
		s.metrics.PublicLookup(ctx, observability.LookupFailed)
		return nil, fmt.Errorf("failed to get patient by qr code: %w", err)
	}

	view := patient.Public()
	if s.cache != nil {
		if err := s.cache.Fill(ctx, qrToken, view); err != nil {
			s.logger.Warn("Public view cache fill failed", zap.Error(err))
		}
	}

	s.metrics.PublicLookup(ctx, observability.LookupStoreHit)
	return view, nil
}

// Update merges the fields present in req into an owned record
func (s *patientService) Update(ctx context.Context, ownerID, id string, req *dto.UpdatePatientRequest) (*domain.Patient, error) {
	patch, err := parsePatientPatch(req)
	if err != nil {
		return nil, err
	}

	current, err := s.loadOwned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if patch.Empty() {
		return current, nil
	}

	updated, err := s.patientRepo.Update(ctx, current.ID, patch)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errPatientNotFound
		}
		return nil, fmt.Errorf("failed to update patient: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Put(ctx, updated.QRToken, updated.Public()); err != nil {
			s.logger.Error("Public view cache refresh failed",
				zap.String("patient_id", updated.ID), zap.Error(err))
		}
	}

	return updated, nil
}

// SoftDelete deactivates an owned record and withdraws its public view
func (s *patientService) SoftDelete(ctx context.Context, ownerID, id string) error {
	patient, err := s.loadOwned(ctx, ownerID, id)
	if err != nil {
		return err
	}

	if err := s.patientRepo.SoftDelete(ctx, patient.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errPatientNotFound
		}
		return fmt.Errorf("failed to delete patient: %w", err)
	}

	s.metrics.Deleted(ctx)
	s.logger.Info("Patient deleted",
		zap.String("patient_id", patient.ID),
		zap.String("owner_id", ownerID),
	)

	if s.cache != nil {
		if err := s.cache.Forget(ctx, patient.QRToken); err != nil {
			s.logger.Error("Public view cache invalidation failed",
				zap.String("patient_id", patient.ID), zap.Error(err))
			return fmt.Errorf("patient deleted but public view is still cached: %w", err)
		}
	}

	return nil
}

// loadOwned fetches an active record and hides it unless ownerID owns it
func (s *patientService) loadOwned(ctx context.Context, ownerID, id string) (*domain.Patient, error) {
	patient, err := s.patientRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errPatientNotFound
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}

	if !patient.BelongsTo(ownerID) {
		return nil, errPatientNotFound
	}
	return patient, nil
}
