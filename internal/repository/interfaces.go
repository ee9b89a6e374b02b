package repository

import (
	"context"

	"github.com/prperemyshlev/easyped-service/internal/domain"
)

// UserRepository is the credential store
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByFederatedID(ctx context.Context, federatedID string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// PatientRepository stores patient records. Reads, updates and deletes only see
// active records; ownership is not checked here.
type PatientRepository interface {
	Create(ctx context.Context, patient *domain.Patient) error
	GetByID(ctx context.Context, id string) (*domain.Patient, error)
	GetByQRToken(ctx context.Context, qrToken string) (*domain.Patient, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Patient, error)
	Update(ctx context.Context, id string, patch *domain.PatientPatch) (*domain.Patient, error)
	SoftDelete(ctx context.Context, id string) error
}
