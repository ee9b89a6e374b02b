package service

import (
	"context"

	"github.com/prperemyshlev/easyped-service/internal/domain"
	"github.com/prperemyshlev/easyped-service/internal/dto"
)

// AuthService defines methods for authentication operations
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	GetUser(ctx context.Context, userID string) (*dto.UserInfo, error)
	ValidateToken(ctx context.Context, token string) (*domain.TokenClaims, error)
}

// PatientService enforces record ownership and composes the owner and public views.
// Ownership mismatches are reported as not found.
type PatientService interface {
	Create(ctx context.Context, ownerID string, req *dto.CreatePatientRequest) (*dto.CreatedPatient, error)
	ListOwned(ctx context.Context, ownerID string) ([]*domain.Patient, error)
	GetOwned(ctx context.Context, ownerID, id string) (*dto.OwnedPatient, error)
	GetPublic(ctx context.Context, qrToken string) (*domain.PublicPatient, error)
	Update(ctx context.Context, ownerID, id string, req *dto.UpdatePatientRequest) (*domain.Patient, error)
	SoftDelete(ctx context.Context, ownerID, id string) error
}

// PublicViewCache caches the emergency projection by QR token.
// A found entry with a nil view is a tombstone for a deleted record; Fill and Put
// never overwrite a tombstone, Forget leaves no servable view behind or fails.
type PublicViewCache interface {
	Get(ctx context.Context, qrToken string) (view *domain.PublicPatient, found bool, err error)
	Fill(ctx context.Context, qrToken string, view *domain.PublicPatient) error
	Put(ctx context.Context, qrToken string, view *domain.PublicPatient) error
	Forget(ctx context.Context, qrToken string) error
}
