package repository

import (
	"context"
	"time"

	"github.com/prperemyshlev/easyped-service/pkg/database"
)

// Repositories holds all repository interfaces
type Repositories struct {
	User    UserRepository
	Patient PatientRepository
}

// NewRepositories creates all repositories; every statement is bounded by timeout
func NewRepositories(db *database.Postgres, timeout time.Duration) *Repositories {
	return &Repositories{
		User:    NewUserRepository(db, timeout),
		Patient: NewPatientRepository(db, timeout),
	}
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
