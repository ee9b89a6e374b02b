package service

import (
	"context"

	"github.com/prperemyshlev/easyped-service/internal/domain"
	"github.com/prperemyshlev/easyped-service/internal/repository"
	"github.com/stretchr/testify/mock"
)

var (
	_ repository.UserRepository    = (*mockUserRepository)(nil)
	_ repository.PatientRepository = (*mockPatientRepository)(nil)
	_ PublicViewCache              = (*memoryCache)(nil)
)

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *mockUserRepository) GetByFederatedID(ctx context.Context, federatedID string) (*domain.User, error) {
	args := m.Called(ctx, federatedID)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

type mockPatientRepository struct {
	mock.Mock
}

func (m *mockPatientRepository) Create(ctx context.Context, patient *domain.Patient) error {
	args := m.Called(ctx, patient)
	return args.Error(0)
}

func (m *mockPatientRepository) GetByID(ctx context.Context, id string) (*domain.Patient, error) {
	args := m.Called(ctx, id)
	patient, _ := args.Get(0).(*domain.Patient)
	return patient, args.Error(1)
}

func (m *mockPatientRepository) GetByQRToken(ctx context.Context, qrToken string) (*domain.Patient, error) {
	args := m.Called(ctx, qrToken)
	patient, _ := args.Get(0).(*domain.Patient)
	return patient, args.Error(1)
}

func (m *mockPatientRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Patient, error) {
	args := m.Called(ctx, ownerID)
	patients, _ := args.Get(0).([]*domain.Patient)
	return patients, args.Error(1)
}

func (m *mockPatientRepository) Update(ctx context.Context, id string, patch *domain.PatientPatch) (*domain.Patient, error) {
	args := m.Called(ctx, id, patch)
	patient, _ := args.Get(0).(*domain.Patient)
	return patient, args.Error(1)
}

func (m *mockPatientRepository) SoftDelete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// memoryCache is a map backed PublicViewCache; a nil entry is a tombstone
type memoryCache struct {
	entries   map[string]*domain.PublicPatient
	err       error
	forgetErr error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string]*domain.PublicPatient)}
}

func (c *memoryCache) Get(_ context.Context, qrToken string) (*domain.PublicPatient, bool, error) {
	if c.err != nil {
		return nil, false, c.err
	}
	view, ok := c.entries[qrToken]
	return view, ok, nil
}

func (c *memoryCache) Fill(_ context.Context, qrToken string, view *domain.PublicPatient) error {
	if c.err != nil {
		return c.err
	}
	if _, ok := c.entries[qrToken]; !ok {
		c.entries[qrToken] = view
	}
	return nil
}

func (c *memoryCache) Put(_ context.Context, qrToken string, view *domain.PublicPatient) error {
	if c.err != nil {
		return c.err
	}
	if current, ok := c.entries[qrToken]; ok && current == nil {
		return nil
	}
	c.entries[qrToken] = view
	return nil
}

func (c *memoryCache) Forget(_ context.Context, qrToken string) error {
	if c.err != nil {
		return c.err
	}
	if c.forgetErr != nil {
		return c.forgetErr
	}
	c.entries[qrToken] = nil
	return nil
}
