package handler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prperemyshlev/easyped-service/internal/domain"
	"github.com/prperemyshlev/easyped-service/internal/repository"
)

// memoryUsers is an in-memory repository.UserRepository
type memoryUsers struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{users: make(map[string]*domain.User)}
}

func (r *memoryUsers) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email {
			return fmt.Errorf("user with email %s already exists: %w", user.Email, repository.ErrDuplicateEmail)
		}
		if user.HasFederatedID() && u.HasFederatedID() && *u.FederatedID == *user.FederatedID {
			return fmt.Errorf("federated id already exists: %w", repository.ErrDuplicateFederatedID)
		}
	}

	user.ID = uuid.NewString()
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *memoryUsers) find(match func(*domain.User) bool) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if match(u) {
			found := *u
			return &found, nil
		}
	}
	return nil, fmt.Errorf("user not found: %w", repository.ErrNotFound)
}

func (r *memoryUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Email == email })
}

func (r *memoryUsers) GetByFederatedID(_ context.Context, federatedID string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.HasFederatedID() && *u.FederatedID == federatedID })
}

func (r *memoryUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.ID == id })
}

// memoryPatients is an in-memory repository.PatientRepository
type memoryPatients struct {
	mu       sync.Mutex
	patients map[string]*domain.Patient
	listErr  error
}

func newMemoryPatients() *memoryPatients {
	return &memoryPatients{patients: make(map[string]*domain.Patient)}
}

func clonePatient(p *domain.Patient) *domain.Patient {
	c := *p
	c.EmergencyContacts = append([]domain.EmergencyContact(nil), p.EmergencyContacts...)
	return &c
}

func (r *memoryPatients) Create(_ context.Context, patient *domain.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.patients {
		if p.QRToken == patient.QRToken {
			return fmt.Errorf("qr code collision: %w", repository.ErrDuplicateQRToken)
		}
	}

	if patient.ID == "" {
		patient.ID = uuid.NewString()
	}
	patient.CreatedAt = time.Now().UTC()
	patient.UpdatedAt = patient.CreatedAt
	r.patients[patient.ID] = clonePatient(patient)
	return nil
}

func (r *memoryPatients) active(id string) (*domain.Patient, error) {
	p, ok := r.patients[id]
	if !ok || !p.IsActive {
		return nil, fmt.Errorf("patient with id %s not found: %w", id, repository.ErrNotFound)
	}
	return p, nil
}

func (r *memoryPatients) GetByID(_ context.Context, id string) (*domain.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, err := r.active(id)
	if err != nil {
		return nil, err
	}
	return clonePatient(p), nil
}

func (r *memoryPatients) GetByQRToken(_ context.Context, qrToken string) (*domain.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.patients {
		if p.QRToken == qrToken && p.IsActive {
			return clonePatient(p), nil
		}
	}
	return nil, fmt.Errorf("patient not found: %w", repository.ErrNotFound)
}

func (r *memoryPatients) ListByOwner(_ context.Context, ownerID string) ([]*domain.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.listErr != nil {
		return nil, r.listErr
	}

	patients := []*domain.Patient{}
	for _, p := range r.patients {
		if p.CreatedBy == ownerID && p.IsActive {
			patients = append(patients, clonePatient(p))
		}
	}
	return patients, nil
}

func (r *memoryPatients) Update(_ context.Context, id string, patch *domain.PatientPatch) (*domain.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, err := r.active(id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Age != nil {
		p.Age = *patch.Age
	}
	if patch.BloodType != nil {
		p.BloodType = *patch.BloodType
	}
	if patch.EmergencyContacts != nil {
		p.EmergencyContacts = append([]domain.EmergencyContact(nil), patch.EmergencyContacts...)
	}
	if patch.Observations != nil {
		p.Observations = *patch.Observations
	}
	p.UpdatedAt = time.Now().UTC()

	return clonePatient(p), nil
}

func (r *memoryPatients) SoftDelete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, err := r.active(id)
	if err != nil {
		return err
	}
	p.IsActive = false
	return nil
}
