package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/prperemyshlev/easyped-service/internal/domain"
	"github.com/prperemyshlev/easyped-service/internal/dto"
	"github.com/prperemyshlev/easyped-service/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	ownerID    = "owner-1"
	strangerID = "owner-2"
	patientID  = "3f1c9a52-7d4b-4c8e-9a61-5b2e0d7f8c13"
	qrToken    = "7b0e4d1a-2c66-4f3b-8e9d-1a5c3f7e2b90"
)

func newTestPatientService(repo *mockPatientRepository, cache PublicViewCache, opts ...PatientServiceOption) PatientService {
	qr := NewQRRenderer("http://localhost:3000", "emergency", 128)
	return NewPatientService(repo, cache, qr, nil, zap.NewNop(), opts...)
}

func storedPatient() *domain.Patient {
	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	return &domain.Patient{
		ID:        patientID,
		Name:      "Ana",
		Age:       8,
		BloodType: "O+",
		EmergencyContacts: []domain.EmergencyContact{
			{Name: "Luis", Relation: "father", PhoneNumber: "+34600000000"},
		},
		Observations: "epilepsy, carries diazepam",
		QRToken:      qrToken,
		CreatedBy:    ownerID,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func createRequest() *dto.CreatePatientRequest {
	return &dto.CreatePatientRequest{
		Name:      "Ana",
		Age:       8,
		BloodType: "O+",
		EmergencyContacts: []dto.EmergencyContactRequest{
			{Name: "Luis", Relation: "father", PhoneNumber: "+34600000000"},
		},
		Observations: "epilepsy",
	}
}

func sequence(tokens ...string) func() string {
	i := 0
	return func() string {
		token := tokens[i]
		i++
		return token
	}
}

func duplicateQR() error {
	return fmt.Errorf("qr code collision: %w", repository.ErrDuplicateQRToken)
}

func TestCreatePatient(t *testing.T) {
	ctx := context.Background()
	repo := new(mockPatientRepository)
	svc := newTestPatientService(repo, newMemoryCache(), WithQRTokenGenerator(sequence("token-1")))

	repo.On("Create", ctx, mock.MatchedBy(func(p *domain.Patient) bool {
		return p.CreatedBy == ownerID && p.QRToken == "token-1" && p.IsActive &&
			p.BloodType == "O+" && len(p.EmergencyContacts) == 1
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Patient).ID = patientID
	}).Return(nil).Once()

	created, err := svc.Create(ctx, ownerID, createRequest())
	require.NoError(t, err)

	assert.Equal(t, patientID, created.ID)
	assert.Equal(t, "Ana", created.Name)
	assert.Equal(t, "token-1", created.QRCode)
	assert.True(t, strings.HasPrefix(created.QRCodeDataURL, "data:image/png;base64,"))
	repo.AssertExpectations(t)
}

func TestCreatePatientRegeneratesQRTokenOnce(t *testing.T) {
	ctx := context.Background()

	t.Run("second token succeeds", func(t *testing.T) {
		repo := new(mockPatientRepository)
		svc := newTestPatientService(repo, nil, WithQRTokenGenerator(sequence("taken", "fresh")))

		repo.On("Create", ctx, mock.Anything).Return(duplicateQR()).Once()
		repo.On("Create", ctx, mock.Anything).Return(nil).Once()

		created, err := svc.Create(ctx, ownerID, createRequest())
		require.NoError(t, err)
		assert.Equal(t, "fresh", created.QRCode)
		repo.AssertNumberOfCalls(t, "Create", 2)
	})

	t.Run("second collision is a conflict", func(t *testing.T) {
		repo := new(mockPatientRepository)
		svc := newTestPatientService(repo, nil, WithQRTokenGenerator(sequence("taken", "also-taken")))

		repo.On("Create", ctx, mock.Anything).Return(duplicateQR()).Twice()

		_, err := svc.Create(ctx, ownerID, createRequest())
		require.ErrorIs(t, err, domain.ErrConflict)
		repo.AssertNumberOfCalls(t, "Create", 2)
	})

	t.Run("other store errors are not retried", func(t *testing.T) {
		repo := new(mockPatientRepository)
		svc := newTestPatientService(repo, nil, WithQRTokenGenerator(sequence("token-1", "token-2")))

		repo.On("Create", ctx, mock.Anything).Return(errors.New("connection refused")).Once()

		_, err := svc.Create(ctx, ownerID, createRequest())
		require.Error(t, err)
		assert.False(t, errors.Is(err, domain.ErrConflict))
		repo.AssertNumberOfCalls(t, "Create", 1)
	})

	t.Run("unknown owner is unauthorized", func(t *testing.T) {
		repo := new(mockPatientRepository)
		svc := newTestPatientService(repo, nil, WithQRTokenGenerator(sequence("token-1", "token-2")))

		repo.On("Create", ctx, mock.Anything).
			Return(fmt.Errorf("owner %s: %w", ownerID, repository.ErrUnknownOwner)).Once()

		_, err := svc.Create(ctx, ownerID, createRequest())
		require.ErrorIs(t, err, domain.ErrUnauthorized)
		assert.Equal(t, "User not found", domain.Message(err))
		repo.AssertNumberOfCalls(t, "Create", 1)
	})
}

func TestCreatePatientValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(req *dto.CreatePatientRequest)
		field  string
	}{
		{"blank name", func(r *dto.CreatePatientRequest) { r.Name = " " }, "name"},
		{"age too low", func(r *dto.CreatePatientRequest) { r.Age = 0 }, "age"},
		{"age too high", func(r *dto.CreatePatientRequest) { r.Age = 121 }, "age"},
		{"unknown blood type", func(r *dto.CreatePatientRequest) { r.BloodType = "C+" }, "bloodType"},
		{"no contacts", func(r *dto.CreatePatientRequest) { r.EmergencyContacts = nil }, "emergencyContacts"},
		{"incomplete contact", func(r *dto.CreatePatientRequest) {
			r.EmergencyContacts[0].PhoneNumber = ""
		}, "emergencyContacts[0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mockPatientRepository)
			svc := newTestPatientService(repo, nil)
			req := createRequest()
			tt.mutate(req)

			_, err := svc.Create(context.Background(), ownerID, req)

			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestOwnershipIsMaskedAsNotFound(t *testing.T) {
	ctx := context.Background()
	repo := new(mockPatientRepository)
	svc := newTestPatientService(repo, newMemoryCache())

	repo.On("GetByID", ctx, patientID).Return(storedPatient(), nil)
	repo.On("GetByID", ctx, "unknown").Return(nil, fmt.Errorf("patient not found: %w", repository.ErrNotFound))

	name := "Mallory"
	calls := map[string]func(ownerID, id string) error{
		"GetOwned": func(owner, id string) error {
			_, err := svc.GetOwned(ctx, owner, id)
			return err
		},
		"Update": func(owner, id string) error {
			_, err := svc.Update(ctx, owner, id, &dto.UpdatePatientRequest{Name: &name})
			return err
		},
		"SoftDelete": func(owner, id string) error {
			return svc.SoftDelete(ctx, owner, id)
		},
	}

	for op, call := range calls {
		t.Run(op+" by stranger", func(t *testing.T) {
			err := call(strangerID, patientID)
			require.ErrorIs(t, err, domain.ErrNotFound)
			assert.Equal(t, "Patient not found", domain.Message(err))
		})
		t.Run(op+" unknown id", func(t *testing.T) {
			err := call(ownerID, "unknown")
			require.ErrorIs(t, err, domain.ErrNotFound)
			assert.Equal(t, "Patient not found", domain.Message(err))
		})
	}

	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "SoftDelete", mock.Anything, mock.Anything)
}

func TestGetOwnedRendersQRCode(t *testing.T) {
	ctx := context.Background()
	repo := new(mockPatientRepository)
	svc := newTestPatientService(repo, nil)
	repo.On("GetByID", ctx, patientID).Return(storedPatient(), nil)

	owned, err := svc.GetOwned(ctx, ownerID, patientID)
	require.NoError(t, err)
	assert.Equal(t, qrToken, owned.QRToken)
	assert.Equal(t, ownerID, owned.CreatedBy)
	assert.True(t, strings.HasPrefix(owned.QRCodeDataURL, "data:image/png;base64,"))
}

func TestListOwned(t *testing.T) {
	ctx := context.Background()
	repo := new(mockPatientRepository)
	svc := newTestPatientService(repo, nil)

	repo.On("ListByOwner", ctx, ownerID).Return([]*domain.Patient{storedPatient()}, nil)
	repo.On("ListByOwner", ctx, strangerID).Return([]*domain.Patient{}, nil)

	patients, err := svc.ListOwned(ctx, ownerID)
	require.NoError(t, err)
	require.Len(t, patients, 1)
	assert.Equal(t, patientID, patients[0].ID)

	patients, err = svc.ListOwned(ctx, strangerID)
	require.NoError(t, err)
	assert.Empty(t, patients)
}

func TestGetPublicProjection(t *testing.T) {
	ctx := context.Background()
	repo := new(mockPatientRepository)
	svc := newTestPatientService(repo, nil)
	repo.On("GetByQRToken", ctx, qrToken).Return(storedPatient(), nil)

	view, err := svc.GetPublic(ctx, qrToken)
	require.NoError(t, err)

	raw, err := json.Marshal(view)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.ElementsMatch(t,
		[]string{"name", "age", "bloodType", "emergencyContacts", "observations"},
		keys(fields),
	)
}

func TestGetPublicUsesCache(t *testing.T) {
	ctx := context.Background()
	repo := new(mockPatientRepository)
	cache := newMemoryCache()
	svc := newTestPatientService(repo, cache)
	repo.On("GetByQRToken", ctx, qrToken).Return(storedPatient(), nil).Once()

	first, err := svc.GetPublic(ctx, qrToken)
	require.NoError(t, err)
	second, err := svc.GetPublic(ctx, qrToken)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Contains(t, cache.entries, qrToken)
	repo.AssertNumberOfCalls(t, "GetByQRToken", 1)
}

func TestGetPublicFallsThroughOnCacheFailure(t *testing.T) {
	ctx := context.Background()
	repo := new(mockPatientRepository)
	cache := newMemoryCache()
	cache.err = errors.New("redis: connection refused")
	svc := newTestPatientService(repo, cache)
	repo.On("GetByQRToken", ctx, qrToken).Return(storedPatient(), nil)

	view, err := svc.GetPublic(ctx, qrToken)
	require.NoError(t, err)
	assert.Equal(t, "Ana", view.Name)
}

func TestGetPublicUnknownToken(t *testing.T) {
	ctx := context.Background()
	repo := new(mockPatientRepository)
	cache := newMemoryCache()
	svc := newTestPatientService(repo, cache)
	repo.On("GetByQRToken", ctx, "bogus").Return(nil, fmt.Errorf("patient not found: %w", repository.ErrNotFound))

	_, err := svc.GetPublic(ctx, "bogus")
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.NotContains(t, cache.entries, "bogus")
}

func TestUpdatePatient(t *testing.T) {
	ctx := context.Background()
	repo := new(mockPatientRepository)
	cache := newMemoryCache()
	svc := newTestPatientService(repo, cache)

	current := storedPatient()
	cache.entries[qrToken] = current.Public()

	updated := storedPatient()
	updated.Name = "Ana María"
	updated.Age = 9

	repo.On("GetByID", ctx, patientID).Return(current, nil)
	repo.On("Update", ctx, patientID, mock.MatchedBy(func(p *domain.PatientPatch) bool {
		return p.Name != nil && *p.Name == "Ana María" &&
			p.Age != nil && *p.Age == 9 &&
			p.BloodType == nil && p.EmergencyContacts == nil && p.Observations == nil
	})).Return(updated, nil)

	name, age := " Ana María ", 9
	got, err := svc.Update(ctx, ownerID, patientID, &dto.UpdatePatientRequest{Name: &name, Age: &age})
	require.NoError(t, err)
	assert.Equal(t, "Ana María", got.Name)
	assert.Equal(t, qrToken, got.QRToken)
	assert.Equal(t, ownerID, got.CreatedBy)

	require.Contains(t, cache.entries, qrToken)
	assert.Equal(t, "Ana María", cache.entries[qrToken].Name)
	repo.AssertExpectations(t)
}

func TestUpdatePatientValidationAndNoop(t *testing.T) {
	ctx := context.Background()
	repo := new(mockPatientRepository)
	svc := newTestPatientService(repo, nil)
	repo.On("GetByID", ctx, patientID).Return(storedPatient(), nil)

	age := 200
	_, err := svc.Update(ctx, ownerID, patientID, &dto.UpdatePatientRequest{Age: &age})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "age", ve.Field)

	_, err = svc.Update(ctx, ownerID, patientID, &dto.UpdatePatientRequest{
		EmergencyContacts: []dto.EmergencyContactRequest{},
	})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "emergencyContacts", ve.Field)

	got, err := svc.Update(ctx, ownerID, patientID, &dto.UpdatePatientRequest{})
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.Name)

	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestSoftDeleteWithdrawsPublicView(t *testing.T) {
	ctx := context.Background()
	repo := new(mockPatientRepository)
	cache := newMemoryCache()
	svc := newTestPatientService(repo, cache)

	repo.On("GetByQRToken", ctx, qrToken).Return(storedPatient(), nil).Once()
	repo.On("GetByID", ctx, patientID).Return(storedPatient(), nil).Once()
	repo.On("SoftDelete", ctx, patientID).Return(nil).Once()

	_, err := svc.GetPublic(ctx, qrToken)
	require.NoError(t, err)

	require.NoError(t, svc.SoftDelete(ctx, ownerID, patientID))

	_, err = svc.GetPublic(ctx, qrToken)
	require.ErrorIs(t, err, domain.ErrNotFound)

	// a reader that loaded the row before the delete cannot resurrect it
	require.NoError(t, cache.Fill(ctx, qrToken, storedPatient().Public()))
	_, err = svc.GetPublic(ctx, qrToken)
	require.ErrorIs(t, err, domain.ErrNotFound)

	repo.AssertExpectations(t)
}

func TestUpdateRacingSoftDeleteKeepsViewWithdrawn(t *testing.T) {
	ctx := context.Background()
	repo := new(mockPatientRepository)
	cache := newMemoryCache()
	svc := newTestPatientService(repo, cache)

	updated := storedPatient()
	updated.Name = "Ana B"

	repo.On("GetByID", ctx, patientID).Return(storedPatient(), nil)
	repo.On("SoftDelete", ctx, patientID).Return(nil).Once()
	repo.On("Update", ctx, patientID, mock.Anything).Run(func(mock.Arguments) {
		// the row was updated, a delete lands before the cache refresh
		require.NoError(t, svc.SoftDelete(ctx, ownerID, patientID))
	}).Return(updated, nil).Once()

	name := "Ana B"
	_, err := svc.Update(ctx, ownerID, patientID, &dto.UpdatePatientRequest{Name: &name})
	require.NoError(t, err)

	view, err := svc.GetPublic(ctx, qrToken)
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Nil(t, view)
	repo.AssertNotCalled(t, "GetByQRToken", mock.Anything, mock.Anything)
}

func TestSoftDeleteReportsFailedWithdrawal(t *testing.T) {
	ctx := context.Background()
	repo := new(mockPatientRepository)
	cache := newMemoryCache()
	cache.forgetErr = errors.New("redis: connection refused")
	svc := newTestPatientService(repo, cache)

	repo.On("GetByID", ctx, patientID).Return(storedPatient(), nil)
	repo.On("SoftDelete", ctx, patientID).Return(nil).Once()

	err := svc.SoftDelete(ctx, ownerID, patientID)
	require.Error(t, err)
	assert.ErrorIs(t, err, cache.forgetErr)
	assert.False(t, errors.Is(err, domain.ErrNotFound))
	repo.AssertExpectations(t)
}

func TestQRRendererLink(t *testing.T) {
	r := NewQRRenderer("https://easyped.example/", "/emergency/", 256)
	assert.Equal(t, "https://easyped.example/emergency/abc", r.Link("abc"))

	r = NewQRRenderer("https://easyped.example", "", 256)
	assert.Equal(t, "https://easyped.example/abc", r.Link("abc"))
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
