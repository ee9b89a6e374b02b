package dto

import "github.com/prperemyshlev/easyped-service/internal/domain"

// AuthResponse represents an authentication response
type AuthResponse struct {
	Message string   `json:"message"`
	Token   string   `json:"token"`
	User    UserInfo `json:"user"`
}

// UserInfo is the public projection of a user
type UserInfo struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	Role         string `json:"role"`
	AuthProvider string `json:"authProvider"`
}

func NewUserInfo(u *domain.User) UserInfo {
	return UserInfo{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		Role:         string(u.Role),
		AuthProvider: string(u.AuthProvider),
	}
}

// UserResponse wraps the current user
type UserResponse struct {
	User UserInfo `json:"user"`
}

// CreatedPatient is returned after registering a patient
type CreatedPatient struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	QRCode        string `json:"qrCode"`
	QRCodeDataURL string `json:"qrCodeDataUrl"`
}

type CreatePatientResponse struct {
	Message string         `json:"message"`
	Patient CreatedPatient `json:"patient"`
}

// OwnedPatient is a full record as seen by its owner, with a rendered QR image
type OwnedPatient struct {
	*domain.Patient
	QRCodeDataURL string `json:"qrCodeDataUrl"`
}

type PatientResponse struct {
	Patient OwnedPatient `json:"patient"`
}

type PatientListResponse struct {
	Patients []*domain.Patient `json:"patients"`
}

type PublicPatientResponse struct {
	Patient *domain.PublicPatient `json:"patient"`
}

type UpdatePatientResponse struct {
	Message string          `json:"message"`
	Patient *domain.Patient `json:"patient"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// HealthResponse is the liveness probe body
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}
