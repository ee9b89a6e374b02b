package dto

// RegisterRequest represents a registration request. The email format is checked
// by the auth service after trimming and lower-casing.
type RegisterRequest struct {
	Email        string `json:"email" binding:"required"`
	Password     string `json:"password" binding:"omitempty,min=6"`
	Name         string `json:"name" binding:"required"`
	Role         string `json:"role" binding:"required,oneof=doctor parent"`
	FederatedID  string `json:"federatedId"`
	AuthProvider string `json:"authProvider" binding:"omitempty,oneof=email google apple"`
}

// LoginRequest represents a login request, either email/password or federated id
type LoginRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FederatedID string `json:"federatedId"`
}

// EmergencyContactRequest is an emergency contact as sent by clients
type EmergencyContactRequest struct {
	Name        string `json:"name" binding:"required"`
	Relation    string `json:"relation" binding:"required"`
	PhoneNumber string `json:"phoneNumber" binding:"required"`
}

// CreatePatientRequest represents a patient registration
type CreatePatientRequest struct {
	Name              string                    `json:"name" binding:"required"`
	Age               int                       `json:"age" binding:"required,min=1,max=120"`
	BloodType         string                    `json:"bloodType" binding:"required"`
	EmergencyContacts []EmergencyContactRequest `json:"emergencyContacts" binding:"required,min=1,dive"`
	Observations      string                    `json:"observations"`
}

// UpdatePatientRequest represents a partial patient update; absent fields are kept
type UpdatePatientRequest struct {
	Name              *string                   `json:"name"`
	Age               *int                      `json:"age"`
	BloodType         *string                   `json:"bloodType"`
	EmergencyContacts []EmergencyContactRequest `json:"emergencyContacts" binding:"omitempty,dive"`
	Observations      *string                   `json:"observations"`
}
