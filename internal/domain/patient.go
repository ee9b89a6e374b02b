package domain

import "time"

// BloodType is an ABO/Rh blood group
type BloodType string

var bloodTypes = map[BloodType]struct{}{
	"A+": {}, "A-": {}, "B+": {}, "B-": {},
	"AB+": {}, "AB-": {}, "O+": {}, "O-": {},
}

func (b BloodType) Valid() bool {
	_, ok := bloodTypes[b]
	return ok
}

const (
	MinPatientAge = 1
	MaxPatientAge = 120
)

// EmergencyContact is a person to call on behalf of the patient
type EmergencyContact struct {
	Name        string `json:"name"`
	Relation    string `json:"relation"`
	PhoneNumber string `json:"phoneNumber"`
}

// Patient is an emergency profile owned by exactly one user.
// QRToken never changes after creation.
type Patient struct {
	ID                string             `json:"id" db:"id"`
	Name              string             `json:"name" db:"name"`
	Age               int                `json:"age" db:"age"`
	BloodType         BloodType          `json:"bloodType" db:"blood_type"`
	EmergencyContacts []EmergencyContact `json:"emergencyContacts" db:"emergency_contacts"`
	Observations      string             `json:"observations,omitempty" db:"observations"`
	QRToken           string             `json:"qrCode" db:"qr_code"`
	CreatedBy         string             `json:"createdBy" db:"created_by"`
	IsActive          bool               `json:"isActive" db:"is_active"`
	CreatedAt         time.Time          `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time          `json:"updatedAt" db:"updated_at"`
}

// BelongsTo is the single ownership predicate for protected patient operations
func (p *Patient) BelongsTo(userID string) bool {
	return p != nil && userID != "" && p.CreatedBy == userID
}

// Public returns the emergency projection served on the QR path
func (p *Patient) Public() *PublicPatient {
	contacts := make([]EmergencyContact, len(p.EmergencyContacts))
	copy(contacts, p.EmergencyContacts)

	return &PublicPatient{
		Name:              p.Name,
		Age:               p.Age,
		BloodType:         p.BloodType,
		EmergencyContacts: contacts,
		Observations:      p.Observations,
	}
}

// PublicPatient holds only the fields a first responder needs
type PublicPatient struct {
	Name              string             `json:"name"`
	Age               int                `json:"age"`
	BloodType         BloodType          `json:"bloodType"`
	EmergencyContacts []EmergencyContact `json:"emergencyContacts"`
	Observations      string             `json:"observations,omitempty"`
}

// PatientPatch is a validated partial update; nil fields are left untouched
type PatientPatch struct {
	Name              *string
	Age               *int
	BloodType         *BloodType
	EmergencyContacts []EmergencyContact
	Observations      *string
}

// Empty reports whether the patch changes nothing
func (p *PatientPatch) Empty() bool {
	return p.Name == nil && p.Age == nil && p.BloodType == nil &&
		p.EmergencyContacts == nil && p.Observations == nil
}
