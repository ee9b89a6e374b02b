package service

import (
	"fmt"
	"strings"

	"github.com/prperemyshlev/easyped-service/internal/domain"
	"github.com/prperemyshlev/easyped-service/internal/dto"
)

func parseName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", domain.Invalid("name", "is required")
	}
	return name, nil
}

func parseAge(age int) error {
	if age < domain.MinPatientAge || age > domain.MaxPatientAge {
		return domain.Invalid("age", fmt.Sprintf("must be between %d and %d", domain.MinPatientAge, domain.MaxPatientAge))
	}
	return nil
}

func parseBloodType(raw string) (domain.BloodType, error) {
	bt := domain.BloodType(strings.ToUpper(strings.TrimSpace(raw)))
	if !bt.Valid() {
		return "", domain.Invalid("bloodType", "must be one of A+, A-, B+, B-, AB+, AB-, O+, O-")
	}
	return bt, nil
}

func parseContacts(reqs []dto.EmergencyContactRequest) ([]domain.EmergencyContact, error) {
	if len(reqs) == 0 {
		return nil, domain.Invalid("emergencyContacts", "at least one contact is required")
	}

	contacts := make([]domain.EmergencyContact, 0, len(reqs))
	for i, c := range reqs {
		contact := domain.EmergencyContact{
			Name:        strings.TrimSpace(c.Name),
			Relation:    strings.TrimSpace(c.Relation),
			PhoneNumber: strings.TrimSpace(c.PhoneNumber),
		}
		if contact.Name == "" || contact.Relation == "" || contact.PhoneNumber == "" {
			return nil, domain.Invalid(
				fmt.Sprintf("emergencyContacts[%d]", i),
				"name, relation and phoneNumber are required",
			)
		}
		contacts = append(contacts, contact)
	}
	return contacts, nil
}

// parseCreatePatient validates a create request into an unsaved patient
func parseCreatePatient(req *dto.CreatePatientRequest) (*domain.Patient, error) {
	name, err := parseName(req.Name)
	if err != nil {
		return nil, err
	}
	if err := parseAge(req.Age); err != nil {
		return nil, err
	}
	bloodType, err := parseBloodType(req.BloodType)
	if err != nil {
		return nil, err
	}
	contacts, err := parseContacts(req.EmergencyContacts)
	if err != nil {
		return nil, err
	}

	return &domain.Patient{
		Name:              name,
		Age:               req.Age,
		BloodType:         bloodType,
		EmergencyContacts: contacts,
		Observations:      strings.TrimSpace(req.Observations),
		IsActive:          true,
	}, nil
}

// parsePatientPatch validates the fields present in an update request
func parsePatientPatch(req *dto.UpdatePatientRequest) (*domain.PatientPatch, error) {
	patch := &domain.PatientPatch{}

	if req.Name != nil {
		name, err := parseName(*req.Name)
		if err != nil {
			return nil, err
		}
		patch.Name = &name
	}
	if req.Age != nil {
		if err := parseAge(*req.Age); err != nil {
			return nil, err
		}
		age := *req.Age
		patch.Age = &age
	}
	if req.BloodType != nil {
		bt, err := parseBloodType(*req.BloodType)
		if err != nil {
			return nil, err
		}
		patch.BloodType = &bt
	}
	if req.EmergencyContacts != nil {
		contacts, err := parseContacts(req.EmergencyContacts)
		if err != nil {
			return nil, err
		}
		patch.EmergencyContacts = contacts
	}
	if req.Observations != nil {
		observations := strings.TrimSpace(*req.Observations)
		patch.Observations = &observations
	}

	return patch, nil
}
