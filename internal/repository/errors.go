package repository

import (
	"errors"

	"github.com/lib/pq"
)

// Common repository errors
var (
	// ErrNotFound is returned when a record is not found or is inactive
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateEmail is returned when trying to create a user with an existing email
	ErrDuplicateEmail = errors.New("user with this email already exists")

	// ErrDuplicateFederatedID is returned when a federated identity is already linked to a user
	ErrDuplicateFederatedID = errors.New("user with this federated id already exists")

	// ErrDuplicateQRToken is returned when a generated QR token collides with an existing one
	ErrDuplicateQRToken = errors.New("patient with this qr code already exists")

	// ErrUnknownOwner is returned when a patient references a user that does not exist
	ErrUnknownOwner = errors.New("patient owner does not exist")
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// uniqueConstraint returns the violated constraint name for unique_violation errors
func uniqueConstraint(err error) (string, bool) {
	return violatedConstraint(err, uniqueViolation)
}

// foreignKeyConstraint returns the violated constraint name for foreign_key_violation errors
func foreignKeyConstraint(err error) (string, bool) {
	return violatedConstraint(err, foreignKeyViolation)
}

func violatedConstraint(err error, code pq.ErrorCode) (string, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == code {
		return pqErr.Constraint, true
	}
	return "", false
}
