package domain

import "errors"

// Authentication and authorization.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("access denied")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailInUse         = errors.New("email already in use")
	ErrAdminExists        = errors.New("admin user already exists")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
)

// ErrInvalidInput marks a request that failed business validation.
var ErrInvalidInput = errors.New("invalid input")

// Catalog.
var (
	ErrMedicineNotFound      = errors.New("medicine not found")
	ErrCompanyNotFound       = errors.New("company not found")
	ErrDistributorNotFound   = errors.New("distributor not found")
	ErrPrescriptionNotFound  = errors.New("prescription not found")
	ErrPrescriptionNotActive = errors.New("prescription is not active")
	ErrInsufficientStock     = errors.New("insufficient stock")
)
