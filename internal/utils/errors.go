package utils

import "errors"

// Domain-level errors used by the service layer to provide
// fine-grained failure reasons.
var (
	ErrNotFound         = errors.New("not_found")
	ErrPropertyNotFound = errors.New("property_not_found")
	ErrTenantNotFound   = errors.New("tenant_not_found")
	ErrLeaseNotFound    = errors.New("lease_not_found")
	ErrPropertyOccupied = errors.New("property_occupied")
	ErrInvalidPayload   = errors.New("invalid_payload")

	ErrEmailExists        = errors.New("email_exists")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrForbidden          = errors.New("forbidden")

	ErrSMTPNotConfigured      = errors.New("smtp_not_configured")
	ErrSMTPCredentialsMissing = errors.New("smtp_credentials_missing")
	ErrDeliveryFailed         = errors.New("delivery_failed")

	ErrFileTooLarge       = errors.New("file_too_large")
	ErrInvitationInvalid  = errors.New("invitation_invalid")
	ErrInvitationMismatch = errors.New("invitation_email_mismatch")
	ErrAlreadyMember      = errors.New("already_member")
)
