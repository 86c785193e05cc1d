package services

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by services. Handlers translate these into HTTP
// status codes; sql.ErrNoRows never leaves this package.
var (
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrAlreadyMember    = errors.New("already a member")
	ErrInvitePending    = errors.New("invitation already sent")
	ErrInviteProcessed  = errors.New("invitation already processed")
	ErrInviteExpired    = errors.New("invitation has expired")
	ErrOwnerCannotLeave = errors.New("owner cannot leave the group")
	ErrEmailDelivery    = errors.New("failed to send invitation email")
)

// ValidationError carries a per-field message so forms can render it inline.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
