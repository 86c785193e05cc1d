package models

import "time"

const (
	ResponseAvailable   = "AVAILABLE"
	ResponseUnavailable = "UNAVAILABLE"
	ResponseMaybe       = "MAYBE"
)

// AvailabilityResponse is unique per (event, user). Resubmission overwrites
// status and comment; no history is kept.
type AvailabilityResponse struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name,omitempty"`
	Status    string    `json:"status"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type SubmitResponseRequest struct {
	Status  string `json:"status" binding:"required,oneof=AVAILABLE UNAVAILABLE MAYBE"`
	Comment string `json:"comment" binding:"max=500"`
}
