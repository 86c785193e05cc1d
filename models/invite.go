package models

import "time"

const (
	InvitePending  = "PENDING"
	InviteAccepted = "ACCEPTED"
	InviteDeclined = "DECLINED"
	InviteExpired  = "EXPIRED"
)

// InviteTTL is how long an invite token stays redeemable.
const InviteTTL = 7 * 24 * time.Hour

type Invite struct {
	ID         string    `json:"id"`
	GroupID    string    `json:"group_id"`
	Email      string    `json:"email"`
	SenderID   string    `json:"sender_id"`
	SenderName string    `json:"sender_name,omitempty"`
	GroupName  string    `json:"group_name,omitempty"`
	Token      string    `json:"token,omitempty"`
	Status     string    `json:"status"`
	ExpiresAt  time.Time `json:"expires_at"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (i *Invite) IsExpired() bool {
	return time.Now().After(i.ExpiresAt)
}

func (i *Invite) IsPending() bool {
	return i.Status == InvitePending
}

type CreateInviteRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ProcessInviteRequest struct {
	Action string `json:"action" binding:"required,oneof=accept decline"`
}

// InvitePreview is what the public token lookup returns: enough for the
// landing page to show who invited you to what, never the token itself.
type InvitePreview struct {
	GroupID    string    `json:"group_id"`
	GroupName  string    `json:"group_name"`
	SenderName string    `json:"sender_name"`
	Email      string    `json:"email"`
	Status     string    `json:"status"`
	ExpiresAt  time.Time `json:"expires_at"`
}
