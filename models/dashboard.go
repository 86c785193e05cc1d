package models

type DashboardSummary struct {
	GroupCount     int      `json:"group_count"`
	UpcomingEvents []Event  `json:"upcoming_events"`
	PendingInvites []Invite `json:"pending_invites"`
}
