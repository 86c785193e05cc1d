package services

import (
	"context"
	"errors"
	"testing"

	"github.com/meetgrid/scheduler-api/models"
)

func TestMembershipClass(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	authz := NewAuthzService(db)

	owner := seedUser(t, db, "owner@example.com", "Owner")
	admin := seedUser(t, db, "admin@example.com", "Admin")
	member := seedUser(t, db, "member@example.com", "Member")
	outsider := seedUser(t, db, "outsider@example.com", "Outsider")

	groupID := seedGroup(t, db, "Book Club", owner)
	seedMember(t, db, groupID, admin, models.RoleAdmin)
	seedMember(t, db, groupID, member, models.RoleMember)

	tests := []struct {
		name   string
		userID string
		want   MembershipClass
	}{
		{"owner", owner, ClassOwner},
		{"admin", admin, ClassAdmin},
		{"member", member, ClassMember},
		{"outsider", outsider, ClassNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := authz.MembershipClass(ctx, groupID, tt.userID)
			if err != nil {
				t.Fatalf("MembershipClass: %v", err)
			}
			if got != tt.want {
				t.Errorf("got class %d, want %d", got, tt.want)
			}
		})
	}

	if _, err := authz.MembershipClass(ctx, "00000000-0000-0000-0000-000000000000", owner); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing group: got %v, want ErrNotFound", err)
	}
}

// isMember must hold iff the user is the owner or has a member row.
func TestIsMemberUnion(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	authz := NewAuthzService(db)

	owner := seedUser(t, db, "owner@example.com", "Owner")
	member := seedUser(t, db, "member@example.com", "Member")
	outsider := seedUser(t, db, "outsider@example.com", "Outsider")

	groupID := seedGroup(t, db, "Hiking", owner)
	seedMember(t, db, groupID, member, models.RoleMember)

	for _, tt := range []struct {
		userID string
		want   bool
	}{
		{owner, true},
		{member, true},
		{outsider, false},
	} {
		got, err := authz.IsMember(ctx, groupID, tt.userID)
		if err != nil {
			t.Fatalf("IsMember: %v", err)
		}
		if got != tt.want {
			t.Errorf("IsMember(%s) = %v, want %v", tt.userID, got, tt.want)
		}
	}
}

func TestCapabilityMatrix(t *testing.T) {
	tests := []struct {
		class  MembershipClass
		action Action
		want   bool
	}{
		{ClassMember, ActionViewGroup, true},
		{ClassMember, ActionCreateEvent, true},
		{ClassMember, ActionManageInvites, false},
		{ClassMember, ActionUpdateGroup, false},
		{ClassAdmin, ActionManageInvites, true},
		{ClassAdmin, ActionUpdateGroup, true},
		{ClassAdmin, ActionDeleteGroup, false},
		{ClassAdmin, ActionTransferGroup, false},
		{ClassOwner, ActionDeleteGroup, true},
		{ClassOwner, ActionRemoveMember, true},
		{ClassNone, ActionViewGroup, false},
		{ClassNone, ActionSubmitResponse, false},
	}
	for _, tt := range tests {
		if got := Can(tt.class, tt.action); got != tt.want {
			t.Errorf("Can(%d, %s) = %v, want %v", tt.class, tt.action, got, tt.want)
		}
	}
}

// Event modification is creator-or-owner; an admin who is neither is refused
// even though admins hold broader rights elsewhere.
func TestCanModifyEventExcludesAdmins(t *testing.T) {
	event := &models.Event{ID: "e1", CreatorID: "creator", GroupID: "g1"}

	if !CanModifyEvent(event, "owner", "creator") {
		t.Error("creator should be allowed")
	}
	if !CanModifyEvent(event, "owner", "owner") {
		t.Error("group owner should be allowed")
	}
	if CanModifyEvent(event, "owner", "admin") {
		t.Error("admin who is neither creator nor owner should be refused")
	}
}
