package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/meetgrid/scheduler-api/models"
	"github.com/meetgrid/scheduler-api/utils"
)

type GroupService struct {
	db *sql.DB
}

func NewGroupService(db *sql.DB) *GroupService {
	return &GroupService{db: db}
}

// Create inserts a group owned by ownerID. The owner gets no member row;
// membership checks treat ownership as an implicit super-membership.
func (s *GroupService) Create(ctx context.Context, name, description, ownerID string) (*models.Group, error) {
	now := time.Now().UTC()
	group := &models.Group{
		ID:          uuid.New().String(),
		Name:        name,
		Description: description,
		OwnerID:     ownerID,
		IsOwner:     true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO groups (id, name, description, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, group.ID, group.Name, group.Description, group.OwnerID, group.CreatedAt, group.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return group, nil
}

// GetByID fetches a group with its owner name and member list. Authorization
// is the caller's job.
func (s *GroupService) GetByID(ctx context.Context, id string) (*models.Group, error) {
	var group models.Group
	var description, ownerName sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT g.id, g.name, g.description, g.owner_id, u.name, g.created_at, g.updated_at
		FROM groups g
		LEFT JOIN users u ON g.owner_id = u.id
		WHERE g.id = $1
	`, id).Scan(
		&group.ID,
		&group.Name,
		&description,
		&group.OwnerID,
		&ownerName,
		&group.CreatedAt,
		&group.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	group.Description = description.String
	group.OwnerName = ownerName.String

	members, err := s.GetMembers(ctx, id)
	if err != nil {
		return nil, err
	}
	group.Members = members
	group.MemberCount = len(members)

	return &group, nil
}

// ListForUser returns all groups where the user is owner or has a member row.
func (s *GroupService) ListForUser(ctx context.Context, userID string) ([]models.Group, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT g.id, g.name, g.description, g.owner_id, g.created_at, g.updated_at,
		       (SELECT COUNT(*) FROM group_members gm2 WHERE gm2.group_id = g.id)
		FROM groups g
		LEFT JOIN group_members gm ON g.id = gm.group_id AND gm.user_id = $1
		WHERE g.owner_id = $1 OR gm.user_id IS NOT NULL
		ORDER BY g.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	groups := []models.Group{}
	for rows.Next() {
		var group models.Group
		var description sql.NullString
		if err := rows.Scan(
			&group.ID,
			&group.Name,
			&description,
			&group.OwnerID,
			&group.CreatedAt,
			&group.UpdatedAt,
			&group.MemberCount,
		); err != nil {
			return nil, err
		}
		group.Description = description.String
		group.IsOwner = group.OwnerID == userID
		groups = append(groups, group)
	}

	return groups, rows.Err()
}

func (s *GroupService) Update(ctx context.Context, id, name, description string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE groups SET name = $1, description = $2, updated_at = $3 WHERE id = $4
	`, name, description, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a group and everything under it in one transaction: the
// responses of its events, the events, the invites, the memberships, then
// the group row itself.
func (s *GroupService) Delete(ctx context.Context, groupID string) error {
	return utils.WithTransaction(s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM availability_responses
			WHERE event_id IN (SELECT id FROM events WHERE group_id = $1)
		`, groupID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM events WHERE group_id = $1`, groupID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM invites WHERE group_id = $1`, groupID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM group_members WHERE group_id = $1`, groupID); err != nil {
			return err
		}
		result, err := tx.ExecContext(ctx, `DELETE FROM groups WHERE id = $1`, groupID)
		if err != nil {
			return err
		}
		if n, _ := result.RowsAffected(); n == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// Leave removes the caller's own membership. The owner has no member row and
// must transfer ownership or delete the group instead.
func (s *GroupService) Leave(ctx context.Context, groupID, userID string) error {
	var ownerID string
	err := s.db.QueryRowContext(ctx, `SELECT owner_id FROM groups WHERE id = $1`, groupID).Scan(&ownerID)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if ownerID == userID {
		return ErrOwnerCannotLeave
	}

	result, err := s.db.ExecContext(ctx, `
		DELETE FROM group_members WHERE group_id = $1 AND user_id = $2
	`, groupID, userID)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// TransferOwnership makes an existing member the new owner. The new owner's
// member row is removed (owners are not members) and the previous owner is
// inserted back as an admin member, all in one transaction.
func (s *GroupService) TransferOwnership(ctx context.Context, groupID, currentOwnerID, newOwnerID string) error {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM group_members WHERE group_id = $1 AND user_id = $2)
	`, groupID, newOwnerID).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}

	now := time.Now().UTC()
	return utils.WithTransaction(s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			UPDATE groups SET owner_id = $1, updated_at = $2 WHERE id = $3
		`, newOwnerID, now, groupID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM group_members WHERE group_id = $1 AND user_id = $2
		`, groupID, newOwnerID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO group_members (id, group_id, user_id, role, joined_at)
			VALUES ($1, $2, $3, $4, $5)
		`, uuid.New().String(), groupID, currentOwnerID, models.RoleAdmin, now)
		return err
	})
}

// RemoveMember deletes another user's membership (owner-only at the handler).
func (s *GroupService) RemoveMember(ctx context.Context, groupID, memberUserID string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM group_members WHERE group_id = $1 AND user_id = $2
	`, groupID, memberUserID)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GroupService) GetMembers(ctx context.Context, groupID string) ([]models.GroupMember, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT gm.id, gm.group_id, gm.user_id, gm.role, gm.joined_at, u.name, u.email
		FROM group_members gm
		JOIN users u ON gm.user_id = u.id
		WHERE gm.group_id = $1
		ORDER BY gm.joined_at
	`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := []models.GroupMember{}
	for rows.Next() {
		var m models.GroupMember
		if err := rows.Scan(&m.ID, &m.GroupID, &m.UserID, &m.Role, &m.JoinedAt, &m.UserName, &m.UserEmail); err != nil {
			return nil, err
		}
		members = append(members, m)
	}

	return members, rows.Err()
}

// CountForUser backs the dashboard summary.
func (s *GroupService) CountForUser(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM groups g
		LEFT JOIN group_members gm ON g.id = gm.group_id AND gm.user_id = $1
		WHERE g.owner_id = $1 OR gm.user_id IS NOT NULL
	`, userID).Scan(&count)
	return count, err
}
