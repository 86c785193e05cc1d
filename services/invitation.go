package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/meetgrid/scheduler-api/models"
	"github.com/meetgrid/scheduler-api/utils"
)

// InviteMailer is the delivery side of the invitation flow. Satisfied by
// EmailService in production and by fakes in tests.
type InviteMailer interface {
	SendInvitation(to, senderName, groupName, token string) error
}

type InviteService struct {
	db     *sql.DB
	mailer InviteMailer
}

func NewInviteService(db *sql.DB, mailer InviteMailer) *InviteService {
	return &InviteService{db: db, mailer: mailer}
}

// Create validates, persists and delivers an invitation. If the email cannot
// be sent the invite row is deleted again so no invite exists that was never
// delivered.
func (s *InviteService) Create(ctx context.Context, groupID, senderID, email string) (*models.Invite, error) {
	var groupName, ownerID string
	err := s.db.QueryRowContext(ctx, `SELECT name, owner_id FROM groups WHERE id = $1`, groupID).Scan(&groupName, &ownerID)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	// The owner and existing members cannot be invited again.
	var taken bool
	err = s.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM users u
			WHERE u.email = $1
			  AND (u.id = $2 OR EXISTS(
				SELECT 1 FROM group_members gm WHERE gm.group_id = $3 AND gm.user_id = u.id
			  ))
		)
	`, email, ownerID, groupID).Scan(&taken)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrAlreadyMember
	}

	now := time.Now().UTC()
	var pending bool
	err = s.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM invites
			WHERE group_id = $1 AND email = $2 AND status = $3 AND expires_at > $4
		)
	`, groupID, email, models.InvitePending, now).Scan(&pending)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, ErrInvitePending
	}

	token, err := utils.NewInviteToken()
	if err != nil {
		return nil, err
	}

	invite := &models.Invite{
		ID:        uuid.New().String(),
		GroupID:   groupID,
		Email:     email,
		SenderID:  senderID,
		Token:     token,
		Status:    models.InvitePending,
		ExpiresAt: now.Add(models.InviteTTL),
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO invites (id, group_id, email, sender_id, token, status, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, invite.ID, invite.GroupID, invite.Email, invite.SenderID, invite.Token,
		invite.Status, invite.ExpiresAt, invite.CreatedAt, invite.UpdatedAt)
	if err != nil {
		return nil, err
	}

	var senderName string
	if err := s.db.QueryRowContext(ctx, `SELECT name FROM users WHERE id = $1`, senderID).Scan(&senderName); err != nil {
		senderName = "A group member"
	}

	if err := s.mailer.SendInvitation(email, senderName, groupName, token); err != nil {
		// Compensating delete: a failed send must not leave a live invite.
		s.db.ExecContext(ctx, `DELETE FROM invites WHERE id = $1`, invite.ID)
		utils.LogError("invite email to %s failed: %v", email, err)
		return nil, ErrEmailDelivery
	}

	return invite, nil
}

// FindByToken looks an invite up for the public landing page. Expired pending
// invites are flipped to EXPIRED as a side effect of the read, exactly once;
// non-pending invites come back with ErrInviteProcessed and their current
// status still populated so the caller can surface it.
func (s *InviteService) FindByToken(ctx context.Context, token string) (*models.Invite, error) {
	var inv models.Invite
	var senderName sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT i.id, i.group_id, i.email, i.sender_id, i.status, i.expires_at, i.created_at, i.updated_at,
		       g.name, u.name
		FROM invites i
		JOIN groups g ON i.group_id = g.id
		LEFT JOIN users u ON i.sender_id = u.id
		WHERE i.token = $1
	`, token).Scan(
		&inv.ID,
		&inv.GroupID,
		&inv.Email,
		&inv.SenderID,
		&inv.Status,
		&inv.ExpiresAt,
		&inv.CreatedAt,
		&inv.UpdatedAt,
		&inv.GroupName,
		&senderName,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	inv.SenderName = senderName.String
	inv.Token = token

	if inv.Status == models.InviteExpired {
		return &inv, ErrInviteExpired
	}
	if inv.Status != models.InvitePending {
		return &inv, ErrInviteProcessed
	}

	if inv.IsExpired() {
		// The status guard makes the flip idempotent under races.
		_, err := s.db.ExecContext(ctx, `
			UPDATE invites SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4
		`, models.InviteExpired, time.Now().UTC(), inv.ID, models.InvitePending)
		if err != nil {
			return nil, err
		}
		inv.Status = models.InviteExpired
		return &inv, ErrInviteExpired
	}

	return &inv, nil
}

// ProcessResult reports the outcome of an accept/decline.
type ProcessResult struct {
	GroupID       string
	Status        string
	AlreadyMember bool
}

// Process redeems a token. The authenticated user's email must equal the
// invited address exactly - the comparison is case-sensitive. A user who is
// already a member (or the owner) gets the invite closed out without a
// duplicate membership row. Accepting creates the membership and flips the
// status inside one transaction.
func (s *InviteService) Process(ctx context.Context, token, userID, action string) (*ProcessResult, error) {
	inv, err := s.FindByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	var userEmail string
	err = s.db.QueryRowContext(ctx, `SELECT email FROM users WHERE id = $1`, userID).Scan(&userEmail)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if userEmail != inv.Email {
		return nil, ErrForbidden
	}

	newStatus := models.InviteAccepted
	if action == "decline" {
		newStatus = models.InviteDeclined
	}
	now := time.Now().UTC()

	var ownerID string
	if err := s.db.QueryRowContext(ctx, `SELECT owner_id FROM groups WHERE id = $1`, inv.GroupID).Scan(&ownerID); err != nil {
		return nil, err
	}
	var isMember bool
	err = s.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM group_members WHERE group_id = $1 AND user_id = $2)
	`, inv.GroupID, userID).Scan(&isMember)
	if err != nil {
		return nil, err
	}

	if isMember || ownerID == userID {
		if _, err := s.db.ExecContext(ctx, `
			UPDATE invites SET status = $1, updated_at = $2 WHERE id = $3
		`, newStatus, now, inv.ID); err != nil {
			return nil, err
		}
		return &ProcessResult{GroupID: inv.GroupID, Status: newStatus, AlreadyMember: true}, nil
	}

	if newStatus == models.InviteDeclined {
		if _, err := s.db.ExecContext(ctx, `
			UPDATE invites SET status = $1, updated_at = $2 WHERE id = $3
		`, newStatus, now, inv.ID); err != nil {
			return nil, err
		}
		return &ProcessResult{GroupID: inv.GroupID, Status: newStatus}, nil
	}

	err = utils.WithTransaction(s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO group_members (id, group_id, user_id, role, joined_at)
			VALUES ($1, $2, $3, $4, $5)
		`, uuid.New().String(), inv.GroupID, userID, models.RoleMember, now); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
			UPDATE invites SET status = $1, updated_at = $2 WHERE id = $3
		`, models.InviteAccepted, now, inv.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &ProcessResult{GroupID: inv.GroupID, Status: models.InviteAccepted}, nil
}

func (s *InviteService) ListForGroup(ctx context.Context, groupID string) ([]models.Invite, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT i.id, i.group_id, i.email, i.sender_id, i.status, i.expires_at, i.created_at, i.updated_at, u.name
		FROM invites i
		LEFT JOIN users u ON i.sender_id = u.id
		WHERE i.group_id = $1
		ORDER BY i.created_at DESC
	`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invites := []models.Invite{}
	for rows.Next() {
		var inv models.Invite
		var senderName sql.NullString
		if err := rows.Scan(
			&inv.ID,
			&inv.GroupID,
			&inv.Email,
			&inv.SenderID,
			&inv.Status,
			&inv.ExpiresAt,
			&inv.CreatedAt,
			&inv.UpdatedAt,
			&senderName,
		); err != nil {
			return nil, err
		}
		inv.SenderName = senderName.String
		invites = append(invites, inv)
	}

	return invites, rows.Err()
}

// Cancel deletes a pending invite. Processed invites stay for the record.
func (s *InviteService) Cancel(ctx context.Context, groupID, inviteID string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM invites WHERE id = $1 AND group_id = $2 AND status = $3
	`, inviteID, groupID, models.InvitePending)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// PendingForEmail backs the dashboard: live invites addressed to the session
// email.
func (s *InviteService) PendingForEmail(ctx context.Context, email string) ([]models.Invite, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT i.id, i.group_id, i.email, i.sender_id, i.status, i.expires_at, i.created_at, i.updated_at, u.name
		FROM invites i
		LEFT JOIN users u ON i.sender_id = u.id
		WHERE i.email = $1 AND i.status = $2 AND i.expires_at > $3
		ORDER BY i.created_at DESC
	`, email, models.InvitePending, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invites := []models.Invite{}
	for rows.Next() {
		var inv models.Invite
		var senderName sql.NullString
		if err := rows.Scan(
			&inv.ID,
			&inv.GroupID,
			&inv.Email,
			&inv.SenderID,
			&inv.Status,
			&inv.ExpiresAt,
			&inv.CreatedAt,
			&inv.UpdatedAt,
			&senderName,
		); err != nil {
			return nil, err
		}
		inv.SenderName = senderName.String
		invites = append(invites, inv)
	}

	return invites, rows.Err()
}
