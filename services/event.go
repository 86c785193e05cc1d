package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/meetgrid/scheduler-api/models"
	"github.com/meetgrid/scheduler-api/utils"
)

type EventService struct {
	db *sql.DB
}

func NewEventService(db *sql.DB) *EventService {
	return &EventService{db: db}
}

func parseEventTimes(startStr, endStr string) (time.Time, time.Time, error) {
	start, err := time.Parse(time.RFC3339, startStr)
	if err != nil {
		return time.Time{}, time.Time{}, &ValidationError{Field: "start_time", Message: "invalid timestamp"}
	}
	end, err := time.Parse(time.RFC3339, endStr)
	if err != nil {
		return time.Time{}, time.Time{}, &ValidationError{Field: "end_time", Message: "invalid timestamp"}
	}
	if !start.Before(end) {
		return time.Time{}, time.Time{}, &ValidationError{Field: "end_time", Message: "end time must be after start time"}
	}
	return start, end, nil
}

// Create validates and inserts an event. The not-in-the-past rule applies at
// creation only; Update deliberately skips it so past events stay editable.
func (s *EventService) Create(ctx context.Context, groupID, creatorID string, req models.CreateEventRequest) (*models.Event, error) {
	start, end, err := parseEventTimes(req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}
	if start.Before(time.Now()) {
		return nil, &ValidationError{Field: "start_time", Message: "start time must not be in the past"}
	}

	now := time.Now().UTC()
	event := &models.Event{
		ID:          uuid.New().String(),
		GroupID:     groupID,
		CreatorID:   creatorID,
		Title:       req.Title,
		Description: req.Description,
		StartTime:   start.UTC(),
		EndTime:     end.UTC(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO events (id, group_id, creator_id, title, description, start_time, end_time, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, event.ID, event.GroupID, event.CreatorID, event.Title, event.Description,
		event.StartTime, event.EndTime, event.CreatedAt, event.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return event, nil
}

func (s *EventService) GetByID(ctx context.Context, id string) (*models.Event, error) {
	var event models.Event
	var creatorID, description, creatorName sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT e.id, e.group_id, e.creator_id, u.name, e.title, e.description,
		       e.start_time, e.end_time, e.created_at, e.updated_at
		FROM events e
		LEFT JOIN users u ON e.creator_id = u.id
		WHERE e.id = $1
	`, id).Scan(
		&event.ID,
		&event.GroupID,
		&creatorID,
		&creatorName,
		&event.Title,
		&description,
		&event.StartTime,
		&event.EndTime,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	event.CreatorID = creatorID.String
	event.Description = description.String
	event.CreatorName = creatorName.String
	return &event, nil
}

func (s *EventService) ListForGroup(ctx context.Context, groupID string) ([]models.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT e.id, e.group_id, e.creator_id, u.name, e.title, e.description,
		       e.start_time, e.end_time, e.created_at, e.updated_at
		FROM events e
		LEFT JOIN users u ON e.creator_id = u.id
		WHERE e.group_id = $1
		ORDER BY e.start_time
	`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEvents(rows)
}

// UpcomingForUser returns the next events, soonest first, across every group
// the user belongs to. Backs the dashboard summary.
func (s *EventService) UpcomingForUser(ctx context.Context, userID string, limit int) ([]models.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT e.id, e.group_id, e.creator_id, u.name, e.title, e.description,
		       e.start_time, e.end_time, e.created_at, e.updated_at
		FROM events e
		JOIN groups g ON e.group_id = g.id
		LEFT JOIN users u ON e.creator_id = u.id
		LEFT JOIN group_members gm ON g.id = gm.group_id AND gm.user_id = $1
		WHERE (g.owner_id = $1 OR gm.user_id IS NOT NULL) AND e.start_time > $2
		ORDER BY e.start_time
		LIMIT $3
	`, userID, time.Now().UTC(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]models.Event, error) {
	events := []models.Event{}
	for rows.Next() {
		var event models.Event
		var creatorID, description, creatorName sql.NullString
		if err := rows.Scan(
			&event.ID,
			&event.GroupID,
			&creatorID,
			&creatorName,
			&event.Title,
			&description,
			&event.StartTime,
			&event.EndTime,
			&event.CreatedAt,
			&event.UpdatedAt,
		); err != nil {
			return nil, err
		}
		event.CreatorID = creatorID.String
		event.Description = description.String
		event.CreatorName = creatorName.String
		events = append(events, event)
	}
	return events, rows.Err()
}

// Update re-validates title and time ordering but not "start in the future" -
// editing an already-started event is allowed.
func (s *EventService) Update(ctx context.Context, id string, req models.UpdateEventRequest) (*models.Event, error) {
	start, end, err := parseEventTimes(req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE events
		SET title = $1, description = $2, start_time = $3, end_time = $4, updated_at = $5
		WHERE id = $6
	`, req.Title, req.Description, start.UTC(), end.UTC(), time.Now().UTC(), id)
	if err != nil {
		return nil, err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}

	return s.GetByID(ctx, id)
}

// Delete removes the event and its responses in one transaction.
func (s *EventService) Delete(ctx context.Context, id string) error {
	return utils.WithTransaction(s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM availability_responses WHERE event_id = $1`, id); err != nil {
			return err
		}
		result, err := tx.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if n, _ := result.RowsAffected(); n == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (s *EventService) ListResponses(ctx context.Context, eventID string) ([]models.AvailabilityResponse, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.event_id, r.user_id, u.name, r.status, r.comment, r.created_at, r.updated_at
		FROM availability_responses r
		JOIN users u ON r.user_id = u.id
		WHERE r.event_id = $1
		ORDER BY r.created_at
	`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	responses := []models.AvailabilityResponse{}
	for rows.Next() {
		var r models.AvailabilityResponse
		var comment sql.NullString
		if err := rows.Scan(&r.ID, &r.EventID, &r.UserID, &r.UserName, &r.Status, &comment, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		r.Comment = comment.String
		responses = append(responses, r)
	}

	return responses, rows.Err()
}

// SubmitResponse upserts the caller's availability for an event. One row per
// (event, user); the latest submission wins, no history is kept.
func (s *EventService) SubmitResponse(ctx context.Context, eventID, userID, status, comment string) (*models.AvailabilityResponse, error) {
	now := time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE availability_responses
		SET status = $1, comment = $2, updated_at = $3
		WHERE event_id = $4 AND user_id = $5
	`, status, comment, now, eventID, userID)
	if err != nil {
		return nil, err
	}

	if n, _ := result.RowsAffected(); n == 0 {
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO availability_responses (id, event_id, user_id, status, comment, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, uuid.New().String(), eventID, userID, status, comment, now, now)
		if err != nil {
			return nil, err
		}
	}

	var r models.AvailabilityResponse
	var c sql.NullString
	err = s.db.QueryRowContext(ctx, `
		SELECT id, event_id, user_id, status, comment, created_at, updated_at
		FROM availability_responses
		WHERE event_id = $1 AND user_id = $2
	`, eventID, userID).Scan(&r.ID, &r.EventID, &r.UserID, &r.Status, &c, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	r.Comment = c.String
	return &r, nil
}
