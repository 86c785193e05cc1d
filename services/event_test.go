package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/meetgrid/scheduler-api/models"
)

func rfc3339(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func TestCreateEventValidation(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewEventService(db)

	owner := seedUser(t, db, "owner@example.com", "Alice")
	groupID := seedGroup(t, db, "Book Club", owner)

	future := time.Now().Add(24 * time.Hour)

	tests := []struct {
		name      string
		start     string
		end       string
		wantField string
	}{
		{"unparsable start", "yesterday", rfc3339(future), "start_time"},
		{"unparsable end", rfc3339(future), "soon", "end_time"},
		{"start equals end", rfc3339(future), rfc3339(future), "end_time"},
		{"start after end", rfc3339(future.Add(time.Hour)), rfc3339(future), "end_time"},
		{"start in the past", rfc3339(time.Now().Add(-time.Hour)), rfc3339(future), "start_time"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, groupID, owner, models.CreateEventRequest{
				Title:     "Meeting",
				StartTime: tt.start,
				EndTime:   tt.end,
			})
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("got %v, want ValidationError", err)
			}
			if ve.Field != tt.wantField {
				t.Errorf("field = %s, want %s", ve.Field, tt.wantField)
			}
		})
	}

	event, err := svc.Create(ctx, groupID, owner, models.CreateEventRequest{
		Title:     "Meeting",
		StartTime: rfc3339(future),
		EndTime:   rfc3339(future.Add(time.Hour)),
	})
	if err != nil {
		t.Fatalf("valid create: %v", err)
	}
	if !event.StartTime.Before(event.EndTime) {
		t.Error("stored event violates start < end")
	}
}

// Creation refuses past start times; editing does not re-check, so an event
// that has already happened stays editable.
func TestUpdatePastEventAllowed(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewEventService(db)

	owner := seedUser(t, db, "owner@example.com", "Alice")
	groupID := seedGroup(t, db, "Book Club", owner)

	start := time.Now().Add(-48 * time.Hour)
	eventID := seedEvent(t, db, groupID, owner, start, start.Add(time.Hour))

	updated, err := svc.Update(ctx, eventID, models.UpdateEventRequest{
		Title:       "Last week's meeting",
		Description: "minutes attached",
		StartTime:   rfc3339(start),
		EndTime:     rfc3339(start.Add(time.Hour)),
	})
	if err != nil {
		t.Fatalf("updating a past event: %v", err)
	}
	if updated.Description != "minutes attached" {
		t.Errorf("description = %q", updated.Description)
	}

	// ordering is still enforced on update
	_, err = svc.Update(ctx, eventID, models.UpdateEventRequest{
		Title:     "Broken",
		StartTime: rfc3339(start.Add(time.Hour)),
		EndTime:   rfc3339(start),
	})
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "end_time" {
		t.Errorf("got %v, want end_time ValidationError", err)
	}
}

func TestSubmitResponseUpsert(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewEventService(db)

	owner := seedUser(t, db, "owner@example.com", "Alice")
	member := seedUser(t, db, "member@example.com", "Bob")
	groupID := seedGroup(t, db, "Book Club", owner)
	seedMember(t, db, groupID, member, models.RoleMember)
	eventID := seedEvent(t, db, groupID, owner, time.Now().Add(time.Hour), time.Now().Add(2*time.Hour))

	first, err := svc.SubmitResponse(ctx, eventID, member, models.ResponseAvailable, "works for me")
	if err != nil {
		t.Fatalf("first submit: %v", err)
	}

	second, err := svc.SubmitResponse(ctx, eventID, member, models.ResponseMaybe, "maybe after all")
	if err != nil {
		t.Fatalf("second submit: %v", err)
	}

	if n := countRows(t, db, `SELECT COUNT(*) FROM availability_responses WHERE event_id = $1 AND user_id = $2`, eventID, member); n != 1 {
		t.Fatalf("%d rows after two submissions, want 1", n)
	}
	if second.ID != first.ID {
		t.Error("resubmission created a new row instead of overwriting")
	}
	if second.Status != models.ResponseMaybe || second.Comment != "maybe after all" {
		t.Errorf("row = %+v, want latest submission", second)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Error("resubmission changed created_at")
	}
}

func TestDeleteEventRemovesResponses(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewEventService(db)

	owner := seedUser(t, db, "owner@example.com", "Alice")
	groupID := seedGroup(t, db, "Book Club", owner)
	eventID := seedEvent(t, db, groupID, owner, time.Now().Add(time.Hour), time.Now().Add(2*time.Hour))

	if _, err := svc.SubmitResponse(ctx, eventID, owner, models.ResponseAvailable, ""); err != nil {
		t.Fatal(err)
	}

	if err := svc.Delete(ctx, eventID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if n := countRows(t, db, `SELECT COUNT(*) FROM availability_responses WHERE event_id = $1`, eventID); n != 0 {
		t.Errorf("%d responses survive event deletion", n)
	}
	if _, err := svc.GetByID(ctx, eventID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID after delete: got %v, want ErrNotFound", err)
	}
}

func TestUpcomingForUser(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewEventService(db)

	owner := seedUser(t, db, "owner@example.com", "Alice")
	member := seedUser(t, db, "member@example.com", "Bob")
	outsider := seedUser(t, db, "outsider@example.com", "Carol")

	groupID := seedGroup(t, db, "Book Club", owner)
	otherGroup := seedGroup(t, db, "Chess", outsider)
	seedMember(t, db, groupID, member, models.RoleMember)

	seedEvent(t, db, groupID, owner, time.Now().Add(-2*time.Hour), time.Now().Add(-time.Hour)) // past
	soon := seedEvent(t, db, groupID, owner, time.Now().Add(time.Hour), time.Now().Add(2*time.Hour))
	seedEvent(t, db, otherGroup, outsider, time.Now().Add(time.Hour), time.Now().Add(2*time.Hour)) // foreign group

	events, err := svc.UpcomingForUser(ctx, member, 10)
	if err != nil {
		t.Fatalf("UpcomingForUser: %v", err)
	}
	if len(events) != 1 || events[0].ID != soon {
		t.Errorf("got %d events, want exactly the upcoming own-group event", len(events))
	}
}
