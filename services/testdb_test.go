package services

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// The services run the same portable SQL against sqlite in tests that lib/pq
// executes against Postgres in production.
const testSchema = `
CREATE TABLE users (
	id TEXT PRIMARY KEY,
	email TEXT UNIQUE NOT NULL,
	password_hash TEXT NOT NULL,
	name TEXT NOT NULL,
	image TEXT,
	totp_secret TEXT,
	totp_enabled BOOLEAN DEFAULT 0,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
CREATE TABLE sessions (
	id TEXT PRIMARY KEY,
	user_id TEXT REFERENCES users(id),
	refresh_token TEXT UNIQUE NOT NULL,
	expires_at TIMESTAMP NOT NULL,
	created_at TIMESTAMP NOT NULL
);
CREATE TABLE groups (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT,
	owner_id TEXT REFERENCES users(id),
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
CREATE TABLE group_members (
	id TEXT PRIMARY KEY,
	group_id TEXT REFERENCES groups(id),
	user_id TEXT REFERENCES users(id),
	role TEXT NOT NULL DEFAULT 'MEMBER',
	joined_at TIMESTAMP NOT NULL,
	UNIQUE(group_id, user_id)
);
CREATE TABLE events (
	id TEXT PRIMARY KEY,
	group_id TEXT REFERENCES groups(id),
	creator_id TEXT REFERENCES users(id),
	title TEXT NOT NULL,
	description TEXT,
	start_time TIMESTAMP NOT NULL,
	end_time TIMESTAMP NOT NULL,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
CREATE TABLE availability_responses (
	id TEXT PRIMARY KEY,
	event_id TEXT REFERENCES events(id),
	user_id TEXT REFERENCES users(id),
	status TEXT NOT NULL,
	comment TEXT,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL,
	UNIQUE(event_id, user_id)
);
CREATE TABLE invites (
	id TEXT PRIMARY KEY,
	group_id TEXT REFERENCES groups(id),
	email TEXT NOT NULL,
	sender_id TEXT REFERENCES users(id),
	token TEXT UNIQUE NOT NULL,
	status TEXT NOT NULL DEFAULT 'PENDING',
	expires_at TIMESTAMP NOT NULL,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
`

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// one in-memory database per connection, so keep exactly one
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	if _, err := db.Exec(testSchema); err != nil {
		t.Fatalf("create schema: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func seedUser(t *testing.T, db *sql.DB, email, name string) string {
	t.Helper()
	id := uuid.New().String()
	now := time.Now().UTC()
	_, err := db.Exec(`
		INSERT INTO users (id, email, password_hash, name, created_at, updated_at)
		VALUES ($1, $2, 'x', $3, $4, $5)
	`, id, email, name, now, now)
	if err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
	return id
}

func seedGroup(t *testing.T, db *sql.DB, name, ownerID string) string {
	t.Helper()
	id := uuid.New().String()
	now := time.Now().UTC()
	_, err := db.Exec(`
		INSERT INTO groups (id, name, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`, id, name, ownerID, now, now)
	if err != nil {
		t.Fatalf("seed group %s: %v", name, err)
	}
	return id
}

func seedMember(t *testing.T, db *sql.DB, groupID, userID, role string) {
	t.Helper()
	_, err := db.Exec(`
		INSERT INTO group_members (id, group_id, user_id, role, joined_at)
		VALUES ($1, $2, $3, $4, $5)
	`, uuid.New().String(), groupID, userID, role, time.Now().UTC())
	if err != nil {
		t.Fatalf("seed member: %v", err)
	}
}

func seedEvent(t *testing.T, db *sql.DB, groupID, creatorID string, start, end time.Time) string {
	t.Helper()
	id := uuid.New().String()
	now := time.Now().UTC()
	_, err := db.Exec(`
		INSERT INTO events (id, group_id, creator_id, title, start_time, end_time, created_at, updated_at)
		VALUES ($1, $2, $3, 'Test event', $4, $5, $6, $7)
	`, id, groupID, creatorID, start.UTC(), end.UTC(), now, now)
	if err != nil {
		t.Fatalf("seed event: %v", err)
	}
	return id
}

func seedInvite(t *testing.T, db *sql.DB, groupID, senderID, email, token, status string, expiresAt time.Time) string {
	t.Helper()
	id := uuid.New().String()
	now := time.Now().UTC()
	_, err := db.Exec(`
		INSERT INTO invites (id, group_id, email, sender_id, token, status, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, id, groupID, email, senderID, token, status, expiresAt.UTC(), now, now)
	if err != nil {
		t.Fatalf("seed invite: %v", err)
	}
	return id
}

func countRows(t *testing.T, db *sql.DB, query string, args ...interface{}) int {
	t.Helper()
	var n int
	if err := db.QueryRow(query, args...).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}
