package handlers

import (
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/meetgrid/scheduler-api/middleware"
	"github.com/meetgrid/scheduler-api/services"
	"github.com/meetgrid/scheduler-api/utils"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Setenv("JWT_SECRET", "test-secret")
	os.Exit(m.Run())
}

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

type capturingMailer struct {
	lastToken string
}

func (m *capturingMailer) SendInvitation(to, senderName, groupName, token string) error {
	m.lastToken = token
	return nil
}

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
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

// newTestRouter wires the full protected API surface against the given
// database, with the real auth middleware in front.
func newTestRouter(t *testing.T, db *sql.DB, mailer services.InviteMailer) *gin.Engine {
	t.Helper()

	groupService := services.NewGroupService(db)
	eventService := services.NewEventService(db)
	inviteService := services.NewInviteService(db, mailer)
	authzService := services.NewAuthzService(db)
	ws := NewWSHandler(authzService)

	groupHandler := &GroupHandler{Groups: groupService, Authz: authzService, WS: ws}
	eventHandler := &EventHandler{Events: eventService, Groups: groupService, Authz: authzService, WS: ws}
	inviteHandler := &InviteHandler{Invites: inviteService, Authz: authzService, WS: ws}
	userHandler := &UserHandler{DB: db}

	r := gin.New()
	r.GET("/ws/groups/:id", middleware.AuthMiddleware(), ws.HandleWS)

	v1 := r.Group("/api/v1")
	v1.GET("/invites/:token", inviteHandler.GetInviteByToken)

	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.GET("/groups", groupHandler.GetGroups)
		protected.POST("/groups", groupHandler.CreateGroup)
		protected.GET("/groups/:id", groupHandler.GetGroup)
		protected.DELETE("/groups/:id", groupHandler.DeleteGroup)
		protected.GET("/groups/:id/invites", inviteHandler.ListInvites)
		protected.POST("/groups/:id/invites", inviteHandler.CreateInvite)
		protected.POST("/invites/:token/process", inviteHandler.ProcessInvite)
		protected.GET("/groups/:id/events", eventHandler.ListEvents)
		protected.POST("/groups/:id/events", eventHandler.CreateEvent)
		protected.POST("/events/:id/responses", eventHandler.SubmitResponse)
		protected.DELETE("/user/account", userHandler.DeleteAccount)
	}

	return r
}

func registerUser(t *testing.T, db *sql.DB, email, name string) (id, token string) {
	t.Helper()
	id = uuid.New().String()
	now := time.Now().UTC()
	_, err := db.Exec(`
		INSERT INTO users (id, email, password_hash, name, created_at, updated_at)
		VALUES ($1, $2, 'x', $3, $4, $5)
	`, id, email, name, now, now)
	if err != nil {
		t.Fatalf("register user %s: %v", email, err)
	}

	token, err = utils.GenerateAccessToken(id, email)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return id, token
}
