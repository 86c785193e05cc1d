package routes

import (
	"database/sql"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/meetgrid/scheduler-api/handlers"
	"github.com/meetgrid/scheduler-api/services"
)

// SetupAuthRoutes registers the public authentication routes.
func SetupAuthRoutes(rg *gin.RouterGroup, db *sql.DB) {
	authHandler := &handlers.AuthHandler{DB: db}

	rg.POST("/auth/signup", authHandler.Signup)
	rg.POST("/auth/login", authHandler.Login)
	rg.POST("/auth/refresh", authHandler.Refresh)
}

// SetupInvitePublicRoutes registers the token landing-page lookup, reachable
// without a session so invitees can preview before signing in.
func SetupInvitePublicRoutes(rg *gin.RouterGroup, db *sql.DB) {
	inviteService := services.NewInviteService(db, newMailer())
	h := &handlers.InviteHandler{Invites: inviteService, Authz: services.NewAuthzService(db)}

	rg.GET("/invites/:token", h.GetInviteByToken)
}

// SetupGroupRoutes registers protected group, event, invite and dashboard
// routes.
func SetupGroupRoutes(rg *gin.RouterGroup, db *sql.DB, ws *handlers.WSHandler) {
	groupService := services.NewGroupService(db)
	eventService := services.NewEventService(db)
	inviteService := services.NewInviteService(db, newMailer())
	authzService := services.NewAuthzService(db)

	groupHandler := &handlers.GroupHandler{Groups: groupService, Authz: authzService, WS: ws}
	eventHandler := &handlers.EventHandler{Events: eventService, Groups: groupService, Authz: authzService, WS: ws}
	inviteHandler := &handlers.InviteHandler{Invites: inviteService, Authz: authzService, WS: ws}
	dashboardHandler := &handlers.DashboardHandler{Groups: groupService, Events: eventService, Invites: inviteService}

	rg.GET("/dashboard", dashboardHandler.GetDashboard)

	rg.GET("/groups", groupHandler.GetGroups)
	rg.POST("/groups", groupHandler.CreateGroup)
	rg.GET("/groups/:id", groupHandler.GetGroup)
	rg.PUT("/groups/:id", groupHandler.UpdateGroup)
	rg.DELETE("/groups/:id", groupHandler.DeleteGroup)
	rg.POST("/groups/:id/leave", groupHandler.LeaveGroup)
	rg.POST("/groups/:id/transfer", groupHandler.TransferOwnership)
	rg.DELETE("/groups/:id/members/:member_id", groupHandler.RemoveMember)

	rg.GET("/groups/:id/invites", inviteHandler.ListInvites)
	rg.POST("/groups/:id/invites", inviteHandler.CreateInvite)
	rg.DELETE("/groups/:id/invites/:invite_id", inviteHandler.CancelInvite)
	rg.POST("/invites/:token/process", inviteHandler.ProcessInvite)

	rg.GET("/groups/:id/events", eventHandler.ListEvents)
	rg.POST("/groups/:id/events", eventHandler.CreateEvent)
	rg.GET("/events/:id", eventHandler.GetEvent)
	rg.PUT("/events/:id", eventHandler.UpdateEvent)
	rg.DELETE("/events/:id", eventHandler.DeleteEvent)
	rg.GET("/events/:id/responses", eventHandler.ListResponses)
	rg.POST("/events/:id/responses", eventHandler.SubmitResponse)
}

// SetupUserRoutes registers protected profile and account routes.
func SetupUserRoutes(rg *gin.RouterGroup, db *sql.DB) {
	userHandler := &handlers.UserHandler{DB: db}

	rg.GET("/user/profile", userHandler.GetProfile)
	rg.PUT("/user/profile", userHandler.UpdateProfile)
	rg.POST("/user/password", userHandler.ChangePassword)
	rg.POST("/user/2fa/setup", userHandler.SetupTOTP)
	rg.POST("/user/2fa/verify", userHandler.VerifyTOTP)
	rg.POST("/user/2fa/disable", userHandler.DisableTOTP)
	rg.DELETE("/user/account", userHandler.DeleteAccount)
}

func newMailer() *services.EmailService {
	frontendURL := os.Getenv("FRONTEND_URL")
	if frontendURL == "" {
		frontendURL = "http://localhost:3000"
	}
	return services.NewEmailService(os.Getenv("RESEND_API_KEY"), os.Getenv("FROM_EMAIL"), frontendURL)
}
