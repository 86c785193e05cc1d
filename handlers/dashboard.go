package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meetgrid/scheduler-api/middleware"
	"github.com/meetgrid/scheduler-api/models"
	"github.com/meetgrid/scheduler-api/services"
)

type DashboardHandler struct {
	Groups  *services.GroupService
	Events  *services.EventService
	Invites *services.InviteService
}

// GetDashboard composes the landing-page summary: how many groups the caller
// belongs to, their next events, and live invites addressed to their email.
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	userID := middleware.GetUserID(c)
	email := middleware.GetUserEmail(c)
	ctx := c.Request.Context()

	groupCount, err := h.Groups.CountForUser(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	upcoming, err := h.Events.UpcomingForUser(ctx, userID, 10)
	if err != nil {
		respondError(c, err)
		return
	}

	pending, err := h.Invites.PendingForEmail(ctx, email)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.DashboardSummary{
		GroupCount:     groupCount,
		UpcomingEvents: upcoming,
		PendingInvites: pending,
	})
}
