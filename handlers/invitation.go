package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meetgrid/scheduler-api/middleware"
	"github.com/meetgrid/scheduler-api/models"
	"github.com/meetgrid/scheduler-api/services"
)

type InviteHandler struct {
	Invites *services.InviteService
	Authz   *services.AuthzService
	WS      *WSHandler
}

// ListInvites hides the group from outsiders like the other reads do; a
// plain member who lacks the invite capability still gets a 403.
func (h *InviteHandler) ListInvites(c *gin.Context) {
	userID := middleware.GetUserID(c)
	groupID := c.Param("id")

	class, err := h.Authz.MembershipClass(c.Request.Context(), groupID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if class < services.ClassMember {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}
	if !services.Can(class, services.ActionManageInvites) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}

	invites, err := h.Invites.ListForGroup(c.Request.Context(), groupID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, invites)
}

func (h *InviteHandler) CreateInvite(c *gin.Context) {
	userID := middleware.GetUserID(c)
	groupID := c.Param("id")

	if _, err := h.Authz.Authorize(c.Request.Context(), groupID, userID, services.ActionManageInvites); err != nil {
		respondError(c, err)
		return
	}

	var req models.CreateInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	invite, err := h.Invites.Create(c.Request.Context(), groupID, userID, req.Email)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":      invite.ID,
		"email":   invite.Email,
		"message": "Invitation sent successfully",
	})
}

// GetInviteByToken is the public landing-page lookup: no session required.
// An already-processed invite surfaces its current status; an expired one is
// flipped lazily by the service before the error is reported.
func (h *InviteHandler) GetInviteByToken(c *gin.Context) {
	token := c.Param("token")

	invite, err := h.Invites.FindByToken(c.Request.Context(), token)
	switch {
	case errors.Is(err, services.ErrInviteProcessed):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invitation already processed", "status": invite.Status})
		return
	case errors.Is(err, services.ErrInviteExpired):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invitation has expired", "status": invite.Status})
		return
	case err != nil:
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.InvitePreview{
		GroupID:    invite.GroupID,
		GroupName:  invite.GroupName,
		SenderName: invite.SenderName,
		Email:      invite.Email,
		Status:     invite.Status,
		ExpiresAt:  invite.ExpiresAt,
	})
}

func (h *InviteHandler) ProcessInvite(c *gin.Context) {
	userID := middleware.GetUserID(c)
	token := c.Param("token")

	var req models.ProcessInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.Invites.Process(c.Request.Context(), token, userID, req.Action)
	if err != nil {
		respondError(c, err)
		return
	}

	if result.AlreadyMember {
		c.JSON(http.StatusOK, gin.H{
			"message":  "You are already a member",
			"group_id": result.GroupID,
			"status":   result.Status,
		})
		return
	}

	message := "Invitation accepted successfully"
	if result.Status == models.InviteDeclined {
		message = "Invitation declined"
	} else {
		h.WS.Broadcast(result.GroupID, "member_joined", userID)
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  message,
		"group_id": result.GroupID,
		"status":   result.Status,
	})
}

func (h *InviteHandler) CancelInvite(c *gin.Context) {
	userID := middleware.GetUserID(c)
	groupID := c.Param("id")
	inviteID := c.Param("invite_id")

	if _, err := h.Authz.Authorize(c.Request.Context(), groupID, userID, services.ActionManageInvites); err != nil {
		respondError(c, err)
		return
	}

	if err := h.Invites.Cancel(c.Request.Context(), groupID, inviteID); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Invitation not found or already processed"})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Invitation cancelled successfully"})
}
