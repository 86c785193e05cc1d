package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meetgrid/scheduler-api/services"
	"github.com/meetgrid/scheduler-api/utils"
)

// respondError maps service sentinels onto the HTTP error taxonomy. Anything
// unrecognized becomes a generic 500 so no internal detail leaks.
func respondError(c *gin.Context, err error) {
	var ve *services.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Message, "field": ve.Field})
		return
	}

	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
	case errors.Is(err, services.ErrAlreadyMember):
		c.JSON(http.StatusConflict, gin.H{"error": "User is already a member"})
	case errors.Is(err, services.ErrInvitePending):
		c.JSON(http.StatusConflict, gin.H{"error": "Invitation already sent"})
	case errors.Is(err, services.ErrInviteProcessed):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invitation already processed"})
	case errors.Is(err, services.ErrInviteExpired):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invitation has expired"})
	case errors.Is(err, services.ErrOwnerCannotLeave):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Owner cannot leave the group"})
	case errors.Is(err, services.ErrEmailDelivery):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to send invitation email"})
	default:
		utils.LogError("unexpected error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
	}
}
