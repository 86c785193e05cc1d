package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meetgrid/scheduler-api/middleware"
	"github.com/meetgrid/scheduler-api/models"
	"github.com/meetgrid/scheduler-api/services"
)

type GroupHandler struct {
	Groups *services.GroupService
	Authz  *services.AuthzService
	WS     *WSHandler
}

func (h *GroupHandler) CreateGroup(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req models.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	group, err := h.Groups.Create(c.Request.Context(), req.Name, req.Description, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, group)
}

func (h *GroupHandler) GetGroups(c *gin.Context) {
	userID := middleware.GetUserID(c)

	groups, err := h.Groups.ListForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, groups)
}

// GetGroup renders access denied as not-found so outsiders cannot probe for
// group existence.
func (h *GroupHandler) GetGroup(c *gin.Context) {
	userID := middleware.GetUserID(c)
	groupID := c.Param("id")

	class, err := h.Authz.MembershipClass(c.Request.Context(), groupID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !services.Can(class, services.ActionViewGroup) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}

	group, err := h.Groups.GetByID(c.Request.Context(), groupID)
	if err != nil {
		respondError(c, err)
		return
	}
	group.IsOwner = group.OwnerID == userID

	c.JSON(http.StatusOK, group)
}

func (h *GroupHandler) UpdateGroup(c *gin.Context) {
	userID := middleware.GetUserID(c)
	groupID := c.Param("id")

	if _, err := h.Authz.Authorize(c.Request.Context(), groupID, userID, services.ActionUpdateGroup); err != nil {
		respondError(c, err)
		return
	}

	var req models.UpdateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Groups.Update(c.Request.Context(), groupID, req.Name, req.Description); err != nil {
		respondError(c, err)
		return
	}

	h.WS.Broadcast(groupID, "group_updated", userID)
	c.JSON(http.StatusOK, gin.H{"message": "Group updated successfully"})
}

func (h *GroupHandler) DeleteGroup(c *gin.Context) {
	userID := middleware.GetUserID(c)
	groupID := c.Param("id")

	if _, err := h.Authz.Authorize(c.Request.Context(), groupID, userID, services.ActionDeleteGroup); err != nil {
		respondError(c, err)
		return
	}

	if err := h.Groups.Delete(c.Request.Context(), groupID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Group deleted successfully"})
}

func (h *GroupHandler) LeaveGroup(c *gin.Context) {
	userID := middleware.GetUserID(c)
	groupID := c.Param("id")

	if err := h.Groups.Leave(c.Request.Context(), groupID, userID); err != nil {
		respondError(c, err)
		return
	}

	h.WS.Broadcast(groupID, "member_left", userID)
	c.JSON(http.StatusOK, gin.H{"message": "Left group successfully"})
}

func (h *GroupHandler) TransferOwnership(c *gin.Context) {
	userID := middleware.GetUserID(c)
	groupID := c.Param("id")

	if _, err := h.Authz.Authorize(c.Request.Context(), groupID, userID, services.ActionTransferGroup); err != nil {
		respondError(c, err)
		return
	}

	var req models.TransferOwnershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Groups.TransferOwnership(c.Request.Context(), groupID, userID, req.NewOwnerID); err != nil {
		respondError(c, err)
		return
	}

	h.WS.Broadcast(groupID, "ownership_transferred", userID)
	c.JSON(http.StatusOK, gin.H{"message": "Ownership transferred successfully"})
}

func (h *GroupHandler) RemoveMember(c *gin.Context) {
	userID := middleware.GetUserID(c)
	groupID := c.Param("id")
	memberID := c.Param("member_id")

	if _, err := h.Authz.Authorize(c.Request.Context(), groupID, userID, services.ActionRemoveMember); err != nil {
		respondError(c, err)
		return
	}

	if memberID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Owner cannot be removed"})
		return
	}

	if err := h.Groups.RemoveMember(c.Request.Context(), groupID, memberID); err != nil {
		respondError(c, err)
		return
	}

	h.WS.Broadcast(groupID, "member_removed", userID)
	c.JSON(http.StatusOK, gin.H{"message": "Member removed successfully"})
}
