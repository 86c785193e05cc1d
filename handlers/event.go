package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meetgrid/scheduler-api/middleware"
	"github.com/meetgrid/scheduler-api/models"
	"github.com/meetgrid/scheduler-api/services"
)

type EventHandler struct {
	Events *services.EventService
	Groups *services.GroupService
	Authz  *services.AuthzService
	WS     *WSHandler
}

func (h *EventHandler) ListEvents(c *gin.Context) {
	userID := middleware.GetUserID(c)
	groupID := c.Param("id")

	class, err := h.Authz.MembershipClass(c.Request.Context(), groupID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !services.Can(class, services.ActionViewEvents) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}

	events, err := h.Events.ListForGroup(c.Request.Context(), groupID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, events)
}

func (h *EventHandler) CreateEvent(c *gin.Context) {
	userID := middleware.GetUserID(c)
	groupID := c.Param("id")

	if _, err := h.Authz.Authorize(c.Request.Context(), groupID, userID, services.ActionCreateEvent); err != nil {
		respondError(c, err)
		return
	}

	var req models.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event, err := h.Events.Create(c.Request.Context(), groupID, userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.WS.Broadcast(groupID, "event_created", userID)
	c.JSON(http.StatusCreated, event)
}

// GetEvent, like GetGroup, hides inaccessible events behind 404.
func (h *EventHandler) GetEvent(c *gin.Context) {
	userID := middleware.GetUserID(c)
	eventID := c.Param("id")

	event, err := h.Events.GetByID(c.Request.Context(), eventID)
	if err != nil {
		respondError(c, err)
		return
	}

	class, err := h.Authz.MembershipClass(c.Request.Context(), event.GroupID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !services.Can(class, services.ActionViewEvents) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}

	c.JSON(http.StatusOK, event)
}

// modifiableEvent loads the event and enforces the creator-or-owner rule
// shared by update and delete.
func (h *EventHandler) modifiableEvent(c *gin.Context) (*models.Event, bool) {
	userID := middleware.GetUserID(c)
	eventID := c.Param("id")

	event, err := h.Events.GetByID(c.Request.Context(), eventID)
	if err != nil {
		respondError(c, err)
		return nil, false
	}

	group, err := h.Groups.GetByID(c.Request.Context(), event.GroupID)
	if err != nil {
		respondError(c, err)
		return nil, false
	}

	if !services.CanModifyEvent(event, group.OwnerID, userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the event creator or group owner can modify this event"})
		return nil, false
	}

	return event, true
}

func (h *EventHandler) UpdateEvent(c *gin.Context) {
	userID := middleware.GetUserID(c)

	event, ok := h.modifiableEvent(c)
	if !ok {
		return
	}

	var req models.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.Events.Update(c.Request.Context(), event.ID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.WS.Broadcast(event.GroupID, "event_updated", userID)
	c.JSON(http.StatusOK, updated)
}

func (h *EventHandler) DeleteEvent(c *gin.Context) {
	userID := middleware.GetUserID(c)

	event, ok := h.modifiableEvent(c)
	if !ok {
		return
	}

	if err := h.Events.Delete(c.Request.Context(), event.ID); err != nil {
		respondError(c, err)
		return
	}

	h.WS.Broadcast(event.GroupID, "event_deleted", userID)
	c.JSON(http.StatusOK, gin.H{"message": "Event deleted successfully"})
}

func (h *EventHandler) ListResponses(c *gin.Context) {
	userID := middleware.GetUserID(c)
	eventID := c.Param("id")

	event, err := h.Events.GetByID(c.Request.Context(), eventID)
	if err != nil {
		respondError(c, err)
		return
	}

	class, err := h.Authz.MembershipClass(c.Request.Context(), event.GroupID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !services.Can(class, services.ActionViewEvents) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}

	responses, err := h.Events.ListResponses(c.Request.Context(), eventID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, responses)
}

func (h *EventHandler) SubmitResponse(c *gin.Context) {
	userID := middleware.GetUserID(c)
	eventID := c.Param("id")

	event, err := h.Events.GetByID(c.Request.Context(), eventID)
	if err != nil {
		respondError(c, err)
		return
	}

	if _, err := h.Authz.Authorize(c.Request.Context(), event.GroupID, userID, services.ActionSubmitResponse); err != nil {
		respondError(c, err)
		return
	}

	var req models.SubmitResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.Events.SubmitResponse(c.Request.Context(), eventID, userID, req.Status, req.Comment)
	if err != nil {
		respondError(c, err)
		return
	}

	h.WS.Broadcast(event.GroupID, "response_submitted", userID)
	c.JSON(http.StatusOK, response)
}
