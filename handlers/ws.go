package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/olahol/melody"

	"github.com/meetgrid/scheduler-api/middleware"
	"github.com/meetgrid/scheduler-api/services"
	"github.com/meetgrid/scheduler-api/utils"
)

// WSHandler pushes group activity signals (events changing, responses coming
// in, members joining or leaving) to connected clients so they can refetch.
type WSHandler struct {
	M     *melody.Melody
	Authz *services.AuthzService
}

func NewWSHandler(authz *services.AuthzService) *WSHandler {
	m := melody.New()

	m.Config.MaxMessageSize = 1024
	m.Config.PingPeriod = 30 * time.Second
	m.Config.PongWait = 60 * time.Second

	m.HandleDisconnect(func(s *melody.Session) {
		groupID, _ := s.Get("group_id")
		utils.LogDebug("client disconnected from group %v", groupID)
	})

	m.HandleError(func(s *melody.Session, err error) {
		utils.LogWarn("websocket error: %v", err)
	})

	h := &WSHandler{M: m, Authz: authz}
	m.HandleConnect(func(s *melody.Session) {
		s.Set("group_id", s.Request.URL.Query().Get("group"))
	})
	return h
}

// HandleWS upgrades the connection for group members only. Non-members get
// the same 404 as the other group reads.
func (h *WSHandler) HandleWS(c *gin.Context) {
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

	// group id travels via the request so HandleConnect can key the session
	q := c.Request.URL.Query()
	q.Set("group", groupID)
	c.Request.URL.RawQuery = q.Encode()

	if err := h.M.HandleRequest(c.Writer, c.Request); err != nil {
		utils.LogWarn("failed to upgrade websocket: %v", err)
	}
}

// Broadcast sends a signal to every session watching the given group.
func (h *WSHandler) Broadcast(groupID, signalType, userID string) {
	msg := []byte(`{"type": "` + signalType + `", "user": "` + userID + `"}`)

	err := h.M.BroadcastFilter(msg, func(s *melody.Session) bool {
		id, exists := s.Get("group_id")
		return exists && id == groupID
	})
	if err != nil {
		utils.LogWarn("broadcast to group %s failed: %v", groupID, err)
	}
}
