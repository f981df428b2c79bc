package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type triggerDTO struct {
	EventID       string `json:"eventId"`
	EventCode     string `json:"eventCode"`
	ApplicationID string `json:"applicationId"`
}

// triggerEvent fires an onboarding event for an application. The event may be
// addressed by id or by its business code.
func (s *Server) triggerEvent(c *gin.Context) {
	var dto triggerDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		badRequest(c, err)
		return
	}
	if err := validatePayload(triggerSchema, dto); err != nil {
		badRequest(c, err)
		return
	}

	eventID := dto.EventID
	if eventID == "" {
		event, err := s.store.Events().GetByCode(c.Request.Context(), dto.EventCode)
		if err != nil {
			respondError(c, err)
			return
		}
		eventID = event.ID
	}

	logs, err := s.coordinator.Trigger(c.Request.Context(), eventID, dto.ApplicationID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{
		"eventId":       eventID,
		"applicationId": dto.ApplicationID,
		"messages":      logs,
	})
}
