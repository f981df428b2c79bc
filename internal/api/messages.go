package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"onboarding-hub/internal/models"
	"onboarding-hub/internal/store"
)

func (s *Server) listMessages(c *gin.Context) {
	if statusParam := c.Query("status"); statusParam != "" {
		logs, err := s.store.MessageLogs().ListByStatus(c.Request.Context(),
			[]models.MessageStatus{models.MessageStatus(statusParam)}, store.LogCursor{}, 0)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, logs)
		return
	}
	logs, err := s.store.MessageLogs().List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

func (s *Server) getMessage(c *gin.Context) {
	entry, err := s.store.MessageLogs().Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

type deliveryCallbackDTO struct {
	MessageID string               `json:"messageId"`
	Status    models.MessageStatus `json:"status"`
	Timestamp string               `json:"timestamp"`
	Reason    string               `json:"reason"`
}

// deliveryCallback ingests provider webhooks reporting delivery progress.
func (s *Server) deliveryCallback(c *gin.Context) {
	var dto deliveryCallbackDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		badRequest(c, err)
		return
	}
	if err := validatePayload(deliveryCallbackSchema, dto); err != nil {
		badRequest(c, err)
		return
	}

	at := time.Now().UTC()
	if dto.Timestamp != "" {
		parsed, err := time.Parse(time.RFC3339, dto.Timestamp)
		if err != nil {
			badRequest(c, err)
			return
		}
		at = parsed.UTC()
	}

	entry, err := s.dispatcher.ApplyCallback(c.Request.Context(), dto.MessageID, dto.Status, at, dto.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}
