package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"onboarding-hub/internal/models"
)

type eventDTO struct {
	Code             string               `json:"code"`
	Name             string               `json:"name"`
	Description      string               `json:"description"`
	Category         models.EventCategory `json:"category"`
	Severity         models.EventSeverity `json:"severity"`
	RequiresResponse bool                 `json:"requiresResponse"`
	IsActive         *bool                `json:"isActive"`
}

func (s *Server) listEvents(c *gin.Context) {
	events, err := s.store.Events().List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

func (s *Server) getEvent(c *gin.Context) {
	event, err := s.store.Events().Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

func (s *Server) createEvent(c *gin.Context) {
	var dto eventDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		badRequest(c, err)
		return
	}
	if err := validatePayload(eventSchema, dto); err != nil {
		badRequest(c, err)
		return
	}

	event := models.OnboardingEvent{
		ID:               uuid.NewString(),
		Code:             dto.Code,
		Name:             dto.Name,
		Description:      dto.Description,
		Category:         dto.Category,
		Severity:         dto.Severity,
		RequiresResponse: dto.RequiresResponse,
		IsActive:         dto.IsActive == nil || *dto.IsActive,
		CreatedAt:        time.Now().UTC(),
	}
	if err := s.store.Events().Create(c.Request.Context(), event); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, event)
}

func (s *Server) updateEvent(c *gin.Context) {
	existing, err := s.store.Events().Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	var dto eventDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		badRequest(c, err)
		return
	}
	if err := validatePayload(eventSchema, dto); err != nil {
		badRequest(c, err)
		return
	}

	// Code is the immutable business key.
	existing.Name = dto.Name
	existing.Description = dto.Description
	existing.Category = dto.Category
	existing.Severity = dto.Severity
	existing.RequiresResponse = dto.RequiresResponse
	if dto.IsActive != nil {
		existing.IsActive = *dto.IsActive
	}

	if err := s.store.Events().Update(c.Request.Context(), *existing); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, existing)
}

func (s *Server) deleteEvent(c *gin.Context) {
	if err := s.store.Events().Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
