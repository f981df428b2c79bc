package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"onboarding-hub/internal/engine/template"
	"onboarding-hub/internal/models"
)

type templateDTO struct {
	EventID       string               `json:"eventId"`
	ChannelID     string               `json:"channelId"`
	RecipientType models.RecipientType `json:"recipientType"`
	Subject       string               `json:"subject"`
	Body          string               `json:"body"`
	IsActive      *bool                `json:"isActive"`
}

func (s *Server) listTemplates(c *gin.Context) {
	templates, err := s.store.Templates().List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, templates)
}

func (s *Server) getTemplate(c *gin.Context) {
	tpl, err := s.store.Templates().Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tpl)
}

func (s *Server) createTemplate(c *gin.Context) {
	var dto templateDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		badRequest(c, err)
		return
	}
	if err := validatePayload(templateSchema, dto); err != nil {
		badRequest(c, err)
		return
	}
	if _, err := s.store.Events().Get(c.Request.Context(), dto.EventID); err != nil {
		respondError(c, err)
		return
	}
	if _, err := s.store.Channels().Get(c.Request.Context(), dto.ChannelID); err != nil {
		respondError(c, err)
		return
	}

	now := time.Now().UTC()
	tpl := models.MessageTemplate{
		ID:            uuid.NewString(),
		EventID:       dto.EventID,
		ChannelID:     dto.ChannelID,
		RecipientType: dto.RecipientType,
		Subject:       dto.Subject,
		Body:          dto.Body,
		Variables:     template.ScanVariables(dto.Subject, dto.Body),
		IsActive:      dto.IsActive == nil || *dto.IsActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.Templates().Create(c.Request.Context(), tpl); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tpl)
}

func (s *Server) updateTemplate(c *gin.Context) {
	existing, err := s.store.Templates().Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	var dto templateDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		badRequest(c, err)
		return
	}
	if err := validatePayload(templateSchema, dto); err != nil {
		badRequest(c, err)
		return
	}

	existing.Subject = dto.Subject
	existing.Body = dto.Body
	existing.Variables = template.ScanVariables(dto.Subject, dto.Body)
	if dto.IsActive != nil {
		existing.IsActive = *dto.IsActive
	}
	existing.UpdatedAt = time.Now().UTC()

	if err := s.store.Templates().Update(c.Request.Context(), *existing); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, existing)
}

func (s *Server) deleteTemplate(c *gin.Context) {
	if err := s.store.Templates().Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
