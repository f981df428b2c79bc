package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"onboarding-hub/internal/models"
)

type channelDTO struct {
	Type        models.ChannelType `json:"type"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	IsActive    *bool              `json:"isActive"`
	Config      map[string]string  `json:"config"`
}

func (s *Server) listChannels(c *gin.Context) {
	channels, err := s.store.Channels().List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, channels)
}

func (s *Server) getChannel(c *gin.Context) {
	channel, err := s.store.Channels().Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, channel)
}

func (s *Server) createChannel(c *gin.Context) {
	var dto channelDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		badRequest(c, err)
		return
	}
	if err := validatePayload(channelSchema, dto); err != nil {
		badRequest(c, err)
		return
	}

	channel := models.Channel{
		ID:          uuid.NewString(),
		Type:        dto.Type,
		Name:        dto.Name,
		Description: dto.Description,
		IsActive:    dto.IsActive == nil || *dto.IsActive,
		Config:      dto.Config,
	}
	if err := s.store.Channels().Create(c.Request.Context(), channel); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, channel)
}

func (s *Server) updateChannel(c *gin.Context) {
	existing, err := s.store.Channels().Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	var dto channelDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		badRequest(c, err)
		return
	}
	if err := validatePayload(channelSchema, dto); err != nil {
		badRequest(c, err)
		return
	}

	existing.Type = dto.Type
	existing.Name = dto.Name
	existing.Description = dto.Description
	if dto.IsActive != nil {
		existing.IsActive = *dto.IsActive
	}
	existing.Config = dto.Config

	if err := s.store.Channels().Update(c.Request.Context(), *existing); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, existing)
}
