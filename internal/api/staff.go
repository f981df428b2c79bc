package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"onboarding-hub/internal/models"
)

type roleDTO struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
	IsActive    *bool    `json:"isActive"`
}

func (s *Server) listRoles(c *gin.Context) {
	roles, err := s.store.Roles().List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, roles)
}

func (s *Server) getRole(c *gin.Context) {
	role, err := s.store.Roles().Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, role)
}

func (s *Server) createRole(c *gin.Context) {
	var dto roleDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		badRequest(c, err)
		return
	}
	if err := validatePayload(roleSchema, dto); err != nil {
		badRequest(c, err)
		return
	}

	role := models.StaffRole{
		ID:          uuid.NewString(),
		Name:        dto.Name,
		Description: dto.Description,
		Permissions: dto.Permissions,
		IsActive:    dto.IsActive == nil || *dto.IsActive,
	}
	if err := s.store.Roles().Create(c.Request.Context(), role); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, role)
}

func (s *Server) updateRole(c *gin.Context) {
	existing, err := s.store.Roles().Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	var dto roleDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		badRequest(c, err)
		return
	}
	if err := validatePayload(roleSchema, dto); err != nil {
		badRequest(c, err)
		return
	}

	existing.Name = dto.Name
	existing.Description = dto.Description
	existing.Permissions = dto.Permissions
	if dto.IsActive != nil {
		existing.IsActive = *dto.IsActive
	}

	if err := s.store.Roles().Update(c.Request.Context(), *existing); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, existing)
}

type staffDTO struct {
	Name               string               `json:"name"`
	Email              string               `json:"email"`
	Phone              string               `json:"phone"`
	RoleIDs            []string             `json:"roleIds"`
	ContactPreferences []models.ChannelType `json:"contactPreferences"`
	IsActive           *bool                `json:"isActive"`
}

func (s *Server) listStaff(c *gin.Context) {
	staff, err := s.store.Staff().List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, staff)
}

func (s *Server) getStaff(c *gin.Context) {
	member, err := s.store.Staff().Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, member)
}

func (s *Server) createStaff(c *gin.Context) {
	var dto staffDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		badRequest(c, err)
		return
	}
	if err := validatePayload(staffSchema, dto); err != nil {
		badRequest(c, err)
		return
	}

	member := models.StaffMember{
		ID:                 uuid.NewString(),
		Name:               dto.Name,
		Email:              dto.Email,
		Phone:              dto.Phone,
		RoleIDs:            dto.RoleIDs,
		ContactPreferences: dto.ContactPreferences,
		IsActive:           dto.IsActive == nil || *dto.IsActive,
	}
	if err := s.store.Staff().Create(c.Request.Context(), member); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, member)
}

func (s *Server) updateStaff(c *gin.Context) {
	existing, err := s.store.Staff().Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	var dto staffDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		badRequest(c, err)
		return
	}
	if err := validatePayload(staffSchema, dto); err != nil {
		badRequest(c, err)
		return
	}

	existing.Name = dto.Name
	existing.Email = dto.Email
	existing.Phone = dto.Phone
	existing.RoleIDs = dto.RoleIDs
	existing.ContactPreferences = dto.ContactPreferences
	if dto.IsActive != nil {
		existing.IsActive = *dto.IsActive
	}

	if err := s.store.Staff().Update(c.Request.Context(), *existing); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, existing)
}
