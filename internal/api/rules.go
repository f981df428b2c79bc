package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	hberrors "onboarding-hub/internal/common/errors"
	"onboarding-hub/internal/models"
)

type routingRuleDTO struct {
	EventID                  string               `json:"eventId"`
	ChannelID                string               `json:"channelId"`
	RecipientType            models.RecipientType `json:"recipientType"`
	Priority                 int                  `json:"priority"`
	StaffRoleIDs             []string             `json:"staffRoleIds"`
	WaitDaysBeforeEscalation int                  `json:"waitDaysBeforeEscalation"`
	EscalationChannelID      string               `json:"escalationChannelId"`
	IsActive                 *bool                `json:"isActive"`
}

func (s *Server) listRoutingRules(c *gin.Context) {
	if eventID := c.Query("eventId"); eventID != "" {
		rules, err := s.store.RoutingRules().ListForEvent(c.Request.Context(), eventID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, rules)
		return
	}
	rules, err := s.store.RoutingRules().List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rules)
}

func (s *Server) getRoutingRule(c *gin.Context) {
	rule, err := s.store.RoutingRules().Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rule)
}

func (s *Server) createRoutingRule(c *gin.Context) {
	var dto routingRuleDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		badRequest(c, err)
		return
	}
	if err := validatePayload(routingRuleSchema, dto); err != nil {
		badRequest(c, err)
		return
	}

	rule := models.RoutingRule{
		ID:                       uuid.NewString(),
		EventID:                  dto.EventID,
		ChannelID:                dto.ChannelID,
		RecipientType:            dto.RecipientType,
		Priority:                 dto.Priority,
		StaffRoleIDs:             dto.StaffRoleIDs,
		WaitDaysBeforeEscalation: dto.WaitDaysBeforeEscalation,
		EscalationChannelID:      dto.EscalationChannelID,
		IsActive:                 dto.IsActive == nil || *dto.IsActive,
	}
	if err := s.checkRoutingRule(c, rule); err != nil {
		respondError(c, err)
		return
	}
	if err := s.store.RoutingRules().Create(c.Request.Context(), rule); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rule)
}

func (s *Server) updateRoutingRule(c *gin.Context) {
	existing, err := s.store.RoutingRules().Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	var dto routingRuleDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		badRequest(c, err)
		return
	}
	if err := validatePayload(routingRuleSchema, dto); err != nil {
		badRequest(c, err)
		return
	}

	existing.ChannelID = dto.ChannelID
	existing.RecipientType = dto.RecipientType
	existing.Priority = dto.Priority
	existing.StaffRoleIDs = dto.StaffRoleIDs
	existing.WaitDaysBeforeEscalation = dto.WaitDaysBeforeEscalation
	existing.EscalationChannelID = dto.EscalationChannelID
	if dto.IsActive != nil {
		existing.IsActive = *dto.IsActive
	}

	if err := s.checkRoutingRule(c, *existing); err != nil {
		respondError(c, err)
		return
	}
	if err := s.store.RoutingRules().Update(c.Request.Context(), *existing); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, existing)
}

func (s *Server) deleteRoutingRule(c *gin.Context) {
	if err := s.store.RoutingRules().Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// checkRoutingRule rejects rules that reference missing entities or escalate
// onto the channel they start from.
func (s *Server) checkRoutingRule(c *gin.Context, rule models.RoutingRule) error {
	ctx := c.Request.Context()
	if _, err := s.store.Events().Get(ctx, rule.EventID); err != nil {
		return err
	}
	if _, err := s.store.Channels().Get(ctx, rule.ChannelID); err != nil {
		return err
	}
	if rule.EscalationChannelID != "" {
		if rule.EscalationChannelID == rule.ChannelID {
			return hberrors.NewRuleConflictError(
				fmt.Sprintf("routing rule %s escalates onto its own channel %s", rule.ID, rule.ChannelID))
		}
		if _, err := s.store.Channels().Get(ctx, rule.EscalationChannelID); err != nil {
			return err
		}
		// The escalation graph is the source of truth for fallbacks; a routing
		// rule may not contradict an active edge for the same event+channel.
		edge, err := s.store.EscalationRules().Find(ctx, rule.EventID, rule.ChannelID)
		if err != nil {
			return err
		}
		if edge != nil && edge.ToChannelID != rule.EscalationChannelID {
			return hberrors.NewRuleConflictError(
				fmt.Sprintf("event %s escalates from channel %s to %s via rule %s, not to %s",
					rule.EventID, rule.ChannelID, edge.ToChannelID, edge.ID, rule.EscalationChannelID))
		}
	}
	return nil
}

type escalationRuleDTO struct {
	EventID       string `json:"eventId"`
	FromChannelID string `json:"fromChannelId"`
	ToChannelID   string `json:"toChannelId"`
	WaitDays      int    `json:"waitDays"`
	MaxAttempts   int    `json:"maxAttempts"`
	IsActive      *bool  `json:"isActive"`
}

func (s *Server) listEscalationRules(c *gin.Context) {
	if eventID := c.Query("eventId"); eventID != "" {
		rules, err := s.store.EscalationRules().ListForEvent(c.Request.Context(), eventID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, rules)
		return
	}
	rules, err := s.store.EscalationRules().List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rules)
}

func (s *Server) getEscalationRule(c *gin.Context) {
	rule, err := s.store.EscalationRules().Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rule)
}

func (s *Server) createEscalationRule(c *gin.Context) {
	var dto escalationRuleDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		badRequest(c, err)
		return
	}
	if err := validatePayload(escalationRuleSchema, dto); err != nil {
		badRequest(c, err)
		return
	}

	rule := models.EscalationRule{
		ID:            uuid.NewString(),
		EventID:       dto.EventID,
		FromChannelID: dto.FromChannelID,
		ToChannelID:   dto.ToChannelID,
		WaitDays:      dto.WaitDays,
		MaxAttempts:   dto.MaxAttempts,
		IsActive:      dto.IsActive == nil || *dto.IsActive,
	}
	if rule.MaxAttempts == 0 {
		rule.MaxAttempts = 1
	}
	if err := s.checkEscalationRule(c, rule); err != nil {
		respondError(c, err)
		return
	}
	if err := s.store.EscalationRules().Create(c.Request.Context(), rule); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rule)
}

func (s *Server) updateEscalationRule(c *gin.Context) {
	existing, err := s.store.EscalationRules().Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	var dto escalationRuleDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		badRequest(c, err)
		return
	}
	if err := validatePayload(escalationRuleSchema, dto); err != nil {
		badRequest(c, err)
		return
	}

	existing.FromChannelID = dto.FromChannelID
	existing.ToChannelID = dto.ToChannelID
	existing.WaitDays = dto.WaitDays
	existing.MaxAttempts = dto.MaxAttempts
	if dto.IsActive != nil {
		existing.IsActive = *dto.IsActive
	}

	if err := s.checkEscalationRule(c, *existing); err != nil {
		respondError(c, err)
		return
	}
	if err := s.store.EscalationRules().Update(c.Request.Context(), *existing); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, existing)
}

func (s *Server) deleteEscalationRule(c *gin.Context) {
	if err := s.store.EscalationRules().Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// checkEscalationRule keeps the per-event escalation graph unambiguous: one
// active edge per from-channel, never a self-loop.
func (s *Server) checkEscalationRule(c *gin.Context, rule models.EscalationRule) error {
	ctx := c.Request.Context()
	if rule.FromChannelID == rule.ToChannelID {
		return hberrors.NewRuleConflictError(
			fmt.Sprintf("escalation rule for event %s loops channel %s onto itself", rule.EventID, rule.FromChannelID))
	}
	if _, err := s.store.Events().Get(ctx, rule.EventID); err != nil {
		return err
	}
	if _, err := s.store.Channels().Get(ctx, rule.FromChannelID); err != nil {
		return err
	}
	if _, err := s.store.Channels().Get(ctx, rule.ToChannelID); err != nil {
		return err
	}
	if rule.IsActive {
		existing, err := s.store.EscalationRules().Find(ctx, rule.EventID, rule.FromChannelID)
		if err != nil {
			return err
		}
		if existing != nil && existing.ID != rule.ID {
			return hberrors.NewRuleConflictError(
				fmt.Sprintf("event %s already escalates from channel %s via rule %s", rule.EventID, rule.FromChannelID, existing.ID))
		}
	}
	return nil
}
