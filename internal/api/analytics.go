package api

import (
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	"onboarding-hub/internal/models"
)

type channelMetrics struct {
	ChannelID            string  `json:"channelId"`
	TotalSent            int     `json:"totalSent"`
	Delivered            int     `json:"delivered"`
	Opened               int     `json:"opened"`
	Replied              int     `json:"replied"`
	Failed               int     `json:"failed"`
	AvgResponseTimeHours float64 `json:"avgResponseTimeHours"`
}

type eventMetrics struct {
	EventID            string `json:"eventId"`
	TotalTriggered     int    `json:"totalTriggered"`
	SuccessfulDelivery int    `json:"successfulDelivery"`
	ResponseRate       int    `json:"responseRate"`
}

type dashboardStats struct {
	TotalApplications     int `json:"totalApplications"`
	PendingApplications   int `json:"pendingApplications"`
	CompletedApplications int `json:"completedApplications"`
	TotalMessagesSent     int `json:"totalMessagesSent"`
	MessagesDelivered     int `json:"messagesDelivered"`
	MessagesReplied       int `json:"messagesReplied"`
	DeliveryRate          int `json:"deliveryRate"`
	ResponseRate          int `json:"responseRate"`
	ActiveChannels        int `json:"activeChannels"`
	ActiveEvents          int `json:"activeEvents"`
}

func delivered(status models.MessageStatus) bool {
	return status == models.MessageDelivered || status.IsResponse()
}

func (s *Server) channelAnalytics(c *gin.Context) {
	ctx := c.Request.Context()
	channels, err := s.store.Channels().List(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	logs, err := s.store.MessageLogs().List(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]channelMetrics, 0, len(channels))
	for _, channel := range channels {
		m := channelMetrics{ChannelID: channel.ID}
		var responseHours float64
		var responses int
		for _, l := range logs {
			if l.ChannelID != channel.ID {
				continue
			}
			m.TotalSent++
			if delivered(l.Status) {
				m.Delivered++
			}
			if l.Status.IsResponse() {
				m.Opened++
			}
			switch l.Status {
			case models.MessageReplied:
				m.Replied++
			case models.MessageFailed, models.MessageBounced:
				m.Failed++
			}
			if l.RepliedAt != nil {
				responseHours += l.RepliedAt.Sub(l.SentAt).Hours()
				responses++
			}
		}
		if responses > 0 {
			m.AvgResponseTimeHours = math.Round(responseHours/float64(responses)*10) / 10
		}
		out = append(out, m)
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) eventAnalytics(c *gin.Context) {
	ctx := c.Request.Context()
	events, err := s.store.Events().List(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	logs, err := s.store.MessageLogs().List(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]eventMetrics, 0, len(events))
	for _, event := range events {
		m := eventMetrics{EventID: event.ID}
		var replied int
		for _, l := range logs {
			if l.EventID != event.ID {
				continue
			}
			m.TotalTriggered++
			if delivered(l.Status) {
				m.SuccessfulDelivery++
			}
			if l.Status == models.MessageReplied {
				replied++
			}
		}
		if m.TotalTriggered > 0 {
			m.ResponseRate = int(math.Round(float64(replied) / float64(m.TotalTriggered) * 100))
		}
		out = append(out, m)
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) dashboardAnalytics(c *gin.Context) {
	ctx := c.Request.Context()
	apps, err := s.store.Applications().List(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	channels, err := s.store.Channels().List(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	events, err := s.store.Events().List(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	logs, err := s.store.MessageLogs().List(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	stats := dashboardStats{
		TotalApplications: len(apps),
		TotalMessagesSent: len(logs),
	}
	for _, app := range apps {
		if app.Status.IsTerminal() {
			if app.Status != models.StatusRejected {
				stats.CompletedApplications++
			}
		} else {
			stats.PendingApplications++
		}
	}
	for _, ch := range channels {
		if ch.IsActive {
			stats.ActiveChannels++
		}
	}
	for _, ev := range events {
		if ev.IsActive {
			stats.ActiveEvents++
		}
	}
	for _, l := range logs {
		if delivered(l.Status) {
			stats.MessagesDelivered++
		}
		if l.Status == models.MessageReplied {
			stats.MessagesReplied++
		}
	}
	if stats.TotalMessagesSent > 0 {
		stats.DeliveryRate = int(math.Round(float64(stats.MessagesDelivered) / float64(stats.TotalMessagesSent) * 100))
		stats.ResponseRate = int(math.Round(float64(stats.MessagesReplied) / float64(stats.TotalMessagesSent) * 100))
	}
	c.JSON(http.StatusOK, stats)
}
