// Package api exposes the hub's REST surface: configuration CRUD, event
// triggers, delivery callbacks and message-log reads.
package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"onboarding-hub/internal/common/logger"
	"onboarding-hub/internal/engine/dispatch"
	"onboarding-hub/internal/engine/trigger"
	"onboarding-hub/internal/store"
)

type Server struct {
	router      *gin.Engine
	store       store.Store
	coordinator *trigger.Coordinator
	dispatcher  *dispatch.Dispatcher
	logger      logger.Logger
}

func NewServer(st store.Store, coordinator *trigger.Coordinator, dispatcher *dispatch.Dispatcher, log logger.Logger) *Server {
	s := &Server{
		router:      gin.New(),
		store:       st,
		coordinator: coordinator,
		dispatcher:  dispatcher,
		logger:      log.WithFields(map[string]interface{}{"component": "api"}),
	}
	s.router.Use(gin.Recovery())
	s.registerRoutes()
	return s
}

// Handler returns the http handler for the server.
func (s *Server) Handler() *gin.Engine {
	return s.router
}

func (s *Server) registerRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/channels", s.listChannels)
		v1.POST("/channels", s.createChannel)
		v1.GET("/channels/:id", s.getChannel)
		v1.PUT("/channels/:id", s.updateChannel)

		v1.GET("/events", s.listEvents)
		v1.POST("/events", s.createEvent)
		v1.GET("/events/:id", s.getEvent)
		v1.PUT("/events/:id", s.updateEvent)
		v1.DELETE("/events/:id", s.deleteEvent)

		v1.GET("/routing-rules", s.listRoutingRules)
		v1.POST("/routing-rules", s.createRoutingRule)
		v1.GET("/routing-rules/:id", s.getRoutingRule)
		v1.PUT("/routing-rules/:id", s.updateRoutingRule)
		v1.DELETE("/routing-rules/:id", s.deleteRoutingRule)

		v1.GET("/escalation-rules", s.listEscalationRules)
		v1.POST("/escalation-rules", s.createEscalationRule)
		v1.GET("/escalation-rules/:id", s.getEscalationRule)
		v1.PUT("/escalation-rules/:id", s.updateEscalationRule)
		v1.DELETE("/escalation-rules/:id", s.deleteEscalationRule)

		v1.GET("/templates", s.listTemplates)
		v1.POST("/templates", s.createTemplate)
		v1.GET("/templates/:id", s.getTemplate)
		v1.PUT("/templates/:id", s.updateTemplate)
		v1.DELETE("/templates/:id", s.deleteTemplate)

		v1.GET("/roles", s.listRoles)
		v1.POST("/roles", s.createRole)
		v1.GET("/roles/:id", s.getRole)
		v1.PUT("/roles/:id", s.updateRole)

		v1.GET("/staff", s.listStaff)
		v1.POST("/staff", s.createStaff)
		v1.GET("/staff/:id", s.getStaff)
		v1.PUT("/staff/:id", s.updateStaff)

		v1.GET("/applications", s.listApplications)
		v1.GET("/applications/:id", s.getApplication)
		v1.GET("/applications/:id/messages", s.listApplicationMessages)

		v1.GET("/messages", s.listMessages)
		v1.GET("/messages/:id", s.getMessage)

		v1.POST("/triggers", s.triggerEvent)
		v1.POST("/callbacks/delivery", s.deliveryCallback)

		v1.GET("/analytics/dashboard", s.dashboardAnalytics)
		v1.GET("/analytics/channels", s.channelAnalytics)
		v1.GET("/analytics/events", s.eventAnalytics)
	}
}
