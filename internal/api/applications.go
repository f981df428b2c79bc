package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) listApplications(c *gin.Context) {
	apps, err := s.store.Applications().List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, apps)
}

func (s *Server) getApplication(c *gin.Context) {
	app, err := s.store.Applications().Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, app)
}

func (s *Server) listApplicationMessages(c *gin.Context) {
	id := c.Param("id")
	if _, err := s.store.Applications().Get(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	logs, err := s.store.MessageLogs().ListForApplication(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}
