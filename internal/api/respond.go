package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	hberrors "onboarding-hub/internal/common/errors"
)

// respondError maps the hub error taxonomy onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	var he *hberrors.HubError
	if !errors.As(err, &he) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	status := http.StatusInternalServerError
	switch {
	case he.Code == hberrors.ErrCodeNotFound,
		he.Code == hberrors.ErrCodeCallbackUnknownMessage:
		status = http.StatusNotFound
	case he.Code == hberrors.ErrCodeRuleConflict,
		he.Code == hberrors.ErrCodeCallbackOutOfOrder,
		he.Code == hberrors.ErrCodeStatusConflict:
		status = http.StatusConflict
	case hberrors.IsConfiguration(err):
		status = http.StatusUnprocessableEntity
	case hberrors.IsDelivery(err):
		status = http.StatusBadGateway
	}
	c.JSON(status, gin.H{"error": he})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
