package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"secret_santa/internal/service"
)

// HandleServiceError 將服務層錯誤轉為 HTTP 狀態碼與錯誤訊息
func HandleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrRoomNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
	case errors.Is(err, service.ErrParticipantNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Participant not found"})
	case errors.Is(err, service.ErrRoomAlreadyStarted):
		c.JSON(http.StatusConflict, gin.H{"error": "The drawing has already started"})
	case errors.Is(err, service.ErrNotAuthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the room owner can do this"})
	case errors.Is(err, service.ErrCannotRemoveOwner):
		c.JSON(http.StatusBadRequest, gin.H{"error": "The room owner cannot be removed"})
	case errors.Is(err, service.ErrInsufficientParticipants):
		c.JSON(http.StatusBadRequest, gin.H{"error": "At least two participants are required"})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		// 儲存層細節只寫入日誌
		logrus.WithError(err).WithField("path", c.FullPath()).Error("Unhandled service error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
