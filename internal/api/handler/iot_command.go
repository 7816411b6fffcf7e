package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"toll_plaza/internal/api/middleware"
	"toll_plaza/internal/domain"
	"toll_plaza/internal/service"
)

type IoTCommandHandler struct {
	boothService *service.BoothService
}

func NewIoTCommandHandler(bs *service.BoothService) *IoTCommandHandler {
	return &IoTCommandHandler{boothService: bs}
}

// POST /api/v1/iot/commands/barrier
func (h *IoTCommandHandler) ControlBarrier(c *gin.Context) {
	var req domain.BarrierControlRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	requestID := uuid.New().String()
	err := h.boothService.SendBarrierCommand(c.Request.Context(), req.BoothID, req.Command, requestID, "operator")
	if errors.Is(err, service.ErrInvalidBarrierCommand) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		log.Printf("IoTCommandHandler [%s]: barrier command failed: %v", middleware.GetRequestID(c), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not send barrier command", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Barrier command sent", "request_id": requestID})
}
