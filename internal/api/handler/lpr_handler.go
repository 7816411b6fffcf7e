package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"toll_plaza/internal/api/middleware"
	"toll_plaza/internal/domain"
	"toll_plaza/internal/service"
)

type LPRHandler struct {
	lprService     *service.LPRService
	vehicleService *service.VehicleService
	// timeout bounds one pipeline run; zero means the request context only.
	timeout time.Duration
}

func NewLPRHandler(lprService *service.LPRService, vehicleService *service.VehicleService, timeout time.Duration) *LPRHandler {
	return &LPRHandler{lprService: lprService, vehicleService: vehicleService, timeout: timeout}
}

// POST /api/v1/lpr/process-image
//
// Every pipeline outcome, failures included, is a 200 with the full result;
// only a bad payload is a 400. Retrying means posting the same image again.
func (h *LPRHandler) ProcessImage(c *gin.Context) {
	requestID := middleware.GetRequestID(c)

	var req domain.LPRRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload", "details": err.Error()})
		return
	}

	imageBytes, err := domain.DecodeImageBase64(req.ImageBase64)
	if err != nil {
		log.Printf("LPRHandler [%s]: error decoding base64 image: %v", requestID, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid image data", "details": err.Error()})
		return
	}
	log.Printf("LPRHandler [%s]: received %d image bytes for LPR.", requestID, len(imageBytes))

	ctx := c.Request.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}
	result := h.lprService.Run(ctx, imageBytes)
	c.JSON(http.StatusOK, result)
}

// POST /api/v1/lpr/manual-lookup
func (h *LPRHandler) ManualLookup(c *gin.Context) {
	var req domain.ManualLookupRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload", "details": err.Error()})
		return
	}

	resp, err := h.vehicleService.ManualLookup(c.Request.Context(), req)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, resp)
	case errors.Is(err, domain.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, resp)
	case len(resp.TriedKeys) == 0:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("LPRHandler [%s]: manual lookup failed: %v", middleware.GetRequestID(c), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Manual lookup failed", "details": err.Error()})
	}
}
