package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"toll_plaza/internal/api/middleware"
	"toll_plaza/internal/domain"
	"toll_plaza/internal/repository"
	"toll_plaza/internal/service"
)

type VehicleHandler struct {
	vehicleService *service.VehicleService
}

func NewVehicleHandler(vs *service.VehicleService) *VehicleHandler {
	return &VehicleHandler{vehicleService: vs}
}

// POST /api/v1/vehicle-info
func (h *VehicleHandler) GetVehicleInfo(c *gin.Context) {
	var req domain.VehicleInfoRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "License number is required", "details": err.Error()})
		return
	}

	vehicle, err := h.vehicleService.GetVehicleInfo(c.Request.Context(), req.License)
	if err != nil {
		h.respondLookupError(c, err)
		return
	}
	c.JSON(http.StatusOK, vehicle)
}

// GET /api/v1/vehicles/recent
func (h *VehicleHandler) GetMostRecentVehicle(c *gin.Context) {
	vehicle, err := h.vehicleService.GetMostRecentVehicle(c.Request.Context())
	if err != nil {
		h.respondLookupError(c, err)
		return
	}
	c.JSON(http.StatusOK, vehicle)
}

// GET /api/v1/toll-events/recent?limit=
func (h *VehicleHandler) GetRecentTollEvents(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = n
	}

	events, err := h.vehicleService.RecentTollEvents(c.Request.Context(), limit)
	if err != nil {
		log.Printf("VehicleHandler [%s]: listing toll events failed: %v", middleware.GetRequestID(c), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not list toll events", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, events)
}

func (h *VehicleHandler) respondLookupError(c *gin.Context, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
		return
	}
	log.Printf("VehicleHandler [%s]: registry error: %v", middleware.GetRequestID(c), err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed", "details": err.Error()})
}
