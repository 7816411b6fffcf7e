package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"toll_plaza/internal/api/handler"
	"toll_plaza/internal/api/middleware"
	"toll_plaza/internal/service"
)

// SetupRouter wires the HTTP surface. lprTimeout bounds each
// process-image pipeline run; zero leaves it to the request context.
func SetupRouter(lprService *service.LPRService, vs *service.VehicleService, bs *service.BoothService,
	wsManager *handler.WebSocketManager, db handler.Pinger, lprTimeout time.Duration) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.RequestID())

	r.GET("/healthz", handler.NewHealthHandler(db, wsManager).Health)

	if wsManager != nil {
		wsHandler := handler.NewWebSocketHandler(wsManager)
		r.GET("/ws", wsHandler.HandleWebSocket)
	}

	v1 := r.Group("/api/v1")
	{
		lprH := handler.NewLPRHandler(lprService, vs, lprTimeout)
		lprRoutes := v1.Group("/lpr")
		{
			lprRoutes.POST("/process-image", lprH.ProcessImage)
			lprRoutes.POST("/manual-lookup", lprH.ManualLookup)
		}

		vehicleH := handler.NewVehicleHandler(vs)
		v1.POST("/vehicle-info", vehicleH.GetVehicleInfo)
		v1.GET("/vehicles/recent", vehicleH.GetMostRecentVehicle)
		v1.GET("/toll-events/recent", vehicleH.GetRecentTollEvents)

		if bs != nil {
			iotCmdH := handler.NewIoTCommandHandler(bs)
			iotRoutes := v1.Group("/iot/commands")
			{
				iotRoutes.POST("/barrier", iotCmdH.ControlBarrier)
			}
		}
	}
	return r
}
