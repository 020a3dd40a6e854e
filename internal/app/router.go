// internal/app/router.go
package app

import (
	authHandler "fleetdash/internal/handlers/auth"
	dashboardHandler "fleetdash/internal/handlers/dashboard"
	driverHandler "fleetdash/internal/handlers/driver"
	recordHandler "fleetdash/internal/handlers/record"
	userHandler "fleetdash/internal/handlers/user"
	vehicleHandler "fleetdash/internal/handlers/vehicle"
	wsHandler "fleetdash/internal/handlers/websocket"
	"fleetdash/internal/middleware"
	"fleetdash/internal/service/dashboard"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handlers struct {
	AuthHandler       *authHandler.AuthHandler
	DashboardHandler  *dashboardHandler.DashboardHandler
	VehicleHandler    *vehicleHandler.VehicleHandler
	DriverHandler     *driverHandler.DriverHandler
	UserHandler       *userHandler.UserHandler
	RecordHandler     *recordHandler.RecordHandler
	WSHandler         *wsHandler.WebSocketHandler
	SessionMiddleware *middleware.SessionMiddleware
}

func SetupRouter(r *gin.Engine, logger *zap.Logger, h *Handlers) {
	api := r.Group("/api/v1")

	// ==================== Health Check ====================
	api.GET("/health", h.DashboardHandler.Health)

	api.Use(h.SessionMiddleware.Session())

	// ==================== WebSocket ====================
	api.GET("/ws", h.WSHandler.HandleConnection)

	// ==================== Auth Routes ====================
	auth := api.Group("/auth")
	{
		auth.POST("/login", h.AuthHandler.Login)
		auth.POST("/register", h.AuthHandler.Register)
		auth.POST("/logout", h.AuthHandler.Logout)
		auth.GET("/me", h.AuthHandler.Me)
	}

	signedIn := api.Group("")
	signedIn.Use(h.SessionMiddleware.RequireUser())

	// ==================== Dashboard ====================
	signedIn.GET("/dashboard/overview", h.DashboardHandler.Overview)

	// ==================== Vehicles ====================
	vehicles := signedIn.Group("/vehicles")
	{
		vehicles.GET("", h.VehicleHandler.List)
		vehicles.GET("/export", h.VehicleHandler.Export)
		vehicles.POST("/selection/:key", h.VehicleHandler.ToggleSelection)
		vehicles.DELETE("/selection", h.VehicleHandler.ClearSelection)
	}
	vehiclesManage := api.Group("/vehicles")
	vehiclesManage.Use(h.SessionMiddleware.FleetManagers()...)
	{
		vehiclesManage.POST("", h.VehicleHandler.Create)
		vehiclesManage.PUT("/:id", h.VehicleHandler.Update)
		vehiclesManage.DELETE("/:id", h.VehicleHandler.Delete)
	}

	// ==================== Drivers ====================
	drivers := signedIn.Group("/drivers")
	{
		drivers.GET("", h.DriverHandler.List)
		drivers.GET("/export", h.DriverHandler.Export)
		drivers.POST("/selection/:key", h.DriverHandler.ToggleSelection)
		drivers.DELETE("/selection", h.DriverHandler.ClearSelection)
	}
	driversManage := api.Group("/drivers")
	driversManage.Use(h.SessionMiddleware.FleetManagers()...)
	{
		driversManage.POST("", h.DriverHandler.Create)
		driversManage.PUT("/:id", h.DriverHandler.Update)
		driversManage.DELETE("/:id", h.DriverHandler.Delete)
	}

	// ==================== Users (admin/manager/master) ====================
	users := api.Group("/users")
	users.Use(h.SessionMiddleware.UserAdmins()...)
	{
		users.GET("", h.UserHandler.List)
		users.GET("/export", h.UserHandler.Export)
		users.PUT("/:phone/role", h.UserHandler.UpdateRole)
		users.DELETE("/:phone", h.UserHandler.Delete)
	}

	// ==================== Trips ====================
	trips := signedIn.Group("/trips")
	{
		trips.GET("", h.RecordHandler.ListTrips)
		trips.POST("", h.RecordHandler.AddTrip)
		trips.GET("/export", h.RecordHandler.ExportTrips)
		trips.POST("/selection/:key", h.RecordHandler.ToggleSelection(dashboard.DatasetTrips))
		trips.DELETE("/:id", h.RecordHandler.RemoveTrip)
	}

	// ==================== Maintenance ====================
	maintenance := signedIn.Group("/maintenance")
	{
		maintenance.GET("", h.RecordHandler.ListMaintenance)
		maintenance.POST("", h.RecordHandler.AddMaintenance)
		maintenance.GET("/export", h.RecordHandler.ExportMaintenance)
		maintenance.POST("/selection/:key", h.RecordHandler.ToggleSelection(dashboard.DatasetMaintenance))
		maintenance.DELETE("/:id", h.RecordHandler.RemoveMaintenance)
	}

	signedIn.GET("/records/totals", h.RecordHandler.Totals)

	// ==================== Fuel ====================
	signedIn.GET("/fuel/estimate", h.RecordHandler.EstimateFuel)
	signedIn.GET("/fuel/rates", h.RecordHandler.Rates)

	// ==================== Admin ====================
	admin := api.Group("/admin")
	admin.Use(h.SessionMiddleware.FleetManagers()...)
	{
		admin.GET("/ws/stats", h.WSHandler.GetStats)
	}

	logger.Info("routes registered", zap.Int("count", len(r.Routes())))
}
