package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/YogindraChaudhari/plantationDrive/internal/core"
)

// Services bundles the domain services the routes dispatch to.
type Services struct {
	Plants     core.PlantService
	Users      core.UserService
	Attendance core.AttendanceService
	// Images pre-checks uploads at the boundary. Optional.
	Images ImageChecker
}

// SetupRoutes configures all the application routes with their handlers and middleware.
// Global middleware (logging, recovery, CORS) is expected to be applied to router before
// this is called. authMW guards every /api/v1 route.
func SetupRoutes(router *gin.Engine, logger *zap.Logger, authMW gin.HandlerFunc, svc Services, maxUploadBytes int64) {
	plantHandler := NewPlantHandler(svc.Plants, svc.Images, maxUploadBytes, logger)
	coordinateHandler := NewCoordinateHandler(logger)
	userHandler := NewUserHandler(svc.Users, logger)
	attendanceHandler := NewAttendanceHandler(svc.Attendance, logger)

	apiV1 := router.Group("/api/v1", authMW)
	{
		plants := apiV1.Group("/plants")
		{
			plants.POST("", plantHandler.RegisterPlant)
			plants.GET("", plantHandler.ListPlants)
			plants.GET("/lookup", plantHandler.LookupPlant)
			plants.GET("/export", plantHandler.ExportPlants)
			plants.GET("/:key", plantHandler.GetPlant)
			plants.PATCH("/:key", plantHandler.UpdatePlant)
			plants.DELETE("/:key", plantHandler.DeletePlant)
		}
		apiV1.GET("/zones", plantHandler.ListZones)
		apiV1.POST("/coordinates/normalize", coordinateHandler.Normalize)

		users := apiV1.Group("/users")
		{
			users.POST("/profile", userHandler.CreateProfile)
			users.GET("/me", userHandler.GetCurrentUserProfile)
			users.GET("", userHandler.ListUsers)
			users.GET("/:uid", userHandler.GetUser)
			users.PATCH("/:uid", userHandler.UpdateUser)
			users.DELETE("/:uid", userHandler.DeleteUser)
			users.POST("/:uid/password-reset", userHandler.SendPasswordReset)
		}

		attendance := apiV1.Group("/attendance")
		{
			attendance.POST("", attendanceHandler.CheckIn)
			attendance.GET("", attendanceHandler.ListAttendance)
			attendance.GET("/work-types", attendanceHandler.ListWorkTypes)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "Plantation Drive backend is healthy."})
	})

	logger.Info("API routes configured under /api/v1 and /health")
}
