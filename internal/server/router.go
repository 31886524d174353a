package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/smartbuilders/bautrack-backend/internal/handlers"
	"github.com/smartbuilders/bautrack-backend/internal/middleware"
)

type RouterConfig struct {
	ActorMiddleware *middleware.ActorMiddleware
	MaterialHandler *handlers.MaterialHandler
	DemandHandler   *handlers.DemandHandler
	StepHandler     *handlers.StepHandler
	UpdateHandler   *handlers.UpdateHandler
	ProjectHandler  *handlers.ProjectHandler
	AuditHandler    *handlers.AuditHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5173",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "X-Requested-With", "X-Actor-Id", "X-Actor-Role"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)

	// ===============
	// || Protected ||
	// ===============
	api := router.Group("/api")
	api.Use(cfg.ActorMiddleware.RequireActor())
	{
		// Materials
		api.POST("/materials", cfg.MaterialHandler.CreateMaterial)
		api.GET("/materials", cfg.MaterialHandler.ListMaterials)
		api.PUT("/materials/:id", cfg.MaterialHandler.UpdateMaterial)
		api.DELETE("/materials/:id", cfg.MaterialHandler.DeleteMaterial)
		api.POST("/materials/:id/adjust", cfg.MaterialHandler.AdjustStock)
		api.GET("/materials/:id/movements", cfg.MaterialHandler.ListMovements)
		// Reservations
		api.GET("/reservations", cfg.MaterialHandler.ComputeReservations)
		// Projects
		api.POST("/projects", cfg.ProjectHandler.CreateProject)
		api.GET("/projects", cfg.ProjectHandler.ListProjects)
		api.GET("/projects/:id", cfg.ProjectHandler.GetProject)
		// Steps
		api.GET("/steps/:id", cfg.StepHandler.GetStep)
		api.POST("/steps/:id/status", cfg.StepHandler.TransitionStatus)
		api.POST("/steps/:id/notes", cfg.ProjectHandler.CreateNote)
		api.POST("/steps/:id/demands", cfg.DemandHandler.AddDemand)
		api.POST("/steps/:id/updates", cfg.UpdateHandler.SubmitUpdate)
		// Demands
		api.PATCH("/demands/:id", cfg.DemandHandler.UpdateDemandQuantity)
		api.DELETE("/demands/:id", cfg.DemandHandler.RemoveDemand)
		// Update queue
		api.GET("/updates", cfg.UpdateHandler.ListUpdates)
		api.POST("/updates/:id/approve", cfg.UpdateHandler.ApproveUpdate)
		api.POST("/updates/:id/reject", cfg.UpdateHandler.RejectUpdate)
		// Audit
		api.GET("/audit", cfg.AuditHandler.ListAudit)
	}

	return router
}
