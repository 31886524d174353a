package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/smartbuilders/bautrack-backend/internal/db"
	"github.com/smartbuilders/bautrack-backend/internal/handlers"
	"github.com/smartbuilders/bautrack-backend/internal/logger"
	"github.com/smartbuilders/bautrack-backend/internal/middleware"
	"github.com/smartbuilders/bautrack-backend/internal/platform/mediastore"
	"github.com/smartbuilders/bautrack-backend/internal/platform/notify"
	"github.com/smartbuilders/bautrack-backend/internal/repos"
	"github.com/smartbuilders/bautrack-backend/internal/server"
	"github.com/smartbuilders/bautrack-backend/internal/services"
	"github.com/smartbuilders/bautrack-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, using process environment")
	}

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Error("Postgres auto migration failed", "error", err)
		os.Exit(1)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	materialRepo := repos.NewMaterialRepo(thePG, log)
	stockMovementRepo := repos.NewStockMovementRepo(thePG, log)
	demandRepo := repos.NewDemandRepo(thePG, log)
	projectRepo := repos.NewProjectRepo(thePG, log)
	stepRepo := repos.NewStepRepo(thePG, log)
	pendingUpdateRepo := repos.NewPendingUpdateRepo(thePG, log)
	photoRepo := repos.NewPhotoRepo(thePG, log)
	noteRepo := repos.NewNoteRepo(thePG, log)
	auditLogRepo := repos.NewAuditLogRepo(thePG, log)

	// Platform
	log.Info("Setting up platform collaborators from main...")
	photoStore, err := mediastore.New(thePG, log)
	if err != nil {
		log.Error("Could not init media store", "error", err)
		os.Exit(1)
	}
	notifier := notify.NewLogNotifier(log)

	// Services
	log.Info("Setting up Services from main...")
	auditService := services.NewAuditService(thePG, log, auditLogRepo)
	inventoryService := services.NewInventoryService(thePG, log, materialRepo, demandRepo, stockMovementRepo, auditService)
	reservationService := services.NewReservationService(thePG, log, materialRepo, demandRepo)
	demandService := services.NewDemandService(thePG, log, stepRepo, demandRepo, inventoryService, auditService)
	stepService := services.NewStepService(thePG, log, stepRepo, inventoryService, auditService)
	projectService := services.NewProjectService(thePG, log, projectRepo, stepRepo, noteRepo, auditService)
	queueService := services.NewUpdateQueueService(thePG, log, stepRepo, pendingUpdateRepo, photoRepo, photoStore, auditService)
	approvalService := services.NewApprovalService(
		thePG,
		log,
		pendingUpdateRepo,
		stepRepo,
		projectRepo,
		demandRepo,
		noteRepo,
		photoRepo,
		photoStore,
		inventoryService,
		auditService,
	)

	// Handlers
	log.Info("Setting up handlers from main...")
	materialHandler := handlers.NewMaterialHandler(log, inventoryService, reservationService)
	demandHandler := handlers.NewDemandHandler(log, demandService)
	stepHandler := handlers.NewStepHandler(log, stepService)
	updateHandler := handlers.NewUpdateHandler(log, queueService, approvalService, notifier)
	projectHandler := handlers.NewProjectHandler(log, projectService)
	auditHandler := handlers.NewAuditHandler(log, auditService)

	// Middleware
	log.Info("Setting up middleware from main...")
	actorMiddleware := middleware.NewActorMiddleware(log)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		ActorMiddleware: actorMiddleware,
		MaterialHandler: materialHandler,
		DemandHandler:   demandHandler,
		StepHandler:     stepHandler,
		UpdateHandler:   updateHandler,
		ProjectHandler:  projectHandler,
		AuditHandler:    auditHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	log.Info("Server listening", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Server failed", "error", err)
	}
}
