package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/smartbuilders/bautrack-backend/internal/db"
	"github.com/smartbuilders/bautrack-backend/internal/logger"
	"github.com/smartbuilders/bautrack-backend/internal/repos"
	"github.com/smartbuilders/bautrack-backend/internal/types"
)

type fakePhotoStore struct {
	stored  map[string][]byte
	deleted []string
}

func newFakePhotoStore() *fakePhotoStore {
	return &fakePhotoStore{stored: make(map[string][]byte)}
}

func (f *fakePhotoStore) Store(ctx context.Context, data []byte, mime string) (string, error) {
	ref := uuid.NewString()
	f.stored[ref] = data
	return ref, nil
}

func (f *fakePhotoStore) Delete(ctx context.Context, ref string) error {
	delete(f.stored, ref)
	f.deleted = append(f.deleted, ref)
	return nil
}

func (f *fakePhotoStore) RenderURL(ref string) string { return "test://" + ref }

type testEnv struct {
	db         *gorm.DB
	photoStore *fakePhotoStore

	materialRepo      repos.MaterialRepo
	stockMovementRepo repos.StockMovementRepo
	demandRepo        repos.DemandRepo
	stepRepo          repos.StepRepo
	pendingUpdateRepo repos.PendingUpdateRepo
	photoRepo         repos.PhotoRepo
	noteRepo          repos.NoteRepo

	inventory   InventoryService
	reservation ReservationService
	demands     DemandService
	steps       StepService
	projects    ProjectService
	queue       UpdateQueueService
	approvals   ApprovalService
	audit       AuditService

	admin       types.Actor
	backOffice  types.Actor
	fieldWorker types.Actor
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.Migrate(gormDB); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	log := logger.NewNop()
	env := &testEnv{
		db:                gormDB,
		photoStore:        newFakePhotoStore(),
		materialRepo:      repos.NewMaterialRepo(gormDB, log),
		stockMovementRepo: repos.NewStockMovementRepo(gormDB, log),
		demandRepo:        repos.NewDemandRepo(gormDB, log),
		stepRepo:          repos.NewStepRepo(gormDB, log),
		pendingUpdateRepo: repos.NewPendingUpdateRepo(gormDB, log),
		photoRepo:         repos.NewPhotoRepo(gormDB, log),
		noteRepo:          repos.NewNoteRepo(gormDB, log),
		admin:             types.Actor{ID: uuid.New(), Role: types.RoleAdmin},
		backOffice:        types.Actor{ID: uuid.New(), Role: types.RoleBackOffice},
		fieldWorker:       types.Actor{ID: uuid.New(), Role: types.RoleFieldWorker},
	}
	projectRepo := repos.NewProjectRepo(gormDB, log)
	auditLogRepo := repos.NewAuditLogRepo(gormDB, log)

	env.audit = NewAuditService(gormDB, log, auditLogRepo)
	env.inventory = NewInventoryService(gormDB, log, env.materialRepo, env.demandRepo, env.stockMovementRepo, env.audit)
	env.reservation = NewReservationService(gormDB, log, env.materialRepo, env.demandRepo)
	env.demands = NewDemandService(gormDB, log, env.stepRepo, env.demandRepo, env.inventory, env.audit)
	env.steps = NewStepService(gormDB, log, env.stepRepo, env.inventory, env.audit)
	env.projects = NewProjectService(gormDB, log, projectRepo, env.stepRepo, env.noteRepo, env.audit)
	env.queue = NewUpdateQueueService(gormDB, log, env.stepRepo, env.pendingUpdateRepo, env.photoRepo, env.photoStore, env.audit)
	env.approvals = NewApprovalService(
		gormDB, log,
		env.pendingUpdateRepo, env.stepRepo, projectRepo, env.demandRepo,
		env.noteRepo, env.photoRepo, env.photoStore, env.inventory, env.audit,
	)
	return env
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

func (e *testEnv) createMaterial(t *testing.T, name, unit, stock string) *types.Material {
	t.Helper()
	material, err := e.inventory.CreateMaterial(context.Background(), e.backOffice, name, unit, dec(t, stock))
	if err != nil {
		t.Fatalf("create material %q: %v", name, err)
	}
	return material
}

// seedStep creates a project with a single step and forces the step into the
// given status without booking anything.
func (e *testEnv) seedStep(t *testing.T, status types.StepStatus) *types.Step {
	t.Helper()
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	project, err := e.projects.CreateProject(context.Background(), e.admin, CreateProjectInput{
		OrderNumber:  "SB-" + uuid.NewString()[:8],
		CustomerName: "Familie Huber",
		Title:        "Badsanierung",
		PlannedStart: start,
		PlannedEnd:   end,
		City:         "Muenchen",
		Steps: []CreateStepInput{
			{Title: "Fliesen legen", StartDate: start, EndDate: end},
		},
	})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	step := project.Steps[0]
	if status != types.StepStatusOpen {
		err := e.db.Model(&types.Step{}).Where("id = ?", step.ID).Update("status", status).Error
		if err != nil {
			t.Fatalf("force step status: %v", err)
		}
		step.Status = status
	}
	return &step
}

func (e *testEnv) addDemand(t *testing.T, stepID, materialID uuid.UUID, quantity string) *types.MaterialDemand {
	t.Helper()
	id := materialID
	demand, err := e.demands.AddDemand(context.Background(), e.backOffice, stepID, AddDemandInput{
		MaterialID: &id,
		Quantity:   dec(t, quantity),
	})
	if err != nil {
		t.Fatalf("add demand: %v", err)
	}
	return demand
}

func (e *testEnv) materialStock(t *testing.T, id uuid.UUID) decimal.Decimal {
	t.Helper()
	material, err := e.materialRepo.GetByID(context.Background(), nil, id)
	if err != nil {
		t.Fatalf("load material: %v", err)
	}
	return material.Stock
}

func (e *testEnv) stepStatus(t *testing.T, id uuid.UUID) types.StepStatus {
	t.Helper()
	step, err := e.stepRepo.GetByID(context.Background(), nil, id)
	if err != nil {
		t.Fatalf("load step: %v", err)
	}
	return step.Status
}
