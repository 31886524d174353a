package services

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/smartbuilders/bautrack-backend/internal/apierr"
	"github.com/smartbuilders/bautrack-backend/internal/logger"
	"github.com/smartbuilders/bautrack-backend/internal/repos"
	"github.com/smartbuilders/bautrack-backend/internal/types"
)

// MaterialReservation is one row of the reservation report.
type MaterialReservation struct {
	MaterialID uuid.UUID       `json:"material_id"`
	Name       string          `json:"name"`
	Unit       string          `json:"unit"`
	Stock      decimal.Decimal `json:"stock"`
	// Sum of demand link quantities on steps that are not done.
	Demand decimal.Decimal `json:"demand"`
	// What must be reordered: max(0, demand - stock).
	Shortfall decimal.Decimal `json:"shortfall"`
}

// ReservationService derives the report from current state on every call.
// Nothing here is persisted: demand shifts whenever any step's links or
// status change, and a cached copy would immediately be stale.
type ReservationService interface {
	ComputeReservations(ctx context.Context, actor types.Actor, projectID *uuid.UUID) ([]MaterialReservation, error)
}

type reservationService struct {
	db           *gorm.DB
	log          *logger.Logger
	materialRepo repos.MaterialRepo
	demandRepo   repos.DemandRepo
}

func NewReservationService(
	db *gorm.DB,
	baseLog *logger.Logger,
	materialRepo repos.MaterialRepo,
	demandRepo repos.DemandRepo,
) ReservationService {
	return &reservationService{
		db:           db,
		log:          baseLog.With("service", "ReservationService"),
		materialRepo: materialRepo,
		demandRepo:   demandRepo,
	}
}

func (s *reservationService) ComputeReservations(ctx context.Context, actor types.Actor, projectID *uuid.UUID) ([]MaterialReservation, error) {
	if err := RequireCapability(actor, types.CapabilityView); err != nil {
		return nil, err
	}

	demands, err := s.demandRepo.ListOutstanding(ctx, nil, projectID)
	if err != nil {
		return nil, apierr.Internal(err)
	}

	demandByMaterial := make(map[uuid.UUID]decimal.Decimal)
	materialByID := make(map[uuid.UUID]*types.Material)
	for _, demand := range demands {
		demandByMaterial[demand.MaterialID] = demandByMaterial[demand.MaterialID].Add(demand.Quantity)
		if demand.Material != nil {
			materialByID[demand.MaterialID] = demand.Material
		}
	}

	// The global report lists the whole catalog so zero-demand materials show
	// up with shortfall 0; a project-scoped report covers only what the
	// project's open steps demand.
	if projectID == nil {
		materials, err := s.materialRepo.List(ctx, nil)
		if err != nil {
			return nil, apierr.Internal(err)
		}
		for _, material := range materials {
			materialByID[material.ID] = material
		}
	}

	report := make([]MaterialReservation, 0, len(materialByID))
	for id, material := range materialByID {
		demand := demandByMaterial[id]
		shortfall := demand.Sub(material.Stock)
		if shortfall.IsNegative() {
			shortfall = decimal.Zero
		}
		report = append(report, MaterialReservation{
			MaterialID: id,
			Name:       material.Name,
			Unit:       material.Unit,
			Stock:      material.Stock,
			Demand:     demand,
			Shortfall:  shortfall,
		})
	}
	sort.Slice(report, func(i, j int) bool { return report[i].Name < report[j].Name })
	return report, nil
}
