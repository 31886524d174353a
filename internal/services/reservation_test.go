package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/smartbuilders/bautrack-backend/internal/types"
)

func findReservation(t *testing.T, report []MaterialReservation, materialID uuid.UUID) *MaterialReservation {
	t.Helper()
	for i := range report {
		if report[i].MaterialID == materialID {
			return &report[i]
		}
	}
	return nil
}

func TestComputeReservations_ShortfallFormula(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tiles := env.createMaterial(t, "Fliesen 30x60", "piece", "100")
	adhesive := env.createMaterial(t, "Flexkleber", "sack", "5")
	step := env.seedStep(t, types.StepStatusInProgress)
	env.addDemand(t, step.ID, tiles.ID, "20")
	env.addDemand(t, step.ID, adhesive.ID, "10")

	report, err := env.reservation.ComputeReservations(ctx, env.fieldWorker, nil)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}

	row := findReservation(t, report, tiles.ID)
	if row == nil {
		t.Fatalf("tiles missing from report")
	}
	if !row.Demand.Equal(dec(t, "20")) || !row.Shortfall.IsZero() {
		t.Fatalf("tiles demand=%s shortfall=%s, want 20/0", row.Demand, row.Shortfall)
	}

	row = findReservation(t, report, adhesive.ID)
	if row == nil {
		t.Fatalf("adhesive missing from report")
	}
	if !row.Demand.Equal(dec(t, "10")) || !row.Shortfall.Equal(dec(t, "5")) {
		t.Fatalf("adhesive demand=%s shortfall=%s, want 10/5", row.Demand, row.Shortfall)
	}
}

func TestComputeReservations_IgnoresDoneSteps(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	material := env.createMaterial(t, "Grundierung", "l", "2")
	open := env.seedStep(t, types.StepStatusOpen)
	env.addDemand(t, open.ID, material.ID, "4")

	done := env.seedStep(t, types.StepStatusInProgress)
	env.addDemand(t, done.ID, material.ID, "6")
	if _, err := env.steps.TransitionStepStatus(ctx, env.backOffice, done.ID, types.StepStatusDone, nil); err == nil {
		t.Fatalf("expected insufficient stock closing the heavy step")
	}
	// Bring stock up so the step can actually close, then recompute.
	if _, err := env.inventory.AdjustStock(ctx, env.backOffice, material.ID, dec(t, "10")); err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if _, err := env.steps.TransitionStepStatus(ctx, env.backOffice, done.ID, types.StepStatusDone, nil); err != nil {
		t.Fatalf("to done: %v", err)
	}

	report, err := env.reservation.ComputeReservations(ctx, env.backOffice, nil)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	row := findReservation(t, report, material.ID)
	if row == nil {
		t.Fatalf("material missing from report")
	}
	// Only the open step's 4 counts; the done step's 6 is already booked.
	if !row.Demand.Equal(dec(t, "4")) {
		t.Fatalf("demand = %s, want 4", row.Demand)
	}
	if !row.Stock.Equal(dec(t, "6")) {
		t.Fatalf("stock = %s, want 6", row.Stock)
	}
	if !row.Shortfall.IsZero() {
		t.Fatalf("shortfall = %s, want 0", row.Shortfall)
	}
}

func TestComputeReservations_GlobalCoversCatalogProjectScopedDoesNot(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	demanded := env.createMaterial(t, "Fugenmasse", "kg", "1")
	idle := env.createMaterial(t, "Kabelkanal", "m", "7")
	step := env.seedStep(t, types.StepStatusOpen)
	env.addDemand(t, step.ID, demanded.ID, "3")

	global, err := env.reservation.ComputeReservations(ctx, env.backOffice, nil)
	if err != nil {
		t.Fatalf("global: %v", err)
	}
	if findReservation(t, global, idle.ID) == nil {
		t.Fatalf("global report must list zero-demand materials")
	}

	scoped, err := env.reservation.ComputeReservations(ctx, env.backOffice, &step.ProjectID)
	if err != nil {
		t.Fatalf("scoped: %v", err)
	}
	if findReservation(t, scoped, idle.ID) != nil {
		t.Fatalf("project report must only list demanded materials")
	}
	row := findReservation(t, scoped, demanded.ID)
	if row == nil || !row.Shortfall.Equal(dec(t, "2")) {
		t.Fatalf("scoped demanded row = %+v, want shortfall 2", row)
	}
}

func TestComputeReservations_NegativeStockCountsAsShortfall(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	material := env.createMaterial(t, "Dichtmasse", "kg", "1")
	if _, err := env.inventory.AdjustStock(ctx, env.backOffice, material.ID, dec(t, "-3")); err != nil {
		t.Fatalf("adjust: %v", err)
	}

	report, err := env.reservation.ComputeReservations(ctx, env.backOffice, nil)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	row := findReservation(t, report, material.ID)
	if row == nil {
		t.Fatalf("material missing from report")
	}
	// demand 0, stock -2: two units must still be reordered.
	if !row.Shortfall.Equal(dec(t, "2")) {
		t.Fatalf("shortfall = %s, want 2", row.Shortfall)
	}
}
