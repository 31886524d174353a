package services

import (
	"context"
	"testing"

	"github.com/smartbuilders/bautrack-backend/internal/apierr"
	"github.com/smartbuilders/bautrack-backend/internal/types"
)

func TestTransitionToDone_BooksEveryDemandLink(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tiles := env.createMaterial(t, "Fliesen 60x60", "piece", "100")
	adhesive := env.createMaterial(t, "Flexkleber", "sack", "8")
	step := env.seedStep(t, types.StepStatusInProgress)
	env.addDemand(t, step.ID, tiles.ID, "20")
	env.addDemand(t, step.ID, adhesive.ID, "3")

	updated, err := env.steps.TransitionStepStatus(ctx, env.backOffice, step.ID, types.StepStatusDone, nil)
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	if updated.Status != types.StepStatusDone {
		t.Fatalf("status = %s, want done", updated.Status)
	}
	if !env.materialStock(t, tiles.ID).Equal(dec(t, "80")) {
		t.Fatalf("tiles stock = %s, want 80", env.materialStock(t, tiles.ID))
	}
	if !env.materialStock(t, adhesive.ID).Equal(dec(t, "5")) {
		t.Fatalf("adhesive stock = %s, want 5", env.materialStock(t, adhesive.ID))
	}
}

func TestDoneToggle_IsNetZeroOnStock(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	material := env.createMaterial(t, "Estrichbeton", "kg", "50")
	step := env.seedStep(t, types.StepStatusInProgress)
	env.addDemand(t, step.ID, material.ID, "12")

	if _, err := env.steps.TransitionStepStatus(ctx, env.backOffice, step.ID, types.StepStatusDone, nil); err != nil {
		t.Fatalf("to done: %v", err)
	}
	if _, err := env.steps.TransitionStepStatus(ctx, env.backOffice, step.ID, types.StepStatusInProgress, nil); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if !env.materialStock(t, material.ID).Equal(dec(t, "50")) {
		t.Fatalf("stock after toggle = %s, want 50", env.materialStock(t, material.ID))
	}

	// Closing again books exactly once more.
	if _, err := env.steps.TransitionStepStatus(ctx, env.backOffice, step.ID, types.StepStatusDone, nil); err != nil {
		t.Fatalf("to done again: %v", err)
	}
	if !env.materialStock(t, material.ID).Equal(dec(t, "38")) {
		t.Fatalf("stock after second close = %s, want 38", env.materialStock(t, material.ID))
	}
}

func TestSameStatusSave_DoesNotRebook(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	material := env.createMaterial(t, "Abdichtband", "m", "30")
	step := env.seedStep(t, types.StepStatusInProgress)
	env.addDemand(t, step.ID, material.ID, "10")

	if _, err := env.steps.TransitionStepStatus(ctx, env.backOffice, step.ID, types.StepStatusDone, nil); err != nil {
		t.Fatalf("to done: %v", err)
	}
	progress := 100
	updated, err := env.steps.TransitionStepStatus(ctx, env.backOffice, step.ID, types.StepStatusDone, &progress)
	if err != nil {
		t.Fatalf("save done step: %v", err)
	}
	if updated.Progress != 100 {
		t.Fatalf("progress = %d, want 100", updated.Progress)
	}
	if !env.materialStock(t, material.ID).Equal(dec(t, "20")) {
		t.Fatalf("stock = %s, want 20 (booked once)", env.materialStock(t, material.ID))
	}
}

func TestTransitionToDone_InsufficientStockRollsBack(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	material := env.createMaterial(t, "Silikon grau", "tube", "0")
	step := env.seedStep(t, types.StepStatusInProgress)
	env.addDemand(t, step.ID, material.ID, "3")

	_, err := env.steps.TransitionStepStatus(ctx, env.backOffice, step.ID, types.StepStatusDone, nil)
	if !apierr.Is(err, apierr.CodeInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
	if got := env.stepStatus(t, step.ID); got != types.StepStatusInProgress {
		t.Fatalf("step status = %s, want in_progress after rollback", got)
	}
	if !env.materialStock(t, material.ID).Equal(dec(t, "0")) {
		t.Fatalf("stock = %s, want 0 untouched", env.materialStock(t, material.ID))
	}
}

func TestTransitionStepStatus_RequiresEditCapability(t *testing.T) {
	env := newTestEnv(t)
	step := env.seedStep(t, types.StepStatusOpen)

	_, err := env.steps.TransitionStepStatus(context.Background(), env.fieldWorker, step.ID, types.StepStatusInProgress, nil)
	if !apierr.Is(err, apierr.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}
