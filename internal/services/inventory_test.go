package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/smartbuilders/bautrack-backend/internal/apierr"
)

func TestAdjustStock_AppliesSignedDeltaAndRecordsMovement(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	material := env.createMaterial(t, "Fliesen 30x30", "piece", "10")

	cases := []struct {
		name  string
		delta string
		want  string
	}{
		{"positive delta", "5", "15"},
		{"negative delta below zero", "-17", "-2"},
		{"zero delta", "0", "-2"},
		{"fractional delta", "0.5", "-1.5"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			updated, err := env.inventory.AdjustStock(ctx, env.backOffice, material.ID, dec(t, tc.delta))
			if err != nil {
				t.Fatalf("adjust: %v", err)
			}
			if !updated.Stock.Equal(dec(t, tc.want)) {
				t.Fatalf("stock = %s, want %s", updated.Stock, tc.want)
			}
		})
	}

	// Conservation: stock must equal the sum of all recorded deltas.
	movements, err := env.inventory.ListMovements(ctx, env.backOffice, material.ID)
	if err != nil {
		t.Fatalf("list movements: %v", err)
	}
	sum := decimal.Zero
	for _, m := range movements {
		sum = sum.Add(m.Delta)
	}
	if !sum.Equal(env.materialStock(t, material.ID)) {
		t.Fatalf("movement sum %s != stock %s", sum, env.materialStock(t, material.ID))
	}
}

func TestAdjustStock_RequiresEditCapability(t *testing.T) {
	env := newTestEnv(t)
	material := env.createMaterial(t, "Silikon", "tube", "3")

	_, err := env.inventory.AdjustStock(context.Background(), env.fieldWorker, material.ID, dec(t, "1"))
	if !apierr.Is(err, apierr.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if !env.materialStock(t, material.ID).Equal(dec(t, "3")) {
		t.Fatalf("stock changed despite forbidden call")
	}
}

func TestSetStock_WritesCorrectionDelta(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	material := env.createMaterial(t, "Estrich", "kg", "10")

	updated, err := env.inventory.SetStock(ctx, env.backOffice, material.ID, dec(t, "4"))
	if err != nil {
		t.Fatalf("set stock: %v", err)
	}
	if !updated.Stock.Equal(dec(t, "4")) {
		t.Fatalf("stock = %s, want 4", updated.Stock)
	}

	movements, err := env.inventory.ListMovements(ctx, env.backOffice, material.ID)
	if err != nil {
		t.Fatalf("list movements: %v", err)
	}
	var correction *decimal.Decimal
	for _, m := range movements {
		if m.Reason == "correction" {
			d := m.Delta
			correction = &d
		}
	}
	if correction == nil {
		t.Fatalf("no correction movement recorded")
	}
	if !correction.Equal(dec(t, "-6")) {
		t.Fatalf("correction delta = %s, want -6", correction)
	}
}

func TestSetStock_RejectsNegativeValue(t *testing.T) {
	env := newTestEnv(t)
	material := env.createMaterial(t, "Grundierung", "l", "2")

	_, err := env.inventory.SetStock(context.Background(), env.backOffice, material.ID, dec(t, "-1"))
	if !apierr.Is(err, apierr.CodeValidationFailed) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateMaterial_ValidatesInput(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.inventory.CreateMaterial(ctx, env.backOffice, "", "piece", dec(t, "0")); !apierr.Is(err, apierr.CodeValidationFailed) {
		t.Fatalf("empty name: expected validation error, got %v", err)
	}
	if _, err := env.inventory.CreateMaterial(ctx, env.backOffice, "Kleber", "sack", dec(t, "-5")); !apierr.Is(err, apierr.CodeValidationFailed) {
		t.Fatalf("negative stock: expected validation error, got %v", err)
	}
	if _, err := env.inventory.CreateMaterial(ctx, env.fieldWorker, "Kleber", "sack", dec(t, "5")); !apierr.Is(err, apierr.CodeForbidden) {
		t.Fatalf("field worker: expected forbidden, got %v", err)
	}
}

func TestDeleteMaterial_RemovesDemandLinks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	material := env.createMaterial(t, "Fugenmasse", "kg", "20")
	step := env.seedStep(t, "in_progress")
	env.addDemand(t, step.ID, material.ID, "5")

	if err := env.inventory.DeleteMaterial(ctx, env.backOffice, material.ID); err != nil {
		t.Fatalf("delete material: %v", err)
	}

	demands, err := env.demandRepo.GetByStepID(ctx, nil, step.ID)
	if err != nil {
		t.Fatalf("list demands: %v", err)
	}
	if len(demands) != 0 {
		t.Fatalf("expected no demand links after material delete, got %d", len(demands))
	}
}
