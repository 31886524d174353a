package services

import (
	"context"
	"testing"

	"github.com/smartbuilders/bautrack-backend/internal/apierr"
	"github.com/smartbuilders/bautrack-backend/internal/types"
)

func TestAuditTrail_RecordsLifecycleActions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	material := env.createMaterial(t, "Fliesen 30x30", "piece", "10")
	step := env.seedStep(t, types.StepStatusInProgress)
	env.addDemand(t, step.ID, material.ID, "2")
	if _, err := env.steps.TransitionStepStatus(ctx, env.backOffice, step.ID, types.StepStatusDone, nil); err != nil {
		t.Fatalf("to done: %v", err)
	}

	entries, err := env.audit.List(ctx, env.backOffice, 50)
	if err != nil {
		t.Fatalf("list audit: %v", err)
	}
	seen := map[string]bool{}
	for _, entry := range entries {
		seen[entry.Action] = true
	}
	for _, action := range []string{
		types.AuditMaterialCreated,
		types.AuditProjectCreated,
		types.AuditDemandAdded,
		types.AuditStepTransitioned,
	} {
		if !seen[action] {
			t.Fatalf("action %s missing from audit trail", action)
		}
	}
}

func TestAuditList_ScopedByProjectAndGated(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	stepA := env.seedStep(t, types.StepStatusOpen)
	env.seedStep(t, types.StepStatusOpen)

	scoped, err := env.audit.ListByProject(ctx, env.backOffice, stepA.ProjectID, 50)
	if err != nil {
		t.Fatalf("scoped list: %v", err)
	}
	for _, entry := range scoped {
		if entry.ProjectID == nil || *entry.ProjectID != stepA.ProjectID {
			t.Fatalf("entry for foreign project in scoped list")
		}
	}
	if len(scoped) == 0 {
		t.Fatalf("expected at least the project_created entry")
	}

	if _, err := env.audit.List(ctx, env.fieldWorker, 50); !apierr.Is(err, apierr.CodeForbidden) {
		t.Fatalf("field worker reading audit: expected forbidden, got %v", err)
	}
}
