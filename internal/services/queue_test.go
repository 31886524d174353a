package services

import (
	"context"
	"testing"

	"github.com/smartbuilders/bautrack-backend/internal/apierr"
	"github.com/smartbuilders/bautrack-backend/internal/types"
)

func TestSubmit_ValidatesPerType(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	step := env.seedStep(t, types.StepStatusOpen)

	cases := []struct {
		name  string
		input SubmitInput
	}{
		{"status change without any change", SubmitInput{Type: types.UpdateTypeStatusChange}},
		{"empty note", SubmitInput{Type: types.UpdateTypeNote, NoteText: "   "}},
		{"photo without bytes", SubmitInput{Type: types.UpdateTypePhotoUpload}},
		{"material request without quantity", SubmitInput{Type: types.UpdateTypeMaterialRequest, MaterialName: "Kleber"}},
		{"material request without material", SubmitInput{Type: types.UpdateTypeMaterialRequest, Quantity: dec(t, "2")}},
		{"unknown type", SubmitInput{Type: types.UpdateType("GUESSWORK")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.queue.Submit(ctx, env.fieldWorker, step.ID, tc.input)
			if !apierr.Is(err, apierr.CodeValidationFailed) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestSubmit_OutOfRangeProgressRejected(t *testing.T) {
	env := newTestEnv(t)
	step := env.seedStep(t, types.StepStatusOpen)

	progress := 140
	_, err := env.queue.Submit(context.Background(), env.fieldWorker, step.ID, SubmitInput{
		Type:        types.UpdateTypeStatusChange,
		NewProgress: &progress,
	})
	if !apierr.Is(err, apierr.CodeValidationFailed) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestList_FiltersByStatusAndRequiresApprover(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	step := env.seedStep(t, types.StepStatusOpen)

	first, err := env.queue.Submit(ctx, env.fieldWorker, step.ID, SubmitInput{Type: types.UpdateTypeNote, NoteText: "one"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := env.queue.Submit(ctx, env.fieldWorker, step.ID, SubmitInput{Type: types.UpdateTypeNote, NoteText: "two"}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := env.approvals.Approve(ctx, env.backOffice, first.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}

	awaiting := types.UpdateStatusAwaiting
	updates, err := env.queue.List(ctx, env.backOffice, &awaiting)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(updates) != 1 {
		t.Fatalf("awaiting list = %d entries, want 1", len(updates))
	}

	if _, err := env.queue.List(ctx, env.fieldWorker, nil); !apierr.Is(err, apierr.CodeForbidden) {
		t.Fatalf("field worker listing the queue: expected forbidden, got %v", err)
	}
}
