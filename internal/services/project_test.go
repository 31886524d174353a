package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/smartbuilders/bautrack-backend/internal/apierr"
	"github.com/smartbuilders/bautrack-backend/internal/types"
)

func TestCreateProject_ValidatesDatesAndSteps(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	input := CreateProjectInput{
		OrderNumber:  "SB-1001",
		CustomerName: "Familie Maier",
		Title:        "Kueche",
		PlannedStart: start,
		PlannedEnd:   start.AddDate(0, 0, -1),
	}
	if _, err := env.projects.CreateProject(ctx, env.admin, input); !apierr.Is(err, apierr.CodeValidationFailed) {
		t.Fatalf("end before start: expected validation error, got %v", err)
	}

	input.PlannedEnd = start.AddDate(0, 2, 0)
	input.Steps = []CreateStepInput{{Title: "", StartDate: start, EndDate: start}}
	if _, err := env.projects.CreateProject(ctx, env.admin, input); !apierr.Is(err, apierr.CodeValidationFailed) {
		t.Fatalf("untitled step: expected validation error, got %v", err)
	}
}

func TestCreateProject_NumbersStepsInOrder(t *testing.T) {
	env := newTestEnv(t)
	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	project, err := env.projects.CreateProject(context.Background(), env.admin, CreateProjectInput{
		OrderNumber:  "SB-1002",
		CustomerName: "Familie Berg",
		Title:        "Dachausbau",
		PlannedStart: start,
		PlannedEnd:   start.AddDate(0, 3, 0),
		Steps: []CreateStepInput{
			{Title: "Abriss", StartDate: start, EndDate: start.AddDate(0, 1, 0)},
			{Title: "Daemmung", StartDate: start.AddDate(0, 1, 0), EndDate: start.AddDate(0, 2, 0)},
			{Title: "Ausbau", StartDate: start.AddDate(0, 2, 0), EndDate: start.AddDate(0, 3, 0)},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(project.Steps) != 3 {
		t.Fatalf("steps = %d, want 3", len(project.Steps))
	}
	for i, step := range project.Steps {
		if step.OrderIndex != i+1 {
			t.Fatalf("step %d order index = %d", i, step.OrderIndex)
		}
		if step.Status != types.StepStatusOpen {
			t.Fatalf("new step status = %s, want open", step.Status)
		}
	}
}

func TestListProjects_AggregatesProgress(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	project, err := env.projects.CreateProject(ctx, env.admin, CreateProjectInput{
		OrderNumber:  "SB-1003",
		CustomerName: "Familie Wolf",
		Title:        "Garage",
		PlannedStart: start,
		PlannedEnd:   start.AddDate(0, 2, 0),
		City:         "Augsburg",
		Steps: []CreateStepInput{
			{Title: "Fundament", StartDate: start, EndDate: start.AddDate(0, 1, 0)},
			{Title: "Mauern", StartDate: start.AddDate(0, 1, 0), EndDate: start.AddDate(0, 2, 0)},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	progress := 100
	if _, err := env.steps.TransitionStepStatus(ctx, env.backOffice, project.Steps[0].ID, types.StepStatusDone, &progress); err != nil {
		t.Fatalf("close step: %v", err)
	}

	summaries, err := env.projects.ListProjects(ctx, env.fieldWorker)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var summary *ProjectSummary
	for i := range summaries {
		if summaries[i].ID == project.ID {
			summary = &summaries[i]
		}
	}
	if summary == nil {
		t.Fatalf("project missing from overview")
	}
	if summary.TotalSteps != 2 || summary.FinishedSteps != 1 {
		t.Fatalf("steps = %d/%d, want 1/2 finished", summary.FinishedSteps, summary.TotalSteps)
	}
	if summary.Progress != 50 {
		t.Fatalf("progress = %d, want 50", summary.Progress)
	}
	if summary.City != "Augsburg" {
		t.Fatalf("city = %q", summary.City)
	}
}

func TestGetProject_NotFound(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.projects.GetProject(context.Background(), env.fieldWorker, uuid.New())
	if !apierr.Is(err, apierr.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCreateNote_StaffDirectPath(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	step := env.seedStep(t, types.StepStatusOpen)

	note, err := env.projects.CreateNote(ctx, env.backOffice, step.ID, "Kunde wünscht helle Fugen.", true)
	if err != nil {
		t.Fatalf("create note: %v", err)
	}
	if !note.CustomerVisible {
		t.Fatalf("staff note visibility not honored")
	}

	if _, err := env.projects.CreateNote(ctx, env.fieldWorker, step.ID, "direct", false); !apierr.Is(err, apierr.CodeForbidden) {
		t.Fatalf("field worker direct note: expected forbidden, got %v", err)
	}
}
