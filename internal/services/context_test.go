package services_test

import (
	"context"
	"testing"

	"eventsort/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "run-123")
	ctx = services.WithStage(ctx, "distance")
	ctx = services.WithEpoch(ctx, 0)

	if id, ok := services.RunIDFromContext(ctx); !ok || id != "run-123" {
		t.Fatalf("unexpected run id: %v %v", id, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "distance" {
		t.Fatalf("unexpected stage: %v %v", stage, ok)
	}
	if epoch, ok := services.EpochFromContext(ctx); !ok || epoch != 0 {
		t.Fatalf("unexpected epoch: %v %v", epoch, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithStage(ctx, "")
	ctx = services.WithRunID(ctx, "")
	if _, ok := services.StageFromContext(ctx); ok {
		t.Fatal("expected no stage value")
	}
	if _, ok := services.RunIDFromContext(ctx); ok {
		t.Fatal("expected no run id value")
	}
	if _, ok := services.EpochFromContext(ctx); ok {
		t.Fatal("expected no epoch value")
	}
}
