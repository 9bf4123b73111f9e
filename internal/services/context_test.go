package services_test

import (
	"context"
	"testing"

	"makeroom/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "run-123")
	ctx = services.WithPath(ctx, "/media/clip.mp4")

	if rid, ok := services.RunIDFromContext(ctx); !ok || rid != "run-123" {
		t.Fatalf("unexpected run id: %v %v", rid, ok)
	}
	if path, ok := services.PathFromContext(ctx); !ok || path != "/media/clip.mp4" {
		t.Fatalf("unexpected path: %v %v", path, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithPath(ctx, "")
	ctx = services.WithRunID(ctx, "")
	if _, ok := services.PathFromContext(ctx); ok {
		t.Fatal("expected no path value")
	}
	if _, ok := services.RunIDFromContext(ctx); ok {
		t.Fatal("expected no run id value")
	}
}
