package services_test

import (
	"context"
	"testing"

	"tagflow/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithTaskID(ctx, 42)
	ctx = services.WithUserID(ctx, 7)
	ctx = services.WithRequestID(ctx, "req-123")

	if id, ok := services.TaskIDFromContext(ctx); !ok || id != 42 {
		t.Fatalf("unexpected task id: %v %v", id, ok)
	}
	if id, ok := services.UserIDFromContext(ctx); !ok || id != 7 {
		t.Fatalf("unexpected user id: %v %v", id, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRequestID(ctx, "")
	ctx = services.WithUserID(ctx, 0)
	if _, ok := services.RequestIDFromContext(ctx); ok {
		t.Fatal("expected no request id value")
	}
	if _, ok := services.UserIDFromContext(ctx); ok {
		t.Fatal("expected no user id value")
	}
}

func TestIDKeysDoNotCollide(t *testing.T) {
	ctx := services.WithTaskID(context.Background(), 5)
	if _, ok := services.UserIDFromContext(ctx); ok {
		t.Fatal("task id leaked into user id lookup")
	}
	if _, ok := services.TaskIDFromContext(nil); ok {
		t.Fatal("expected no task id from nil context")
	}
}
