package reqid

import (
	"context"
	"testing"
)

func TestContextRoundTrip(t *testing.T) {
	ctx, id := NewContext(context.Background())
	got, ok := FromContext(ctx)
	if !ok || got != id {
		t.Fatalf("expected %s from context, got %s ok=%v", id, got, ok)
	}
	if _, ok := FromContext(context.Background()); ok {
		t.Fatalf("unexpected id in empty context")
	}
}

func TestNewContextKeepsExistingID(t *testing.T) {
	ctx, id := NewContext(context.Background())
	again, id2 := NewContext(ctx)
	if id != id2 || again != ctx {
		t.Fatalf("expected existing id %s to be reused, got %s", id, id2)
	}
}
