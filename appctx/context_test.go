package appctx

import (
	"context"
	"testing"
)

func TestSetAndGet(t *testing.T) {
	ctx := Set(context.Background(), ContextKeyUsername, "aaron")
	ctx = Set(ctx, ContextKeyUserId, 7)

	if v, ok := GetString(ctx, ContextKeyUsername); !ok || v != "aaron" {
		t.Errorf("GetString = %q, %v", v, ok)
	}
	if v, ok := GetInt(ctx, ContextKeyUserId); !ok || v != 7 {
		t.Errorf("GetInt = %d, %v", v, ok)
	}
	// Wrong type and absent key both report not-ok.
	if _, ok := GetInt(ctx, ContextKeyUsername); ok {
		t.Error("GetInt on a string value should not be ok")
	}
	if _, ok := GetString(ctx, ContextKeyToken); ok {
		t.Error("absent key should not be ok")
	}
}
