package registry

import (
	"context"
	"testing"
)

func TestRegistry_Register_Resolve(t *testing.T) {
	defer Unregister("cartProbe")

	Register("cartProbe", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		return map[string]string{"cart": "ok"}, nil
	})

	got, err := Resolve(context.Background(), "cartProbe", nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	m, ok := got.(map[string]string)
	if !ok || m["cart"] != "ok" {
		t.Errorf("got %v, want map[cart:ok]", got)
	}
}

func TestRegistry_Resolve_Unknown(t *testing.T) {
	_, err := Resolve(context.Background(), "nonexistent", nil)
	if err == nil {
		t.Fatal("want error for unknown extension")
	}
}

func TestRegistry_Names(t *testing.T) {
	defer Unregister("giftSweepExt")
	Register("giftSweepExt", func(context.Context, map[string]interface{}) (interface{}, error) { return nil, nil })

	names := Names()
	found := false
	for _, n := range names {
		if n == "giftSweepExt" {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("Names() = %v, want to include giftSweepExt", names)
	}
}
