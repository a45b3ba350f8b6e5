package cart

import (
	"testing"

	model "storefront.GO/model/cart"
)

func engine(amount int64) *ThresholdEngine {
	return NewThresholdEngine(ThresholdConfig{
		Amount:          amount,
		FreeVariantID:   "40900",
		ShippingAmount:  amount * 2,
		ShowProgressBar: true,
	})
}

func snapWithTotal(total int64, items ...model.LineItem) *model.Snapshot {
	count := 0
	for _, it := range items {
		count += it.Quantity
	}
	return &model.Snapshot{Items: items, ItemCount: count, TotalValue: total}
}

func freeProductLine() model.LineItem {
	return model.LineItem{Key: "free:1", VariantID: "40900", ProductID: "9000", Quantity: 1, Price: 0}
}

func TestThreshold_CrossedAddsFree(t *testing.T) {
	e := engine(5000)
	snap := snapWithTotal(5500, model.LineItem{Key: "a", VariantID: "1", Quantity: 1})
	if got := e.Evaluate(snap); got != ActionAddFree {
		t.Errorf("Evaluate = %v, want ActionAddFree", got)
	}
}

func TestThreshold_Inclusive(t *testing.T) {
	// Exactly at the threshold counts as reached.
	e := engine(5000)
	snap := snapWithTotal(5000, model.LineItem{Key: "a", VariantID: "1", Quantity: 1})
	if got := e.Evaluate(snap); got != ActionAddFree {
		t.Errorf("Evaluate at exact threshold = %v, want ActionAddFree", got)
	}
}

func TestThreshold_DuplicateGuard(t *testing.T) {
	e := engine(5000)
	snap := snapWithTotal(6000, freeProductLine())
	if got := e.Evaluate(snap); got != ActionNone {
		t.Errorf("Evaluate with free line present = %v, want ActionNone", got)
	}
}

func TestThreshold_DropRemovesFree(t *testing.T) {
	e := engine(5000)
	snap := snapWithTotal(4000, freeProductLine())
	if got := e.Evaluate(snap); got != ActionRemoveFree {
		t.Errorf("Evaluate = %v, want ActionRemoveFree", got)
	}
}

func TestThreshold_BelowWithoutFreeIsNone(t *testing.T) {
	e := engine(5000)
	snap := snapWithTotal(4000, model.LineItem{Key: "a", VariantID: "1", Quantity: 1})
	if got := e.Evaluate(snap); got != ActionNone {
		t.Errorf("Evaluate = %v, want ActionNone", got)
	}
}

func TestThreshold_DisabledByKit(t *testing.T) {
	e := NewThresholdEngine(ThresholdConfig{
		Amount:          5000,
		FreeVariantID:   "40900",
		ShowProgressBar: true,
		KitActive:       true,
	})
	if e.Enabled() {
		t.Fatal("engine must be disabled while the kit owns gift lines")
	}
	snap := snapWithTotal(9000)
	if got := e.Evaluate(snap); got != ActionNone {
		t.Errorf("disabled engine Evaluate = %v, want ActionNone", got)
	}
}

func TestThreshold_DisabledWithoutVariant(t *testing.T) {
	e := NewThresholdEngine(ThresholdConfig{Amount: 5000, ShowProgressBar: true})
	if e.Enabled() {
		t.Error("no configured variant: engine must be disabled")
	}
}

func TestThreshold_DisabledWithoutProgressBar(t *testing.T) {
	e := NewThresholdEngine(ThresholdConfig{Amount: 5000, FreeVariantID: "40900"})
	if e.Enabled() {
		t.Error("progress bar off: engine must be disabled")
	}
}

func TestRecolor_GiftStraddle(t *testing.T) {
	e := engine(5000)

	d := e.Recolor(4500, 5500)
	if !d.GiftOn || d.GiftOff {
		t.Errorf("crossing up: %+v", d)
	}

	d = e.Recolor(5500, 4500)
	if !d.GiftOff || d.GiftOn {
		t.Errorf("crossing down: %+v", d)
	}

	d = e.Recolor(5500, 6000)
	if !d.IsZero() {
		t.Errorf("no straddle: %+v", d)
	}
}

func TestRecolor_ShippingStraddle(t *testing.T) {
	e := engine(5000) // shipping threshold 10000

	d := e.Recolor(9000, 11000)
	if !d.ShippingOn {
		t.Errorf("shipping crossing up: %+v", d)
	}
	if d.GiftOn || d.GiftOff {
		t.Errorf("gift already earned on both sides, flags: %+v", d)
	}

	d = e.Recolor(11000, 9000)
	if !d.ShippingOff {
		t.Errorf("shipping crossing down: %+v", d)
	}
}

func TestRecolor_BothThresholdsAtOnce(t *testing.T) {
	e := engine(5000)
	d := e.Recolor(4000, 12000)
	if !d.GiftOn || !d.ShippingOn {
		t.Errorf("both straddled: %+v", d)
	}
}
