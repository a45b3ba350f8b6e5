package cart

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"storefront.GO/core/events"
	model "storefront.GO/model/cart"
)

type fakeNotes struct {
	note string
	err  error
}

func (n *fakeNotes) UpdateNote(ctx context.Context, note string) error {
	if n.err != nil {
		return n.err
	}
	n.note = note
	return nil
}

func testControls(t *testing.T, fc *fakeClient) (*LineItemControls, *Controller, *recordingView) {
	t.Helper()
	ctrl, view, _ := testController(t, fc, ThresholdConfig{})
	return NewLineItemControls(fc, &fakeNotes{}, ctrl), ctrl, view
}

func TestLineItems_UpdateQuantity(t *testing.T) {
	fc := &fakeClient{}
	fc.onUpdate = func(updates map[string]int) *model.Snapshot {
		return snapWithTotal(4000, model.LineItem{Key: "a", VariantID: "1", ProductID: "10", Quantity: 2})
	}
	controls, ctrl, _ := testControls(t, fc)

	snap, err := controls.UpdateQuantity(context.Background(), "a", 2)
	if err != nil {
		t.Fatalf("UpdateQuantity: %v", err)
	}
	if ctrl.Last() != snap {
		t.Error("snapshot not applied to controller")
	}
	if q, ok := controls.LastGood("a"); !ok || q != 2 {
		t.Errorf("LastGood = %d,%t, want 2,true", q, ok)
	}
	if controls.Loading("a") {
		t.Error("loading lock still held after success")
	}
}

func TestLineItems_RejectsNegativeQuantity(t *testing.T) {
	fc := &fakeClient{}
	controls, _, _ := testControls(t, fc)

	if _, err := controls.UpdateQuantity(context.Background(), "a", -1); err == nil {
		t.Fatal("negative quantity must be rejected")
	}
	if len(fc.updateBatches()) != 0 {
		t.Error("no request should be issued for invalid input")
	}
}

func TestLineItems_NetworkErrorLeavesStateUntouched(t *testing.T) {
	fc := &fakeClient{}
	fc.onUpdate = func(updates map[string]int) *model.Snapshot {
		return snapWithTotal(2000, model.LineItem{Key: "a", VariantID: "1", ProductID: "10", Quantity: 1})
	}
	controls, ctrl, view := testControls(t, fc)

	if _, err := controls.UpdateQuantity(context.Background(), "a", 1); err != nil {
		t.Fatalf("seed update: %v", err)
	}
	seeded := ctrl.Last()
	callsBefore := len(view.callLog())

	var lineErr *events.Event
	ctrl.Bus().Subscribe(events.TopicLineError, func(e events.Event) { lineErr = &e })

	fc.mu.Lock()
	fc.failNext = errors.New("dial tcp: refused")
	fc.mu.Unlock()

	_, err := controls.UpdateQuantity(context.Background(), "a", 5)
	if err == nil {
		t.Fatal("transport failure must propagate")
	}
	if ctrl.Last() != seeded {
		t.Error("rendered state changed despite the failure")
	}
	if len(view.callLog()) != callsBefore {
		t.Error("view touched despite the failure")
	}
	if lineErr == nil || lineErr.Data["message"] != "cart could not be updated" {
		t.Errorf("line error = %+v, want generic message", lineErr)
	}
	if controls.Loading("a") {
		t.Error("loading lock leaked on the error path")
	}
}

func TestLineItems_InBandErrorRevertsWithoutSideEffects(t *testing.T) {
	// Server rejects the quantity ("only 2 available"): the event carries the
	// server message, the controller never sees the snapshot and no gift
	// reconciliation fires.
	fc := &fakeClient{}
	fc.onUpdate = func(updates map[string]int) *model.Snapshot {
		return snapWithTotal(5000, mainLine("7001", 2), giftLine("g1", "7001", 2))
	}
	controls, ctrl, _ := testControls(t, fc)

	if _, err := controls.UpdateQuantity(context.Background(), mainLine("7001", 2).Key, 2); err != nil {
		t.Fatalf("seed update: %v", err)
	}
	seeded := ctrl.Last()
	batchesBefore := len(fc.updateBatches())

	var lineErr *events.Event
	ctrl.Bus().Subscribe(events.TopicLineError, func(e events.Event) { lineErr = &e })

	fc.mu.Lock()
	fc.onUpdate = func(updates map[string]int) *model.Snapshot {
		return &model.Snapshot{Errors: map[string]string{"quantity": "only 2 available"}}
	}
	fc.mu.Unlock()

	snap, err := controls.UpdateQuantity(context.Background(), mainLine("7001", 2).Key, 99)
	if err != nil {
		t.Fatalf("in-band rejection is not a Go error: %v", err)
	}
	if !snap.HasErrors() {
		t.Fatal("expected error snapshot")
	}
	if lineErr == nil || lineErr.Data["message"] != "only 2 available" {
		t.Errorf("line error = %+v, want server message", lineErr)
	}
	if ctrl.Last() != seeded {
		t.Error("error snapshot must not be applied")
	}
	ctrl.Wait()
	// One batch for the seed, one for the rejected attempt, nothing after.
	if got := len(fc.updateBatches()); got != batchesBefore+1 {
		t.Errorf("batches = %d, want %d (no reconciliation after rejection)", got, batchesBefore+1)
	}
	if q, ok := controls.LastGood(mainLine("7001", 2).Key); !ok || q != 2 {
		t.Errorf("LastGood = %d,%t, want the pre-rejection 2,true", q, ok)
	}
	if controls.Loading(mainLine("7001", 2).Key) {
		t.Error("loading lock leaked on the rejection path")
	}
}

func TestLineItems_RemoveFiresGiftReconciliation(t *testing.T) {
	// Removing the main product leaves its gift orphaned; the controls hand the
	// mutated product id to the controller, which zeroes the gift.
	main := mainLine("7001", 2)
	gift := giftLine("g1", "7001", 2)

	fc := &fakeClient{}
	fc.onUpdate = func(updates map[string]int) *model.Snapshot {
		return snapWithTotal(5000, main, gift)
	}
	controls, ctrl, _ := testControls(t, fc)

	if _, err := controls.UpdateQuantity(context.Background(), main.Key, 2); err != nil {
		t.Fatalf("seed update: %v", err)
	}

	fc.mu.Lock()
	fc.onUpdate = func(updates map[string]int) *model.Snapshot {
		if _, ok := updates[main.Key]; ok {
			s := snapWithTotal(0, gift)
			s.ItemsRemoved = []model.RemovedItem{{ProductID: "7001", Quantity: 2}}
			return s
		}
		// Reconciliation batch zeroing the gift.
		return &model.Snapshot{ItemCount: 0, TotalValue: 0}
	}
	fc.mu.Unlock()

	if _, err := controls.Remove(context.Background(), main.Key); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	ctrl.Wait()

	var giftBatch map[string]int
	for _, b := range fc.updateBatches() {
		if _, ok := b[gift.Key]; ok {
			giftBatch = b
		}
	}
	if giftBatch == nil || giftBatch[gift.Key] != 0 {
		t.Errorf("batches = %v, want one zeroing %s", fc.updateBatches(), gift.Key)
	}
	if _, ok := controls.LastGood(main.Key); ok {
		t.Error("removed line must drop its last-good entry")
	}
}

func TestLineItems_UpdateNote(t *testing.T) {
	fc := &fakeClient{}
	ctrl, _, _ := testController(t, fc, ThresholdConfig{})
	notes := &fakeNotes{}
	controls := NewLineItemControls(fc, notes, ctrl)

	if err := controls.UpdateNote(context.Background(), "leave at door"); err != nil {
		t.Fatalf("UpdateNote: %v", err)
	}
	if notes.note != "leave at door" {
		t.Errorf("note = %q", notes.note)
	}
	if len(fc.updateBatches()) != 0 {
		t.Error("note updates must not touch line items")
	}

	notes.err = fmt.Errorf("boom")
	if err := controls.UpdateNote(context.Background(), "x"); err == nil {
		t.Error("note failure must propagate")
	}
}

func TestLineItems_UpdateNoteUnsupported(t *testing.T) {
	fc := &fakeClient{}
	ctrl, _, _ := testController(t, fc, ThresholdConfig{})
	controls := NewLineItemControls(fc, nil, ctrl)

	if err := controls.UpdateNote(context.Background(), "x"); err == nil {
		t.Error("nil note client must error, not panic")
	}
}
