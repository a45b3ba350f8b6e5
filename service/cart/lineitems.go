package cart

import (
	"context"
	"fmt"
	"sync"

	"storefront.GO/core/events"
	model "storefront.GO/model/cart"
)

// NoteAPI extends CartAPI with the note endpoint.
type NoteAPI interface {
	UpdateNote(ctx context.Context, note string) error
}

// LineItemControls is the gesture surface of the drawer: quantity steppers,
// remove buttons and the note field call into it. It owns the per-line loading
// lock and the last-known-good values used to revert rejected inputs.
type LineItemControls struct {
	client CartAPI
	notes  NoteAPI
	ctrl   *Controller

	mu       sync.Mutex
	loading  map[string]bool
	lastGood map[string]int
}

// NewLineItemControls builds the control surface. notes may be nil when the
// client does not support note updates.
func NewLineItemControls(client CartAPI, notes NoteAPI, ctrl *Controller) *LineItemControls {
	return &LineItemControls{
		client:   client,
		notes:    notes,
		ctrl:     ctrl,
		loading:  make(map[string]bool),
		lastGood: make(map[string]int),
	}
}

// Loading reports whether a line currently has a mutation in flight.
func (l *LineItemControls) Loading(lineKey string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loading[lineKey]
}

// LastGood returns the last accepted quantity for a line, used by the view to
// revert a rejected input. ok is false before the first successful update.
func (l *LineItemControls) LastGood(lineKey string) (int, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	q, ok := l.lastGood[lineKey]
	return q, ok
}

// UpdateQuantity sets a line to the given quantity; 0 removes it. The line's
// loading lock is held for the duration and released on every exit path. On an
// in-band rejection the input is reverted via a line-error event and no
// reconciliation side effects fire; otherwise the snapshot flows to the
// controller, which also schedules linked-gift correction.
func (l *LineItemControls) UpdateQuantity(ctx context.Context, lineKey string, quantity int) (*model.Snapshot, error) {
	return l.UpdateQuantityFrom(ctx, "line-items", lineKey, quantity)
}

// UpdateQuantityFrom is UpdateQuantity with an explicit event source, for
// callers outside the drawer (GraphQL, admin tooling).
func (l *LineItemControls) UpdateQuantityFrom(ctx context.Context, source, lineKey string, quantity int) (*model.Snapshot, error) {
	if quantity < 0 {
		return nil, fmt.Errorf("quantity must be >= 0, got %d", quantity)
	}

	prev := l.ctrl.Last()
	l.setLoading(lineKey, true)
	defer l.setLoading(lineKey, false)

	snap, err := l.client.UpdateLines(ctx, map[string]int{lineKey: quantity})
	if err != nil {
		// Transport or parse failure: rendered state stays untouched, the
		// message is generic.
		l.publishLineError(source, lineKey, "cart could not be updated")
		return nil, err
	}

	if snap.HasErrors() {
		l.publishLineError(source, lineKey, snap.ErrorMessage())
		return snap, nil
	}

	l.recordGood(lineKey, snap)

	trig := Trigger{Source: source, CheckFree: true}
	if prev != nil {
		trig.MainProductID = mutatedProductID(prev, snap, lineKey)
	}
	if err := l.ctrl.Apply(ctx, snap, trig); err != nil {
		return snap, err
	}
	return snap, nil
}

// Remove is a removal gesture: quantity zero.
func (l *LineItemControls) Remove(ctx context.Context, lineKey string) (*model.Snapshot, error) {
	return l.UpdateQuantity(ctx, lineKey, 0)
}

// UpdateNote stores the cart note. Note changes never touch items, so no
// reconciliation follows.
func (l *LineItemControls) UpdateNote(ctx context.Context, note string) error {
	if l.notes == nil {
		return fmt.Errorf("note updates not supported")
	}
	return l.notes.UpdateNote(ctx, note)
}

func (l *LineItemControls) setLoading(lineKey string, v bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if v {
		l.loading[lineKey] = true
	} else {
		delete(l.loading, lineKey)
	}
}

func (l *LineItemControls) recordGood(lineKey string, snap *model.Snapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	present := false
	for _, item := range snap.Items {
		l.lastGood[item.Key] = item.Quantity
		if item.Key == lineKey {
			present = true
		}
	}
	if !present {
		// Removed lines have no quantity to revert to anymore.
		delete(l.lastGood, lineKey)
	}
}

func (l *LineItemControls) publishLineError(source, lineKey, message string) {
	l.ctrl.Bus().Publish(events.Event{
		Topic:  events.TopicLineError,
		Source: source,
		Data:   map[string]string{"line": lineKey, "message": message},
	})
}

// mutatedProductID finds which product the mutation touched: the product of a
// removed line, or of the line whose quantity changed. Gift reconciliation only
// follows item changes, so quantity-neutral refreshes return "".
func mutatedProductID(prev, curr *model.Snapshot, lineKey string) string {
	for _, r := range curr.ItemsRemoved {
		if r.ProductID != "" {
			return r.ProductID
		}
	}
	for _, item := range curr.Items {
		if item.Key == lineKey {
			for _, old := range prev.Items {
				if old.Key == lineKey && old.Quantity != item.Quantity {
					return item.ProductID
				}
			}
			return item.ProductID
		}
	}
	for _, old := range prev.Items {
		if old.Key == lineKey {
			return old.ProductID
		}
	}
	return ""
}
