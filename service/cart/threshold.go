package cart

import (
	model "storefront.GO/model/cart"
)

// ThresholdAction is the side effect a snapshot refresh demands.
type ThresholdAction int

const (
	ActionNone ThresholdAction = iota
	ActionAddFree
	ActionRemoveFree
)

// ThresholdConfig configures the progress engine. All amounts are in minor
// currency units.
type ThresholdConfig struct {
	// Amount is the cart total that earns the free product. Inclusive: a total
	// exactly at the threshold counts as reached.
	Amount int64
	// FreeVariantID is the variant added when the threshold is crossed. Empty
	// disables add/remove actions entirely.
	FreeVariantID string
	// ShippingAmount is the separate free-shipping threshold used only by the
	// recolor sub-engine. 0 disables it.
	ShippingAmount int64
	// ShowProgressBar mirrors the theme setting; when off the engine is inert.
	ShowProgressBar bool
	// KitActive suppresses the engine when kit-based linked gifts own the free
	// lines, so two systems never fight over the same cart line. Resolved once
	// at construction, never re-read per mutation.
	KitActive bool
}

// ThresholdEngine decides free-product transitions from cart totals. It holds
// no cart state of its own; presence of the free line is read off each snapshot.
type ThresholdEngine struct {
	cfg     ThresholdConfig
	enabled bool
}

// NewThresholdEngine builds an engine with the enablement decision baked in.
func NewThresholdEngine(cfg ThresholdConfig) *ThresholdEngine {
	return &ThresholdEngine{
		cfg:     cfg,
		enabled: cfg.ShowProgressBar && !cfg.KitActive && cfg.FreeVariantID != "",
	}
}

// Enabled reports whether the engine performs any side effects.
func (e *ThresholdEngine) Enabled() bool { return e.enabled }

// FreeVariantID returns the configured free-product variant.
func (e *ThresholdEngine) FreeVariantID() string { return e.cfg.FreeVariantID }

// Reached reports whether a total is at or above the free-product threshold.
func (e *ThresholdEngine) Reached(total int64) bool {
	return total >= e.cfg.Amount
}

// Evaluate classifies a snapshot: add the free product when the threshold is
// reached and no free line exists (duplicate guard), remove the existing free
// line when the total drops below. Anything else is no side effect.
func (e *ThresholdEngine) Evaluate(snap *model.Snapshot) ThresholdAction {
	if !e.enabled || snap == nil {
		return ActionNone
	}
	free := snap.FindVariant(e.cfg.FreeVariantID)
	switch {
	case e.Reached(snap.TotalValue) && free == nil:
		return ActionAddFree
	case !e.Reached(snap.TotalValue) && free != nil:
		return ActionRemoveFree
	default:
		return ActionNone
	}
}

// RecolorDelta tells the view which progress icons to light or dim. It is
// presentation-only: derived from the before/after total pair, never from the
// free line's actual presence.
type RecolorDelta struct {
	GiftOn      bool
	GiftOff     bool
	ShippingOn  bool
	ShippingOff bool
}

// IsZero reports whether no icon changes.
func (d RecolorDelta) IsZero() bool {
	return !d.GiftOn && !d.GiftOff && !d.ShippingOn && !d.ShippingOff
}

// Recolor computes icon changes for totals moving from before to after. An icon
// changes only when the pair straddles its threshold.
func (e *ThresholdEngine) Recolor(before, after int64) RecolorDelta {
	var d RecolorDelta
	if e.cfg.Amount > 0 {
		if before < e.cfg.Amount && after >= e.cfg.Amount {
			d.GiftOn = true
		} else if before >= e.cfg.Amount && after < e.cfg.Amount {
			d.GiftOff = true
		}
	}
	if e.cfg.ShippingAmount > 0 {
		if before < e.cfg.ShippingAmount && after >= e.cfg.ShippingAmount {
			d.ShippingOn = true
		} else if before >= e.cfg.ShippingAmount && after < e.cfg.ShippingAmount {
			d.ShippingOff = true
		}
	}
	return d
}
