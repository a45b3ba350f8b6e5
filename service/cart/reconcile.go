package cart

import (
	model "storefront.GO/model/cart"
)

// PlanReason says why a mutation plan exists.
type PlanReason string

const (
	ReasonNone           PlanReason = ""
	ReasonRemoveGifts    PlanReason = "remove-gifts"
	ReasonMirrorQuantity PlanReason = "mirror-quantity"
)

// Plan is a batch of line quantity targets keyed by line key; 0 removes the
// line. An empty plan means the cart already satisfies the gift invariants and
// no network call should be issued.
type Plan struct {
	Updates map[string]int
	Reason  PlanReason
}

// Empty reports whether the plan requires no mutation.
func (p Plan) Empty() bool {
	return len(p.Updates) == 0
}

// ReconcileLinkedGifts computes the mutations needed to restore the linked-gift
// invariants for one main product after a cart change. It is a pure function of
// the previous and current item lists.
//
// Gift lines exist iff the main product is present with quantity > 0, and every
// gift line mirrors its quantity. Only a complete removal of the main product
// strips gifts; a quantity reduction that leaves it in the cart resizes them
// instead. Running the result against the platform and reconciling again yields
// an empty plan.
func ReconcileLinkedGifts(mainProductID string, previous, current []model.LineItem) Plan {
	if mainProductID == "" {
		return Plan{}
	}

	var main *model.LineItem
	for i := range current {
		if current[i].ProductID == mainProductID && current[i].Quantity > 0 {
			main = &current[i]
			break
		}
	}

	if main == nil {
		// The product is gone. Gift removal only fires on a true removal: it
		// must have actually been in the previous list, otherwise this is a
		// no-op pass over a cart that never held the product.
		wasPresent := false
		for _, item := range previous {
			if item.ProductID == mainProductID {
				wasPresent = true
				break
			}
		}
		if !wasPresent {
			return Plan{}
		}
		updates := make(map[string]int)
		for _, item := range current {
			if item.LinkedGiftOf(mainProductID) {
				updates[item.Key] = 0
			}
		}
		if len(updates) == 0 {
			return Plan{}
		}
		return Plan{Updates: updates, Reason: ReasonRemoveGifts}
	}

	// Present: mirror the main quantity onto every linked gift that differs.
	updates := make(map[string]int)
	for _, item := range current {
		if item.LinkedGiftOf(mainProductID) && item.Quantity != main.Quantity {
			updates[item.Key] = main.Quantity
		}
	}
	if len(updates) == 0 {
		return Plan{}
	}
	return Plan{Updates: updates, Reason: ReasonMirrorQuantity}
}

// SettingsGiftSweep plans the removal of all progress-bar gift lines: zero-price
// lines for the configured gift products that are not linked to a kit product.
// Used when the rely-on product leaves the cart.
func SettingsGiftSweep(items []model.LineItem, giftProductIDs []string) Plan {
	if len(giftProductIDs) == 0 {
		return Plan{}
	}
	configured := make(map[string]bool, len(giftProductIDs))
	for _, id := range giftProductIDs {
		configured[id] = true
	}
	updates := make(map[string]int)
	for _, item := range items {
		if item.Price != 0 || !configured[item.ProductID] {
			continue
		}
		if item.Properties[model.PropLinkedToProduct] != "" {
			continue // kit-linked gifts belong to the kit reconciler
		}
		updates[item.Key] = 0
	}
	if len(updates) == 0 {
		return Plan{}
	}
	return Plan{Updates: updates, Reason: ReasonRemoveGifts}
}
