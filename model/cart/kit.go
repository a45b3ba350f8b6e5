package cart

// AddLine is one line in a cart add request.
type AddLine struct {
	VariantID  string            `json:"id"`
	Quantity   int               `json:"quantity"`
	Properties map[string]string `json:"properties,omitempty"`
}

// KitItem is one configured attachment of a product kit: a variant that ships
// free alongside the main product.
type KitItem struct {
	VariantID string
	Available bool
}

// KitLines builds the add-lines for a kit. Each available item becomes a free
// gift line at quantity 1 linked to relyOnProductID. Duplicate variant ids are
// collapsed and unavailable items skipped, matching how the kit form is built.
func KitLines(items []KitItem, relyOnProductID string) []AddLine {
	if relyOnProductID == "" {
		return nil
	}
	seen := make(map[string]bool, len(items))
	var lines []AddLine
	for _, item := range items {
		if item.VariantID == "" || !item.Available || seen[item.VariantID] {
			continue
		}
		seen[item.VariantID] = true
		lines = append(lines, AddLine{
			VariantID: item.VariantID,
			Quantity:  1,
			Properties: map[string]string{
				PropIsFreeGift:      "true",
				PropLinkedToProduct: relyOnProductID,
			},
		})
	}
	return lines
}
