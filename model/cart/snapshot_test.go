package cart

import (
	"testing"
)

const sampleCartJSON = `{
	"item_count": 3,
	"total_price": 5500,
	"note": "leave at door",
	"items": [
		{
			"key": "40900000000001:aaaa",
			"id": 40900000000001,
			"product_id": 7001,
			"title": "Main Product",
			"quantity": 2,
			"price": 2500,
			"final_line_price": 5000,
			"properties": null
		},
		{
			"key": "40900000000002:bbbb",
			"id": 40900000000002,
			"product_id": 7002,
			"title": "Attachment",
			"quantity": 1,
			"price": 0,
			"final_line_price": 0,
			"properties": {"_is_free_gift": "true", "_linked_to_product": 7001}
		}
	]
}`

func TestParse_Snapshot(t *testing.T) {
	snap, err := Parse([]byte(sampleCartJSON))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if snap.ItemCount != 3 {
		t.Errorf("ItemCount = %d, want 3", snap.ItemCount)
	}
	if snap.TotalValue != 5500 {
		t.Errorf("TotalValue = %d, want 5500", snap.TotalValue)
	}
	if snap.Note != "leave at door" {
		t.Errorf("Note = %q", snap.Note)
	}
	if len(snap.Items) != 2 {
		t.Fatalf("Items = %d, want 2", len(snap.Items))
	}
}

func TestParse_NumericIDsBecomeStrings(t *testing.T) {
	snap, err := Parse([]byte(sampleCartJSON))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	main := snap.Items[0]
	if main.ProductID != "7001" {
		t.Errorf("ProductID = %q, want 7001", main.ProductID)
	}
	if main.VariantID != "40900000000001" {
		t.Errorf("VariantID = %q, want 40900000000001", main.VariantID)
	}
	// Numeric property values follow the same rule: _linked_to_product arrived
	// as a JSON number and must compare equal to the product id string.
	gift := snap.Items[1]
	if gift.Properties[PropLinkedToProduct] != "7001" {
		t.Errorf("linked property = %q, want 7001", gift.Properties[PropLinkedToProduct])
	}
}

func TestLineItem_GiftPredicates(t *testing.T) {
	snap, _ := Parse([]byte(sampleCartJSON))
	main, gift := snap.Items[0], snap.Items[1]

	if main.IsFreeGift() {
		t.Error("main product should not be a free gift")
	}
	if !gift.IsFreeGift() {
		t.Error("gift line should be a free gift")
	}
	if !gift.LinkedGiftOf("7001") {
		t.Error("gift should link to 7001")
	}
	if gift.LinkedGiftOf("7002") {
		t.Error("gift should not link to 7002")
	}
}

func TestSnapshot_Lookups(t *testing.T) {
	snap, _ := Parse([]byte(sampleCartJSON))

	if !snap.HasProduct("7001") {
		t.Error("HasProduct(7001) = false")
	}
	if snap.HasProduct("9999") {
		t.Error("HasProduct(9999) = true")
	}
	if li := snap.FindProduct("7001"); li == nil || li.Quantity != 2 {
		t.Errorf("FindProduct(7001) = %+v", li)
	}
	if li := snap.FindVariant("40900000000002"); li == nil || li.ProductID != "7002" {
		t.Errorf("FindVariant = %+v", li)
	}

	gifts := snap.LinkedGifts("7001")
	if len(gifts) != 1 || gifts[0].Key != "40900000000002:bbbb" {
		t.Errorf("LinkedGifts = %+v", gifts)
	}
	if len(snap.LinkedGifts("7002")) != 0 {
		t.Error("LinkedGifts(7002) should be empty")
	}
}

func TestParse_StringErrorsLifted(t *testing.T) {
	snap, err := Parse([]byte(`{"item_count": 1, "total_price": 100, "items": [], "errors": "only 2 available"}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !snap.HasErrors() {
		t.Fatal("HasErrors = false")
	}
	if snap.ErrorMessage() != "only 2 available" {
		t.Errorf("ErrorMessage = %q", snap.ErrorMessage())
	}
}

func TestParse_MapErrors(t *testing.T) {
	snap, err := Parse([]byte(`{"items": [], "errors": {"quantity": "sold out"}}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if snap.Errors["quantity"] != "sold out" {
		t.Errorf("Errors = %v", snap.Errors)
	}
}

func TestParse_ItemsRemoved(t *testing.T) {
	snap, err := Parse([]byte(`{
		"items": [], "item_count": 0, "total_price": 0,
		"items_removed": [{"id": 40900000000001, "product_id": 7001, "quantity": 2}]
	}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(snap.ItemsRemoved) != 1 {
		t.Fatalf("ItemsRemoved = %d, want 1", len(snap.ItemsRemoved))
	}
	if snap.ItemsRemoved[0].ProductID != "7001" {
		t.Errorf("removed ProductID = %q", snap.ItemsRemoved[0].ProductID)
	}
}

func TestParse_Malformed(t *testing.T) {
	if _, err := Parse([]byte("<html>not json</html>")); err == nil {
		t.Error("Parse malformed body: want error")
	}
}

func TestKitLines(t *testing.T) {
	items := []KitItem{
		{VariantID: "111", Available: true},
		{VariantID: "222", Available: false},
		{VariantID: "111", Available: true}, // duplicate
		{VariantID: "333", Available: true},
	}
	lines := KitLines(items, "7001")
	if len(lines) != 2 {
		t.Fatalf("KitLines = %d lines, want 2", len(lines))
	}
	for _, l := range lines {
		if l.Quantity != 1 {
			t.Errorf("Quantity = %d, want 1", l.Quantity)
		}
		if l.Properties[PropIsFreeGift] != "true" {
			t.Error("missing free gift property")
		}
		if l.Properties[PropLinkedToProduct] != "7001" {
			t.Error("missing link property")
		}
	}
	if lines[0].VariantID != "111" || lines[1].VariantID != "333" {
		t.Errorf("variants = %s, %s", lines[0].VariantID, lines[1].VariantID)
	}
}

func TestKitLines_NoRelyOnProduct(t *testing.T) {
	if lines := KitLines([]KitItem{{VariantID: "111", Available: true}}, ""); lines != nil {
		t.Errorf("KitLines without rely-on product = %v, want nil", lines)
	}
}
