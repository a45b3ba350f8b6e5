package cart

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"

	"github.com/mitchellh/mapstructure"
)

// Line item properties used by the linked-gift protocol. The storefront tags a
// gift line with both at add time; every reconciliation decision reads them back.
const (
	PropIsFreeGift      = "_is_free_gift"
	PropLinkedToProduct = "_linked_to_product"
)

// LineItem is one cart entry. Key is the platform's stable line identity: it
// survives quantity changes but not remove/re-add. The platform emits product
// and variant ids as JSON numbers; they are decoded to strings because the
// gift-link properties store them as strings and all matching is string compare.
type LineItem struct {
	Key        string            `json:"key" mapstructure:"key"`
	VariantID  string            `json:"variant_id" mapstructure:"id"`
	ProductID  string            `json:"product_id" mapstructure:"product_id"`
	Title      string            `json:"title" mapstructure:"title"`
	Quantity   int               `json:"quantity" mapstructure:"quantity"`
	Price      int64             `json:"price" mapstructure:"price"`
	LinePrice  int64             `json:"line_price" mapstructure:"final_line_price"`
	Properties map[string]string `json:"properties,omitempty" mapstructure:"properties"`
}

// IsFreeGift reports whether the line is tagged as a free gift.
func (li LineItem) IsFreeGift() bool {
	return li.Properties[PropIsFreeGift] == "true"
}

// LinkedGiftOf reports whether the line is a linked gift of the given product.
func (li LineItem) LinkedGiftOf(productID string) bool {
	return li.IsFreeGift() && li.Properties[PropLinkedToProduct] == productID
}

// RemovedItem describes a line the last mutation removed entirely.
type RemovedItem struct {
	VariantID string `json:"variant_id" mapstructure:"id"`
	ProductID string `json:"product_id" mapstructure:"product_id"`
	Quantity  int    `json:"quantity" mapstructure:"quantity"`
}

// Snapshot is a complete, immutable view of the remote cart at one point in
// time. Every fetch or mutation response produces a fresh Snapshot; nothing
// mutates one in place. A LineItem never appears with Quantity 0 in a live
// snapshot, the platform drops it from Items instead.
type Snapshot struct {
	Items        []LineItem        `json:"items" mapstructure:"items"`
	ItemCount    int               `json:"item_count" mapstructure:"item_count"`
	TotalValue   int64             `json:"total_value" mapstructure:"total_price"`
	Note         string            `json:"note,omitempty" mapstructure:"note"`
	Errors       map[string]string `json:"errors,omitempty" mapstructure:"errors"`
	ItemsRemoved []RemovedItem     `json:"items_removed,omitempty" mapstructure:"items_removed"`
	Sections     map[string]string `json:"-" mapstructure:"sections"`
}

// HasErrors reports whether the platform attached in-band validation failures.
func (s *Snapshot) HasErrors() bool {
	return len(s.Errors) > 0
}

// ErrorMessage returns one human-readable error message, empty when none.
func (s *Snapshot) ErrorMessage() string {
	for _, msg := range s.Errors {
		return msg
	}
	return ""
}

// FindProduct returns the first line for a product id, nil when absent.
func (s *Snapshot) FindProduct(productID string) *LineItem {
	for i := range s.Items {
		if s.Items[i].ProductID == productID {
			return &s.Items[i]
		}
	}
	return nil
}

// HasProduct reports whether any line carries the product id.
func (s *Snapshot) HasProduct(productID string) bool {
	return s.FindProduct(productID) != nil
}

// LinkedGifts returns all lines that are linked gifts of the given product.
func (s *Snapshot) LinkedGifts(productID string) []LineItem {
	var gifts []LineItem
	for _, item := range s.Items {
		if item.LinkedGiftOf(productID) {
			gifts = append(gifts, item)
		}
	}
	return gifts
}

// FindVariant returns the first line for a variant id, nil when absent.
func (s *Snapshot) FindVariant(variantID string) *LineItem {
	for i := range s.Items {
		if s.Items[i].VariantID == variantID {
			return &s.Items[i]
		}
	}
	return nil
}

// numberToStringHook converts JSON numbers to string targets (ids arrive as
// numbers, the gift protocol compares them as strings).
func numberToStringHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to.Kind() != reflect.String {
			return data, nil
		}
		switch from.Kind() {
		case reflect.Float64, reflect.Float32:
			return strconv.FormatFloat(reflect.ValueOf(data).Float(), 'f', -1, 64), nil
		case reflect.Int, reflect.Int64, reflect.Int32:
			return strconv.FormatInt(reflect.ValueOf(data).Int(), 10), nil
		case reflect.Bool:
			return strconv.FormatBool(reflect.ValueOf(data).Bool()), nil
		}
		return data, nil
	}
}

// errorsToMapHook lifts a bare error string (the /cart/change.js shape) into the
// errors map so callers only deal with one representation.
func errorsToMapHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if from.Kind() == reflect.String && to.Kind() == reflect.Map {
			return map[string]string{"cart": data.(string)}, nil
		}
		return data, nil
	}
}

var snapshotDecodeHook = mapstructure.ComposeDecodeHookFunc(
	errorsToMapHook(),
	numberToStringHook(),
)

// Decode builds a Snapshot from a JSON-decoded map.
func Decode(raw map[string]interface{}) (*Snapshot, error) {
	var snap Snapshot
	cfg := &mapstructure.DecoderConfig{
		DecodeHook: snapshotDecodeHook,
		Result:     &snap,
		TagName:    "mapstructure",
	}
	dec, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, fmt.Errorf("snapshot decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}

// Parse decodes a raw cart API response body into a Snapshot.
func Parse(body []byte) (*Snapshot, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal cart response: %w", err)
	}
	return Decode(raw)
}
