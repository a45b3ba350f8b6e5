package parts

import (
	"fmt"
	"html/template"
	"strings"
)

// ProgressBar describes the free-gift and free-shipping progress strip at the
// top of the drawer. Thresholds of 0 hide the corresponding marker.
type ProgressBar struct {
	Total             int64
	ProductThreshold  int64
	ShippingThreshold int64
	GiftLit           bool
	ShippingLit       bool
}

// Percent returns the fill percentage against the furthest configured
// threshold, capped at 100.
func (p ProgressBar) Percent() int64 {
	max := p.ProductThreshold
	if p.ShippingThreshold > max {
		max = p.ShippingThreshold
	}
	if max <= 0 {
		return 100
	}
	pct := p.Total * 100 / max
	if pct > 100 {
		pct = 100
	}
	return pct
}

// Render builds the progress bar markup. The lit classes mirror the state the
// drawer controller tracks when the total crosses a threshold.
func (p ProgressBar) Render() template.HTML {
	var b strings.Builder
	b.WriteString(`<div class="free-product-progress-bar-main">`)
	fmt.Fprintf(&b, `<div class="progress-fill" style="width:%d%%"></div>`, p.Percent())
	if p.ProductThreshold > 0 {
		cls := "free-gift-main"
		if p.GiftLit {
			cls += " free-gift-main-color"
		}
		fmt.Fprintf(&b, `<span class="%s" data-treshold-product="%d"></span>`, cls, p.ProductThreshold)
	}
	if p.ShippingThreshold > 0 {
		cls := "free-shipping-main"
		if p.ShippingLit {
			cls += " free-shipping-main-color"
		}
		fmt.Fprintf(&b, `<span class="%s" data-treshold-shipping="%d"></span>`, cls, p.ShippingThreshold)
	}
	b.WriteString(`</div>`)
	return template.HTML(b.String())
}
