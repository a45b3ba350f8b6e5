package html

import (
	"sync"

	cartService "storefront.GO/service/cart"
)

// DrawerState is the server-side projection of the drawer the controller
// writes into. Handlers read it to serve the current markup and badge without
// re-rendering; attached element bindings read the icon flags.
type DrawerState struct {
	mu sync.RWMutex

	content string
	empty   bool
	badge   int

	progressFrom int64
	progressTo   int64

	giftIconLit     bool
	shippingIconLit bool
}

var _ cartService.DrawerView = (*DrawerState)(nil)

func NewDrawerState() *DrawerState {
	return &DrawerState{empty: true}
}

func (s *DrawerState) ReplaceAll(content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.content = content
}

// PatchInner keeps the outer shell and swaps only the content. In this
// projection both end up as the same stored markup; the distinction matters to
// element bindings, which survive a patch but not a replace.
func (s *DrawerState) PatchInner(content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.content = content
}

func (s *DrawerState) SetEmpty(empty bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.empty = empty
	if empty {
		s.giftIconLit = false
		s.shippingIconLit = false
	}
}

func (s *DrawerState) SetBadge(count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.badge = count
}

func (s *DrawerState) AnimateProgress(from, to int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progressFrom = from
	s.progressTo = to
}

func (s *DrawerState) Recolor(delta cartService.RecolorDelta) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if delta.GiftOn {
		s.giftIconLit = true
	}
	if delta.GiftOff {
		s.giftIconLit = false
	}
	if delta.ShippingOn {
		s.shippingIconLit = true
	}
	if delta.ShippingOff {
		s.shippingIconLit = false
	}
}

func (s *DrawerState) Content() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.content
}

func (s *DrawerState) Empty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.empty
}

func (s *DrawerState) Badge() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.badge
}

func (s *DrawerState) Progress() (from, to int64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.progressFrom, s.progressTo
}

func (s *DrawerState) GiftIconLit() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.giftIconLit
}

func (s *DrawerState) ShippingIconLit() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.shippingIconLit
}
