package cart

import (
	"context"
	"log"
	"sync"

	"storefront.GO/core/cache"
	"storefront.GO/core/events"
	model "storefront.GO/model/cart"
)

// CartAPI is the remote client surface the controller drives. *shop.Client
// satisfies it; tests substitute fakes.
type CartAPI interface {
	FetchCart(ctx context.Context) (*model.Snapshot, error)
	UpdateLines(ctx context.Context, updates map[string]int) (*model.Snapshot, error)
	AddLine(ctx context.Context, variantID string, quantity int, properties map[string]string) (*model.Snapshot, error)
}

// DrawerView is the projection of the latest applied snapshot. ReplaceAll swaps
// the whole drawer content; PatchInner replaces only the inner content node so
// attached element instances keep their identity.
type DrawerView interface {
	ReplaceAll(content string)
	PatchInner(content string)
	SetEmpty(empty bool)
	SetBadge(count int)
	AnimateProgress(from, to int64)
	Recolor(delta RecolorDelta)
}

// Journal persists emitted cart events. Failures there are logged, never fatal.
type Journal interface {
	Append(topic, source string, snap *model.Snapshot, data map[string]string) error
}

// RenderFunc renders the drawer fragment for a snapshot when the mutation
// response carried no pre-rendered section.
type RenderFunc func(*model.Snapshot) (string, error)

// Trigger describes the mutation that produced a snapshot.
type Trigger struct {
	Source string
	// MainProductID is the product whose linked gifts need reconciling after a
	// quantity or removal change. Empty skips gift reconciliation.
	MainProductID string
	// CheckFree gates the threshold engine; reconciliation passes started by
	// the engine itself run with it off to stop add/remove loops.
	CheckFree bool
}

// ControllerConfig wires a Controller. Global page flags (kit active, progress
// bar shown) arrive here baked into Engine, not read from ambient state later.
type ControllerConfig struct {
	Client          CartAPI
	View            DrawerView
	Engine          *ThresholdEngine
	Bus             *events.Bus
	Journal         Journal
	Fragments       *cache.Fragments
	Render          RenderFunc
	GiftProductIDs  []string
	RelyOnProductID string
}

// Controller applies cart snapshots to the drawer. Each Apply classifies the
// transition against the previously applied snapshot (empty, became non-empty,
// update), resolves gift and threshold side effects, then patches the view,
// updates the badge and broadcasts events, in that order. Concurrent chains are
// tolerated with last-applied-wins semantics: whichever snapshot gets the lock
// last determines view state, with no merging across in-flight requests.
type Controller struct {
	client CartAPI
	view   DrawerView
	engine *ThresholdEngine
	bus    *events.Bus
	jour   Journal
	frags  *cache.Fragments
	render RenderFunc

	giftIDs []string
	relyOn  string

	mu   sync.Mutex
	last *model.Snapshot

	bg sync.WaitGroup
}

// NewController builds a Controller.
func NewController(cfg ControllerConfig) *Controller {
	engine := cfg.Engine
	if engine == nil {
		engine = NewThresholdEngine(ThresholdConfig{})
	}
	bus := cfg.Bus
	if bus == nil {
		bus = events.NewBus()
	}
	return &Controller{
		client:  cfg.Client,
		view:    cfg.View,
		engine:  engine,
		bus:     bus,
		jour:    cfg.Journal,
		frags:   cfg.Fragments,
		render:  cfg.Render,
		giftIDs: cfg.GiftProductIDs,
		relyOn:  cfg.RelyOnProductID,
	}
}

// Last returns the most recently applied snapshot, nil before the first Apply.
func (c *Controller) Last() *model.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// Bus exposes the event bus for subscribers.
func (c *Controller) Bus() *events.Bus { return c.bus }

// Refresh fetches the remote cart and applies it. Used on initial load and by
// the background sweep.
func (c *Controller) Refresh(ctx context.Context) (*model.Snapshot, error) {
	snap, err := c.client.FetchCart(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.Apply(ctx, snap, Trigger{Source: "refresh", CheckFree: true}); err != nil {
		return nil, err
	}
	return snap, nil
}

// Apply runs one reconciliation cycle for a snapshot.
func (c *Controller) Apply(ctx context.Context, snap *model.Snapshot, trig Trigger) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.apply(ctx, snap, trig)
}

// Wait blocks until all fire-and-forget reconciliation tasks finish (tests,
// shutdown).
func (c *Controller) Wait() { c.bg.Wait() }

func (c *Controller) apply(ctx context.Context, snap *model.Snapshot, trig Trigger) error {
	prev := c.last
	oldCount := 0
	if prev != nil {
		oldCount = prev.ItemCount
	}

	switch {
	case snap.ItemCount == 0:
		c.applyEmpty(snap, trig)
		return nil
	case oldCount == 0:
		return c.applyBecameNonEmpty(ctx, snap, trig)
	default:
		return c.applyUpdate(ctx, prev, snap, trig)
	}
}

// applyEmpty replaces the drawer wholesale and skips gift and threshold logic
// entirely: there is nothing left to reconcile against.
func (c *Controller) applyEmpty(snap *model.Snapshot, trig Trigger) {
	c.view.SetEmpty(true)
	c.view.ReplaceAll(c.content(snap))
	if c.frags != nil {
		c.frags.InvalidateAll()
	}
	c.view.SetBadge(0)
	c.last = snap
	c.emit(events.TopicCartUpdated, trig.Source, snap, nil)
}

// applyBecameNonEmpty evaluates the threshold engine once before rendering,
// since there is no prior view state to diff. A decided free-product add runs
// before the content swap so the rendered drawer already shows the gift.
func (c *Controller) applyBecameNonEmpty(ctx context.Context, snap *model.Snapshot, trig Trigger) error {
	if trig.CheckFree && c.engine.Evaluate(snap) == ActionAddFree {
		if next, ok := c.addFreeProduct(ctx); ok {
			err := c.apply(ctx, next, Trigger{Source: trig.Source, CheckFree: false})
			c.emit(events.TopicGiftAdded, trig.Source, next, map[string]string{"variant_id": c.engine.FreeVariantID()})
			return err
		}
	}

	c.view.SetEmpty(false)
	c.view.ReplaceAll(c.content(snap))
	if c.frags != nil {
		c.frags.InvalidateAll()
	}
	c.view.SetBadge(snap.ItemCount)
	c.last = snap
	c.emit(events.TopicCartUpdated, trig.Source, snap, nil)
	return nil
}

func (c *Controller) applyUpdate(ctx context.Context, prev, snap *model.Snapshot, trig Trigger) error {
	// Capture the progress value before the patch overwrites it.
	startTotal := prev.TotalValue

	if trig.CheckFree {
		switch c.engine.Evaluate(snap) {
		case ActionAddFree:
			if next, ok := c.addFreeProduct(ctx); ok {
				err := c.apply(ctx, next, Trigger{Source: trig.Source, CheckFree: false})
				c.emit(events.TopicGiftAdded, trig.Source, next, map[string]string{"variant_id": c.engine.FreeVariantID()})
				return err
			}
		case ActionRemoveFree:
			if next, ok := c.removeFreeProduct(ctx, snap); ok {
				err := c.apply(ctx, next, Trigger{Source: trig.Source, CheckFree: false})
				c.emit(events.TopicGiftRemoved, trig.Source, next, map[string]string{"variant_id": c.engine.FreeVariantID()})
				return err
			}
		}
	}

	// Linked-gift correction runs in the background: it must never block the
	// primary update the user already sees.
	if trig.MainProductID != "" {
		plan := ReconcileLinkedGifts(trig.MainProductID, prev.Items, snap.Items)
		if !plan.Empty() {
			c.runPlan(trig.Source, plan)
		}
		if c.relyOn != "" && !snap.HasProduct(c.relyOn) && removedProduct(snap, c.relyOn) {
			if sweep := SettingsGiftSweep(snap.Items, c.giftIDs); !sweep.Empty() {
				c.runPlan(trig.Source, sweep)
			}
		}
	}

	c.view.PatchInner(c.content(snap))
	if c.frags != nil {
		// The content node was swapped; cached fragments now describe markup
		// that no longer exists.
		c.frags.Invalidate("cart-drawer", "cart-icon-bubble")
	}
	c.view.AnimateProgress(startTotal, snap.TotalValue)
	c.view.Recolor(c.engine.Recolor(startTotal, snap.TotalValue))
	c.view.SetBadge(snap.ItemCount)
	c.last = snap
	c.emit(events.TopicCartUpdated, trig.Source, snap, nil)
	return nil
}

// addFreeProduct adds the configured free variant. Returns ok=false on any
// failure; failures are logged and the caller falls back to a plain render.
func (c *Controller) addFreeProduct(ctx context.Context) (*model.Snapshot, bool) {
	next, err := c.client.AddLine(ctx, c.engine.FreeVariantID(), 1, nil)
	if err != nil {
		log.Printf("cart: add free product: %v", err)
		return nil, false
	}
	if next.HasErrors() {
		log.Printf("cart: add free product rejected: %s", next.ErrorMessage())
		return nil, false
	}
	return next, true
}

func (c *Controller) removeFreeProduct(ctx context.Context, snap *model.Snapshot) (*model.Snapshot, bool) {
	free := snap.FindVariant(c.engine.FreeVariantID())
	if free == nil {
		return nil, false
	}
	next, err := c.client.UpdateLines(ctx, map[string]int{free.Key: 0})
	if err != nil {
		log.Printf("cart: remove free product: %v", err)
		return nil, false
	}
	if next.HasErrors() {
		log.Printf("cart: remove free product rejected: %s", next.ErrorMessage())
		return nil, false
	}
	return next, true
}

// runPlan applies a mutation plan in the background and re-applies the
// resulting snapshot. Failures are logged only: this is best-effort correction,
// the primary update has already rendered.
func (c *Controller) runPlan(source string, plan Plan) {
	c.bg.Add(1)
	go func() {
		defer c.bg.Done()
		ctx := context.Background()
		next, err := c.client.UpdateLines(ctx, plan.Updates)
		if err != nil {
			log.Printf("cart: gift reconciliation (%s): %v", plan.Reason, err)
			return
		}
		if next.HasErrors() {
			log.Printf("cart: gift reconciliation (%s) rejected: %s", plan.Reason, next.ErrorMessage())
			return
		}
		if err := c.Apply(ctx, next, Trigger{Source: source, CheckFree: false}); err != nil {
			log.Printf("cart: apply reconciled snapshot: %v", err)
			return
		}
		if plan.Reason == ReasonRemoveGifts {
			c.emit(events.TopicGiftRemoved, source, next, nil)
		}
	}()
}

func (c *Controller) content(snap *model.Snapshot) string {
	if s := snap.Sections["cart-drawer"]; s != "" {
		return s
	}
	if c.render != nil {
		html, err := c.render(snap)
		if err != nil {
			log.Printf("cart: render drawer: %v", err)
			return ""
		}
		return html
	}
	return ""
}

func (c *Controller) emit(topic events.Topic, source string, snap *model.Snapshot, data map[string]string) {
	c.bus.Publish(events.Event{Topic: topic, Source: source, Cart: snap, Data: data})
	if c.jour != nil {
		if err := c.jour.Append(string(topic), source, snap, data); err != nil {
			log.Printf("cart: journal %s: %v", topic, err)
		}
	}
}

func removedProduct(snap *model.Snapshot, productID string) bool {
	for _, r := range snap.ItemsRemoved {
		if r.ProductID == productID {
			return true
		}
	}
	return false
}
