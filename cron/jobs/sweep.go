package jobs

import (
	"context"
	"log"
	"sync"
	"time"

	eventRepo "storefront.GO/model/repository/event"
	cartService "storefront.GO/service/cart"
)

var (
	mu        sync.Mutex
	ctrl      *cartService.Controller
	client    cartService.CartAPI
	journal   *eventRepo.EventRepository
	giftIDs   []string
	relyOn    string
	retention time.Duration
)

// Configure wires the scheduled jobs. Call once at startup before StartCron;
// unconfigured jobs log and return.
func Configure(controller *cartService.Controller, api cartService.CartAPI, repo *eventRepo.EventRepository, giftProductIDs []string, relyOnProductID string, eventRetention time.Duration) {
	mu.Lock()
	defer mu.Unlock()
	ctrl = controller
	client = api
	journal = repo
	giftIDs = giftProductIDs
	relyOn = relyOnProductID
	retention = eventRetention
}

type jobDeps struct {
	ctrl      *cartService.Controller
	client    cartService.CartAPI
	journal   *eventRepo.EventRepository
	giftIDs   []string
	relyOn    string
	retention time.Duration
}

func deps() jobDeps {
	mu.Lock()
	defer mu.Unlock()
	return jobDeps{ctrl: ctrl, client: client, journal: journal, giftIDs: giftIDs, relyOn: relyOn, retention: retention}
}

// CartSweepJob re-fetches the cart and strips configured gift lines whose
// anchor product is gone. Covers drift from mutations that bypassed the
// drawer (checkout page, other tabs).
func CartSweepJob(args ...string) {
	d := deps()
	if d.ctrl == nil || d.client == nil {
		log.Println("CartSweepJob: not configured, skipping")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	snap, err := d.ctrl.Refresh(ctx)
	if err != nil {
		log.Println("CartSweepJob: refresh failed:", err)
		return
	}

	// Gifts are only orphaned once their anchor product is gone.
	if d.relyOn == "" || snap.HasProduct(d.relyOn) {
		return
	}

	plan := cartService.SettingsGiftSweep(snap.Items, d.giftIDs)
	if plan.Empty() {
		return
	}
	next, err := d.client.UpdateLines(ctx, plan.Updates)
	if err != nil {
		log.Println("CartSweepJob: sweep failed:", err)
		return
	}
	if next.HasErrors() {
		log.Println("CartSweepJob: sweep rejected:", next.ErrorMessage())
		return
	}
	if err := d.ctrl.Apply(ctx, next, cartService.Trigger{Source: "cron-sweep"}); err != nil {
		log.Println("CartSweepJob: apply failed:", err)
		return
	}
	log.Printf("CartSweepJob: swept %d gift line(s)", len(plan.Updates))
}

// JournalPurgeJob deletes journal rows past the retention window.
func JournalPurgeJob(args ...string) {
	d := deps()
	if d.journal == nil {
		log.Println("JournalPurgeJob: not configured, skipping")
		return
	}
	purged, err := d.journal.PurgeOlderThan(d.retention)
	if err != nil {
		log.Println("JournalPurgeJob: purge failed:", err)
		return
	}
	if purged > 0 {
		log.Printf("JournalPurgeJob: purged %d event(s)", purged)
	}
}
