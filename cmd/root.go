package cmd

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"storefront.GO/client/shop"
	"storefront.GO/config"
	"storefront.GO/core/cache"
	"storefront.GO/core/events"
	"storefront.GO/cron/jobs"
	"storefront.GO/html"
	entity "storefront.GO/model/entity"
	eventRepo "storefront.GO/model/repository/event"
	cartService "storefront.GO/service/cart"
)

var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Storefront cart sync CLI",
}

// Execute runs the CLI: applies registered commands and dispatches.
func Execute() {
	Apply()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// CartRuntime is the headless drawer stack CLI commands run against.
type CartRuntime struct {
	Client     *shop.Client
	Controller *cartService.Controller
	Controls   *cartService.LineItemControls
	State      *html.DrawerState
	Events     *eventRepo.EventRepository
}

// setupCartRuntime wires the client, controller and journal the way the
// server does, minus HTTP. Also configures the scheduled jobs.
func setupCartRuntime() (*CartRuntime, error) {
	config.LoadAppConfig()
	cfg := config.AppConfig

	client := shop.New(shop.Config{
		BaseURL:  cfg.ShopBaseURL,
		Sections: config.CartSections(),
	})

	db, err := config.NewDB()
	if err != nil {
		return nil, fmt.Errorf("journal db: %w", err)
	}
	if err := db.AutoMigrate(&entity.CartEvent{}); err != nil {
		return nil, fmt.Errorf("journal migrate: %w", err)
	}
	repo := eventRepo.NewEventRepository(db)

	tmpl := html.NewTemplate()
	state := html.NewDrawerState()
	ctrl := cartService.NewController(cartService.ControllerConfig{
		Client: client,
		View:   state,
		Engine: cartService.NewThresholdEngine(cartService.ThresholdConfig{
			Amount:          cfg.FreeProductThreshold,
			FreeVariantID:   cfg.FreeProductVariantID,
			ShippingAmount:  cfg.FreeShippingThreshold,
			ShowProgressBar: cfg.ShowProgressBar,
			KitActive:       cfg.KitActive,
		}),
		Bus:             events.NewBus(),
		Journal:         repo,
		Fragments:       cache.GetInstance(),
		Render:          html.DrawerRenderFunc(tmpl),
		GiftProductIDs:  cfg.FreeGiftProductIDs,
		RelyOnProductID: cfg.RelyOnProductID,
	})
	controls := cartService.NewLineItemControls(client, client, ctrl)

	jobs.Configure(ctrl, client, repo, cfg.FreeGiftProductIDs, cfg.RelyOnProductID,
		time.Duration(cfg.EventRetentionHours)*time.Hour)

	log.Println("Cart runtime ready, shop:", cfg.ShopBaseURL)
	return &CartRuntime{
		Client:     client,
		Controller: ctrl,
		Controls:   controls,
		State:      state,
		Events:     repo,
	}, nil
}
