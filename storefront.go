//go:build !cli
// +build !cli

package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"storefront.GO/api"
	_ "storefront.GO/api/cart"
	_ "storefront.GO/api/gift"
	graphqlApi "storefront.GO/api/graphql"
	_ "storefront.GO/api/realtime"
	"storefront.GO/client/shop"
	"storefront.GO/config"
	"storefront.GO/core/auth"
	"storefront.GO/core/cache"
	"storefront.GO/core/events"
	cronpkg "storefront.GO/cron"
	"storefront.GO/cron/jobs"
	"storefront.GO/html"
	entity "storefront.GO/model/entity"
	eventRepo "storefront.GO/model/repository/event"
	cartService "storefront.GO/service/cart"
)

func main() {
	config.LoadEnv()
	config.LoadAppConfig()
	cfg := config.AppConfig

	// Initialize Redis
	config.InitRedis()
	redisStatus := "Redis not configured or not reachable, caching disabled."
	if config.RedisClient != nil {
		err := config.RedisClient.Ping(config.RedisCtx()).Err()
		if err == nil {
			redisStatus = "Redis connection successful."
			cache.GetInstance().UseRedis(config.RedisClient)
		} else {
			config.RedisClient = nil // Disable Redis if not reachable
			redisStatus = "Redis configured but not reachable, caching disabled."
		}
	}
	log.Println(redisStatus)

	db, err := config.NewDB()
	if err != nil {
		log.Fatalf("failed to connect to DB: %v", err)
	}
	if err := db.AutoMigrate(&entity.CartEvent{}, &entity.ApiToken{}); err != nil {
		log.Fatalf("failed to migrate journal: %v", err)
	}
	log.Println("Journal database ready.")
	repo := eventRepo.NewEventRepository(db)

	client := shop.New(shop.Config{
		BaseURL:  cfg.ShopBaseURL,
		Sections: config.CartSections(),
	})

	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.Gzip())
	e.Use(middleware.Decompress())

	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			duration := time.Since(start).Milliseconds()
			c.Response().Header().Set("X-Request-Duration-ms", strconv.FormatInt(duration, 10))
			log.Printf("Request duration: %d ms", duration)
			return err
		}
	})

	// Register the template renderer
	t := html.NewTemplate()
	e.Renderer = t

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
		Render:          html.DrawerRenderFunc(t),
		GiftProductIDs:  cfg.FreeGiftProductIDs,
		RelyOnProductID: cfg.RelyOnProductID,
	})
	controls := cartService.NewLineItemControls(client, client, ctrl)

	deps := &api.Deps{
		Client:     client,
		Controller: ctrl,
		Controls:   controls,
		Events:     repo,
		Fragments:  cache.GetInstance(),
	}

	apiGroup := e.Group("/api")
	apiGroup.Use(auth.Middleware(db))
	api.ApplyModules(apiGroup, deps)

	graphqlApi.RegisterGraphQLRoutes(e, deps)
	html.RegisterCartHTMLRoutes(e, ctrl, cache.GetInstance())
	api.ApplyRoutes(e, deps)

	// Warm the drawer and fragment cache; a dead shop is not fatal at boot.
	if snap, err := ctrl.Refresh(context.Background()); err != nil {
		log.Printf("Initial cart fetch failed: %v", err)
	} else {
		log.Printf("Cart loaded: %d item(s).", snap.ItemCount)
	}

	jobs.Configure(ctrl, client, repo, cfg.FreeGiftProductIDs, cfg.RelyOnProductID,
		time.Duration(cfg.EventRetentionHours)*time.Hour)
	c := cronpkg.StartCron()
	defer c.Stop()
	log.Println("Cron scheduler started.")

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Server running on :%s", port)
	e.Logger.Fatal(e.Start(":" + port))
}
