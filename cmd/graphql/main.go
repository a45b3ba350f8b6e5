// Standalone GraphQL server — run with: go run ./cmd/graphql
package main

import (
	"fmt"
	"log"
	"math/rand"
	"os"

	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"storefront.GO/api"
	graphqlApi "storefront.GO/api/graphql"
	"storefront.GO/client/shop"
	"storefront.GO/config"
	"storefront.GO/core/cache"
	"storefront.GO/core/events"
	"storefront.GO/html"
	entity "storefront.GO/model/entity"
	eventRepo "storefront.GO/model/repository/event"
	cartService "storefront.GO/service/cart"
)

func main() {
	_ = godotenv.Load()
	config.LoadAppConfig()
	cfg := config.AppConfig

	client := shop.New(shop.Config{
		BaseURL:  cfg.ShopBaseURL,
		Sections: config.CartSections(),
	})

	db, err := config.NewDB()
	if err != nil {
		log.Fatal("db:", err)
	}
	if err := db.AutoMigrate(&entity.CartEvent{}); err != nil {
		log.Fatal("migrate:", err)
	}
	repo := eventRepo.NewEventRepository(db)

	tmpl := html.NewTemplate()
	ctrl := cartService.NewController(cartService.ControllerConfig{
		Client: client,
		View:   html.NewDrawerState(),
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
	deps := &api.Deps{
		Client:     client,
		Controller: ctrl,
		Controls:   cartService.NewLineItemControls(client, client, ctrl),
		Events:     repo,
		Fragments:  cache.GetInstance(),
	}

	e := echo.New()
	e.Renderer = tmpl
	graphqlApi.RegisterGraphQLRoutes(e, deps)
	api.ApplyRoutes(e, deps)

	// ASCII banner on start (random font each run)
	gqlFonts := []string{"banner", "big", "block", "slant", "standard", "small", "shadow", "speed", "thick", "univers", "doom", "larry3d", "puffy", "rectangles", "bigchief", "cosmic"}
	fig := figure.NewFigure("Storefront GQL ->", gqlFonts[rand.Intn(len(gqlFonts))], true)
	fig.Print()
	fmt.Println("Standalone GraphQL server")

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("GraphQL at http://localhost:%s/graphql  Playground at http://localhost:%s/playground", port, port)
	e.Logger.Fatal(e.Start(":" + port))
}
