package gift

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"storefront.GO/api"
	"storefront.GO/config"
	cartService "storefront.GO/service/cart"
)

func init() {
	api.RegisterModule(RegisterGiftRoutes)
}

// RegisterGiftRoutes sets up gift configuration inspection and the manual
// sweep endpoint. The scheduled sweep runs the same logic from cron.
func RegisterGiftRoutes(apiGroup *echo.Group, deps *api.Deps) {
	g := apiGroup.Group("/gift")

	// GET /api/gift/config – the gift rules the drawer runs with
	g.GET("/config", func(c echo.Context) error {
		cfg := config.AppConfig
		return c.JSON(http.StatusOK, echo.Map{
			"free_product_threshold":  cfg.FreeProductThreshold,
			"free_shipping_threshold": cfg.FreeShippingThreshold,
			"free_product_variant_id": cfg.FreeProductVariantID,
			"gift_product_ids":        cfg.FreeGiftProductIDs,
			"rely_on_product_id":      cfg.RelyOnProductID,
			"kit_active":              cfg.KitActive,
			"show_progress_bar":       cfg.ShowProgressBar,
		})
	})

	// POST /api/gift/sweep – strip configured gift lines that lost their anchor
	g.POST("/sweep", func(c echo.Context) error {
		start := time.Now()

		snap := deps.Controller.Last()
		if snap == nil {
			var err error
			snap, err = deps.Controller.Refresh(c.Request().Context())
			if err != nil {
				return c.JSON(http.StatusBadGateway, echo.Map{"error": err.Error()})
			}
		}

		relyOn := config.AppConfig.RelyOnProductID
		duration := time.Since(start).Milliseconds()
		if relyOn == "" || snap.HasProduct(relyOn) {
			return c.JSON(http.StatusOK, echo.Map{"swept": 0, "request_duration_ms": duration})
		}

		plan := cartService.SettingsGiftSweep(snap.Items, config.AppConfig.FreeGiftProductIDs)
		duration = time.Since(start).Milliseconds()
		if plan.Empty() {
			return c.JSON(http.StatusOK, echo.Map{"swept": 0, "request_duration_ms": duration})
		}

		next, err := deps.Client.UpdateLines(c.Request().Context(), plan.Updates)
		if err != nil {
			return c.JSON(http.StatusBadGateway, echo.Map{"error": err.Error()})
		}
		if next.HasErrors() {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"errors": next.Errors})
		}
		if err := deps.Controller.Apply(c.Request().Context(), next, cartService.Trigger{Source: "gift-sweep"}); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}

		duration = time.Since(start).Milliseconds()
		c.Response().Header().Set("X-Request-Duration-ms", strconv.FormatInt(duration, 10))
		return c.JSON(http.StatusOK, echo.Map{
			"swept":               len(plan.Updates),
			"request_duration_ms": duration,
		})
	})
}
