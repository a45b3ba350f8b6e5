package cart

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"storefront.GO/api"
	cartModel "storefront.GO/model/cart"
	cartService "storefront.GO/service/cart"
)

// Optional client capabilities beyond the controller's CartAPI.
type sectionFetcher interface {
	FetchSections(ctx context.Context, sectionIDs ...string) (map[string]string, error)
}

type lineAdder interface {
	AddLines(ctx context.Context, lines []cartModel.AddLine) (*cartModel.Snapshot, error)
}

func init() {
	api.RegisterModule(RegisterCartRoutes)
}

// RegisterCartRoutes sets up the cart mutation and inspection API. Mutations
// go through the line item controls so loading locks and gift reconciliation
// apply exactly as they do for drawer gestures.
func RegisterCartRoutes(apiGroup *echo.Group, deps *api.Deps) {
	g := apiGroup.Group("/cart")

	// GET /api/cart – last applied snapshot, fetching on first call
	g.GET("", func(c echo.Context) error {
		snap := deps.Controller.Last()
		if snap == nil {
			var err error
			snap, err = deps.Controller.Refresh(c.Request().Context())
			if err != nil {
				return c.JSON(http.StatusBadGateway, echo.Map{"error": err.Error()})
			}
		}
		return c.JSON(http.StatusOK, snap)
	})

	// POST /api/cart/line – set one line's quantity (0 removes)
	g.POST("/line", func(c echo.Context) error {
		start := time.Now()

		var body struct {
			LineKey  string `json:"line_key"`
			Quantity *int   `json:"quantity"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if body.LineKey == "" || body.Quantity == nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "line_key and quantity are required"})
		}

		snap, err := deps.Controls.UpdateQuantity(c.Request().Context(), body.LineKey, *body.Quantity)
		duration := time.Since(start).Milliseconds()
		if err != nil {
			return c.JSON(http.StatusBadGateway, echo.Map{"error": err.Error(), "request_duration_ms": duration})
		}

		c.Response().Header().Set("X-Request-Duration-ms", strconv.FormatInt(duration, 10))
		if snap.HasErrors() {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{
				"errors":              snap.Errors,
				"request_duration_ms": duration,
			})
		}
		return c.JSON(http.StatusOK, snap)
	})

	// POST /api/cart/note – replace the cart note
	g.POST("/note", func(c echo.Context) error {
		var body struct {
			Note string `json:"note"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if err := deps.Controls.UpdateNote(c.Request().Context(), body.Note); err != nil {
			return c.JSON(http.StatusBadGateway, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, echo.Map{"note": body.Note})
	})

	// POST /api/cart/refresh – re-fetch the remote cart and reapply
	g.POST("/refresh", func(c echo.Context) error {
		snap, err := deps.Controller.Refresh(c.Request().Context())
		if err != nil {
			return c.JSON(http.StatusBadGateway, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, snap)
	})

	// GET /api/cart/sections – platform-rendered fragments, comma-separated ids
	g.GET("/sections", func(c echo.Context) error {
		fetcher, ok := deps.Client.(sectionFetcher)
		if !ok {
			return c.JSON(http.StatusNotImplemented, echo.Map{"error": "section rendering not supported"})
		}
		ids := strings.Split(c.QueryParam("ids"), ",")
		var sectionIDs []string
		for _, id := range ids {
			if id = strings.TrimSpace(id); id != "" {
				sectionIDs = append(sectionIDs, id)
			}
		}
		if len(sectionIDs) == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "ids is required"})
		}
		sections, err := fetcher.FetchSections(c.Request().Context(), sectionIDs...)
		if err != nil {
			return c.JSON(http.StatusBadGateway, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, echo.Map{"sections": sections})
	})

	// POST /api/cart/kit – add a product kit's free attachment lines in one batch
	g.POST("/kit", func(c echo.Context) error {
		adder, ok := deps.Client.(lineAdder)
		if !ok {
			return c.JSON(http.StatusNotImplemented, echo.Map{"error": "batch adds not supported"})
		}
		var body struct {
			RelyOnProductID string `json:"rely_on_product_id"`
			Items           []struct {
				VariantID string `json:"variant_id"`
				Available bool   `json:"available"`
			} `json:"items"`
		}
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		items := make([]cartModel.KitItem, 0, len(body.Items))
		for _, it := range body.Items {
			items = append(items, cartModel.KitItem{VariantID: it.VariantID, Available: it.Available})
		}
		lines := cartModel.KitLines(items, body.RelyOnProductID)
		if len(lines) == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "no addable kit items"})
		}
		snap, err := adder.AddLines(c.Request().Context(), lines)
		if err != nil {
			return c.JSON(http.StatusBadGateway, echo.Map{"error": err.Error()})
		}
		if snap.HasErrors() {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"errors": snap.Errors})
		}
		if err := deps.Controller.Apply(c.Request().Context(), snap, cartService.Trigger{Source: "kit"}); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, snap)
	})

	// GET /api/cart/events – journaled drawer events, newest first
	g.GET("/events", func(c echo.Context) error {
		if deps.Events == nil {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "event journal not configured"})
		}
		limit := 50
		if lStr := c.QueryParam("limit"); lStr != "" {
			if l, err := strconv.Atoi(lStr); err == nil && l > 0 {
				limit = l
			}
		}
		var (
			events interface{}
			err    error
		)
		if topic := c.QueryParam("topic"); topic != "" {
			events, err = deps.Events.RecentByTopic(topic, limit)
		} else {
			events, err = deps.Events.Recent(limit)
		}
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, echo.Map{"events": events})
	})
}
