package html

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"storefront.GO/core/cache"
	model "storefront.GO/model/cart"
	cartService "storefront.GO/service/cart"
)

//go:embed templates/*.html
var templateFS embed.FS

type Template struct {
	Templates *template.Template
}

func (t *Template) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return t.Templates.ExecuteTemplate(w, name, data)
}

// NewTemplate parses the embedded drawer templates.
func NewTemplate() *Template {
	return &Template{
		Templates: template.Must(
			template.New("").Funcs(DrawerTemplateFuncs()).ParseFS(templateFS, "templates/*.html"),
		),
	}
}

// DrawerTemplateFuncs returns FuncMap with helpers for money and progress math.
// Prices are minor units; "money" renders them as a decimal amount.
func DrawerTemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"money": func(minor int64) string {
			return fmt.Sprintf("%d.%02d", minor/100, minor%100)
		},
		"percent": func(value, threshold int64) int64 {
			if threshold <= 0 {
				return 100
			}
			p := value * 100 / threshold
			if p > 100 {
				p = 100
			}
			return p
		},
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
	}
}

// RenderDrawer renders the full cart-drawer section for a snapshot.
func RenderDrawer(t *Template, snap *model.Snapshot) (string, error) {
	var buf bytes.Buffer
	if err := t.Templates.ExecuteTemplate(&buf, "drawer.html", map[string]interface{}{
		"Cart": snap,
	}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// DrawerRenderFunc adapts RenderDrawer to the controller's RenderFunc.
func DrawerRenderFunc(t *Template) cartService.RenderFunc {
	return func(snap *model.Snapshot) (string, error) {
		return RenderDrawer(t, snap)
	}
}

// RegisterCartHTMLRoutes registers the drawer and badge fragment routes.
// Fragments are served from the cache when the controller has not invalidated
// them since the last render.
func RegisterCartHTMLRoutes(e *echo.Echo, ctrl *cartService.Controller, frags *cache.Fragments) {
	e.GET("/cart/drawer", func(c echo.Context) error {
		if html, ok := frags.Get("cart-drawer"); ok {
			return c.HTML(http.StatusOK, html)
		}
		snap := ctrl.Last()
		if snap == nil {
			var err error
			snap, err = ctrl.Refresh(c.Request().Context())
			if err != nil {
				log.Println("drawer fetch error:", err)
				return c.String(http.StatusBadGateway, "cart unavailable")
			}
		}
		tmpl := c.Echo().Renderer.(*Template)
		html, err := RenderDrawer(tmpl, snap)
		if err != nil {
			log.Println("drawer render error:", err)
			return c.String(http.StatusInternalServerError, "render error")
		}
		frags.Set("cart-drawer", html, 0)
		return c.HTML(http.StatusOK, html)
	})

	e.GET("/cart/icon-bubble", func(c echo.Context) error {
		if html, ok := frags.Get("cart-icon-bubble"); ok {
			return c.HTML(http.StatusOK, html)
		}
		count := 0
		if snap := ctrl.Last(); snap != nil {
			count = snap.ItemCount
		}
		tmpl := c.Echo().Renderer.(*Template)
		var buf bytes.Buffer
		if err := tmpl.Templates.ExecuteTemplate(&buf, "icon_bubble.html", map[string]interface{}{
			"Count": count,
		}); err != nil {
			log.Println("icon bubble render error:", err)
			return c.String(http.StatusInternalServerError, "render error")
		}
		frags.Set("cart-icon-bubble", buf.String(), 0)
		return c.HTML(http.StatusOK, buf.String())
	})
}
