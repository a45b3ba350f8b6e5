package realtime

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"storefront.GO/api"
	"storefront.GO/config"
	"storefront.GO/core/events"
	model "storefront.GO/model/cart"
)

func snapshotOf(ev events.Event) *model.Snapshot {
	snap, _ := ev.Cart.(*model.Snapshot)
	return snap
}

func init() {
	api.RegisterModule(RegisterRealtimeRoutes)
}

// streamEvent is the wire shape of one server-sent event.
type streamEvent struct {
	Topic      string            `json:"topic"`
	Source     string            `json:"source"`
	ItemCount  int               `json:"item_count"`
	TotalValue int64             `json:"total_value"`
	Data       map[string]string `json:"data,omitempty"`
}

// getCryptKey returns the stream signing key from env
func getCryptKey() string {
	return config.GetEnv("STOREFRONT_CRYPT_KEY", "")
}

// verifyCustomerSignature validates HMAC-SHA256 signature using constant-time comparison
func verifyCustomerSignature(customerID, signature, cryptKey string) bool {
	if cryptKey == "" || customerID == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(cryptKey))
	mac.Write([]byte(customerID))
	expected := mac.Sum(nil)
	sig, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	return hmac.Equal(expected, sig)
}

// RegisterRealtimeRoutes sets up the live drawer event stream.
func RegisterRealtimeRoutes(apiGroup *echo.Group, deps *api.Deps) {
	g := apiGroup.Group("/realtime")

	// GET /api/realtime/cart-events – SSE stream of drawer events
	g.GET("/cart-events", func(c echo.Context) error {
		customerID := c.Request().Header.Get("X-Customer-ID")
		customerSig := c.Request().Header.Get("X-Customer-Sig")
		cryptKey := getCryptKey()
		if cryptKey != "" && !verifyCustomerSignature(customerID, customerSig, cryptKey) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid signature"})
		}

		w := c.Response()
		w.Header().Set(echo.HeaderContentType, "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		w.Flush()

		ch := make(chan events.Event, 16)
		unsubs := make([]func(), 0, 4)
		for _, topic := range []events.Topic{
			events.TopicCartUpdated,
			events.TopicGiftAdded,
			events.TopicGiftRemoved,
			events.TopicLineError,
		} {
			unsubs = append(unsubs, deps.Controller.Bus().Subscribe(topic, func(e events.Event) {
				select {
				case ch <- e:
				default: // slow client, drop rather than block the drawer
				}
			}))
		}
		defer func() {
			for _, u := range unsubs {
				u()
			}
		}()

		keepalive := time.NewTicker(15 * time.Second)
		defer keepalive.Stop()

		ctx := c.Request().Context()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-keepalive.C:
				if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
					return nil
				}
				w.Flush()
			case ev := <-ch:
				out := streamEvent{Topic: string(ev.Topic), Source: ev.Source, Data: ev.Data}
				if snap := snapshotOf(ev); snap != nil {
					out.ItemCount = snap.ItemCount
					out.TotalValue = snap.TotalValue
				}
				payload, err := json.Marshal(out)
				if err != nil {
					continue
				}
				if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", out.Topic, payload); err != nil {
					return nil
				}
				w.Flush()
			}
		}
	})
}
