package config

import (
	"os"
	"strconv"
	"strings"
	"sync"
)

// AppConfig holds global application configuration
var AppConfig *Config
var once sync.Once

type Config struct {
	AppName string
	Port    string
	Env     string
	Debug   bool

	// ShopBaseURL is the storefront root the cart client talks to.
	ShopBaseURL string

	// Thresholds are minor units (cents).
	FreeProductThreshold  int64
	FreeShippingThreshold int64
	FreeProductVariantID  string

	// FreeGiftProductIDs are the configured gift products the sweep strips
	// when their anchor product leaves the cart.
	FreeGiftProductIDs []string
	RelyOnProductID    string

	KitActive       bool
	ShowProgressBar bool

	// EventRetentionHours bounds the journal; the scheduled sweep purges
	// older rows.
	EventRetentionHours int
}

// LoadAppConfig initializes the global AppConfig variable
func LoadAppConfig() {
	once.Do(func() {
		AppConfig = &Config{
			AppName: os.Getenv("APP_NAME"),
			Port:    os.Getenv("PORT"),
			Env:     os.Getenv("APP_ENV"),
			Debug:   os.Getenv("DEBUG") == "true",

			ShopBaseURL: GetEnv("SHOP_BASE_URL", "http://localhost:9292"),

			FreeProductThreshold:  envInt64("FREE_PRODUCT_THRESHOLD", 0),
			FreeShippingThreshold: envInt64("FREE_SHIPPING_THRESHOLD", 0),
			FreeProductVariantID:  os.Getenv("FREE_PRODUCT_VARIANT_ID"),

			FreeGiftProductIDs: envList("FREE_GIFT_PRODUCT_IDS"),
			RelyOnProductID:    os.Getenv("RELY_ON_PRODUCT_ID"),

			KitActive:       os.Getenv("KIT_ACTIVE") == "true",
			ShowProgressBar: os.Getenv("SHOW_PROGRESS_BAR") != "false",

			EventRetentionHours: int(envInt64("EVENT_RETENTION_HOURS", 72)),
		}
	})
}

func envInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
