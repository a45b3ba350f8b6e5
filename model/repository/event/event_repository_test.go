package event

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	cartModel "storefront.GO/model/cart"
	entity "storefront.GO/model/entity"
)

func eventTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&entity.CartEvent{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestEventRepository_AppendAndRecent(t *testing.T) {
	repo := NewEventRepository(eventTestDB(t))

	snap := &cartModel.Snapshot{ItemCount: 3, TotalValue: 5980}
	if err := repo.Append("cart.updated", "line-items", snap, nil); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := repo.Append("cart.gift_added", "refresh", snap, map[string]string{"variant_id": "40900"}); err != nil {
		t.Fatalf("Append with data: %v", err)
	}

	events, err := repo.Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("len = %d, want 2", len(events))
	}
	// Newest first.
	if events[0].Topic != "cart.gift_added" {
		t.Errorf("order wrong: %s first", events[0].Topic)
	}
	if events[0].Payload == nil || *events[0].Payload != `{"variant_id":"40900"}` {
		t.Errorf("payload = %v", events[0].Payload)
	}
	if events[1].ItemCount != 3 || events[1].TotalValue != 5980 {
		t.Errorf("snapshot columns = %d/%d", events[1].ItemCount, events[1].TotalValue)
	}
}

func TestEventRepository_NilSnapshot(t *testing.T) {
	repo := NewEventRepository(eventTestDB(t))
	if err := repo.Append("cart.line_error", "line-items", nil, map[string]string{"line": "a:1"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	events, err := repo.Recent(1)
	if err != nil || len(events) != 1 {
		t.Fatalf("Recent: %v, %d events", err, len(events))
	}
	if events[0].ItemCount != 0 || events[0].TotalValue != 0 {
		t.Error("nil snapshot must journal zero counters")
	}
}

func TestEventRepository_TopicFilters(t *testing.T) {
	repo := NewEventRepository(eventTestDB(t))
	for i := 0; i < 3; i++ {
		if err := repo.Append("cart.updated", "test", nil, nil); err != nil {
			t.Fatal(err)
		}
	}
	if err := repo.Append("cart.gift_removed", "test", nil, nil); err != nil {
		t.Fatal(err)
	}

	count, err := repo.CountByTopic("cart.updated")
	if err != nil || count != 3 {
		t.Errorf("CountByTopic = %d, %v", count, err)
	}
	events, err := repo.RecentByTopic("cart.gift_removed", 10)
	if err != nil || len(events) != 1 {
		t.Errorf("RecentByTopic = %d, %v", len(events), err)
	}
}

func TestEventRepository_PurgeOlderThan(t *testing.T) {
	db := eventTestDB(t)
	repo := NewEventRepository(db)

	old := entity.CartEvent{Topic: "cart.updated", CreatedAt: time.Now().Add(-48 * time.Hour)}
	if err := db.Create(&old).Error; err != nil {
		t.Fatal(err)
	}
	if err := repo.Append("cart.updated", "test", nil, nil); err != nil {
		t.Fatal(err)
	}

	purged, err := repo.PurgeOlderThan(24 * time.Hour)
	if err != nil {
		t.Fatalf("PurgeOlderThan: %v", err)
	}
	if purged != 1 {
		t.Errorf("purged = %d, want 1", purged)
	}
	remaining, err := repo.Recent(10)
	if err != nil || len(remaining) != 1 {
		t.Errorf("remaining = %d, %v", len(remaining), err)
	}
}
