package event

import (
	"encoding/json"
	"sync"
	"time"

	"gorm.io/gorm"

	cartModel "storefront.GO/model/cart"
	entity "storefront.GO/model/entity"
)

type EventRepository struct {
	db *gorm.DB
}

var (
	instance *EventRepository
	once     sync.Once
)

// GetEventRepository returns a singleton instance for the given DB.
func GetEventRepository(db *gorm.DB) *EventRepository {
	once.Do(func() {
		instance = NewEventRepository(db)
	})
	return instance
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Append journals one drawer event. Satisfies the controller's Journal
// interface; a nil snapshot records the topic and source only.
func (r *EventRepository) Append(topic, source string, snap *cartModel.Snapshot, data map[string]string) error {
	ev := entity.CartEvent{
		Topic:  topic,
		Source: source,
	}
	if snap != nil {
		ev.ItemCount = snap.ItemCount
		ev.TotalValue = snap.TotalValue
	}
	if len(data) > 0 {
		raw, err := json.Marshal(data)
		if err != nil {
			return err
		}
		payload := string(raw)
		ev.Payload = &payload
	}
	return r.db.Create(&ev).Error
}

// Recent returns the newest events, most recent first.
func (r *EventRepository) Recent(limit int) ([]entity.CartEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	var events []entity.CartEvent
	err := r.db.Order("event_id DESC").Limit(limit).Find(&events).Error
	return events, err
}

// RecentByTopic returns the newest events for one topic.
func (r *EventRepository) RecentByTopic(topic string, limit int) ([]entity.CartEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	var events []entity.CartEvent
	err := r.db.Where("topic = ?", topic).Order("event_id DESC").Limit(limit).Find(&events).Error
	return events, err
}

// CountByTopic counts journaled events per topic.
func (r *EventRepository) CountByTopic(topic string) (int64, error) {
	var count int64
	err := r.db.Model(&entity.CartEvent{}).Where("topic = ?", topic).Count(&count).Error
	return count, err
}

// PurgeOlderThan deletes events older than the retention window and returns
// how many rows were removed. Used by the scheduled sweep.
func (r *EventRepository) PurgeOlderThan(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	res := r.db.Where("created_at < ?", cutoff).Delete(&entity.CartEvent{})
	return res.RowsAffected, res.Error
}
