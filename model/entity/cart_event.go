package entity

import "time"

// CartEvent is one journaled drawer event: a cart update, a gift add or
// removal, or a rejected line mutation.
type CartEvent struct {
	EventID    uint      `gorm:"column:event_id;primaryKey;autoIncrement"`
	Topic      string    `gorm:"column:topic;type:varchar(64);index;not null"`
	Source     string    `gorm:"column:source;type:varchar(64)"`
	ItemCount  int       `gorm:"column:item_count;not null;default:0"`
	TotalValue int64     `gorm:"column:total_value;not null;default:0"`
	Payload    *string   `gorm:"column:payload;type:text"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime;index"`
}

func (CartEvent) TableName() string {
	return "cart_event"
}
