package entity

import "time"

// ApiToken is a service credential for the authenticated API surface. Scopes
// is a comma-separated list ("cart:read,cart:write,gift:sweep").
type ApiToken struct {
	TokenID   uint      `gorm:"column:token_id;primaryKey;autoIncrement"`
	Token     string    `gorm:"column:token;type:varchar(64);uniqueIndex;not null"`
	Label     *string   `gorm:"column:label;type:varchar(128)"`
	Scopes    *string   `gorm:"column:scopes;type:varchar(255)"`
	Revoked   int16     `gorm:"column:revoked;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (ApiToken) TableName() string {
	return "api_token"
}
