package auth

import (
	"strings"

	"gorm.io/gorm"

	entity "storefront.GO/model/entity"
)

type AuthRepository struct {
	db *gorm.DB
}

func NewAuthRepository(db *gorm.DB) *AuthRepository {
	return &AuthRepository{db: db}
}

// FindActiveToken returns a non-revoked API token by its token string.
func (r *AuthRepository) FindActiveToken(token string) (*entity.ApiToken, error) {
	var t entity.ApiToken
	err := r.db.Where("token = ? AND revoked = 0", token).First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Scopes returns the parsed scope list for a token.
func (r *AuthRepository) Scopes(token *entity.ApiToken) []string {
	if token == nil || token.Scopes == nil || *token.Scopes == "" {
		return nil
	}
	parts := strings.Split(*token.Scopes, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
