package auth

import (
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	entity "storefront.GO/model/entity"
)

func authTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&entity.ApiToken{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func strptr(s string) *string { return &s }

func TestAuthRepository_FindActiveToken(t *testing.T) {
	db := authTestDB(t)
	repo := NewAuthRepository(db)

	tokens := []entity.ApiToken{
		{Token: "live-token", Scopes: strptr("cart:read,cart:write")},
		{Token: "revoked-token", Revoked: 1},
	}
	for i := range tokens {
		if err := db.Create(&tokens[i]).Error; err != nil {
			t.Fatal(err)
		}
	}

	got, err := repo.FindActiveToken("live-token")
	if err != nil {
		t.Fatalf("FindActiveToken: %v", err)
	}
	if got.Token != "live-token" {
		t.Errorf("token = %q", got.Token)
	}

	if _, err := repo.FindActiveToken("revoked-token"); err == nil {
		t.Error("revoked token must not resolve")
	}
	if _, err := repo.FindActiveToken("missing"); err == nil {
		t.Error("unknown token must not resolve")
	}
}

func TestAuthRepository_Scopes(t *testing.T) {
	repo := NewAuthRepository(authTestDB(t))

	tok := &entity.ApiToken{Scopes: strptr(" cart:read , gift:sweep ,")}
	got := repo.Scopes(tok)
	if len(got) != 2 || got[0] != "cart:read" || got[1] != "gift:sweep" {
		t.Errorf("scopes = %v", got)
	}
	if repo.Scopes(&entity.ApiToken{}) != nil {
		t.Error("no scopes column should parse to nil")
	}
	if repo.Scopes(nil) != nil {
		t.Error("nil token should parse to nil")
	}
}
