package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"casedesk_backend/internal/auth/repository"
)

type testConfig struct{}

func (testConfig) GetJWTAccessSecret() string        { return "access-secret" }
func (testConfig) GetJWTRefreshSecret() string       { return "refresh-secret" }
func (testConfig) GetAccessTokenTTL() time.Duration  { return 15 * time.Minute }
func (testConfig) GetRefreshTokenTTL() time.Duration { return 720 * time.Hour }

func testUser() repository.User {
	return repository.User{
		ID:        uuid.New(),
		Email:     "julia@example.com",
		StaffName: "Julia Brandt",
		Role:      "manager",
	}
}

func TestAccessTokenCarriesNameAndRole(t *testing.T) {
	s := New(nil, testConfig{}, nil, nil)
	user := testUser()

	access, _, err := s.issueTokens(user)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := s.parseToken(access, accessTokenType, "access-secret")
	if err != nil {
		t.Fatalf("access token must parse: %v", err)
	}
	if claims["sub"] != user.ID.String() {
		t.Errorf("sub = %v, want %s", claims["sub"], user.ID)
	}
	if claims["name"] != "Julia Brandt" {
		t.Errorf("name = %v, want Julia Brandt", claims["name"])
	}
	if claims["role"] != "manager" {
		t.Errorf("role = %v, want manager", claims["role"])
	}
}

func TestTokenTypesAreNotInterchangeable(t *testing.T) {
	s := New(nil, testConfig{}, nil, nil)

	access, refresh, err := s.issueTokens(testUser())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := s.parseToken(access, refreshTokenType, "refresh-secret"); err == nil {
		t.Error("an access token must not pass as a refresh token")
	}
	if _, err := s.parseToken(refresh, accessTokenType, "access-secret"); err == nil {
		t.Error("a refresh token must not pass as an access token")
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	s := New(nil, testConfig{}, nil, nil)

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": uuid.NewString(), "type": accessTokenType,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	raw, err := forged.SignedString([]byte("wrong-secret"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := s.parseToken(raw, accessTokenType, "access-secret"); err == nil {
		t.Error("a token signed with the wrong secret must be rejected")
	}
}
