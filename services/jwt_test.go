package services

import (
	"testing"
	"time"

	"github.com/Piyush5784/maa-anapurna-trust-api/shared"
)

func newTestJWTService() *JWTService {
	return &JWTService{
		AccessTokenDuration: time.Hour,
		jwtSecretKey:        "test-session-secret",
	}
}

func TestTokenRoundTripCarriesRole(t *testing.T) {
	svc := newTestJWTService()

	pair, err := svc.GenerateTokenPair("user-1", shared.RoleAdmin)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if pair.ExpiresIn != 3600 {
		t.Errorf("expires_in = %d, want 3600", pair.ExpiresIn)
	}

	identity, err := svc.VerifyJWTToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if identity.UserID != "user-1" {
		t.Errorf("user id = %q, want user-1", identity.UserID)
	}
	if identity.Role != shared.RoleAdmin {
		t.Errorf("role = %q, want %q", identity.Role, shared.RoleAdmin)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer := newTestJWTService()
	pair, err := issuer.GenerateTokenPair("user-1", shared.RoleUser)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	verifier := &JWTService{
		AccessTokenDuration: time.Hour,
		jwtSecretKey:        "a-different-secret",
	}
	if _, err := verifier.VerifyJWTToken(pair.AccessToken); err == nil {
		t.Fatal("token signed with another secret must not verify")
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	svc := newTestJWTService()
	svc.AccessTokenDuration = -time.Minute

	pair, err := svc.GenerateTokenPair("user-1", shared.RoleUser)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := svc.VerifyJWTToken(pair.AccessToken); err == nil {
		t.Fatal("expired token must not verify")
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	svc := newTestJWTService()

	if _, err := svc.VerifyJWTToken("not-a-token"); err == nil {
		t.Fatal("malformed token must not verify")
	}
}

func TestExtractTokenFromHeader(t *testing.T) {
	svc := newTestJWTService()

	token, err := svc.ExtractTokenFromHeader("Bearer abc.def.ghi")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if token != "abc.def.ghi" {
		t.Errorf("token = %q, want abc.def.ghi", token)
	}

	if _, err := svc.ExtractTokenFromHeader(""); err == nil {
		t.Error("missing header should fail")
	}
	if _, err := svc.ExtractTokenFromHeader("Basic dXNlcjpwYXNz"); err == nil {
		t.Error("non-bearer scheme should fail")
	}
}
