package application

import (
	"errors"
	"strings"
	"testing"
)

var testArgon2Params = Argon2idParams{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 8, KeyLength: 16}

func TestEditTokenRoundTrip(t *testing.T) {
	t.Parallel()

	token := NewEditToken()
	if len(token) != 32 {
		t.Fatalf("expected 32 character token, got %d", len(token))
	}

	hash, err := HashEditToken(token, testArgon2Params)
	if err != nil {
		t.Fatalf("HashEditToken: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$m=1024,t=1,p=1$") {
		t.Fatalf("unexpected hash encoding %q", hash)
	}
	if strings.Contains(hash, token) {
		t.Fatalf("hash must not contain the token")
	}

	if err := VerifyEditToken(hash, token); err != nil {
		t.Fatalf("expected token to verify: %v", err)
	}
	if err := VerifyEditToken(hash, token+"x"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for wrong token, got %v", err)
	}
	if err := VerifyEditToken(hash, ""); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for empty token, got %v", err)
	}
}

func TestVerifyEditTokenRejectsMalformedHash(t *testing.T) {
	t.Parallel()

	if err := VerifyEditToken("plain", "token"); !errors.Is(err, ErrInvalidTokenHash) {
		t.Fatalf("expected ErrInvalidTokenHash, got %v", err)
	}
	if err := VerifyEditToken("$argon2id$v=1$m=1,t=1,p=1$AA$AA", "token"); !errors.Is(err, ErrIncompatibleTokenVersion) {
		t.Fatalf("expected ErrIncompatibleTokenVersion, got %v", err)
	}
}
