package auth

import (
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashPasswordAndVerify(t *testing.T) {
	password := "s1deline-pass!"

	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if hash == "" {
		t.Fatal("expected non-empty hash")
	}
	if hash == password {
		t.Fatal("expected hash to differ from password")
	}

	if !VerifyPassword(hash, password) {
		t.Fatal("expected password to verify")
	}
	if VerifyPassword(hash, "wrong") {
		t.Fatal("expected password mismatch to fail")
	}
}

func TestVerifyPasswordWithInvalidHash(t *testing.T) {
	if VerifyPassword("not-a-valid-hash", "password") {
		t.Fatal("expected invalid hash to fail verification")
	}
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	if _, err := HashPassword(""); !errors.Is(err, ErrEmptyPassword) {
		t.Fatalf("expected ErrEmptyPassword, got %v", err)
	}
}

func TestNeedsRehash(t *testing.T) {
	current, err := HashPassword("s1deline-pass!")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if NeedsRehash(current) {
		t.Fatal("fresh hash should not need a rehash")
	}

	weak, err := bcrypt.GenerateFromPassword([]byte("s1deline-pass!"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("weak hash: %v", err)
	}
	if !NeedsRehash(string(weak)) {
		t.Fatal("min-cost hash should need a rehash")
	}
	if !NeedsRehash("not-a-valid-hash") {
		t.Fatal("invalid hash should need a rehash")
	}
}
