package auth

import (
	"errors"
	"strings"
	"testing"
)

func TestPasswordManager_HashVerify(t *testing.T) {
	t.Parallel()

	pm := NewPasswordManager("test-pepper")

	tests := []struct {
		name     string
		password string
	}{
		{"simple", "hunter2"},
		{"empty", ""},
		{"unicode", "pässwörd-✓"},
		{"long", strings.Repeat("long-password-", 20)},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			hash, err := pm.Hash(tt.password)
			if err != nil {
				t.Fatalf("Hash failed: %v", err)
			}

			match, err := pm.Verify(tt.password, hash)
			if err != nil {
				t.Fatalf("Verify failed: %v", err)
			}
			if !match {
				t.Error("password should verify against its own hash")
			}

			match, err = pm.Verify(tt.password+"x", hash)
			if err != nil {
				t.Fatalf("Verify failed: %v", err)
			}
			if match {
				t.Error("altered password should not verify")
			}
		})
	}
}

func TestPasswordManager_PepperIsApplied(t *testing.T) {
	t.Parallel()

	pm := NewPasswordManager("pepper-a")

	hash, err := pm.Hash("secret")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	// The stored hash covers pepper+password, not the bare password.
	bare, err := VerifyPassword("secret", hash)
	if err != nil {
		t.Fatalf("VerifyPassword failed: %v", err)
	}
	if bare {
		t.Error("bare password should not match a peppered hash")
	}

	peppered, err := VerifyPassword("pepper-asecret", hash)
	if err != nil {
		t.Fatalf("VerifyPassword failed: %v", err)
	}
	if !peppered {
		t.Error("pepper+password should match")
	}

	other := NewPasswordManager("pepper-b")
	if match, _ := other.Verify("secret", hash); match {
		t.Error("a different pepper must not verify")
	}
}

func TestPasswordManager_DefaultPepper(t *testing.T) {
	t.Parallel()

	if !NewPasswordManager("").UsesDefaultPepper() {
		t.Error("empty pepper should select the default")
	}
	if NewPasswordManager("custom").UsesDefaultPepper() {
		t.Error("custom pepper should not report the default")
	}
}

func TestHashPassword_Format(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	parts := strings.Split(hash, "$")
	if len(parts) != 6 {
		t.Fatalf("Hash should have 6 parts, got: %d", len(parts))
	}
	if parts[1] != "argon2id" {
		t.Errorf("Expected argon2id algorithm, got: %s", parts[1])
	}
	if parts[2] != "v=19" {
		t.Errorf("Expected v=19, got: %s", parts[2])
	}
	if parts[3] != "m=65536,t=3,p=4" {
		t.Errorf("Expected m=65536,t=3,p=4, got: %s", parts[3])
	}
}

func TestHashPassword_Uniqueness(t *testing.T) {
	t.Parallel()

	hash1, err := HashPassword("same-password")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	hash2, err := HashPassword("same-password")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	if hash1 == hash2 {
		t.Error("Same password should produce different hashes due to random salt")
	}
}

func TestVerifyPassword_InvalidHashFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		hash    string
		wantErr error
	}{
		{"empty", "", ErrInvalidHash},
		{"wrong format", "not-a-hash", ErrInvalidHash},
		{"bcrypt hash", "$2b$12$abcdefghijklmnopqrstuuABCDEFGHIJKLMNOPQRSTUVWXYZ01234", ErrInvalidHash},
		{"missing parts", "$argon2id$v=19$m=65536", ErrInvalidHash},
		{"wrong version", "$argon2id$v=18$m=65536,t=3,p=4$c29tZXNhbHRoZXJl$c29tZWhhc2hoZXJl", ErrIncompatibleVersion},
		{"bad salt", "$argon2id$v=19$m=65536,t=3,p=4$!!!$c29tZWhhc2hoZXJl", ErrInvalidHash},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			match, err := VerifyPassword("password", tt.hash)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("VerifyPassword(%q) error = %v, want %v", tt.hash, err, tt.wantErr)
			}
			if match {
				t.Error("malformed hash must never match")
			}
		})
	}
}

func TestQuickHash(t *testing.T) {
	t.Parallel()

	a := QuickHash("token-one")
	if a != QuickHash("token-one") {
		t.Error("Same input should produce same hash")
	}
	if a == QuickHash("token-two") {
		t.Error("Different input should produce different hash")
	}
	if len(a) != 32 {
		t.Errorf("Hash should be 32 chars, got: %d", len(a))
	}
}
