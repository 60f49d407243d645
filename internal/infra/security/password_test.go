package security_test

import (
	"testing"

	"teachshare/internal/infra/security"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := security.HashPassword("s3cret-pw")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "s3cret-pw" {
		t.Fatal("hash must not equal the plaintext")
	}
	if !security.VerifyPassword(hash, "s3cret-pw") {
		t.Error("correct password must verify")
	}
	if security.VerifyPassword(hash, "wrong-pw") {
		t.Error("wrong password must not verify")
	}
}
