package auth

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

// Cost 4 is bcrypt's minimum; tests run in milliseconds instead of ~250ms.
func newTestPasswordService() *PasswordService {
	return NewPasswordService(bcrypt.MinCost)
}

// =========================================================================
// Hash
// =========================================================================

func TestHash_LooksBcrypt(t *testing.T) {
	ps := newTestPasswordService()

	hash, err := ps.Hash("robotica2025")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if !strings.HasPrefix(hash, "$2a$04$") {
		t.Errorf("Hash() = %q, want $2a$04$ prefix", hash)
	}
	if strings.Contains(hash, "robotica2025") {
		t.Error("hash contains the plaintext")
	}
}

func TestHash_Salted(t *testing.T) {
	ps := newTestPasswordService()

	h1, _ := ps.Hash("same")
	h2, _ := ps.Hash("same")
	if h1 == h2 {
		t.Error("two hashes of the same password should differ")
	}
}

func TestHash_Length(t *testing.T) {
	ps := newTestPasswordService()

	if _, err := ps.Hash(strings.Repeat("a", 72)); err != nil {
		t.Errorf("Hash(72 bytes) error = %v", err)
	}
	if _, err := ps.Hash(strings.Repeat("a", 73)); err == nil {
		t.Error("Hash(73 bytes) should fail")
	}
	if _, err := ps.Hash(""); err != nil {
		t.Errorf("Hash(\"\") error = %v", err)
	}
}

// =========================================================================
// Verify
// =========================================================================

func TestVerify(t *testing.T) {
	ps := newTestPasswordService()
	hash, _ := ps.Hash("correct-horse")

	if err := ps.Verify(hash, "correct-horse"); err != nil {
		t.Errorf("Verify(correct) error = %v", err)
	}
	if err := ps.Verify(hash, "Correct-horse"); !errors.Is(err, ErrPasswordMismatch) {
		t.Errorf("Verify(wrong case) error = %v, want ErrPasswordMismatch", err)
	}
	if err := ps.Verify(hash, ""); !errors.Is(err, ErrPasswordMismatch) {
		t.Errorf("Verify(empty) error = %v, want ErrPasswordMismatch", err)
	}
}

func TestVerify_UnusableHash(t *testing.T) {
	ps := newTestPasswordService()

	err := ps.Verify("not-a-bcrypt-hash", "anything")
	if err == nil || errors.Is(err, ErrPasswordMismatch) {
		t.Errorf("Verify(bad hash) error = %v, want a non-mismatch error", err)
	}
}

func TestNewPasswordService_CostRange(t *testing.T) {
	for _, cost := range []int{0, 3, 32} {
		if got := NewPasswordService(cost).cost; got != bcrypt.DefaultCost {
			t.Errorf("NewPasswordService(%d).cost = %d, want %d", cost, got, bcrypt.DefaultCost)
		}
	}
	if got := NewPasswordService(4).cost; got != 4 {
		t.Errorf("NewPasswordService(4).cost = %d", got)
	}
}
