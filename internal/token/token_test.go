package token

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

const testSecret = "test-secret-that-is-long-enough"

func TestMintVerifyRoundTrip(t *testing.T) {
	userID := uuid.New()

	signed, err := Mint(testSecret, userID, "bob@example.com", time.Hour)
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}

	got, err := Verify(testSecret, signed)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if got != userID {
		t.Errorf("expected subject %s, got %s", userID, got)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	signed, err := Mint(testSecret, uuid.New(), "", time.Hour)
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}

	if _, err := Verify("a-different-secret-entirely", signed); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyExpired(t *testing.T) {
	signed, err := Mint(testSecret, uuid.New(), "", -time.Minute)
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}

	if _, err := Verify(testSecret, signed); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("expected ErrExpiredToken, got %v", err)
	}
}

func TestVerifyGarbage(t *testing.T) {
	if _, err := Verify(testSecret, "not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}
