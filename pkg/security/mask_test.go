package security_test

import (
	"testing"

	"github.com/motorclubhq/clubhub-backend/pkg/security"
)

func TestMaskSecretLongKey(t *testing.T) {
	got := security.MaskSecret("AbCdEfGhIjKlMnOp")
	if got != "AbCd****MnOp" {
		t.Fatalf("unexpected mask %q", got)
	}
}

func TestMaskSecretShortKey(t *testing.T) {
	if got := security.MaskSecret("abcdefgh"); got != "****efgh" {
		t.Fatalf("unexpected mask %q", got)
	}
	if got := security.MaskSecret("abc"); got != "****abc" {
		t.Fatalf("unexpected mask %q", got)
	}
}

func TestMaskSecretEmpty(t *testing.T) {
	if got := security.MaskSecret("  "); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}

func TestMaskSecretNeverLeaksMiddle(t *testing.T) {
	secret := "sk-A1B2C3D4E5F6G7H8"
	got := security.MaskSecret(secret)
	if len(got) >= len(secret) {
		t.Fatalf("mask should shorten long keys: %q", got)
	}
}
