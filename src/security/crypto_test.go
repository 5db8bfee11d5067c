package security

import (
	"errors"
	"testing"
)

func TestSealOpenRoundTrip(t *testing.T) {
	sealer, err := NewSealer("test-secret")
	if err != nil {
		t.Fatalf("NewSealer returned error: %v", err)
	}

	sealed, err := sealer.Seal("my-session-token")
	if err != nil {
		t.Fatalf("Seal returned error: %v", err)
	}
	if sealed == "my-session-token" {
		t.Fatal("sealed value equals plaintext")
	}

	opened, err := sealer.Open(sealed)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if opened != "my-session-token" {
		t.Errorf("Open = %q, want %q", opened, "my-session-token")
	}
}

func TestSealIsSalted(t *testing.T) {
	sealer, err := NewSealer("test-secret")
	if err != nil {
		t.Fatalf("NewSealer returned error: %v", err)
	}
	a, _ := sealer.Seal("same-value")
	b, _ := sealer.Seal("same-value")
	if a == b {
		t.Error("two seals of the same plaintext produced identical ciphertexts")
	}
}

func TestOpenWrongSecret(t *testing.T) {
	sealer, _ := NewSealer("secret-one")
	other, _ := NewSealer("secret-two")

	sealed, err := sealer.Seal("token")
	if err != nil {
		t.Fatalf("Seal returned error: %v", err)
	}
	if _, err := other.Open(sealed); !errors.Is(err, ErrCiphertextInvalid) {
		t.Errorf("Open with wrong secret: got %v, want ErrCiphertextInvalid", err)
	}
}

func TestOpenGarbage(t *testing.T) {
	sealer, _ := NewSealer("test-secret")
	for _, input := range []string{"not base64 !!!", "c2hvcnQ=", "YWJj"} {
		if _, err := sealer.Open(input); !errors.Is(err, ErrCiphertextInvalid) {
			t.Errorf("Open(%q): got %v, want ErrCiphertextInvalid", input, err)
		}
	}
}

func TestEmptyValuePassesThrough(t *testing.T) {
	sealer, _ := NewSealer("test-secret")
	sealed, err := sealer.Seal("")
	if err != nil || sealed != "" {
		t.Errorf("Seal(\"\") = %q, %v, want empty and nil", sealed, err)
	}
	opened, err := sealer.Open("")
	if err != nil || opened != "" {
		t.Errorf("Open(\"\") = %q, %v, want empty and nil", opened, err)
	}
}

func TestNewSealerRejectsEmptySecret(t *testing.T) {
	if _, err := NewSealer(""); err == nil {
		t.Error("NewSealer(\"\") succeeded, want error")
	}
}
