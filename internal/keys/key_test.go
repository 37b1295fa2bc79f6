package keys

import (
	"errors"
	"testing"
)

func Test(t *testing.T) {
	key, err := NewKey()
	if err != nil {
		t.Fatal(err)
	}

	plaintext := "session-id"

	sealed, err := key.SealString(plaintext)
	if err != nil {
		t.Fatal(err)
	}

	opened, err := key.OpenString(sealed)
	if err != nil {
		t.Fatal(err)
	}

	if plaintext != opened {
		t.Fatal("sealed != opened")
	}
}

func TestOpenTampered(t *testing.T) {
	key, err := NewKey()
	if err != nil {
		t.Fatal(err)
	}

	sealed, err := key.Seal([]byte("session-id"))
	if err != nil {
		t.Fatal(err)
	}
	sealed[len(sealed)-1] ^= 0xff

	if _, err := key.Open(sealed); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected %q, got %v", ErrMalformed, err)
	}
}

func TestOpenWrongKey(t *testing.T) {
	key, err := NewKey()
	if err != nil {
		t.Fatal(err)
	}
	other, err := NewKey()
	if err != nil {
		t.Fatal(err)
	}

	sealed, err := key.SealString("session-id")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := other.OpenString(sealed); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected %q, got %v", ErrMalformed, err)
	}
}

func TestParseKey(t *testing.T) {
	if _, err := ParseKey([]byte("short")); err == nil {
		t.Fatal("expected error for short key")
	}
	if _, err := ParseKey([]byte("0123456789abcdef")); err != nil {
		t.Fatal(err)
	}
}
