package secrets

import (
	"errors"
	"testing"

	"github.com/zalando/go-keyring"
)

func TestSetGetDelete(t *testing.T) {
	keyring.MockInit()

	if _, err := Get("prod db"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := Set("prod db", "s3cret"); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := Get("prod db")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "s3cret" {
		t.Fatalf("expected s3cret, got %q", got)
	}

	if err := Delete("prod db"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := Delete("prod db"); err != nil {
		t.Fatalf("second delete should be a no-op, got %v", err)
	}
}

func TestSanitizeKey(t *testing.T) {
	tests := map[string]string{
		"  ":                "empty",
		`srv\inst/db`:       "srv_inst_db",
		"sqlserver-a-b":     "sqlserver-a-b",
		"name with  spaces": "name_with_spaces",
	}
	for in, want := range tests {
		if got := sanitizeKey(in); got != want {
			t.Errorf("sanitizeKey(%q) = %q, want %q", in, got, want)
		}
	}
}
