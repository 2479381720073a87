package auth

import (
	"testing"

	"blogmetrics/internal/gate"
)

func TestSecretsEqual(t *testing.T) {
	if !SecretsEqual([]byte("s3cret"), []byte("s3cret")) {
		t.Fatal("expected equal secrets to match")
	}
	if SecretsEqual([]byte("s3cret"), []byte("s3creT")) {
		t.Fatal("expected mismatching secrets to fail")
	}
	if SecretsEqual([]byte("short"), []byte("much-longer-secret")) {
		t.Fatal("expected length mismatch to fail")
	}
}

func TestSecretsEqual_MismatchAtEveryPosition(t *testing.T) {
	expected := []byte("0123456789abcdef")
	for i := range expected {
		provided := append([]byte(nil), expected...)
		provided[i] ^= 0xff
		if SecretsEqual(provided, expected) {
			t.Fatalf("expected mismatch at byte %d to fail", i)
		}
	}
}

func TestSecretsEqual_NoSecretConfiguredDeniesEverything(t *testing.T) {
	if SecretsEqual([]byte(""), []byte("")) {
		t.Fatal("empty expected secret must never match, even an empty token")
	}
	if SecretsEqual([]byte("anything"), nil) {
		t.Fatal("nil expected secret must never match")
	}
}

func TestAuthenticate(t *testing.T) {
	a := New("s3cret")

	cases := []struct {
		name    string
		header  string
		allowed bool
	}{
		{"valid", "Bearer s3cret", true},
		{"valid with surrounding space", "Bearer  s3cret ", true},
		{"missing header", "", false},
		{"wrong token", "Bearer nope", false},
		{"wrong scheme", "Basic s3cret", false},
		{"empty token", "Bearer ", false},
		{"bare token without scheme", "s3cret", false},
	}
	for _, tc := range cases {
		d := a.Authenticate([]byte(tc.header))
		if d.Allowed != tc.allowed {
			t.Fatalf("%s: allowed=%v, want %v", tc.name, d.Allowed, tc.allowed)
		}
		if !tc.allowed && d.Reason != gate.ReasonInvalidCredential {
			t.Fatalf("%s: reason=%s, want invalid_credential", tc.name, d.Reason)
		}
	}
}

func TestAuthenticate_NoSecretConfigured(t *testing.T) {
	a := New("")

	if d := a.Authenticate([]byte("Bearer whatever")); d.Allowed {
		t.Fatal("expected deny when no secret is configured")
	}
}
