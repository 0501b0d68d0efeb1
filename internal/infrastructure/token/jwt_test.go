package token

import (
	"strings"
	"testing"
	"time"
)

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	codec, err := NewCodec("test-secret", time.Minute)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}

	signed, err := codec.Issue("user-1", "alice")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	subject, err := codec.Verify(signed)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if subject != "alice" {
		t.Fatalf("expected subject alice, got %q", subject)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	codec, err := NewCodec("test-secret", time.Minute)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}

	issuedAt := time.Now().Add(-time.Hour)
	codec.now = func() time.Time { return issuedAt }
	signed, err := codec.Issue("user-1", "alice")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	codec.now = time.Now
	if _, err := codec.Verify(signed); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer, _ := NewCodec("secret-a", time.Minute)
	verifier, _ := NewCodec("secret-b", time.Minute)

	signed, err := issuer.Issue("user-1", "alice")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := verifier.Verify(signed); err == nil {
		t.Fatal("expected token signed with another secret to be rejected")
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	codec, _ := NewCodec("test-secret", time.Minute)
	if _, err := codec.Verify("not-a-token"); err == nil {
		t.Fatal("expected parse failure")
	}
	if _, err := codec.Verify(strings.Repeat("a.", 3)); err == nil {
		t.Fatal("expected parse failure")
	}
}

func TestNewCodecRequiresSecret(t *testing.T) {
	if _, err := NewCodec("", time.Minute); err == nil {
		t.Fatal("expected error for empty secret")
	}
}
