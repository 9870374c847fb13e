package token

import (
	"encoding/base64"
	"strings"
	"testing"
)

func newTestCodec(t *testing.T, secret string) *Codec {
	t.Helper()
	c, err := NewCodec(secret)
	if err != nil {
		t.Fatalf("NewCodec(%q) failed: %v", secret, err)
	}
	return c
}

func TestLocationTokenRoundTrip(t *testing.T) {
	c := newTestCodec(t, "attendance-secret")

	payloads := []LocationPayload{
		{OrganizationID: "org-1", LocationID: "loc-1"},
		{OrganizationID: "0199d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b", LocationID: "front-gate"},
		{OrganizationID: "org.with.dots", LocationID: "loc.with.dots"},
	}

	for _, want := range payloads {
		tok, err := c.SignLocation(want)
		if err != nil {
			t.Fatalf("SignLocation(%+v) failed: %v", want, err)
		}
		got, err := c.VerifyLocation(tok)
		if err != nil {
			t.Fatalf("VerifyLocation failed for %+v: %v", want, err)
		}
		if got != want {
			t.Errorf("round trip = %+v, want %+v", got, want)
		}
	}
}

func TestVisitorTokenRoundTrip(t *testing.T) {
	c := newTestCodec(t, "attendance-secret")

	want := VisitorPayload{
		VisitorID:      "vis-9",
		OrganizationID: "org-1",
		Name:           "A. Visitor",
		EntryWindow:    "09:00-17:00",
		AccessAreas:    []string{"lobby", "floor-2"},
	}

	tok, err := c.SignVisitor(want)
	if err != nil {
		t.Fatalf("SignVisitor failed: %v", err)
	}
	got, err := c.VerifyVisitor(tok)
	if err != nil {
		t.Fatalf("VerifyVisitor failed: %v", err)
	}
	if got.VisitorID != want.VisitorID || got.Name != want.Name || len(got.AccessAreas) != 2 {
		t.Errorf("round trip = %+v, want %+v", got, want)
	}
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	c := newTestCodec(t, "attendance-secret")

	tok, err := c.SignLocation(LocationPayload{OrganizationID: "org-1", LocationID: "loc-1"})
	if err != nil {
		t.Fatalf("SignLocation failed: %v", err)
	}

	raw, _ := base64.StdEncoding.DecodeString(tok)
	for i := range raw {
		flipped := make([]byte, len(raw))
		copy(flipped, raw)
		flipped[i] ^= 0x01
		tampered := base64.StdEncoding.EncodeToString(flipped)
		if _, err := c.VerifyLocation(tampered); err == nil {
			t.Fatalf("VerifyLocation accepted token with byte %d flipped", i)
		}
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	signer := newTestCodec(t, "secret-a")
	verifier := newTestCodec(t, "secret-b")

	tok, err := signer.SignLocation(LocationPayload{OrganizationID: "org-1", LocationID: "loc-1"})
	if err != nil {
		t.Fatalf("SignLocation failed: %v", err)
	}

	if _, err := verifier.VerifyLocation(tok); err != ErrInvalidSignature {
		t.Errorf("VerifyLocation with wrong secret = %v, want ErrInvalidSignature", err)
	}
}

func TestVerifyRejectsMalformedTokens(t *testing.T) {
	c := newTestCodec(t, "attendance-secret")

	malformed := []string{
		"",
		"not-base64!!!",
		base64.StdEncoding.EncodeToString([]byte("no separator here")),
		base64.StdEncoding.EncodeToString([]byte(`{"organization_id":"o"}.nothex`)),
	}
	for _, tok := range malformed {
		if _, err := c.VerifyLocation(tok); err == nil {
			t.Errorf("VerifyLocation(%q) succeeded, want rejection", tok)
		}
	}
}

func TestBase64WrappedSecret(t *testing.T) {
	rawKey := "shared-deployment-key-000000"
	wrapped := base64.StdEncoding.EncodeToString([]byte(rawKey))

	signer := newTestCodec(t, wrapped)
	tok, err := signer.SignLocation(LocationPayload{OrganizationID: "org-1", LocationID: "loc-1"})
	if err != nil {
		t.Fatalf("SignLocation failed: %v", err)
	}

	// A codec built from the same wrapped secret must verify.
	if _, err := newTestCodec(t, wrapped).VerifyLocation(tok); err != nil {
		t.Errorf("verification with identical wrapped secret failed: %v", err)
	}
}

func TestSignedTokenIsOpaque(t *testing.T) {
	c := newTestCodec(t, "attendance-secret")
	tok, err := c.SignLocation(LocationPayload{OrganizationID: "org-1", LocationID: "loc-1"})
	if err != nil {
		t.Fatalf("SignLocation failed: %v", err)
	}
	if strings.Contains(tok, "org-1") {
		t.Errorf("token exposes raw payload fields: %q", tok)
	}
}
