package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Token codec errors
var (
	ErrMalformedToken   = errors.New("token is malformed")
	ErrInvalidSignature = errors.New("token signature is invalid")
)

// LocationPayload binds a QR code to an organization and one of its
// check-in locations.
type LocationPayload struct {
	OrganizationID string `json:"organization_id"`
	LocationID     string `json:"location_id"`
}

// VisitorPayload binds a visitor pass to an organization.
type VisitorPayload struct {
	VisitorID      string   `json:"visitor_id"`
	OrganizationID string   `json:"organization_id"`
	Name           string   `json:"name"`
	EntryWindow    string   `json:"entry_window,omitempty"`
	AccessAreas    []string `json:"access_areas,omitempty"`
}

// Codec signs and verifies attendance QR tokens. The wire format is
// base64(payload + "." + hex(hmac-sha256(payload))), where payload is
// the JSON serialization of the bound record. The secret is a static
// deployment-wide key and may be supplied base64-encoded.
type Codec struct {
	secret []byte
}

func NewCodec(secret string) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("token secret is required")
	}
	key := []byte(secret)
	if decoded, err := base64.StdEncoding.DecodeString(secret); err == nil && len(decoded) > 0 {
		key = decoded
	}
	return &Codec{secret: key}, nil
}

// SignLocation issues a signed token for a location QR code.
func (c *Codec) SignLocation(payload LocationPayload) (string, error) {
	return c.sign(payload)
}

// SignVisitor issues a signed token for a visitor pass.
func (c *Codec) SignVisitor(payload VisitorPayload) (string, error) {
	return c.sign(payload)
}

// VerifyLocation verifies a location token and recovers its payload.
// The payload must never be used unless verification succeeded.
func (c *Codec) VerifyLocation(token string) (LocationPayload, error) {
	var payload LocationPayload
	raw, err := c.verify(token)
	if err != nil {
		return LocationPayload{}, err
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return LocationPayload{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	return payload, nil
}

// VerifyVisitor verifies a visitor token and recovers its payload.
func (c *Codec) VerifyVisitor(token string) (VisitorPayload, error) {
	var payload VisitorPayload
	raw, err := c.verify(token)
	if err != nil {
		return VisitorPayload{}, err
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return VisitorPayload{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	return payload, nil
}

func (c *Codec) sign(payload interface{}) (string, error) {
	serialized, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to serialize token payload: %w", err)
	}

	signed := append(serialized, '.')
	signed = append(signed, []byte(hex.EncodeToString(c.mac(serialized)))...)

	return base64.StdEncoding.EncodeToString(signed), nil
}

func (c *Codec) verify(token string) ([]byte, error) {
	decoded, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, ErrMalformedToken
	}

	// The JSON payload may itself contain dots, so the separator is the
	// LAST dot in the decoded token.
	sep := strings.LastIndexByte(string(decoded), '.')
	if sep < 0 {
		return nil, ErrMalformedToken
	}

	payload := decoded[:sep]
	signature, err := hex.DecodeString(string(decoded[sep+1:]))
	if err != nil {
		return nil, ErrMalformedToken
	}

	if !hmac.Equal(signature, c.mac(payload)) {
		return nil, ErrInvalidSignature
	}

	return payload, nil
}

func (c *Codec) mac(payload []byte) []byte {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write(payload)
	return mac.Sum(nil)
}
