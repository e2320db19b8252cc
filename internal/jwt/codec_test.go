package jwt_test

import (
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"

	jwtx "github.com/socis-ca/website/internal/jwt"
)

func newTestKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generating key: %v", err)
	}
	return key
}

func TestSignVerifyRoundTrip(t *testing.T) {
	key := newTestKey(t)
	c := jwtx.NewCodecFromKeys(key, &key.PublicKey, "https://socis.ca", "socis-site", time.Hour)

	token, err := c.Sign(map[string]any{"sub": "acct-123", "name": "Ada", "email": "ada@socis.ca"})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	claims, err := c.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got := jwtx.ClaimString(claims, "sub"); got != "acct-123" {
		t.Fatalf("sub = %q, want acct-123", got)
	}
	if got := jwtx.ClaimString(claims, "iss"); got != "https://socis.ca" {
		t.Fatalf("iss = %q", got)
	}

	// Verificar dos veces el mismo token tiene que dar lo mismo.
	if _, err := c.Verify(token); err != nil {
		t.Fatalf("second verify: %v", err)
	}
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	signer := newTestKey(t)
	other := newTestKey(t)

	signC := jwtx.NewCodecFromKeys(signer, &signer.PublicKey, "iss", "aud", time.Hour)
	verifyC := jwtx.NewCodecFromKeys(nil, &other.PublicKey, "iss", "aud", time.Hour)

	token, err := signC.Sign(map[string]any{"sub": "x"})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := verifyC.Verify(token); !errors.Is(err, jwtx.ErrSignatureInvalid) {
		t.Fatalf("want ErrSignatureInvalid, got %v", err)
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	key := newTestKey(t)
	c := jwtx.NewCodecFromKeys(key, &key.PublicKey, "iss", "aud", time.Hour)

	// Token firmado a mano, vencido hace 2 minutos (fuera del leeway de 30s).
	now := time.Now()
	claims := jwtv5.MapClaims{
		"iss": "iss",
		"aud": "aud",
		"sub": "x",
		"iat": now.Add(-time.Hour).Unix(),
		"exp": now.Add(-2 * time.Minute).Unix(),
	}
	token, err := jwtv5.NewWithClaims(jwtv5.SigningMethodRS256, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := c.Verify(token); !errors.Is(err, jwtx.ErrClaimInvalid) {
		t.Fatalf("want ErrClaimInvalid for expired token, got %v", err)
	}
}

func TestVerifyRejectsWrongIssuerAudience(t *testing.T) {
	key := newTestKey(t)
	signC := jwtx.NewCodecFromKeys(key, &key.PublicKey, "https://otro.example", "socis-site", time.Hour)
	verifyC := jwtx.NewCodecFromKeys(nil, &key.PublicKey, "https://socis.ca", "socis-site", time.Hour)

	token, err := signC.Sign(map[string]any{"sub": "x"})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := verifyC.Verify(token); !errors.Is(err, jwtx.ErrClaimInvalid) {
		t.Fatalf("want ErrClaimInvalid for wrong issuer, got %v", err)
	}

	signC = jwtx.NewCodecFromKeys(key, &key.PublicKey, "https://socis.ca", "otra-aud", time.Hour)
	token, err = signC.Sign(map[string]any{"sub": "x"})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := verifyC.Verify(token); !errors.Is(err, jwtx.ErrClaimInvalid) {
		t.Fatalf("want ErrClaimInvalid for wrong audience, got %v", err)
	}
}

func TestSignWithoutPrivateKey(t *testing.T) {
	key := newTestKey(t)
	c := jwtx.NewCodecFromKeys(nil, &key.PublicKey, "iss", "aud", time.Hour)
	if _, err := c.Sign(map[string]any{"sub": "x"}); !errors.Is(err, jwtx.ErrNoPrivateKey) {
		t.Fatalf("want ErrNoPrivateKey, got %v", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	key := newTestKey(t)
	c := jwtx.NewCodecFromKeys(nil, &key.PublicKey, "iss", "aud", time.Hour)
	if _, err := c.Verify("not.a.jwt"); err == nil {
		t.Fatal("garbage token should not verify")
	}
}
