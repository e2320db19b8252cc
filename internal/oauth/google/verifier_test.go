package google_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"

	"github.com/socis-ca/website/internal/oauth/google"
)

const (
	testAudience = "client-id.apps.googleusercontent.com"
	testDomain   = "socis.ca"
)

func newKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generating key: %v", err)
	}
	return key
}

// signIDToken arma un ID token estilo Google con los overrides dados.
func signIDToken(t *testing.T, key *rsa.PrivateKey, kid string, overrides map[string]any) string {
	t.Helper()
	now := time.Now()
	claims := jwtv5.MapClaims{
		"iss":            "https://accounts.google.com",
		"aud":            testAudience,
		"sub":            "1059230482",
		"email":          "ada@socis.ca",
		"email_verified": true,
		"name":           "Ada Lovelace",
		"hd":             testDomain,
		"iat":            now.Unix(),
		"exp":            now.Add(time.Hour).Unix(),
	}
	for k, v := range overrides {
		if v == nil {
			delete(claims, k)
			continue
		}
		claims[k] = v
	}
	tok := jwtv5.NewWithClaims(jwtv5.SigningMethodRS256, claims)
	tok.Header["kid"] = kid
	signed, err := tok.SignedString(key)
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return signed
}

// jwksJSON serializa las claves públicas en formato JWKS.
func jwksJSON(t *testing.T, keys map[string]*rsa.PublicKey) []byte {
	t.Helper()
	type jwk struct {
		Kty string `json:"kty"`
		Alg string `json:"alg"`
		Kid string `json:"kid"`
		N   string `json:"n"`
		E   string `json:"e"`
	}
	var set struct {
		Keys []jwk `json:"keys"`
	}
	for kid, pub := range keys {
		set.Keys = append(set.Keys, jwk{
			Kty: "RSA",
			Alg: "RS256",
			Kid: kid,
			N:   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
			E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
		})
	}
	b, err := json.Marshal(set)
	if err != nil {
		t.Fatalf("marshaling jwks: %v", err)
	}
	return b
}

func newVerifier(t *testing.T, jwksURL string) *google.Verifier {
	t.Helper()
	v, err := google.New(google.Options{
		Audience:     testAudience,
		HostedDomain: testDomain,
		JWKSURL:      jwksURL,
	})
	if err != nil {
		t.Fatalf("building verifier: %v", err)
	}
	return v
}

func TestVerifyAgainstJWKS(t *testing.T) {
	key := newKey(t)
	body := jwksJSON(t, map[string]*rsa.PublicKey{"kid-1": &key.PublicKey})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	v := newVerifier(t, srv.URL)
	claims, err := v.Verify(context.Background(), signIDToken(t, key, "kid-1", nil))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Sub != "1059230482" {
		t.Fatalf("sub = %q", claims.Sub)
	}
	if claims.Email != "ada@socis.ca" || !claims.EmailVerified {
		t.Fatalf("email claims: %+v", claims)
	}
	if claims.HostedDomain != testDomain {
		t.Fatalf("hd = %q", claims.HostedDomain)
	}
}

func TestVerifyClaimRejections(t *testing.T) {
	key := newKey(t)
	body := jwksJSON(t, map[string]*rsa.PublicKey{"kid-1": &key.PublicKey})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	cases := []struct {
		name      string
		overrides map[string]any
		want      error
	}{
		{"wrong hosted domain", map[string]any{"hd": "otra.edu"}, google.ErrWrongDomain},
		{"missing hd (gmail account)", map[string]any{"hd": nil}, google.ErrWrongDomain},
		{"wrong audience", map[string]any{"aud": "otro-client"}, google.ErrWrongAudience},
		{"wrong issuer", map[string]any{"iss": "https://evil.example"}, google.ErrWrongIssuer},
		{"expired", map[string]any{"exp": time.Now().Add(-5 * time.Minute).Unix()}, google.ErrExpired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := newVerifier(t, srv.URL)
			_, err := v.Verify(context.Background(), signIDToken(t, key, "kid-1", tc.overrides))
			if !errors.Is(err, tc.want) {
				t.Fatalf("want %v, got %v", tc.want, err)
			}
		})
	}
}

func TestVerifyPinnedKey(t *testing.T) {
	key := newKey(t)
	v := google.NewPinned(&key.PublicKey, testAudience, testDomain)

	if _, err := v.Verify(context.Background(), signIDToken(t, key, "any-kid", nil)); err != nil {
		t.Fatalf("pinned verify: %v", err)
	}

	other := newKey(t)
	_, err := v.Verify(context.Background(), signIDToken(t, other, "any-kid", nil))
	if !errors.Is(err, google.ErrSignatureInvalid) {
		t.Fatalf("want ErrSignatureInvalid with wrong key, got %v", err)
	}
}

func TestVerifyRejectsMalformed(t *testing.T) {
	key := newKey(t)
	v := google.NewPinned(&key.PublicKey, testAudience, testDomain)

	if _, err := v.Verify(context.Background(), "garbage"); !errors.Is(err, google.ErrMalformed) {
		t.Fatalf("want ErrMalformed, got %v", err)
	}
}

func TestKeyRotationForcesSingleRefetch(t *testing.T) {
	oldKey := newKey(t)
	newSigningKey := newKey(t)

	var fetches atomic.Int32
	// Primer fetch sirve solo la clave vieja; los siguientes, el set rotado.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := fetches.Add(1)
		if n == 1 {
			_, _ = w.Write(jwksJSON(t, map[string]*rsa.PublicKey{"kid-old": &oldKey.PublicKey}))
			return
		}
		_, _ = w.Write(jwksJSON(t, map[string]*rsa.PublicKey{
			"kid-old": &oldKey.PublicKey,
			"kid-new": &newSigningKey.PublicKey,
		}))
	}))
	defer srv.Close()

	v := newVerifier(t, srv.URL)

	// Calienta el cache con la clave vieja.
	if _, err := v.Verify(context.Background(), signIDToken(t, oldKey, "kid-old", nil)); err != nil {
		t.Fatalf("warmup verify: %v", err)
	}
	if got := fetches.Load(); got != 1 {
		t.Fatalf("fetches after warmup = %d, want 1", got)
	}

	// Token con kid que el cache no conoce: un único refetch forzado.
	if _, err := v.Verify(context.Background(), signIDToken(t, newSigningKey, "kid-new", nil)); err != nil {
		t.Fatalf("post-rotation verify: %v", err)
	}
	if got := fetches.Load(); got != 2 {
		t.Fatalf("fetches after rotation = %d, want 2", got)
	}
}
