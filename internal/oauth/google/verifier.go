// Package google verifica ID tokens emitidos por Google y fuerza la
// pertenencia a la organización vía el claim "hd" (hosted domain).
//
// Las claves públicas de Google rotan: se resuelven por "kid" contra el
// JWKS remoto, con cache + ETag y rate limit para no martillar el
// endpoint en cada request. En modo test/offline se usa una clave RSA
// pineada desde un PEM local y no se toca la red.
package google

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	jwtx "github.com/socis-ca/website/internal/jwt"
	"github.com/socis-ca/website/internal/metrics"
)

// DefaultJWKSURL es el key set público de Google.
const DefaultJWKSURL = "https://www.googleapis.com/oauth2/v3/certs"

// Issuers aceptados por Google para ID tokens.
var acceptedIssuers = []string{"https://accounts.google.com", "accounts.google.com"}

var (
	// ErrMalformed indica que el token no es un JWT bien formado.
	ErrMalformed = errors.New("google: malformed token")

	// ErrSignatureInvalid indica que la firma no verifica con ninguna
	// clave conocida. Fatal para ese token, nunca se reintenta.
	ErrSignatureInvalid = errors.New("google: invalid signature")

	// ErrWrongAudience indica que el aud no coincide con el client ID.
	ErrWrongAudience = errors.New("google: wrong audience")

	// ErrWrongIssuer indica un iss que no es de Google.
	ErrWrongIssuer = errors.New("google: wrong issuer")

	// ErrWrongDomain indica que el hd no es el dominio de la organización.
	// Es un fallo de VERIFICACIÓN, no de autorización: el token entero
	// se rechaza.
	ErrWrongDomain = errors.New("google: token is not for the correct domain")

	// ErrExpired indica que el token está vencido.
	ErrExpired = errors.New("google: token expired")

	// ErrKeyUnavailable indica que no se pudo resolver la clave de firma
	// (fetch fallido, rate limit sin cache, o kid desconocido).
	ErrKeyUnavailable = errors.New("google: signing key unavailable")
)

type jwk struct {
	Kty string `json:"kty"`
	Alg string `json:"alg"`
	Kid string `json:"kid"`
	Use string `json:"use"`
	N   string `json:"n"` // base64url
	E   string `json:"e"` // base64url
}

type jwks struct {
	Keys []jwk `json:"keys"`
}

// Options configura el verifier.
type Options struct {
	// Audience es el client ID de Google esperado en "aud".
	Audience string

	// HostedDomain es el dominio de la organización. El claim "hd" tiene
	// que estar presente y ser exactamente igual.
	HostedDomain string

	// JWKSURL permite apuntar a otro key set (tests). Default: Google.
	JWKSURL string

	// PinnedPublicKeyPath: PEM con una clave RSA fija. Si está seteado,
	// el verifier nunca sale a la red.
	PinnedPublicKeyPath string

	// HTTPClient opcional; default con timeout de 10s.
	HTTPClient *http.Client

	// CacheTTL de la copia local del JWKS. Default 1h.
	CacheTTL time.Duration
}

// Claims es el payload decodificado de un ID token verificado.
// Solo se construye acá, después de que firma y claims pasaron.
type Claims struct {
	Sub           string
	Email         string
	EmailVerified bool
	Name          string
	GivenName     string
	FamilyName    string
	Picture       string
	HostedDomain  string
	IssuedAt      time.Time
	ExpiresAt     time.Time
	Raw           map[string]any
}

// Verifier valida ID tokens de Google. Seguro para uso concurrente: el
// cache de JWKS se comparte entre verificaciones y los refresh se
// deduplican con singleflight.
type Verifier struct {
	audience string
	domain   string
	jwksURL  string
	pinned   *rsa.PublicKey

	http     *http.Client
	cacheTTL time.Duration
	limiter  *rate.Limiter
	sf       singleflight.Group

	mu     sync.RWMutex
	keys   *jwks
	keysAt time.Time
	etag   string
}

// New construye el verifier. Carga la clave pineada si fue configurada.
func New(opts Options) (*Verifier, error) {
	if opts.Audience == "" {
		return nil, errors.New("google: audience requerida")
	}
	if opts.HostedDomain == "" {
		return nil, errors.New("google: hosted domain requerido")
	}

	v := &Verifier{
		audience: opts.Audience,
		domain:   opts.HostedDomain,
		jwksURL:  opts.JWKSURL,
		http:     opts.HTTPClient,
		cacheTTL: opts.CacheTTL,
		// A lo sumo un fetch remoto cada 10s, con ráfaga inicial de 3.
		limiter: rate.NewLimiter(rate.Every(10*time.Second), 3),
	}
	if v.jwksURL == "" {
		v.jwksURL = DefaultJWKSURL
	}
	if v.http == nil {
		v.http = &http.Client{Timeout: 10 * time.Second}
	}
	if v.cacheTTL <= 0 {
		v.cacheTTL = time.Hour
	}

	if opts.PinnedPublicKeyPath != "" {
		pk, err := jwtx.LoadRSAPublicKey(opts.PinnedPublicKeyPath)
		if err != nil {
			return nil, err
		}
		v.pinned = pk
	}
	return v, nil
}

// NewPinned construye un verifier con una clave ya parseada (tests).
func NewPinned(pub *rsa.PublicKey, audience, hostedDomain string) *Verifier {
	return &Verifier{
		audience: audience,
		domain:   hostedDomain,
		pinned:   pub,
		http:     &http.Client{Timeout: 10 * time.Second},
		cacheTTL: time.Hour,
		limiter:  rate.NewLimiter(rate.Every(10*time.Second), 3),
	}
}

// Verify valida firma, iss, aud, hd y vigencia del ID token.
// Si la firma falla con un JWKS cacheado (posible rotación de claves a
// mitad de cache), fuerza UN solo re-fetch y reintenta una vez.
func (v *Verifier) Verify(ctx context.Context, idToken string) (*Claims, error) {
	header, err := parseHeader(idToken)
	if err != nil {
		return nil, err
	}
	if header.Alg != "RS256" {
		return nil, fmt.Errorf("%w: alg %q", ErrMalformed, header.Alg)
	}

	if v.pinned != nil {
		claims, err := v.parseWithKey(idToken, v.pinned)
		if err != nil {
			return nil, err
		}
		return v.checkClaims(claims)
	}

	var claims jwtv5.MapClaims
	key, err := v.keyForKID(ctx, header.Kid, false)
	if err == nil {
		claims, err = v.parseWithKey(idToken, key)
	}
	if errors.Is(err, ErrSignatureInvalid) || errors.Is(err, ErrKeyUnavailable) {
		// Cache viejo por rotación de claves (kid desconocido o firma que
		// no verifica): un único refresh forzado antes de fallar.
		key, rerr := v.keyForKID(ctx, header.Kid, true)
		if rerr != nil {
			return nil, rerr
		}
		claims, err = v.parseWithKey(idToken, key)
	}
	if err != nil {
		return nil, err
	}
	return v.checkClaims(claims)
}

type tokenHeader struct {
	Alg string `json:"alg"`
	Kid string `json:"kid"`
	Typ string `json:"typ"`
}

func parseHeader(token string) (*tokenHeader, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, ErrMalformed
	}
	hb, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, ErrMalformed
	}
	var h tokenHeader
	if err := json.Unmarshal(hb, &h); err != nil {
		return nil, ErrMalformed
	}
	return &h, nil
}

// parseWithKey verifica firma RS256 y devuelve las claims crudas.
// La expiración se chequea después, en checkClaims, para poder dar un
// error distinguible.
func (v *Verifier) parseWithKey(token string, key *rsa.PublicKey) (jwtv5.MapClaims, error) {
	tok, err := jwtv5.Parse(token,
		func(t *jwtv5.Token) (any, error) { return key, nil },
		jwtv5.WithValidMethods([]string{"RS256"}),
		jwtv5.WithoutClaimsValidation(),
	)
	if err != nil || !tok.Valid {
		return nil, ErrSignatureInvalid
	}
	claims, ok := tok.Claims.(jwtv5.MapClaims)
	if !ok {
		return nil, ErrMalformed
	}
	return claims, nil
}

// checkClaims aplica iss, aud, hd y exp sobre claims ya verificadas en firma.
func (v *Verifier) checkClaims(claims jwtv5.MapClaims) (*Claims, error) {
	iss, _ := claims["iss"].(string)
	issOK := false
	for _, want := range acceptedIssuers {
		if iss == want {
			issOK = true
			break
		}
	}
	if !issOK {
		return nil, fmt.Errorf("%w: %q", ErrWrongIssuer, iss)
	}

	audOK := false
	switch a := claims["aud"].(type) {
	case string:
		audOK = a == v.audience
	case []any:
		for _, x := range a {
			if s, _ := x.(string); s == v.audience {
				audOK = true
				break
			}
		}
	}
	if !audOK {
		return nil, ErrWrongAudience
	}

	// hd tiene que estar presente Y coincidir exacto. Cuentas @gmail.com
	// no traen hd: también se rechazan acá.
	hd, _ := claims["hd"].(string)
	if hd == "" || hd != v.domain {
		return nil, fmt.Errorf("%w (hd=%q)", ErrWrongDomain, hd)
	}

	var iat, exp time.Time
	if f, ok := claims["iat"].(float64); ok {
		iat = time.Unix(int64(f), 0)
	}
	if f, ok := claims["exp"].(float64); ok {
		exp = time.Unix(int64(f), 0)
	} else {
		return nil, fmt.Errorf("%w: sin exp", ErrMalformed)
	}
	if exp.Before(time.Now().Add(-30 * time.Second)) {
		return nil, ErrExpired
	}

	raw := make(map[string]any, len(claims))
	for k, val := range claims {
		raw[k] = val
	}

	return &Claims{
		Sub:           strClaim(claims, "sub"),
		Email:         strClaim(claims, "email"),
		EmailVerified: boolClaim(claims, "email_verified"),
		Name:          strClaim(claims, "name"),
		GivenName:     strClaim(claims, "given_name"),
		FamilyName:    strClaim(claims, "family_name"),
		Picture:       strClaim(claims, "picture"),
		HostedDomain:  hd,
		IssuedAt:      iat,
		ExpiresAt:     exp,
		Raw:           raw,
	}, nil
}

// keyForKID resuelve la clave RSA para un kid, usando el cache local.
// Con force=true invalida el cache y va a la red (respetando el rate
// limit; los fetch concurrentes se colapsan en uno).
func (v *Verifier) keyForKID(ctx context.Context, kid string, force bool) (*rsa.PublicKey, error) {
	if !force {
		v.mu.RLock()
		cached := v.keys
		fresh := time.Since(v.keysAt) < v.cacheTTL
		v.mu.RUnlock()
		if cached != nil && fresh {
			if k := findRSAKey(cached, kid); k != nil {
				return k, nil
			}
			// kid desconocido con cache fresco: probablemente rotación,
			// dejamos que el caller decida el refresh forzado.
			return nil, ErrKeyUnavailable
		}
	}

	set, err := v.fetchJWKS(ctx)
	if err != nil {
		return nil, err
	}
	if k := findRSAKey(set, kid); k != nil {
		return k, nil
	}
	return nil, fmt.Errorf("%w: kid %q no está en el key set", ErrKeyUnavailable, kid)
}

// fetchJWKS trae el key set remoto. Deduplicado con singleflight y
// limitado por rate limiter: si no hay cupo y tampoco cache, el request
// actual falla (nunca se bloquea esperando).
func (v *Verifier) fetchJWKS(ctx context.Context) (*jwks, error) {
	out, err, _ := v.sf.Do("jwks", func() (any, error) {
		if !v.limiter.Allow() {
			metrics.JWKSFetches.WithLabelValues("rate_limited").Inc()
			v.mu.RLock()
			cached := v.keys
			v.mu.RUnlock()
			if cached != nil {
				return cached, nil
			}
			return nil, fmt.Errorf("%w: rate limited y sin cache", ErrKeyUnavailable)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.jwksURL, nil)
		if err != nil {
			return nil, errors.Join(ErrKeyUnavailable, err)
		}
		v.mu.RLock()
		if v.etag != "" {
			req.Header.Set("If-None-Match", v.etag)
		}
		v.mu.RUnlock()

		resp, err := v.http.Do(req)
		if err != nil {
			metrics.JWKSFetches.WithLabelValues("error").Inc()
			return nil, errors.Join(ErrKeyUnavailable, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotModified {
			v.mu.Lock()
			out := v.keys
			v.keysAt = time.Now()
			v.mu.Unlock()
			if out == nil {
				return nil, ErrKeyUnavailable
			}
			return out, nil
		}
		if resp.StatusCode/100 != 2 {
			return nil, fmt.Errorf("%w: jwks http %d", ErrKeyUnavailable, resp.StatusCode)
		}

		var set jwks
		if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
			return nil, errors.Join(ErrKeyUnavailable, err)
		}

		v.mu.Lock()
		v.keys = &set
		v.keysAt = time.Now()
		v.etag = resp.Header.Get("ETag")
		v.mu.Unlock()
		metrics.JWKSFetches.WithLabelValues("ok").Inc()
		return &set, nil
	})
	if err != nil {
		return nil, err
	}
	return out.(*jwks), nil
}

// findRSAKey busca el kid en el set y arma la *rsa.PublicKey desde n/e.
func findRSAKey(set *jwks, kid string) *rsa.PublicKey {
	for _, k := range set.Keys {
		if k.Kid != kid || !strings.EqualFold(k.Kty, "RSA") {
			continue
		}
		nb, err := base64.RawURLEncoding.DecodeString(k.N)
		if err != nil {
			continue
		}
		eb, err := base64.RawURLEncoding.DecodeString(k.E)
		if err != nil {
			continue
		}
		n := new(big.Int).SetBytes(nb)
		e := 0
		for _, b := range eb {
			e = (e << 8) | int(b)
		}
		if e == 0 {
			e = 65537
		}
		return &rsa.PublicKey{N: n, E: e}
	}
	return nil
}

func strClaim(m jwtv5.MapClaims, k string) string {
	s, _ := m[k].(string)
	return s
}

func boolClaim(m jwtv5.MapClaims, k string) bool {
	b, _ := m[k].(bool)
	return b
}
