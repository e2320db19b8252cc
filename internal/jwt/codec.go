// Package jwt implementa el codec de tokens de sesión propios del sitio.
// Firma y verifica JWTs RS256 con un keypair cargado una vez al arranque.
// Los tokens de Google se verifican aparte, en internal/oauth/google: este
// codec existe justamente para que la app no dependa de Google en tests.
package jwt

import (
	"crypto/rsa"
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNoPrivateKey indica que se intentó firmar sin private key configurada.
	ErrNoPrivateKey = errors.New("jwt: no private key configured")

	// ErrSignatureInvalid indica que la firma no verifica. Fatal para ese token.
	ErrSignatureInvalid = errors.New("jwt: invalid signature")

	// ErrClaimInvalid indica iss/aud incorrectos o token vencido.
	ErrClaimInvalid = errors.New("jwt: invalid claims")
)

// Options configura el codec.
type Options struct {
	Issuer   string
	Audience string
	// AccessTTL es la validez de los tokens emitidos. Default 1h.
	AccessTTL time.Duration

	// PrivateKeyPath puede estar vacío para un codec de solo-verificación.
	PrivateKeyPath string
	PublicKeyPath  string
}

// Codec firma y verifica los tokens de sesión del sitio.
// Las claves son inmutables por la vida del proceso; el codec es seguro
// para uso concurrente.
type Codec struct {
	iss  string
	aud  string
	ttl  time.Duration
	priv *rsa.PrivateKey
	pub  *rsa.PublicKey
}

// NewCodec carga las claves y construye el codec.
// Falla si la public key no se puede cargar; la private es opcional
// (Sign devolverá ErrNoPrivateKey).
func NewCodec(opts Options) (*Codec, error) {
	c := &Codec{
		iss: opts.Issuer,
		aud: opts.Audience,
		ttl: opts.AccessTTL,
	}
	if c.ttl <= 0 {
		c.ttl = time.Hour
	}

	pub, err := LoadRSAPublicKey(opts.PublicKeyPath)
	if err != nil {
		return nil, err
	}
	c.pub = pub

	if opts.PrivateKeyPath != "" {
		priv, err := LoadRSAPrivateKey(opts.PrivateKeyPath)
		if err != nil {
			return nil, err
		}
		c.priv = priv
	}
	return c, nil
}

// NewCodecFromKeys construye un codec con claves ya parseadas.
// Pensado para tests y para el verifier pineado.
func NewCodecFromKeys(priv *rsa.PrivateKey, pub *rsa.PublicKey, iss, aud string, ttl time.Duration) *Codec {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Codec{iss: iss, aud: aud, ttl: ttl, priv: priv, pub: pub}
}

// Sign firma el payload dado y devuelve el token compacto.
// iss, aud, iat, nbf y exp los setea el codec; el caller aporta el resto
// (id, name, email...). Claims reservados del caller se pisan.
func (c *Codec) Sign(payload map[string]any) (string, error) {
	if c.priv == nil {
		return "", ErrNoPrivateKey
	}

	now := time.Now().UTC()
	claims := jwtv5.MapClaims{}
	for k, v := range payload {
		claims[k] = v
	}
	claims["iss"] = c.iss
	claims["aud"] = c.aud
	claims["iat"] = now.Unix()
	claims["nbf"] = now.Unix()
	claims["exp"] = now.Add(c.ttl).Unix()

	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodRS256, claims)
	tk.Header["typ"] = "JWT"
	return tk.SignedString(c.priv)
}

// Verify valida firma (RS256), iss, aud y vigencia, con 30s de tolerancia
// de reloj. A diferencia del path de tokens de Google, acá la expiración
// SIEMPRE se aplica. Devuelve las claims como map.
func (c *Codec) Verify(token string) (map[string]any, error) {
	keyfunc := func(t *jwtv5.Token) (any, error) { return c.pub, nil }

	tok, err := jwtv5.Parse(token, keyfunc,
		jwtv5.WithValidMethods([]string{"RS256"}),
		jwtv5.WithLeeway(30*time.Second),
		jwtv5.WithIssuer(c.iss),
		jwtv5.WithAudience(c.aud),
		jwtv5.WithExpirationRequired(),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwtv5.ErrTokenSignatureInvalid):
			return nil, ErrSignatureInvalid
		default:
			return nil, errors.Join(ErrClaimInvalid, err)
		}
	}
	if !tok.Valid {
		return nil, ErrSignatureInvalid
	}

	claims, ok := tok.Claims.(jwtv5.MapClaims)
	if !ok {
		return nil, ErrClaimInvalid
	}
	out := make(map[string]any, len(claims))
	for k, v := range claims {
		out[k] = v
	}
	return out, nil
}

// ClaimString extrae una claim string de un map de claims.
func ClaimString(claims map[string]any, key string) string {
	s, _ := claims[key].(string)
	return s
}
