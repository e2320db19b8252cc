package middlewares

import (
	"net/http"
	"strings"

	"github.com/socis-ca/website/internal/domain/repository"
	httperrors "github.com/socis-ca/website/internal/http/errors"
	"github.com/socis-ca/website/internal/http/services/session"
	jwtx "github.com/socis-ca/website/internal/jwt"
	"github.com/socis-ca/website/internal/observability/logger"
)

// Deserialize resuelve el usuario del request ANTES del route authorizer,
// sin bloquear nunca a un request sin credenciales.
//
// El contrato es asimétrico a propósito:
//   - sesión que apunta a un usuario inexistente: se loguea y se sigue
//     sin usuario (la sesión pudo sobrevivir a un delete);
//   - bearer token PRESENTE pero inválido: falla duro con 401 (alguien
//     está presentando una credencial rota, eso no se ignora).
func Deserialize(users repository.UserRepository, sessions *session.Manager, codec *jwtx.Codec) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := logger.From(r.Context())

			// 1. Sesión de browser: handle opaco -> accountID.
			if accountID, ok := sessions.Resolve(r); ok {
				u, err := users.GetByAccountID(r.Context(), accountID)
				if err != nil {
					// Tolerado: seguimos como anónimo.
					log.Warn("session user lookup failed",
						logger.AccountID(accountID),
						logger.Err(err),
					)
					next.ServeHTTP(w, r)
					return
				}
				next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
				return
			}

			// 2. Bearer token (API).
			ah := strings.TrimSpace(r.Header.Get("Authorization"))
			if ah == "" || !strings.HasPrefix(strings.ToLower(ah), "bearer ") {
				// 3. Sin credenciales: request anónimo.
				next.ServeHTTP(w, r)
				return
			}
			raw := strings.TrimSpace(ah[len("Bearer "):])

			claims, err := codec.Verify(raw)
			if err != nil {
				log.Warn("bearer token rejected", logger.Err(err))
				w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token"`)
				httperrors.WriteError(w, httperrors.ErrTokenInvalid.WithCause(err))
				return
			}

			sub := jwtx.ClaimString(claims, "sub")
			if sub == "" {
				sub = jwtx.ClaimString(claims, "id")
			}
			u, err := users.GetByAccountID(r.Context(), sub)
			if err != nil {
				// Token válido de un usuario que ya no existe: falla duro.
				log.Warn("bearer user lookup failed",
					logger.AccountID(sub),
					logger.Err(err),
				)
				httperrors.WriteError(w, httperrors.ErrUnauthorized.WithCause(err))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		})
	}
}
