package middlewares

import (
	"context"

	"github.com/socis-ca/website/internal/domain/repository"
)

type ctxKeyRequestID struct{}
type ctxKeyUser struct{}

func setRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID{}, rid)
}

// GetRequestID devuelve el request ID del contexto, o "".
func GetRequestID(ctx context.Context) string {
	v, _ := ctx.Value(ctxKeyRequestID{}).(string)
	return v
}

// WithUser inyecta el usuario resuelto en el contexto.
// Solo lo llama el middleware de deserialización.
func WithUser(ctx context.Context, u *repository.User) context.Context {
	return context.WithValue(ctx, ctxKeyUser{}, u)
}

// UserFrom devuelve el usuario del contexto, o nil si el request es anónimo.
func UserFrom(ctx context.Context) *repository.User {
	u, _ := ctx.Value(ctxKeyUser{}).(*repository.User)
	return u
}
