package repository

import (
	"context"
	"time"
)

// Subscriber es una suscripción al newsletter del club.
type Subscriber struct {
	ID           string
	Email        string
	SubscribedAt time.Time
}

// SubscriberRepository define operaciones sobre suscriptores del newsletter.
type SubscriberRepository interface {
	// Subscribe da de alta un email. Idempotente: si ya existe retorna
	// la suscripción existente sin error.
	Subscribe(ctx context.Context, email string) (*Subscriber, error)

	// Unsubscribe da de baja un email. Retorna ErrNotFound si no estaba.
	Unsubscribe(ctx context.Context, email string) error

	List(ctx context.Context, limit, offset int) ([]Subscriber, error)
}
