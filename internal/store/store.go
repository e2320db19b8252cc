// Package store define la fachada común de los backends de datos.
package store

import (
	"context"

	"github.com/socis-ca/website/internal/domain/repository"
)

// Store es lo que main necesita de un backend: las fábricas de
// repositorios más ciclo de vida. Implementado por pg y nodb.
type Store interface {
	Users() repository.UserRepository
	Events() repository.EventRepository
	Execs() repository.ExecRepository
	Products() repository.ProductRepository
	Challenges() repository.ChallengeRepository
	Subscribers() repository.SubscriberRepository

	Ping(ctx context.Context) error
	Close()
}
