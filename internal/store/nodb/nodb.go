// Package nodb implementa los repositorios cuando no hay base de datos
// configurada: toda operación devuelve ErrNoDatabase. Permite levantar
// el server para probar auth y rutas sin un Postgres al lado.
package nodb

import (
	"context"

	"github.com/socis-ca/website/internal/domain/repository"
	"github.com/socis-ca/website/internal/domain/types"
)

// Store implementa las mismas fábricas que pg.Store.
type Store struct{}

func New() *Store { return &Store{} }

func (s *Store) Users() repository.UserRepository             { return users{} }
func (s *Store) Events() repository.EventRepository           { return events{} }
func (s *Store) Execs() repository.ExecRepository             { return execs{} }
func (s *Store) Products() repository.ProductRepository       { return products{} }
func (s *Store) Challenges() repository.ChallengeRepository   { return challenges{} }
func (s *Store) Subscribers() repository.SubscriberRepository { return subscribers{} }

func (s *Store) Ping(context.Context) error { return nil }
func (s *Store) Close()                     {}

type users struct{}

func (users) GetByAccountID(context.Context, string) (*repository.User, error) {
	return nil, repository.ErrNoDatabase
}
func (users) Create(context.Context, repository.CreateUserInput) (*repository.User, error) {
	return nil, repository.ErrNoDatabase
}
func (users) List(context.Context, repository.ListUsersFilter) ([]repository.User, error) {
	return nil, repository.ErrNoDatabase
}
func (users) SetPermissions(context.Context, string, types.Permission) error {
	return repository.ErrNoDatabase
}
func (users) Delete(context.Context, string) error { return repository.ErrNoDatabase }

type events struct{}

func (events) GetByID(context.Context, string) (*repository.Event, error) {
	return nil, repository.ErrNoDatabase
}
func (events) List(context.Context, repository.EventFilter) ([]repository.Event, error) {
	return nil, repository.ErrNoDatabase
}
func (events) Create(context.Context, *repository.Event) (*repository.Event, error) {
	return nil, repository.ErrNoDatabase
}
func (events) Update(context.Context, *repository.Event) error { return repository.ErrNoDatabase }
func (events) Delete(context.Context, string) error            { return repository.ErrNoDatabase }

type execs struct{}

func (execs) GetByID(context.Context, string) (*repository.Exec, error) {
	return nil, repository.ErrNoDatabase
}
func (execs) List(context.Context, repository.ExecFilter) ([]repository.Exec, error) {
	return nil, repository.ErrNoDatabase
}
func (execs) Create(context.Context, *repository.Exec) (*repository.Exec, error) {
	return nil, repository.ErrNoDatabase
}
func (execs) Update(context.Context, *repository.Exec) error { return repository.ErrNoDatabase }
func (execs) Delete(context.Context, string) error           { return repository.ErrNoDatabase }

type products struct{}

func (products) GetByID(context.Context, string) (*repository.Product, error) {
	return nil, repository.ErrNoDatabase
}
func (products) List(context.Context, repository.ProductFilter) ([]repository.Product, error) {
	return nil, repository.ErrNoDatabase
}
func (products) Create(context.Context, *repository.Product) (*repository.Product, error) {
	return nil, repository.ErrNoDatabase
}
func (products) Update(context.Context, *repository.Product) error { return repository.ErrNoDatabase }
func (products) Delete(context.Context, string) error              { return repository.ErrNoDatabase }

type challenges struct{}

func (challenges) GetByID(context.Context, string) (*repository.Challenge, error) {
	return nil, repository.ErrNoDatabase
}
func (challenges) List(context.Context, repository.ChallengeFilter) ([]repository.Challenge, error) {
	return nil, repository.ErrNoDatabase
}
func (challenges) Create(context.Context, *repository.Challenge) (*repository.Challenge, error) {
	return nil, repository.ErrNoDatabase
}
func (challenges) Update(context.Context, *repository.Challenge) error {
	return repository.ErrNoDatabase
}
func (challenges) Delete(context.Context, string) error { return repository.ErrNoDatabase }

type subscribers struct{}

func (subscribers) Subscribe(context.Context, string) (*repository.Subscriber, error) {
	return nil, repository.ErrNoDatabase
}
func (subscribers) Unsubscribe(context.Context, string) error { return repository.ErrNoDatabase }
func (subscribers) List(context.Context, int, int) ([]repository.Subscriber, error) {
	return nil, repository.ErrNoDatabase
}
