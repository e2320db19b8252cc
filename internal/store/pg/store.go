// Package pg implementa los repositorios del dominio sobre PostgreSQL
// usando pgxpool.
package pg

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/socis-ca/website/internal/domain/repository"
	"github.com/socis-ca/website/internal/observability/logger"
)

// Store agrupa el pool y expone los repositorios concretos.
type Store struct{ pool *pgxpool.Pool }

// Tuning son los parámetros opcionales del pool (vienen de config).
type Tuning struct {
	MaxConns        int
	MinConns        int
	ConnMaxLifetime time.Duration
}

// New abre el pool contra el DSN dado. El ping inicial es best-effort:
// si la base está caída el proceso arranca igual y se recupera solo.
func New(ctx context.Context, dsn string, t Tuning) (*Store, error) {
	pcfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("pg: parseando DSN: %w", err)
	}
	if t.MaxConns > 0 {
		pcfg.MaxConns = int32(t.MaxConns)
	}
	if t.MinConns > 0 {
		pcfg.MinConns = int32(t.MinConns)
	}
	if t.ConnMaxLifetime > 0 {
		pcfg.MaxConnLifetime = t.ConnMaxLifetime
		pcfg.MaxConnIdleTime = t.ConnMaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, err
	}

	log := logger.Named("pg")
	if err := pool.Ping(ctx); err != nil {
		log.Warn("startup ping failed", logger.Err(err))
	} else {
		log.Info("pool ready", logger.Int("max_conns", int(pcfg.MaxConns)))
	}

	return &Store{pool: pool}, nil
}

// Pool expone el pool interno (migraciones, health checks).
func (s *Store) Pool() *pgxpool.Pool {
	if s == nil {
		return nil
	}
	return s.pool
}

func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

// Close cierra el pool (idempotente).
func (s *Store) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

// Repositorios concretos.

func (s *Store) Users() repository.UserRepository             { return &userRepo{pool: s.pool} }
func (s *Store) Events() repository.EventRepository           { return &eventRepo{pool: s.pool} }
func (s *Store) Execs() repository.ExecRepository             { return &execRepo{pool: s.pool} }
func (s *Store) Products() repository.ProductRepository       { return &productRepo{pool: s.pool} }
func (s *Store) Challenges() repository.ChallengeRepository   { return &challengeRepo{pool: s.pool} }
func (s *Store) Subscribers() repository.SubscriberRepository { return &subscriberRepo{pool: s.pool} }

// mapError traduce errores de pgx a los sentinelas del dominio.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%w: %s", repository.ErrConflict, pgErr.ConstraintName)
		case "23514", "22P02": // check_violation, invalid_text_representation
			return fmt.Errorf("%w: %s", repository.ErrInvalidInput, pgErr.Message)
		}
	}
	return err
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 50
	}
	if limit > 200 {
		return 200
	}
	return limit
}

// =================================================================================
// MIGRACIONES
// =================================================================================

var migrationFilePattern = regexp.MustCompile(`^(\d+)_(.+)\.sql$`)

type migration struct {
	version int
	name    string
	sql     string
}

// Migrate aplica las migraciones pendientes del FS dado, en orden de
// versión, registrándolas en la tabla _migrations.
func (s *Store) Migrate(ctx context.Context, migrationsFS fs.FS) error {
	log := logger.Named("pg.migrate")

	migs, err := parseMigrations(migrationsFS)
	if err != nil {
		return err
	}

	const createTable = `CREATE TABLE IF NOT EXISTS _migrations (
		version    INTEGER PRIMARY KEY,
		name       TEXT NOT NULL,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`
	if _, err := s.pool.Exec(ctx, createTable); err != nil {
		return fmt.Errorf("pg: creando tabla _migrations: %w", err)
	}

	applied := map[int]bool{}
	rows, err := s.pool.Query(ctx, `SELECT version FROM _migrations`)
	if err != nil {
		return err
	}
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			rows.Close()
			return err
		}
		applied[v] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, m := range migs {
		if applied[m.version] {
			continue
		}
		tx, err := s.pool.Begin(ctx)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, m.sql); err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("pg: aplicando %04d_%s: %w", m.version, m.name, err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO _migrations (version, name) VALUES ($1, $2)`, m.version, m.name); err != nil {
			_ = tx.Rollback(ctx)
			return err
		}
		if err := tx.Commit(ctx); err != nil {
			return err
		}
		log.Info("migration applied",
			logger.Int("version", m.version),
			logger.String("name", m.name),
		)
	}
	return nil
}

func parseMigrations(migrationsFS fs.FS) ([]migration, error) {
	var migs []migration
	err := fs.WalkDir(migrationsFS, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		matches := migrationFilePattern.FindStringSubmatch(filepath.Base(path))
		if matches == nil {
			return nil
		}
		version, _ := strconv.Atoi(matches[1])
		content, err := fs.ReadFile(migrationsFS, path)
		if err != nil {
			return fmt.Errorf("pg: leyendo %s: %w", path, err)
		}
		migs = append(migs, migration{version: version, name: matches[2], sql: string(content)})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(migs, func(i, j int) bool { return migs[i].version < migs[j].version })
	return migs, nil
}
