package repository

import "context"

// Exec es un miembro del ejecutivo para un año lectivo dado.
// Year es el año de inicio del ciclo: para 2018/2019 es 2018.
type Exec struct {
	ID    string
	Order int // posición en la página "equipo"
	Name  string
	Role  string
	Email string
	Year  int
}

// ExecFilter opciones para listar ejecutivos.
type ExecFilter struct {
	Year   int // 0 = todos los años
	Limit  int
	Offset int
}

// ExecRepository define operaciones sobre el ejecutivo.
type ExecRepository interface {
	GetByID(ctx context.Context, id string) (*Exec, error)
	List(ctx context.Context, filter ExecFilter) ([]Exec, error)
	Create(ctx context.Context, e *Exec) (*Exec, error)
	Update(ctx context.Context, e *Exec) error
	Delete(ctx context.Context, id string) error
}
