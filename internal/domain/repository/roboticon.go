package repository

import "context"

// Challenge es un desafío de Roboticon, la competencia anual de robótica.
// Hidden permite cargar desafíos antes de publicarlos.
type Challenge struct {
	ID              string
	ChallengeNumber int
	Description     string
	Goal            string
	Parameters      string
	Points          string
	ImagePath       string
	MapPath         string
	Hidden          bool
	Year            int
}

// ChallengeFilter opciones para listar desafíos.
type ChallengeFilter struct {
	Year          int  // 0 = todos
	IncludeHidden bool // solo admin
	Limit         int
	Offset        int
}

// ChallengeRepository define operaciones sobre desafíos de Roboticon.
type ChallengeRepository interface {
	GetByID(ctx context.Context, id string) (*Challenge, error)
	List(ctx context.Context, filter ChallengeFilter) ([]Challenge, error)
	Create(ctx context.Context, c *Challenge) (*Challenge, error)
	Update(ctx context.Context, c *Challenge) error
	Delete(ctx context.Context, id string) error
}
