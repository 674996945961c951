package project

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/itsdrike/rickchurch-go/internal/pixel"
)

// Repository is a read-through view of persisted projects. Moderator writes
// are serialized by the database; the repository itself does not notify
// the scheduler of changes — the refresh loop polls ListProjects.
type Repository interface {
	ListProjects(ctx context.Context) ([]Project, error)
	Exists(ctx context.Context, name string) (bool, error)
	Upsert(ctx context.Context, d Details) error
	Delete(ctx context.Context, name string) error
}

type row struct {
	Name     string `db:"project_name"`
	X        int    `db:"position_x"`
	Y        int    `db:"position_y"`
	Priority int    `db:"project_priority"`
	Image    string `db:"base64_image"`
}

// PostgresRepository is the Repository backed by the `projects` table.
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository wraps an already-connected sqlx handle.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListProjects(ctx context.Context) ([]Project, error) {
	var rows []row
	err := r.db.SelectContext(ctx, &rows, `
		SELECT project_name, position_x, position_y, project_priority, base64_image
		FROM projects
	`)
	if err != nil {
		return nil, fmt.Errorf("project: list: %w", err)
	}

	projects := make([]Project, 0, len(rows))
	for _, rr := range rows {
		grid, err := pixel.DecodeBase64PNG(rr.Image)
		if err != nil {
			// A single malformed project shouldn't take the whole refresh
			// down; skip it and let the caller log the gap.
			continue
		}
		projects = append(projects, Project{
			Name:     rr.Name,
			X:        rr.X,
			Y:        rr.Y,
			Priority: rr.Priority,
			Image:    grid,
		})
	}
	return projects, nil
}

func (r *PostgresRepository) Exists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM projects WHERE project_name = $1)`, name)
	if err != nil {
		return false, fmt.Errorf("project: exists: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) Upsert(ctx context.Context, d Details) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO projects (project_name, position_x, position_y, project_priority, base64_image)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (project_name) DO UPDATE SET
			position_x = $2,
			position_y = $3,
			project_priority = $4,
			base64_image = $5
	`, d.Name, d.X, d.Y, d.Priority, d.Image)
	if err != nil {
		return fmt.Errorf("project: upsert %q: %w", d.Name, err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, name string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE project_name = $1`, name)
	if err != nil {
		return fmt.Errorf("project: delete %q: %w", name, err)
	}
	return nil
}
