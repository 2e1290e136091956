package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"taskdesk/internal/models"
)

// CreateProject inserts a project. Codes are stored upper-case.
func (s *Store) CreateProject(ctx context.Context, project *models.Project) error {
	if project == nil {
		return fmt.Errorf("project is required")
	}
	project.Code = normalizeProjectCode(project.Code)
	if project.Code == "" {
		return fmt.Errorf("project code is required")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO projects (id, code, name, project_lead_id, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, project.ID, project.Code, project.Name, nullIfEmpty(project.ProjectLeadID), formatTime(project.CreatedAt))
	return err
}

// GetProject returns a project by id, or nil if it does not exist.
func (s *Store) GetProject(ctx context.Context, id string) (*models.Project, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, code, name, project_lead_id, created_at FROM projects WHERE id = ?
	`, strings.TrimSpace(id))
	return scanProject(row)
}

// GetProjectByCode returns a project by its code, or nil if it does not exist.
func (s *Store) GetProjectByCode(ctx context.Context, code string) (*models.Project, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, code, name, project_lead_id, created_at FROM projects WHERE code = ?
	`, normalizeProjectCode(code))
	return scanProject(row)
}

// ListProjects returns all projects sorted by code.
func (s *Store) ListProjects(ctx context.Context) ([]models.Project, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, code, name, project_lead_id, created_at FROM projects ORDER BY code ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := make([]models.Project, 0)
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *project)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return projects, nil
}

func scanProject(scanner interface {
	Scan(dest ...any) error
}) (*models.Project, error) {
	var project models.Project
	var lead sql.NullString
	var createdAt string
	if err := scanner.Scan(&project.ID, &project.Code, &project.Name, &lead, &createdAt); err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	project.ProjectLeadID = lead.String
	parsed, err := parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	project.CreatedAt = parsed
	return &project, nil
}

func normalizeProjectCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
