// Package sqlite implements the project registry on a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/louisbranch/workroom.space/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/workroom.space/internal/services/provisioner/domain"
	"github.com/louisbranch/workroom.space/internal/services/provisioner/storage"
	"github.com/louisbranch/workroom.space/internal/services/provisioner/storage/sqlite/migrations"
)

// StatusAccepted marks an assignment whose resource accepted the project.
const StatusAccepted = "accepted"

// Store is a SQLite-backed registry.
type Store struct {
	db *sql.DB
}

var _ storage.Store = (*Store)(nil)

// Open opens (or creates) the database at path and applies pending
// migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if err := sqlitemigrate.ApplyMigrations(db, migrations.FS, "."); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// GetProject looks up one project row.
func (s *Store) GetProject(ctx context.Context, projectID string) (domain.Project, bool, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, title, client_email FROM projects WHERE id = ?", projectID)

	var project domain.Project
	if err := row.Scan(&project.ID, &project.Title, &project.ClientEmail); err != nil {
		if err == sql.ErrNoRows {
			return domain.Project{}, false, nil
		}
		return domain.Project{}, false, fmt.Errorf("query project %s: %w", projectID, err)
	}
	return project, true, nil
}

// ListAcceptedAssignments returns the accepted assignments for a project
// in insertion order.
func (s *Store) ListAcceptedAssignments(ctx context.Context, projectID string) ([]domain.Assignment, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT email, profile_name, category FROM assignments WHERE project_id = ? AND status = ? ORDER BY id",
		projectID, StatusAccepted)
	if err != nil {
		return nil, fmt.Errorf("query assignments for %s: %w", projectID, err)
	}
	defer rows.Close()

	var assignments []domain.Assignment
	for rows.Next() {
		var assignment domain.Assignment
		if err := rows.Scan(&assignment.Email, &assignment.ProfileName, &assignment.Category); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		assignments = append(assignments, assignment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assignments: %w", err)
	}
	return assignments, nil
}

// UpsertWorkspace inserts or refreshes the workspace row for a project.
// The original created_at survives re-provisioning; updated_at moves.
func (s *Store) UpsertWorkspace(ctx context.Context, record domain.WorkspaceRecord) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO project_workspaces (project_id, files_url, folder_path, chat_url, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(project_id) DO UPDATE SET
    files_url = excluded.files_url,
    folder_path = excluded.folder_path,
    chat_url = excluded.chat_url,
    updated_at = excluded.updated_at`,
		record.ProjectID, record.FilesURL, record.FolderPath, record.ChatURL,
		timeToUnixMillis(record.CreatedAt), timeToUnixMillis(record.UpdatedAt))
	if err != nil {
		return fmt.Errorf("upsert workspace for %s: %w", record.ProjectID, err)
	}
	return nil
}

// GetWorkspace reads back the workspace row for a project.
func (s *Store) GetWorkspace(ctx context.Context, projectID string) (domain.WorkspaceRecord, bool, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT project_id, files_url, folder_path, chat_url, created_at, updated_at FROM project_workspaces WHERE project_id = ?",
		projectID)

	var record domain.WorkspaceRecord
	var createdAt, updatedAt int64
	if err := row.Scan(&record.ProjectID, &record.FilesURL, &record.FolderPath,
		&record.ChatURL, &createdAt, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return domain.WorkspaceRecord{}, false, nil
		}
		return domain.WorkspaceRecord{}, false, fmt.Errorf("query workspace for %s: %w", projectID, err)
	}
	record.CreatedAt = unixMillisToTime(createdAt)
	record.UpdatedAt = unixMillisToTime(updatedAt)
	return record, true, nil
}

// CreateProject inserts a project row.
func (s *Store) CreateProject(ctx context.Context, project domain.Project) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO projects (id, title, client_email, created_at) VALUES (?, ?, ?, ?)",
		project.ID, project.Title, project.ClientEmail, timeToUnixMillis(time.Now()))
	if err != nil {
		return fmt.Errorf("insert project %s: %w", project.ID, err)
	}
	return nil
}

// CreateAssignment inserts an assignment row with the given status.
func (s *Store) CreateAssignment(ctx context.Context, projectID string, assignment domain.Assignment, status string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO assignments (project_id, email, profile_name, category, status, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		projectID, assignment.Email, assignment.ProfileName, assignment.Category, status, timeToUnixMillis(time.Now()))
	if err != nil {
		return fmt.Errorf("insert assignment for %s: %w", projectID, err)
	}
	return nil
}

func timeToUnixMillis(value time.Time) int64 {
	if value.IsZero() {
		return 0
	}
	return value.UTC().UnixMilli()
}

func unixMillisToTime(value int64) time.Time {
	if value == 0 {
		return time.Time{}
	}
	return time.UnixMilli(value).UTC()
}
