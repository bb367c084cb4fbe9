// Package storage defines the persistence boundary for the provisioner's
// project registry.
package storage

import (
	"context"

	"github.com/louisbranch/workroom.space/internal/services/provisioner/domain"
)

// Store is the durable registry behind the provisioning workflow. It
// extends the read side the orchestrator needs with the write operations
// used to maintain project and assignment rows.
type Store interface {
	domain.Registry

	// CreateProject inserts a project record.
	CreateProject(ctx context.Context, project domain.Project) error
	// CreateAssignment inserts an assignment with the given status.
	CreateAssignment(ctx context.Context, projectID string, assignment domain.Assignment, status string) error
	// GetWorkspace reads back the workspace row for a project.
	GetWorkspace(ctx context.Context, projectID string) (domain.WorkspaceRecord, bool, error)

	Close() error
}
