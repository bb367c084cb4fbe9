package domain

import (
	"context"
	"fmt"
	"strings"

	apperrors "github.com/louisbranch/workroom.space/internal/platform/errors"
	"github.com/louisbranch/workroom.space/internal/platform/requestctx"
)

// SwapMember replaces one member with another inside the project's
// role group. The removal of the outgoing member is best-effort; the
// incoming member is always ensured and added.
func (s *Service) SwapMember(ctx context.Context, projectID string, fromEmail string, toEmail string, role Role) error {
	projectID = strings.TrimSpace(projectID)
	fromEmail = strings.ToLower(strings.TrimSpace(fromEmail))
	toEmail = strings.ToLower(strings.TrimSpace(toEmail))
	if projectID == "" || fromEmail == "" || toEmail == "" {
		return apperrors.New(apperrors.CodeInvalidInput, "projectId, from, and to are required")
	}
	if role != RoleClient && role != RoleResource {
		return apperrors.New(apperrors.CodeInvalidInput, "role must be client or resource")
	}

	project, found, err := s.registry.GetProject(ctx, projectID)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeUnexpected, "project lookup failed", err)
	}
	if !found {
		return apperrors.New(apperrors.CodeProjectNotFound, fmt.Sprintf("project %s not found", projectID))
	}

	names := NamesFor(project.Title)
	group := names.ResourceGroup
	if role == RoleClient {
		group = names.ClientGroup
	}

	if err := s.identity.EnsureUser(ctx, toEmail); err != nil {
		return apperrors.Wrap(apperrors.CodeUnexpected, "ensure incoming user", err)
	}
	if err := s.identity.RemoveUserFromGroup(ctx, fromEmail, group); err != nil {
		s.logf("provisioner: remove %s from %s failed: correlation=%s err=%v",
			fromEmail, group, requestctx.CorrelationIDFromContext(ctx), err)
	}
	if err := s.identity.AddUserToGroup(ctx, toEmail, group); err != nil {
		return apperrors.Wrap(apperrors.CodeUnexpected, "add incoming user to group", err)
	}
	return nil
}
