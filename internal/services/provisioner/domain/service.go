// Package domain orchestrates workspace provisioning against the remote
// groupware platform.
package domain

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/louisbranch/workroom.space/internal/platform/errors"
	"github.com/louisbranch/workroom.space/internal/platform/requestctx"
)

const tracerName = "workroom.space/provisioner"

// Dependencies wires the provider boundaries into the orchestrator.
// Registry is required; remote providers may be nil in tests exercising
// a subset of the workflow.
type Dependencies struct {
	Identity Identity
	Files    Files
	Chat     Chat
	Calendar Calendar
	Board    Board
	Notifier Notifier
	Mailer   Mailer
	Registry Registry

	Clock func() time.Time
	Logf  func(format string, args ...any)
}

// Service sequences the provisioning workflow. One invocation runs the
// mandatory identity and storage steps, then the best-effort steps, then
// the registry upsert. There is no internal parallelism: later steps
// consume artifacts produced by earlier ones.
type Service struct {
	identity Identity
	files    Files
	chat     Chat
	calendar Calendar
	board    Board
	notifier Notifier
	mailer   Mailer
	registry Registry

	clock  func() time.Time
	logf   func(format string, args ...any)
	tracer trace.Tracer
}

// NewService constructs the provisioning orchestrator.
func NewService(deps Dependencies) *Service {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logf := deps.Logf
	if logf == nil {
		logf = log.Printf
	}
	return &Service{
		identity: deps.Identity,
		files:    deps.Files,
		chat:     deps.Chat,
		calendar: deps.Calendar,
		board:    deps.Board,
		notifier: deps.Notifier,
		mailer:   deps.Mailer,
		registry: deps.Registry,
		clock:    clock,
		logf:     logf,
		tracer:   otel.Tracer(tracerName),
	}
}

// Provision runs the full workspace provisioning workflow for a project.
//
// Identity and file-storage failures abort the invocation. Chat, calendar,
// board, and notification failures degrade to an empty field in the
// returned Workspace. The registry upsert runs whenever storage succeeded.
func (s *Service) Provision(ctx context.Context, req ProvisionRequest) (Workspace, error) {
	projectID := strings.TrimSpace(req.ProjectID)
	title := strings.TrimSpace(req.ProjectTitle)
	if projectID == "" || title == "" {
		return Workspace{}, apperrors.New(apperrors.CodeInvalidInput, "projectId and projectTitle are required")
	}

	ctx, span := s.tracer.Start(ctx, "provision",
		trace.WithAttributes(
			attribute.String("project.id", projectID),
			attribute.String("correlation.id", requestctx.CorrelationIDFromContext(ctx)),
		))
	defer span.End()

	roster, err := s.resolveRoster(ctx, req, projectID)
	if err != nil {
		return Workspace{}, err
	}

	names := NamesFor(title)
	categories := s.loadCategoryProfiles(ctx, projectID)
	s.tracef(ctx, "resolved names slug=%s client=%d resources=%d categories=%d",
		names.Slug, len(roster.Client), len(roster.Resources), len(categories))

	if err := s.provisionIdentity(ctx, names, roster); err != nil {
		return Workspace{}, apperrors.Wrap(apperrors.CodeUnexpected, "identity provisioning failed", err)
	}

	workspace, err := s.provisionStorage(ctx, names, categories)
	if err != nil {
		return Workspace{}, apperrors.Wrap(apperrors.CodeUnexpected, "storage provisioning failed", err)
	}

	s.optionalStep(ctx, "chat", func(ctx context.Context) error {
		room, err := s.ensureChat(ctx, title, roster)
		if err != nil {
			return err
		}
		workspace.ChatURL = room.URL
		return nil
	})

	s.optionalStep(ctx, "calendar", func(ctx context.Context) error {
		calendarURL, err := s.ensureCalendar(ctx, names.Slug, title, req.KickoffAt)
		if err != nil {
			return err
		}
		workspace.CalendarURL = calendarURL
		return nil
	})

	s.optionalStep(ctx, "board", func(ctx context.Context) error {
		boardURL, err := s.createBoard(ctx, title, categories)
		if err != nil {
			return err
		}
		workspace.BoardURL = boardURL
		return nil
	})

	s.optionalStep(ctx, "notify", func(ctx context.Context) error {
		return s.fanOutNotifications(ctx, roster, workspace)
	})

	now := s.clock().UTC()
	if err := s.registry.UpsertWorkspace(ctx, WorkspaceRecord{
		ProjectID:  projectID,
		FilesURL:   workspace.FilesURL,
		FolderPath: workspace.FolderPath,
		ChatURL:    workspace.ChatURL,
		CreatedAt:  now,
		UpdatedAt:  now,
	}); err != nil {
		return Workspace{}, apperrors.Wrap(apperrors.CodeUnexpected, "workspace registry upsert failed", err)
	}

	return workspace, nil
}

// resolveRoster prefers a complete request-supplied roster; otherwise the
// roster is rebuilt from the project record and its accepted assignments.
func (s *Service) resolveRoster(ctx context.Context, req ProvisionRequest, projectID string) (MemberRoster, error) {
	if req.Members.Complete() {
		s.tracef(ctx, "using request-supplied roster for project=%s", projectID)
		return normalizeRoster(*req.Members), nil
	}

	project, found, err := s.registry.GetProject(ctx, projectID)
	if err != nil {
		return MemberRoster{}, apperrors.Wrap(apperrors.CodeUnexpected, "roster lookup failed", err)
	}
	if !found {
		return MemberRoster{}, apperrors.New(apperrors.CodeProjectNotFound, fmt.Sprintf("project %s not found", projectID))
	}

	assignments, err := s.registry.ListAcceptedAssignments(ctx, projectID)
	if err != nil {
		return MemberRoster{}, apperrors.Wrap(apperrors.CodeUnexpected, "assignment lookup failed", err)
	}

	resources := make([]string, 0, len(assignments))
	for _, assignment := range assignments {
		resources = append(resources, assignment.Email)
	}
	return normalizeRoster(MemberRoster{
		Client:    []string{project.ClientEmail},
		Resources: resources,
	}), nil
}

// loadCategoryProfiles builds the category map from accepted assignments.
// A lookup failure degrades to an empty map: the subfolder and board steps
// then simply produce no category lists.
func (s *Service) loadCategoryProfiles(ctx context.Context, projectID string) CategoryProfiles {
	assignments, err := s.registry.ListAcceptedAssignments(ctx, projectID)
	if err != nil {
		s.logf("provisioner: category lookup failed: correlation=%s project=%s err=%v",
			requestctx.CorrelationIDFromContext(ctx), projectID, err)
		return CategoryProfiles{}
	}
	return GroupByCategory(assignments)
}

func (s *Service) provisionIdentity(ctx context.Context, names Names, roster MemberRoster) error {
	ctx, span := s.tracer.Start(ctx, "provision.identity")
	defer span.End()

	for _, group := range []string{names.ClientGroup, names.ResourceGroup} {
		if err := s.identity.EnsureGroup(ctx, group); err != nil {
			return fmt.Errorf("ensure group %s: %w", group, err)
		}
	}

	memberships := []struct {
		emails []string
		group  string
	}{
		{roster.Client, names.ClientGroup},
		{roster.Resources, names.ResourceGroup},
	}
	for _, membership := range memberships {
		for _, email := range membership.emails {
			if err := s.identity.EnsureUser(ctx, email); err != nil {
				return fmt.Errorf("ensure user %s: %w", email, err)
			}
			if err := s.identity.AddUserToGroup(ctx, email, membership.group); err != nil {
				return fmt.Errorf("add %s to %s: %w", email, membership.group, err)
			}
			s.tracef(ctx, "ensured member %s in group %s", email, membership.group)
		}
	}
	return nil
}

func (s *Service) provisionStorage(ctx context.Context, names Names, categories CategoryProfiles) (Workspace, error) {
	ctx, span := s.tracer.Start(ctx, "provision.storage")
	defer span.End()

	folder, err := s.files.EnsureFolder(ctx, names.Folder)
	if err != nil {
		return Workspace{}, fmt.Errorf("ensure folder %q: %w", names.Folder, err)
	}

	if err := s.files.ShareWithGroup(ctx, names.Folder, names.ClientGroup, PermissionReadOnly); err != nil {
		return Workspace{}, fmt.Errorf("share with client group: %w", err)
	}
	if err := s.files.ShareWithGroup(ctx, names.Folder, names.ResourceGroup, PermissionFull); err != nil {
		return Workspace{}, fmt.Errorf("share with resource group: %w", err)
	}

	// A single category subfolder failing is skipped, not fatal.
	for _, category := range categories.Categories() {
		if err := s.files.EnsureSubfolder(ctx, names.Folder, category); err != nil {
			s.logf("provisioner: subfolder %q skipped: correlation=%s err=%v",
				category, requestctx.CorrelationIDFromContext(ctx), err)
		}
	}

	if err := s.files.PutBrief(ctx, names.Folder); err != nil {
		return Workspace{}, fmt.Errorf("write brief document: %w", err)
	}

	return Workspace{FilesURL: folder.URL, FolderPath: folder.Path}, nil
}

func (s *Service) ensureChat(ctx context.Context, title string, roster MemberRoster) (ChatRoom, error) {
	room, err := s.chat.EnsureRoom(ctx, title, allMembers(roster))
	if err != nil {
		return ChatRoom{}, err
	}
	if room.Token != "" {
		// Welcome post failures are logged only; the room stays usable.
		if err := s.chat.PostWelcome(ctx, room.Token); err != nil {
			s.logf("provisioner: welcome message failed: correlation=%s err=%v",
				requestctx.CorrelationIDFromContext(ctx), err)
		}
	}
	return room, nil
}

func (s *Service) ensureCalendar(ctx context.Context, slug string, title string, kickoffAt *time.Time) (string, error) {
	calendarURL, err := s.calendar.EnsureCalendar(ctx, slug, title)
	if err != nil {
		return "", err
	}
	if kickoffAt != nil {
		// The calendar itself is provisioned; a failed kickoff event keeps
		// the calendar URL in the response.
		if err := s.calendar.AddKickoffEvent(ctx, slug, title, *kickoffAt); err != nil {
			s.logf("provisioner: kickoff event failed: correlation=%s err=%v",
				requestctx.CorrelationIDFromContext(ctx), err)
		}
	}
	return calendarURL, nil
}

// createBoard makes a new board with one stack per category (a card per
// profile) plus a "Client" stack holding a single "Objective" card.
func (s *Service) createBoard(ctx context.Context, title string, categories CategoryProfiles) (string, error) {
	board, err := s.board.CreateBoard(ctx, title)
	if err != nil {
		return "", err
	}

	correlationID := requestctx.CorrelationIDFromContext(ctx)
	for _, category := range categories.Categories() {
		stackID, err := s.board.CreateStack(ctx, board.ID, category)
		if err != nil {
			s.logf("provisioner: board stack %q skipped: correlation=%s err=%v", category, correlationID, err)
			continue
		}
		for _, profile := range categories[category] {
			if err := s.board.CreateCard(ctx, board.ID, stackID, profile); err != nil {
				s.logf("provisioner: board card %q skipped: correlation=%s err=%v", profile, correlationID, err)
			}
		}
	}

	clientStackID, err := s.board.CreateStack(ctx, board.ID, "Client")
	if err != nil {
		s.logf("provisioner: client stack skipped: correlation=%s err=%v", correlationID, err)
		return board.URL, nil
	}
	if err := s.board.CreateCard(ctx, board.ID, clientStackID, "Objective"); err != nil {
		s.logf("provisioner: objective card skipped: correlation=%s err=%v", correlationID, err)
	}
	return board.URL, nil
}

func (s *Service) fanOutNotifications(ctx context.Context, roster MemberRoster, workspace Workspace) error {
	correlationID := requestctx.CorrelationIDFromContext(ctx)
	members := allMembers(roster)

	message := "Your project workspace is ready"
	for _, member := range members {
		if err := s.notifier.Notify(ctx, member, message, workspace.FilesURL); err != nil {
			s.logf("provisioner: notification to %s failed: correlation=%s err=%v", member, correlationID, err)
		}
	}

	subject := "Your project workspace is ready"
	if err := s.mailer.Send(ctx, members, subject, workspaceEmailHTML(workspace)); err != nil {
		return fmt.Errorf("send workspace email: %w", err)
	}
	return nil
}

// workspaceEmailHTML renders the transactional email body with the
// call-to-action links for the new workspace.
func workspaceEmailHTML(workspace Workspace) string {
	var b strings.Builder
	b.WriteString("<p>Your project workspace has been set up.</p>")
	b.WriteString(fmt.Sprintf(`<p><a href=%q>Open the shared files</a></p>`, workspace.FilesURL))
	if workspace.ChatURL != "" {
		b.WriteString(fmt.Sprintf(`<p><a href=%q>Join the project chat</a></p>`, workspace.ChatURL))
	}
	return b.String()
}

// optionalStep isolates a best-effort workflow step: a failure is logged
// with the correlation id and reported to the span, but never aborts the
// invocation.
func (s *Service) optionalStep(ctx context.Context, name string, fn func(context.Context) error) bool {
	ctx, span := s.tracer.Start(ctx, "provision."+name)
	defer span.End()

	if err := fn(ctx); err != nil {
		span.RecordError(err)
		s.logf("provisioner: step %s failed: correlation=%s err=%v",
			name, requestctx.CorrelationIDFromContext(ctx), err)
		return false
	}
	s.tracef(ctx, "step %s completed", name)
	return true
}

// tracef logs only when the request asked for verbose step tracing.
func (s *Service) tracef(ctx context.Context, format string, args ...any) {
	if !requestctx.TraceEnabledFromContext(ctx) {
		return
	}
	s.logf("provisioner: trace correlation=%s "+format,
		append([]any{requestctx.CorrelationIDFromContext(ctx)}, args...)...)
}
