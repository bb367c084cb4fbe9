package domain

import (
	"context"
	"time"
)

// Identity ensures accounts and group memberships on the remote platform.
// Every operation is idempotent: an "already exists" response is success.
type Identity interface {
	EnsureGroup(ctx context.Context, name string) error
	EnsureUser(ctx context.Context, email string) error
	AddUserToGroup(ctx context.Context, email string, group string) error
	RemoveUserFromGroup(ctx context.Context, email string, group string) error
}

// Files ensures the shared folder tree, the brief document, and
// group-scoped permission shares.
type Files interface {
	EnsureFolder(ctx context.Context, name string) (FolderInfo, error)
	EnsureSubfolder(ctx context.Context, folder string, name string) error
	ShareWithGroup(ctx context.Context, folder string, group string, permissions int) error
	PutBrief(ctx context.Context, folder string) error
}

// Chat ensures the project chat room and posts the welcome message.
type Chat interface {
	EnsureRoom(ctx context.Context, title string, invitees []string) (ChatRoom, error)
	PostWelcome(ctx context.Context, token string) error
}

// Calendar ensures the per-project calendar and the optional kickoff event.
type Calendar interface {
	EnsureCalendar(ctx context.Context, slug string, title string) (string, error)
	AddKickoffEvent(ctx context.Context, slug string, title string, at time.Time) error
}

// Board creates the project task board with its lists and cards. Board
// creation is not idempotent: every invocation makes a new board.
type Board interface {
	CreateBoard(ctx context.Context, title string) (BoardRef, error)
	CreateStack(ctx context.Context, boardID int64, title string) (int64, error)
	CreateCard(ctx context.Context, boardID int64, stackID int64, title string) error
}

// Notifier posts one in-platform notification per roster member.
type Notifier interface {
	Notify(ctx context.Context, user string, message string, link string) error
}

// Mailer sends the transactional workspace-ready email. Implementations
// silently no-op when the mail transport is unconfigured.
type Mailer interface {
	Send(ctx context.Context, to []string, subject string, htmlBody string) error
}

// Registry is the relational persistence boundary: project lookup for
// roster resolution and the durable workspace record upsert.
type Registry interface {
	GetProject(ctx context.Context, projectID string) (Project, bool, error)
	ListAcceptedAssignments(ctx context.Context, projectID string) ([]Assignment, error)
	UpsertWorkspace(ctx context.Context, record WorkspaceRecord) error
}
