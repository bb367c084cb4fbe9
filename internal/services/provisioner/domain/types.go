package domain

import "time"

// Role identifies which side of a project a member belongs to.
type Role string

const (
	// RoleClient marks the project's owning client.
	RoleClient Role = "client"
	// RoleResource marks a contracted contributor.
	RoleResource Role = "resource"
)

// ParseRole validates a role string from the wire.
func ParseRole(value string) (Role, bool) {
	switch Role(value) {
	case RoleClient, RoleResource:
		return Role(value), true
	default:
		return "", false
	}
}

// ProvisionRequest describes one workspace provisioning invocation.
// It is immutable and discarded once the invocation completes.
type ProvisionRequest struct {
	ProjectID    string
	ProjectTitle string
	KickoffAt    *time.Time
	Members      *MemberRoster
}

// MemberRoster partitions member emails by role. Emails are unique within
// each list.
type MemberRoster struct {
	Client    []string
	Resources []string
}

// Complete reports whether the roster can be used without a registry lookup.
func (r *MemberRoster) Complete() bool {
	return r != nil && len(r.Client) > 0 && len(r.Resources) > 0
}

// Project is the registry's view of a project record.
type Project struct {
	ID          string
	Title       string
	ClientEmail string
}

// Assignment is one accepted resource assignment on a project.
type Assignment struct {
	Email       string
	ProfileName string
	Category    string
}

// Workspace holds the remote resource locators produced by one invocation.
// Empty fields mean the corresponding optional step did not contribute.
type Workspace struct {
	FilesURL    string
	FolderPath  string
	ChatURL     string
	CalendarURL string
	BoardURL    string
}

// WorkspaceRecord is the durable row persisted per project.
type WorkspaceRecord struct {
	ProjectID  string
	FilesURL   string
	FolderPath string
	ChatURL    string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ChatRoom identifies a provisioned chat room.
type ChatRoom struct {
	Token string
	URL   string
}

// FolderInfo locates a provisioned WebDAV folder.
type FolderInfo struct {
	URL  string
	Path string
}

// BoardRef identifies a created task board.
type BoardRef struct {
	ID  int64
	URL string
}

// Share permission masks for group shares on the project folder.
const (
	// PermissionReadOnly grants read access (client group).
	PermissionReadOnly = 1
	// PermissionFull grants read, update, create, delete, and re-share
	// (resource group).
	PermissionFull = 31
)
