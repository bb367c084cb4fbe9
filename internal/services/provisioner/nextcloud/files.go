package nextcloud

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/louisbranch/workroom.space/internal/services/provisioner/domain"
)

const briefFileName = "Project Brief.md"

const briefTemplate = `# Project Brief

## Objective

## Context

## Deliverables

## Constraints
`

// EnsureFolder creates the project folder in the admin account's WebDAV
// tree. MKCOL answers 405 when the collection already exists, which the
// workflow treats as success.
func (c *Client) EnsureFolder(ctx context.Context, name string) (domain.FolderInfo, error) {
	status, err := c.dav(ctx, "MKCOL", c.davFilesPath(name), "", nil)
	if err != nil {
		return domain.FolderInfo{}, err
	}
	if status != 201 && status != 405 {
		return domain.FolderInfo{}, fmt.Errorf("MKCOL %s: status %d", name, status)
	}
	return domain.FolderInfo{
		URL:  c.baseURL + "/apps/files/?dir=" + url.QueryEscape("/"+name),
		Path: "/" + name,
	}, nil
}

// EnsureSubfolder creates a category folder under the project folder.
func (c *Client) EnsureSubfolder(ctx context.Context, folder string, name string) error {
	status, err := c.dav(ctx, "MKCOL", c.davFilesPath(folder, name), "", nil)
	if err != nil {
		return err
	}
	if status != 201 && status != 405 {
		return fmt.Errorf("MKCOL %s/%s: status %d", folder, name, status)
	}
	return nil
}

// ShareWithGroup shares the project folder with a group at the given
// permission mask. The server answers statuscode 403 when the share
// already exists; re-sharing is therefore treated as success.
func (c *Client) ShareWithGroup(ctx context.Context, folder string, group string, permissions int) error {
	form := url.Values{
		"path":        {"/" + folder},
		"shareType":   {"1"},
		"shareWith":   {group},
		"permissions": {strconv.Itoa(permissions)},
	}
	err := c.ocsForm(ctx, "POST", "/ocs/v2.php/apps/files_sharing/api/v1/shares", form, nil)
	if err != nil && ocsStatusCode(err) != 403 {
		return fmt.Errorf("share %s with %s: %w", folder, group, err)
	}
	return nil
}

// PutBrief writes the brief template into the project folder, overwriting
// any previous copy.
func (c *Client) PutBrief(ctx context.Context, folder string) error {
	status, err := c.dav(ctx, "PUT", c.davFilesPath(folder, briefFileName), "text/markdown", strings.NewReader(briefTemplate))
	if err != nil {
		return err
	}
	if status != 201 && status != 204 {
		return fmt.Errorf("PUT brief in %s: status %d", folder, status)
	}
	return nil
}

func (c *Client) davFilesPath(segments ...string) string {
	var b strings.Builder
	b.WriteString("/remote.php/dav/files/")
	b.WriteString(url.PathEscape(c.adminUser))
	for _, segment := range segments {
		b.WriteString("/")
		b.WriteString(url.PathEscape(segment))
	}
	return b.String()
}
