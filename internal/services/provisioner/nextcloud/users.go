package nextcloud

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/url"
)

// EnsureGroup creates a group, treating an already-existing group as
// success.
func (c *Client) EnsureGroup(ctx context.Context, name string) error {
	form := url.Values{"groupid": {name}}
	err := c.ocsForm(ctx, "POST", "/ocs/v2.php/cloud/groups", form, nil)
	if err != nil && !isOCSAlreadyExists(err) {
		return fmt.Errorf("create group %s: %w", name, err)
	}
	return nil
}

// EnsureUser creates an account keyed by the member's email address. The
// account gets a random throwaway password; members reset it through the
// server's own recovery flow. An existing account is left untouched.
func (c *Client) EnsureUser(ctx context.Context, email string) error {
	password, err := randomPassword()
	if err != nil {
		return fmt.Errorf("generate password: %w", err)
	}
	form := url.Values{
		"userid":   {email},
		"email":    {email},
		"password": {password},
	}
	err = c.ocsForm(ctx, "POST", "/ocs/v2.php/cloud/users", form, nil)
	if err != nil && !isOCSAlreadyExists(err) {
		return fmt.Errorf("create user %s: %w", email, err)
	}
	return nil
}

// AddUserToGroup adds an account to a group. Re-adding a member is a
// no-op on the server side.
func (c *Client) AddUserToGroup(ctx context.Context, email string, group string) error {
	form := url.Values{"groupid": {group}}
	path := "/ocs/v2.php/cloud/users/" + url.PathEscape(email) + "/groups"
	if err := c.ocsForm(ctx, "POST", path, form, nil); err != nil {
		return fmt.Errorf("add %s to group %s: %w", email, group, err)
	}
	return nil
}

// RemoveUserFromGroup drops an account from a group.
func (c *Client) RemoveUserFromGroup(ctx context.Context, email string, group string) error {
	form := url.Values{"groupid": {group}}
	path := "/ocs/v2.php/cloud/users/" + url.PathEscape(email) + "/groups"
	if err := c.ocsForm(ctx, "DELETE", path, form, nil); err != nil {
		return fmt.Errorf("remove %s from group %s: %w", email, group, err)
	}
	return nil
}

func randomPassword() (string, error) {
	raw := make([]byte, 24)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}
