package nextcloud

import (
	"context"
	"fmt"
	"net/url"
)

// Notify pushes an in-platform notification to one account through the
// admin_notifications app.
func (c *Client) Notify(ctx context.Context, user string, message string, link string) error {
	form := url.Values{
		"shortMessage": {message},
		"longMessage":  {link},
	}
	path := "/ocs/v2.php/apps/admin_notifications/api/v1/notifications/" + url.PathEscape(user)
	if err := c.ocsForm(ctx, "POST", path, form, nil); err != nil {
		return fmt.Errorf("notify %s: %w", user, err)
	}
	return nil
}
