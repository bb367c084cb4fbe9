package nextcloud

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/louisbranch/workroom.space/internal/platform/id"
)

const mkcalendarBody = `<?xml version="1.0" encoding="utf-8" ?>
<x0:mkcalendar xmlns:x0="urn:ietf:params:xml:ns:caldav">
  <x0:set xmlns:x1="DAV:">
    <x1:prop>
      <x1:displayname>%s</x1:displayname>
    </x1:prop>
  </x0:set>
</x0:mkcalendar>`

const icalTimeLayout = "20060102T150405Z"

// EnsureCalendar creates a project calendar named after the slug and
// returns its collection URL. An existing collection answers 405, which
// is treated as success.
func (c *Client) EnsureCalendar(ctx context.Context, slug string, title string) (string, error) {
	body := fmt.Sprintf(mkcalendarBody, xmlEscape(title))
	status, err := c.dav(ctx, "MKCALENDAR", c.davCalendarPath(slug), "application/xml", strings.NewReader(body))
	if err != nil {
		return "", err
	}
	if status != 201 && status != 405 {
		return "", fmt.Errorf("MKCALENDAR %s: status %d", slug, status)
	}
	return c.baseURL + c.davCalendarPath(slug), nil
}

// AddKickoffEvent puts a one-hour kickoff event into the project calendar.
func (c *Client) AddKickoffEvent(ctx context.Context, slug string, title string, at time.Time) error {
	uid, err := id.NewID()
	if err != nil {
		return fmt.Errorf("generate event uid: %w", err)
	}
	start := at.UTC()
	end := start.Add(time.Hour)

	var b strings.Builder
	b.WriteString("BEGIN:VCALENDAR\r\n")
	b.WriteString("VERSION:2.0\r\n")
	b.WriteString("PRODID:-//workroom.space//provisioner//EN\r\n")
	b.WriteString("BEGIN:VEVENT\r\n")
	b.WriteString("UID:" + uid + "\r\n")
	b.WriteString("DTSTAMP:" + start.Format(icalTimeLayout) + "\r\n")
	b.WriteString("DTSTART:" + start.Format(icalTimeLayout) + "\r\n")
	b.WriteString("DTEND:" + end.Format(icalTimeLayout) + "\r\n")
	b.WriteString("SUMMARY:Kickoff: " + title + "\r\n")
	b.WriteString("END:VEVENT\r\n")
	b.WriteString("END:VCALENDAR\r\n")

	path := c.davCalendarPath(slug) + "/" + uid + ".ics"
	status, err := c.dav(ctx, "PUT", path, "text/calendar", strings.NewReader(b.String()))
	if err != nil {
		return err
	}
	if status != 201 && status != 204 {
		return fmt.Errorf("PUT kickoff event: status %d", status)
	}
	return nil
}

func (c *Client) davCalendarPath(slug string) string {
	return "/remote.php/dav/calendars/" + url.PathEscape(c.adminUser) + "/" + url.PathEscape(slug)
}

func xmlEscape(s string) string {
	replacer := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return replacer.Replace(s)
}
