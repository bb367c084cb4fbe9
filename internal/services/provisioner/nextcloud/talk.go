package nextcloud

import (
	"context"
	"fmt"
	"net/url"

	"github.com/louisbranch/workroom.space/internal/services/provisioner/domain"
)

// Talk roomType 2 is a group conversation.
const roomTypeGroup = 2

const welcomeMessage = "Welcome to your project workspace! Shared files, the project calendar, and the task board are linked from the files area."

type talkRoom struct {
	Token       string `json:"token"`
	DisplayName string `json:"displayName"`
}

// EnsureRoom finds or creates the project's group conversation and invites
// the roster. A failed invitation is logged and skipped so one bad account
// does not lose the room.
func (c *Client) EnsureRoom(ctx context.Context, title string, invitees []string) (domain.ChatRoom, error) {
	room, found, err := c.findRoom(ctx, title)
	if err != nil {
		return domain.ChatRoom{}, err
	}
	if !found {
		payload := map[string]any{"roomType": roomTypeGroup, "roomName": title}
		if err := c.ocsJSON(ctx, "POST", "/ocs/v2.php/apps/spreed/api/v4/room", payload, &room); err != nil {
			return domain.ChatRoom{}, fmt.Errorf("create room %q: %w", title, err)
		}
	}

	for _, invitee := range invitees {
		payload := map[string]any{"newParticipant": invitee, "source": "users"}
		path := "/ocs/v2.php/apps/spreed/api/v4/room/" + url.PathEscape(room.Token) + "/participants"
		if err := c.ocsJSON(ctx, "POST", path, payload, nil); err != nil {
			c.logf("nextcloud: talk invite %s skipped: %v", invitee, err)
		}
	}

	return domain.ChatRoom{
		Token: room.Token,
		URL:   c.baseURL + "/call/" + room.Token,
	}, nil
}

// PostWelcome posts the onboarding message into a room.
func (c *Client) PostWelcome(ctx context.Context, token string) error {
	payload := map[string]any{"message": welcomeMessage}
	path := "/ocs/v2.php/apps/spreed/api/v1/chat/" + url.PathEscape(token)
	if err := c.ocsJSON(ctx, "POST", path, payload, nil); err != nil {
		return fmt.Errorf("post welcome to %s: %w", token, err)
	}
	return nil
}

func (c *Client) findRoom(ctx context.Context, title string) (talkRoom, bool, error) {
	var rooms []talkRoom
	if err := c.ocsForm(ctx, "GET", "/ocs/v2.php/apps/spreed/api/v4/room", nil, &rooms); err != nil {
		return talkRoom{}, false, fmt.Errorf("list rooms: %w", err)
	}
	for _, room := range rooms {
		if room.DisplayName == title {
			return room, true, nil
		}
	}
	return talkRoom{}, false, nil
}
