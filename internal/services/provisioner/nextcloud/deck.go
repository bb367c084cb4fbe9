package nextcloud

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/louisbranch/workroom.space/internal/services/provisioner/domain"
)

const deckBoardColor = "0082c9"

// The Deck app answers raw JSON rather than the OCS envelope.
func (c *Client) deckJSON(ctx context.Context, method string, path string, payload any, into any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("OCS-APIRequest", "true")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.adminUser, c.adminPass)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: read response: %w", method, path, err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}
	if into != nil {
		if err := json.Unmarshal(raw, into); err != nil {
			return fmt.Errorf("%s %s: decode response: %w", method, path, err)
		}
	}
	return nil
}

// CreateBoard creates a fresh task board for the project.
func (c *Client) CreateBoard(ctx context.Context, title string) (domain.BoardRef, error) {
	var created struct {
		ID int64 `json:"id"`
	}
	payload := map[string]any{"title": title, "color": deckBoardColor}
	if err := c.deckJSON(ctx, "POST", "/index.php/apps/deck/api/v1.0/boards", payload, &created); err != nil {
		return domain.BoardRef{}, fmt.Errorf("create board %q: %w", title, err)
	}
	return domain.BoardRef{
		ID:  created.ID,
		URL: fmt.Sprintf("%s/apps/deck/#/board/%d", c.baseURL, created.ID),
	}, nil
}

// CreateStack adds a list to a board and returns its id.
func (c *Client) CreateStack(ctx context.Context, boardID int64, title string) (int64, error) {
	var created struct {
		ID int64 `json:"id"`
	}
	payload := map[string]any{"title": title, "order": 999}
	path := fmt.Sprintf("/index.php/apps/deck/api/v1.0/boards/%d/stacks", boardID)
	if err := c.deckJSON(ctx, "POST", path, payload, &created); err != nil {
		return 0, fmt.Errorf("create stack %q: %w", title, err)
	}
	return created.ID, nil
}

// CreateCard adds a card to a stack.
func (c *Client) CreateCard(ctx context.Context, boardID int64, stackID int64, title string) error {
	payload := map[string]any{"title": title, "type": "plain", "order": 999}
	path := fmt.Sprintf("/index.php/apps/deck/api/v1.0/boards/%d/stacks/%d/cards", boardID, stackID)
	if err := c.deckJSON(ctx, "POST", path, payload, nil); err != nil {
		return fmt.Errorf("create card %q: %w", title, err)
	}
	return nil
}
