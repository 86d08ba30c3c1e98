package crmsdk

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// ListMessages returns up to limit messages older than cursor, in
// chronological order. Pass the previous page's Next() to load older history.
func (c *Client) ListMessages(ctx context.Context, contactID string, limit int, cursor *MessageCursor) (*MessageListResponse, error) {
	q := url.Values{}
	q.Set("contact_id", contactID)
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if cursor != nil {
		q.Set("before", cursor.Before.UTC().Format(time.RFC3339Nano))
		if cursor.BeforeID != "" {
			q.Set("before_id", cursor.BeforeID)
		}
	}

	resp, err := c.doAuthRequest(ctx, http.MethodGet, "/v1/whatsapp/messages?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var out MessageListResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// SendMessage sends a text message to a contact. Sends are paced per
// instance; a RATE_LIMITED error carries RetryAfter.
func (c *Client) SendMessage(ctx context.Context, contactID, text string) (*Message, error) {
	resp, err := c.doAuthRequest(ctx, http.MethodPost, "/v1/whatsapp/messages", SendMessageRequest{
		ContactID: contactID,
		Text:      text,
	})
	if err != nil {
		return nil, err
	}

	var msg Message
	if err := decodeJSON(resp, &msg, http.StatusCreated); err != nil {
		return nil, err
	}
	return &msg, nil
}
