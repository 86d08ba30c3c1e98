package crmsdk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
)

const (
	watchMinBackoff = time.Second
	watchMaxBackoff = 30 * time.Second
)

// Watch keeps a realtime connection open and refreshes the context whenever
// the server announces a permission change. It reconnects with backoff and
// refreshes after every reconnect so missed events are not lost. Watch
// returns when ctx is done.
func (p *PermissionContext) Watch(ctx context.Context) error {
	backoff := watchMinBackoff
	for {
		connected, err := p.watchOnce(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if connected {
			backoff = watchMinBackoff
		}
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, watchMaxBackoff)

		_ = p.Refresh(ctx)
	}
}

// watchOnce runs one connection until it drops. connected reports whether
// the handshake succeeded.
func (p *PermissionContext) watchOnce(ctx context.Context) (connected bool, err error) {
	conn, err := p.client.DialRealtime(ctx)
	if err != nil {
		return false, err
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	for {
		var ev Event
		if err := conn.ReadJSON(&ev); err != nil {
			return true, err
		}
		if ev.Type == EventPermissionsChanged {
			_ = p.Refresh(ctx)
		}
	}
}

// DialRealtime opens the realtime websocket with the client's token. A
// rejected handshake is returned as *APIError.
func (c *Client) DialRealtime(ctx context.Context) (*websocket.Conn, error) {
	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	u, err := url.Parse(c.url("/v1/realtime"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.RawQuery = url.Values{"access_token": {token}}.Encode()

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		if errors.Is(err, websocket.ErrBadHandshake) && resp != nil {
			body, _ := io.ReadAll(resp.Body)
			return nil, parseErrorResponse(resp, body)
		}
		return nil, fmt.Errorf("failed to dial realtime: %w", err)
	}
	return conn, nil
}
