// Package client talks to a running maze server over its websocket.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lawnchairsociety/mazeforge/internal/maze"
	"github.com/lawnchairsociety/mazeforge/internal/protocol"
)

const defaultTimeout = 5 * time.Second

// ErrRemote wraps every error reported by the server.
var ErrRemote = errors.New("server error")

// Client is one websocket session. Requests are serialised; a Client is
// safe for concurrent use but never pipelines.
type Client struct {
	conn    *websocket.Conn
	session string
	info    protocol.Info

	mu     sync.Mutex
	nextID int
}

// Dial connects to url (ws://host/ws) and waits for the welcome message.
func Dial(ctx context.Context, url string, header http.Header) (*Client, error) {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("failed to connect: %w (HTTP %d)", err, resp.StatusCode)
		}
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	c := &Client{conn: conn}
	welcome, err := c.read(ctx)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("waiting for welcome: %w", err)
	}
	if welcome.Op != protocol.OpWelcome || welcome.Info == nil {
		conn.Close()
		return nil, fmt.Errorf("unexpected first message %q", welcome.Op)
	}
	c.session = welcome.Session
	c.info = *welcome.Info
	return c, nil
}

// Session returns the id the server assigned to this connection.
func (c *Client) Session() string { return c.session }

// Welcome returns the level description sent on connect.
func (c *Client) Welcome() protocol.Info { return c.info }

// Close says goodbye and drops the connection.
func (c *Client) Close() error {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	return c.conn.Close()
}

// Do sends req and returns the matching response. A response carrying an
// error comes back alongside an error wrapping ErrRemote.
func (c *Client) Do(ctx context.Context, req protocol.Request) (protocol.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	req.ID = strconv.Itoa(c.nextID)

	if err := c.conn.SetWriteDeadline(deadline(ctx)); err != nil {
		return protocol.Response{}, err
	}
	if err := c.conn.WriteJSON(req); err != nil {
		return protocol.Response{}, fmt.Errorf("failed to send %s: %w", req.Op, err)
	}

	for {
		resp, err := c.read(ctx)
		if err != nil {
			return protocol.Response{}, err
		}
		// Replies to malformed lines carry no id; anything else stale is
		// skipped too.
		if resp.ID != req.ID {
			continue
		}
		if resp.Error != "" {
			return resp, fmt.Errorf("%w: %s", ErrRemote, resp.Error)
		}
		return resp, nil
	}
}

// Info asks for the level description.
func (c *Client) Info(ctx context.Context) (*protocol.Info, error) {
	resp, err := c.Do(ctx, protocol.Request{Op: protocol.OpInfo})
	if err != nil {
		return nil, err
	}
	return resp.Info, nil
}

// View asks for the window around cell (x,y). Zero half sizes use the
// server default.
func (c *Client) View(ctx context.Context, x, y, halfWidth, halfHeight int) (*protocol.View, error) {
	resp, err := c.Do(ctx, protocol.Request{Op: protocol.OpView, X: x, Y: y, HalfWidth: halfWidth, HalfHeight: halfHeight})
	if err != nil {
		return nil, err
	}
	return resp.View, nil
}

// Path asks for the route between two cells. Nil ends use the server
// defaults: (1,1) and the portal.
func (c *Client) Path(ctx context.Context, from, to *maze.Point) (*protocol.Path, error) {
	resp, err := c.Do(ctx, protocol.Request{Op: protocol.OpPath, From: from, To: to})
	if err != nil {
		return nil, err
	}
	return resp.Path, nil
}

// Entities lists the overlays on the map.
func (c *Client) Entities(ctx context.Context) ([]protocol.Entity, error) {
	resp, err := c.Do(ctx, protocol.Request{Op: protocol.OpEntities})
	if err != nil {
		return nil, err
	}
	return resp.Entities, nil
}

func (c *Client) read(ctx context.Context) (protocol.Response, error) {
	var resp protocol.Response
	if err := c.conn.SetReadDeadline(deadline(ctx)); err != nil {
		return resp, err
	}
	if err := c.conn.ReadJSON(&resp); err != nil {
		return resp, fmt.Errorf("failed to read response: %w", err)
	}
	return resp, nil
}

func deadline(ctx context.Context) time.Time {
	if d, ok := ctx.Deadline(); ok {
		return d
	}
	return time.Now().Add(defaultTimeout)
}
