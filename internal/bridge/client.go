package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// ErrClientClosed is returned by Call after the connection has gone away.
var ErrClientClosed = errors.New("bridge client closed")

// Client speaks the bridge protocol. Calls may be made from several
// goroutines; responses are matched to callers by request id.
type Client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex

	mu      sync.Mutex
	pending map[string]chan Response
	err     error

	events chan Event
	done   chan struct{}
}

// Dial connects to a bridge at url, e.g. "ws://127.0.0.1:4480/ws".
func Dial(ctx context.Context, url string, header http.Header) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	c := &Client{
		conn:    conn,
		pending: make(map[string]chan Response),
		events:  make(chan Event, 32),
		done:    make(chan struct{}),
	}
	go c.readMessages()
	return c, nil
}

// frame is either a Response or an Event.
type frame struct {
	Response
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func (c *Client) readMessages() {
	defer close(c.events)
	for {
		var f frame
		if err := c.conn.ReadJSON(&f); err != nil {
			c.fail(err)
			return
		}

		if f.Event != "" {
			select {
			case c.events <- Event{Event: f.Event, Data: f.Data}:
			default:
				// Slow consumer; drop rather than stall responses.
			}
			continue
		}

		c.mu.Lock()
		ch, ok := c.pending[f.ID]
		delete(c.pending, f.ID)
		c.mu.Unlock()
		if ok {
			ch <- f.Response
		}
	}
}

func (c *Client) fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err == nil {
		c.err = err
		close(c.done)
	}
}

// Events delivers notifications pushed by the server. Data is left as raw
// JSON. The channel is closed when the connection ends.
func (c *Client) Events() <-chan Event {
	return c.events
}

// Call sends op with args and waits for its response. Failures reported by
// the server come back as a Response with OK false, not as an error.
func (c *Client) Call(ctx context.Context, op string, args any) (Response, error) {
	var raw json.RawMessage
	if args != nil {
		b, err := json.Marshal(args)
		if err != nil {
			return Response{}, err
		}
		raw = b
	}

	id := uuid.NewString()
	ch := make(chan Response, 1)

	c.mu.Lock()
	if c.err != nil {
		c.mu.Unlock()
		return Response{}, ErrClientClosed
	}
	c.pending[id] = ch
	c.mu.Unlock()

	c.writeMu.Lock()
	err := c.conn.WriteJSON(Request{ID: id, Op: op, Args: raw})
	c.writeMu.Unlock()
	if err != nil {
		c.forget(id)
		return Response{}, err
	}

	select {
	case resp := <-ch:
		return resp, nil
	case <-c.done:
		c.forget(id)
		return Response{}, ErrClientClosed
	case <-ctx.Done():
		c.forget(id)
		return Response{}, ctx.Err()
	}
}

// CallInto is Call that decodes a successful result into out.
func (c *Client) CallInto(ctx context.Context, op string, args, out any) error {
	resp, err := c.Call(ctx, op, args)
	if err != nil {
		return err
	}
	if !resp.OK {
		return fmt.Errorf("%s: %s (%s)", op, resp.Error, resp.Code)
	}
	if out == nil {
		return nil
	}
	// Result was decoded into an interface; round trip it into out.
	b, err := json.Marshal(resp.Result)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

func (c *Client) forget(id string) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

// Close closes the connection.
func (c *Client) Close() error {
	c.writeMu.Lock()
	c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.writeMu.Unlock()
	err := c.conn.Close()
	c.fail(ErrClientClosed)
	return err
}
