package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"
	ws "github.com/wricardo/mcp-training/tictactoe/transport/websocket"
)

// Client speaks the game's frame protocol over one WebSocket connection
type Client struct {
	conn *websocket.Conn
}

// Dial connects to the server's /ws endpoint
func Dial(ctx context.Context, url string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return &Client{conn: conn}, nil
}

// Send writes one frame
func (c *Client) Send(event string, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", event, err)
	}
	if err := c.conn.WriteJSON(ws.Frame{Event: event, Data: raw}); err != nil {
		return fmt.Errorf("send %s: %w", event, err)
	}
	return nil
}

// Next blocks until the next frame arrives
func (c *Client) Next() (ws.Frame, error) {
	var f ws.Frame
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return f, err
	}
	if err := json.Unmarshal(data, &f); err != nil {
		return f, fmt.Errorf("decode frame: %w", err)
	}
	return f, nil
}

// Close closes the connection
func (c *Client) Close() error {
	return c.conn.Close()
}
