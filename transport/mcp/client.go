package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/mcp-training/tictactoe/game/engine"
	"github.com/wricardo/mcp-training/tictactoe/game/session"
)

const (
	serverName    = "Tic-Tac-Toe"
	serverVersion = "1.0.0"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API at baseURL
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(true),
		server.WithInstructions(`Tic-Tac-Toe - MCP Interface

This is a read-only view of a running tic-tac-toe server. Games are played
by browser clients over WebSocket; these tools let you watch the lobby.

AVAILABLE TOOLS:
- list_sessions: Sessions that are waiting for a player or being played
- get_session: Board, players, status and chat size of one session
- server_health: Server status and number of sessions held`),
	)

	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List the public game sessions (waiting or playing)",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get the board and players of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID to retrieve",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "server_health",
		Description: "Check that the server is up and count its sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleServerHealth)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// ServeStdio serves the tools over stdin/stdout until the input closes
func (c *Client) ServeStdio() error {
	if err := server.ServeStdio(c.mcpServer); err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}

// ServeHTTP answers one JSON-RPC message per POST
func (c *Client) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	response := c.mcpServer.HandleMessage(r.Context(), body)

	w.Header().Set("Content-Type", "application/json")
	responseData, err := json.Marshal(response)
	if err != nil {
		http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
		return
	}
	w.Write(responseData)
}

// Helper methods for API calls

func (c *Client) apiGet(ctx context.Context, path string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

// Tool handlers

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int               `json:"count"`
		Sessions []session.Summary `json:"sessions"`
	}

	if err := c.apiGet(ctx, "/api/sessions", &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSummaries(response.Sessions)), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return mcp.NewToolResultError("session_id is required"), nil
	}

	var sess session.Session
	if err := c.apiGet(ctx, "/api/sessions/"+url.PathEscape(sessionID), &sess); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSession(sess)), nil
}

func (c *Client) handleServerHealth(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var health struct {
		Status         string `json:"status"`
		ActiveSessions int    `json:"active_sessions"`
	}

	if err := c.apiGet(ctx, "/health", &health); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Status: %s\nActive sessions: %d\n", health.Status, health.ActiveSessions)), nil
}

func formatSummaries(sessions []session.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Open Sessions (%d):\n\n", len(sessions))
	for _, s := range sessions {
		lock := ""
		if s.HasPassword {
			lock = " (password)"
		}
		fmt.Fprintf(&b, "- %s by %s [%s] %d/%d players%s, created %s\n",
			s.ID, s.Creator, s.Status, s.PlayerCount, session.MaxPlayers, lock, s.CreatedAt.Format("15:04:05"))
	}
	return b.String()
}

func formatSession(s session.Session) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session %s (%s)\n", s.ID, s.Status)
	fmt.Fprintf(&b, "Creator: %s\n", s.Creator)
	for _, p := range s.Players {
		fmt.Fprintf(&b, "Player %s: %s\n", p.Symbol, p.Name)
	}
	b.WriteString("\n")
	b.WriteString(formatBoard(s.GameState.Board))
	b.WriteString("\n")

	state := s.GameState
	switch {
	case state.IsDraw:
		b.WriteString("Result: draw\n")
	case state.Winner != nil:
		fmt.Fprintf(&b, "Result: %s wins\n", *state.Winner)
	default:
		fmt.Fprintf(&b, "To move: %s\n", state.CurrentPlayer)
	}
	fmt.Fprintf(&b, "Chat messages: %d\n", len(s.ChatMessages))
	return b.String()
}

// formatBoard renders the grid with '.' for empty cells
func formatBoard(board engine.Board) string {
	rows := make([]string, 0, engine.BoardSize)
	for _, row := range board {
		cells := make([]string, 0, engine.BoardSize)
		for _, cell := range row {
			if cell == engine.Empty {
				cells = append(cells, ".")
			} else {
				cells = append(cells, string(cell))
			}
		}
		rows = append(rows, strings.Join(cells, " "))
	}
	return strings.Join(rows, "\n") + "\n"
}
