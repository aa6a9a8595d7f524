package main

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/mcp-training/tictactoe/config"
	"go.uber.org/zap"
)

func TestConstants(t *testing.T) {
	assert.NotEmpty(t, Version)
	assert.Equal(t, "Tic-Tac-Toe Server", AppName)
}

// parse runs the command with its actions replaced and returns the
// configuration they would have seen
func parse(t *testing.T, args ...string) config.Config {
	t.Helper()
	var got config.Config
	cmd := newCommand()
	cmd.Action = func(_ context.Context, c *cli.Command) error {
		got = configFromCommand(c)
		return nil
	}
	require.NoError(t, cmd.Run(context.Background(), append([]string{"tictactoe"}, args...)))
	return got
}

func TestFlagDefaults(t *testing.T) {
	cfg := parse(t)

	assert.Equal(t, config.Default().Server.Host, cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Empty(t, cfg.Server.AllowedOrigins)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Ngrok.Enabled)
	assert.NoError(t, cfg.Validate())
}

func TestFlagOverrides(t *testing.T) {
	cfg := parse(t,
		"--host", "0.0.0.0",
		"--port", "9090",
		"--allowed-origins", "http://a,http://b",
		"--log-level", "debug",
		"--log-format", "json",
	)

	assert.Equal(t, "0.0.0.0:9090", cfg.Server.Addr())
	assert.Equal(t, []string{"http://a", "http://b"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, config.LoggingConfig{Level: "debug", Format: "json"}, cfg.Logging)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "7070")
	t.Setenv("LOG_LEVEL", "warn")

	cfg := parse(t)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestServeRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"port out of range", []string{"--port", "70000"}, "server.port"},
		{"unknown log level", []string{"--log-level", "trace"}, "logging.level"},
		{"ngrok without token", []string{"--ngrok"}, "ngrok.auth_token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("NGROK_AUTHTOKEN", "")
			t.Setenv("NGROK_AUTH_TOKEN", "")

			err := newCommand().Run(context.Background(), append([]string{"tictactoe"}, tt.args...))

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestAppEndToEnd(t *testing.T) {
	cfg := config.Default()
	ctx, cancel := context.WithCancel(context.Background())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	a := newApp(cfg, zap.NewNop(), "http://"+ln.Addr().String())
	srv := &httptest.Server{
		Listener: ln,
		Config:   &http.Server{Handler: a.handler},
	}
	srv.Start()
	go a.hub.Run(ctx)
	t.Cleanup(func() {
		srv.Close()
		cancel()
		<-a.hub.Done()
	})

	t.Run("health", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/health")
		require.NoError(t, err)
		defer resp.Body.Close()

		var body map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("websocket game creates a listed session", func(t *testing.T) {
		url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		require.NoError(t, err)
		defer conn.Close()

		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var frame struct {
			Event string          `json:"event"`
			Data  json.RawMessage `json:"data"`
		}
		require.NoError(t, conn.ReadJSON(&frame))
		require.Equal(t, "connected", frame.Event)

		require.NoError(t, conn.WriteJSON(map[string]any{
			"event": "create_session",
			"data":  map[string]string{"player_name": "Alice"},
		}))
		require.NoError(t, conn.ReadJSON(&frame))
		require.Equal(t, "session_created", frame.Event)

		assert.Equal(t, 1, a.registry.Count())

		resp, err := http.Get(srv.URL + "/api/sessions")
		require.NoError(t, err)
		defer resp.Body.Close()
		var list struct {
			Count int `json:"count"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
		assert.Equal(t, 1, list.Count)
	})

	t.Run("mcp endpoint proxies to the api", func(t *testing.T) {
		body := strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"server_health","arguments":{}}}`)
		resp, err := http.Post(srv.URL+"/mcp", "application/json", body)
		require.NoError(t, err)
		defer resp.Body.Close()

		var rpc struct {
			Result struct {
				Content []struct {
					Text string `json:"text"`
				} `json:"content"`
			} `json:"result"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&rpc))
		require.NotEmpty(t, rpc.Result.Content)
		assert.Contains(t, rpc.Result.Content[0].Text, "Status: healthy")
	})
}

func TestReachable(t *testing.T) {
	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ok.Close()

	assert.True(t, reachable(context.Background(), ok.URL))
	assert.False(t, reachable(context.Background(), "http://127.0.0.1:1"))
}
