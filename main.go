// Command tictactoe starts the real-time tic-tac-toe server.
//
// It supports two modes:
//  1. "serve" (default) – runs the HTTP server exposing the WebSocket game
//     endpoint, health and lobby reads, and an /mcp HTTP endpoint
//  2. "mcp" – runs an MCP stdio server against a running server, or against
//     an internal one when none is reachable
//
// Flags control host/port, allowed WebSocket origins, logging, and optional
// ngrok tunneling for easy external access during development. Every flag
// can also be set from the environment or a .env file.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/mcp-training/tictactoe/api"
	"github.com/wricardo/mcp-training/tictactoe/config"
	"github.com/wricardo/mcp-training/tictactoe/game/router"
	"github.com/wricardo/mcp-training/tictactoe/game/service"
	"github.com/wricardo/mcp-training/tictactoe/game/session"
	"github.com/wricardo/mcp-training/tictactoe/logging"
	"github.com/wricardo/mcp-training/tictactoe/transport/mcp"
	"github.com/wricardo/mcp-training/tictactoe/transport/websocket"
	"go.uber.org/zap"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Tic-Tac-Toe Server"
)

const defaultServerURL = "http://localhost:8080"

func main() {
	// Load .env file if it exists; a missing file is not an error
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: Error loading .env file: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newCommand builds the command tree. serve is the default action.
func newCommand() *cli.Command {
	defaults := config.Default()

	return &cli.Command{
		Name:    "tictactoe",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "host",
				Value:   defaults.Server.Host,
				Usage:   "HTTP server host",
				Sources: cli.EnvVars("HOST"),
			},
			&cli.IntFlag{
				Name:    "port",
				Value:   defaults.Server.Port,
				Usage:   "HTTP server port",
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringSliceFlag{
				Name:    "allowed-origins",
				Usage:   "Browser origins allowed to open the WebSocket (empty allows any)",
				Sources: cli.EnvVars("ALLOWED_ORIGINS"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   defaults.Logging.Level,
				Usage:   "Log level: debug, info, warn, error",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "log-format",
				Value:   defaults.Logging.Format,
				Usage:   "Log format: json or console",
				Sources: cli.EnvVars("LOG_FORMAT"),
			},
			&cli.BoolFlag{
				Name:    "ngrok",
				Usage:   "Enable ngrok tunnel",
				Sources: cli.EnvVars("NGROK_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "ngrok-auth",
				Usage:   "Ngrok auth token",
				Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN"),
			},
			&cli.StringFlag{
				Name:    "ngrok-domain",
				Usage:   "Custom ngrok domain (optional)",
				Sources: cli.EnvVars("NGROK_DOMAIN"),
			},
		},
		Action: runServe,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP server with WebSocket, REST and MCP endpoints (default)",
				Action: runServe,
			},
			{
				Name:  "mcp",
				Usage: "Run an MCP stdio server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "server-url",
						Usage:   "Base URL of a running server; an internal one is started when unreachable",
						Value:   defaultServerURL,
						Sources: cli.EnvVars("MCP_SERVER_URL"),
					},
				},
				Action: runMCP,
			},
		},
	}
}

// configFromCommand assembles the configuration from parsed flags
func configFromCommand(cmd *cli.Command) config.Config {
	return config.Config{
		Server: config.ServerConfig{
			Host:           cmd.String("host"),
			Port:           cmd.Int("port"),
			AllowedOrigins: config.SplitOrigins(cmd.StringSlice("allowed-origins")),
		},
		Logging: config.LoggingConfig{
			Level:  cmd.String("log-level"),
			Format: cmd.String("log-format"),
		},
		Ngrok: config.NgrokConfig{
			Enabled:   cmd.Bool("ngrok"),
			AuthToken: cmd.String("ngrok-auth"),
			Domain:    cmd.String("ngrok-domain"),
		},
	}
}

// setup validates the configuration and builds the logger
func setup(cmd *cli.Command) (config.Config, *zap.Logger, error) {
	cfg := configFromCommand(cmd)
	if err := cfg.Validate(); err != nil {
		return cfg, nil, err
	}
	logger, err := logging.NewLogger(cfg.Logging)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, logger, nil
}

// app is the wired server: one registry, one dispatch loop, one handler tree
type app struct {
	registry *session.Registry
	hub      *websocket.Hub
	handler  http.Handler
}

// newApp wires registry, router, dispatcher, hub and HTTP handlers.
// mcpBaseURL is where the /mcp endpoint sends its REST calls.
func newApp(cfg config.Config, logger *zap.Logger, mcpBaseURL string) *app {
	registry := session.NewRegistry(logger.Named("registry"))
	dispatcher := service.NewDispatcher(registry, router.New(), logger.Named("dispatcher"))
	hub := websocket.NewHub(dispatcher, logger.Named("websocket"), cfg.Server.AllowedOrigins)
	apiServer := api.NewServer(registry, hub.ServeWS, logger.Named("api"))

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.Handle("/mcp", mcp.NewClient(mcpBaseURL))

	return &app{
		registry: registry,
		hub:      hub,
		handler:  mainRouter,
	}
}

// runServe starts the HTTP server and, when enabled, an ngrok tunnel. It
// blocks until ctx is cancelled and then shuts down gracefully.
func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	addr := cfg.Server.Addr()
	a := newApp(cfg, logger, "http://"+addr)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go a.hub.Run(ctx)

	httpServer := &http.Server{
		Addr:        addr,
		Handler:     a.handler,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	logger.Info("starting server", zap.String("app", AppName), zap.String("version", Version))

	var wg sync.WaitGroup
	serveErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		logger.Info("HTTP server listening",
			zap.String("addr", addr),
			zap.String("websocket", fmt.Sprintf("ws://%s/ws", addr)),
			zap.String("health", fmt.Sprintf("http://%s/health", addr)),
			zap.String("mcp", fmt.Sprintf("http://%s/mcp", addr)),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- fmt.Errorf("HTTP server failed: %w", err)
			cancel()
		}
	}()

	if cfg.Ngrok.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runTunnel(ctx, cfg.Ngrok, a.handler, logger.Named("ngrok"))
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP server shutdown error", zap.Error(err))
	}

	wg.Wait()
	<-a.hub.Done()
	logger.Info("server stopped")

	select {
	case err := <-serveErr:
		return err
	default:
		return nil
	}
}

// runTunnel serves handler through an ngrok endpoint until ctx ends
func runTunnel(ctx context.Context, cfg config.NgrokConfig, handler http.Handler, logger *zap.Logger) {
	var tunnel ngrokConfig.Tunnel
	if cfg.Domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(cfg.Domain))
		logger.Info("using custom ngrok domain", zap.String("domain", cfg.Domain))
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(cfg.AuthToken))
	if err != nil {
		logger.Error("failed to start ngrok tunnel", zap.Error(err))
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			logger.Warn("failed to close ngrok tunnel", zap.Error(err))
		}
	}()

	logger.Info("ngrok tunnel established",
		zap.String("url", tun.URL()),
		zap.String("websocket", tun.URL()+"/ws"),
		zap.String("mcp", tun.URL()+"/mcp"),
	)

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		logger.Error("ngrok server error", zap.Error(err))
	}
	logger.Info("ngrok tunnel closed")
}

// runMCP serves the MCP tools over stdio. It reuses the server at
// --server-url when it answers /health; otherwise it starts an internal
// server on a random loopback port and targets that.
func runMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	baseURL := cmd.String("server-url")
	if !reachable(ctx, baseURL) {
		logger.Info("no server reachable, starting internal HTTP server", zap.String("server_url", baseURL))

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}
		baseURL = "http://" + listener.Addr().String()

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		a := newApp(cfg, logger, baseURL)
		go a.hub.Run(ctx)

		internal := &http.Server{Handler: a.handler}
		go func() {
			if err := internal.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("internal HTTP server error", zap.Error(err))
			}
		}()
		defer internal.Close()
	}

	logger.Info("MCP stdio server ready", zap.String("server_url", baseURL))
	return mcp.NewClient(baseURL).ServeStdio()
}

// reachable reports whether baseURL answers its health check
func reachable(ctx context.Context, baseURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
