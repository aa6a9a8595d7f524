// Command bot plays tic-tac-toe against a running server over its
// WebSocket endpoint. It creates a session, joins a given one, or joins the
// first open session it finds, then plays a fixed number of games with a
// win-block-center strategy. Two bots pointed at the same server play each
// other, which makes it a convenient smoke test for a deployment.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/mcp-training/tictactoe/config"
	"github.com/wricardo/mcp-training/tictactoe/logging"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	defaults := config.Default()

	return &cli.Command{
		Name:  "bot",
		Usage: "Play tic-tac-toe against a running server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "url",
				Value:   "ws://localhost:8080/ws",
				Usage:   "WebSocket endpoint of the server",
				Sources: cli.EnvVars("BOT_URL"),
			},
			&cli.StringFlag{
				Name:  "name",
				Value: "bot",
				Usage: "Player name",
			},
			&cli.StringFlag{
				Name:  "session",
				Usage: "Session ID to join instead of creating one",
			},
			&cli.StringFlag{
				Name:  "password",
				Usage: "Password to set on create or to present on join",
			},
			&cli.BoolFlag{
				Name:  "join-any",
				Usage: "Join the first open session without a password, creating one if none exists",
			},
			&cli.IntFlag{
				Name:  "games",
				Value: 1,
				Usage: "Number of games to play before leaving",
			},
			&cli.DurationFlag{
				Name:  "delay",
				Value: 500 * time.Millisecond,
				Usage: "Pause before each move",
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
		},
		Action: run,
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	logCfg := config.LoggingConfig{
		Level:  cmd.String("log-level"),
		Format: cmd.String("log-format"),
	}
	logger, err := logging.NewLogger(logCfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	opts := options{
		Name:      strings.TrimSpace(cmd.String("name")),
		SessionID: cmd.String("session"),
		Password:  cmd.String("password"),
		JoinAny:   cmd.Bool("join-any"),
		Games:     cmd.Int("games"),
		Delay:     cmd.Duration("delay"),
	}
	if opts.Name == "" {
		return fmt.Errorf("--name must not be empty")
	}

	client, err := Dial(ctx, cmd.String("url"))
	if err != nil {
		return err
	}
	defer client.Close()

	results, err := newBot(client, opts, logger.With(zap.String("player", opts.Name))).run(ctx)
	for i, r := range results {
		logger.Info("result", zap.Int("game", i+1), zap.String("result", r))
	}
	return err
}
