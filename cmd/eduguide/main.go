// Command eduguide is a terminal front end for the career guidance
// backend: sign in, take the aptitude quiz, read recommendations and chat
// with the assistant.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"eduguide/client"
	"eduguide/config"
	"eduguide/logger"
	"eduguide/services"
	"eduguide/storage"
)

const usage = `usage: eduguide <command> [flags]

commands:
  login            sign in with email and password, -otp or -guest
  register         create an account
  logout           forget the stored session
  whoami           show the signed-in user
  quiz             take the aptitude quiz
  recommendations  show guidance from the last quiz
  chat             talk to the guidance assistant
  dashboard        history, stream summary and conversations
  health           check the backend
`

type app struct {
	cfg   *config.Config
	log   *logger.Logger
	store storage.LocalStorage
	api   *client.Client
	auth  *services.AuthStore
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, closeFn, err := newApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closeFn()

	cmd, args := os.Args[1], os.Args[2:]
	var runErr error
	switch cmd {
	case "login":
		runErr = a.login(ctx, args)
	case "register":
		runErr = a.register(ctx, args)
	case "logout":
		runErr = a.logout(ctx)
	case "whoami":
		runErr = a.whoami()
	case "quiz":
		runErr = a.quiz(ctx, args)
	case "recommendations":
		runErr = a.recommendations(ctx)
	case "chat":
		runErr = a.chat(ctx, args)
	case "dashboard":
		runErr = a.dashboard(ctx)
	case "health":
		runErr = a.health(ctx)
	case "help", "-h", "--help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		closeFn()
		os.Exit(2)
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		closeFn()
		os.Exit(1)
	}
}

func newApp(ctx context.Context) (*app, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}

	store, closeStore, err := storage.Open(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open local storage: %w", err)
	}

	api, err := client.New(client.Options{
		BaseURL: cfg.APIBaseURL,
		Timeout: cfg.Timeout(),
		Tokens:  client.StoredToken{Storage: store},
		Logger:  log,
	})
	if err != nil {
		_ = closeStore()
		return nil, nil, err
	}

	a := &app{
		cfg:   cfg,
		log:   log,
		store: store,
		api:   api,
		auth:  services.NewAuthStore(ctx, api, store, log),
	}
	var closed bool
	return a, func() {
		if closed {
			return
		}
		closed = true
		if err := closeStore(); err != nil {
			log.Warn("failed to close local storage", "error", err)
		}
		log.Sync()
	}, nil
}
