package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Its-donkey/armada-console/internal/config"
	"github.com/Its-donkey/armada-console/internal/ui/api"
	"github.com/Its-donkey/armada-console/internal/ui/metrics"
	"github.com/Its-donkey/armada-console/internal/ui/server"
	"github.com/Its-donkey/armada-console/internal/ui/state"
	"github.com/Its-donkey/armada-console/logging"
)

var openLogFile = logging.OpenRotatingFile

func main() {
	envFile := flag.String("env", ".env", "optional dotenv file with ARMADA_* settings")
	listen := flag.String("listen", "", "address to serve the console on (overrides ARMADA_SERVER_LISTEN)")
	apiBase := flag.String("api", "", "base URL for the Armada API (overrides ARMADA_API_BASE_URL)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *envFile, *listen, *apiBase, os.Stdout); err != nil {
		stop()
		log.Fatalf("console: %v", err)
	}
}

// run wires the console and serves it until ctx is cancelled. Every resource it
// opens is released before it returns.
func run(ctx context.Context, envFile, listen, apiBase string, stdout io.Writer) error {
	if strings.TrimSpace(apiBase) != "" {
		if err := os.Setenv(config.Prefix+"API_BASE_URL", apiBase); err != nil {
			return fmt.Errorf("set api base: %w", err)
		}
	}
	cfg, err := config.Load(envFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if strings.TrimSpace(listen) != "" {
		cfg.Server.Listen = strings.TrimSpace(listen)
	}

	writers := []io.Writer{stdout}
	if dir := strings.TrimSpace(cfg.Log.Dir); dir != "" {
		logFile, err := openLogFile(dir, "console.log", cfg.Log.MaxMB, cfg.Log.MaxFiles)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer logFile.Close()
		writers = append(writers, logFile)
	}
	logger := logging.New("console", logging.ParseLevel(cfg.Log.Level), writers...)
	recorder := metrics.New()

	client, err := api.New(api.Options{
		BaseURL:    cfg.API.BaseURL,
		HTTPClient: &http.Client{Timeout: cfg.APITimeout()},
		Logger:     logger,
		Metrics:    recorder,
	})
	if err != nil {
		return fmt.Errorf("api client: %w", err)
	}
	sessions, err := state.NewSessions(cfg.Session.MaxSessions)
	if err != nil {
		return fmt.Errorf("session registry: %w", err)
	}

	logger.Info("console", "starting", map[string]any{
		"listen":      cfg.Server.Listen,
		"api":         cfg.API.BaseURL,
		"environment": cfg.Environment,
	})
	err = server.Run(ctx, server.Options{
		Listen:          cfg.Server.Listen,
		Client:          client,
		Sessions:        sessions,
		Logger:          logger,
		Metrics:         recorder,
		IdentityCookie:  cfg.Session.CookieName,
		SessionTTL:      cfg.SessionTTL(),
		ReadTimeout:     time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:    time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:     time.Duration(cfg.Server.IdleTimeout) * time.Second,
		ShutdownTimeout: time.Duration(cfg.Server.ShutdownTimeout) * time.Second,
	})
	if err != nil {
		logger.Error("console", "server stopped", err, nil)
		return fmt.Errorf("server: %w", err)
	}
	return nil
}
