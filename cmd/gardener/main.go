// Command gardener runs the village steward. It observes the village over
// the HTTP API and applies at most one intervention per cycle.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflux/Villa/internal/gardener"
)

func main() {
	var (
		apiURL     = flag.String("api", envOrDefault("VILLA_API_URL", "http://localhost:8080"), "village API base URL")
		interval   = flag.Duration("interval", 2*time.Minute, "time between cycles")
		memoryPath = flag.String("memory", "gardener_memory.json", "cycle memory file")
		once       = flag.Bool("once", false, "run a single cycle and exit")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	adminKey := os.Getenv("VILLA_ADMIN_KEY")
	if adminKey == "" {
		slog.Error("VILLA_ADMIN_KEY is required")
		os.Exit(1)
	}

	slog.Info("Villa gardener starting", "api_url", *apiURL, "interval", *interval)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	steward := &gardener.Steward{
		Observer: gardener.NewObserver(*apiURL),
		Actor:    gardener.NewActor(*apiURL, adminKey),
		Memory:   gardener.LoadMemory(*memoryPath),
	}

	slog.Info("waiting for village API...")
	if err := waitForAPI(ctx, *apiURL); err != nil {
		slog.Error("village API not ready", "error", err)
		os.Exit(1)
	}

	runCycle(ctx, steward, *memoryPath)
	if *once {
		return
	}

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			runCycle(ctx, steward, *memoryPath)
		case <-ctx.Done():
			slog.Info("shutting down")
			fmt.Println("Gardener stopped.")
			return
		}
	}
}

func runCycle(ctx context.Context, steward *gardener.Steward, memoryPath string) {
	d, err := steward.Cycle(ctx)
	if err != nil {
		slog.Error("gardener cycle failed", "error", err)
	} else {
		slog.Info("gardener cycle complete", "action", d.Action, "rationale", d.Rationale)
	}
	if err := steward.Memory.Save(memoryPath); err != nil {
		slog.Error("memory save failed", "error", err)
	}
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

// waitForAPI polls the status endpoint with exponential backoff until it
// responds, giving up after five minutes.
func waitForAPI(ctx context.Context, apiURL string) error {
	backoff := 2 * time.Second
	maxBackoff := 30 * time.Second
	deadline := time.Now().Add(5 * time.Minute)

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL+"/api/v1/status", nil)
		if err != nil {
			return err
		}
		resp, err := http.DefaultClient.Do(req)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				slog.Info("village API is ready")
				return nil
			}
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("no response from %s within 5 minutes", apiURL)
		}
		slog.Info("village not ready, retrying...", "backoff", backoff)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}
