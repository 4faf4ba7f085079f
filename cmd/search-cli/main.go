package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"searchandwait/internal/adapters/localstore"
	"searchandwait/internal/adapters/searchapi"
	"searchandwait/internal/config"
	"searchandwait/internal/core/domain"
	"searchandwait/internal/service"
	"searchandwait/internal/telemetry"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// It's okay if .env doesn't exist, environment variables might be set manually
		slog.Info("no .env file found")
	}

	// Parse flags
	prompt := flag.String("prompt", "", "Search prompt to submit (e.g. \"find senior engineers\")")
	maxCandidates := flag.Int("max-candidates", 5, "Maximum number of candidates to request")
	inputFile := flag.String("input", "", "Path to a JSON file with an arbitrary job payload (overrides -prompt)")
	dataDir := flag.String("data-dir", "", "Base directory for storing run artifacts (overrides DATA_DIR)")
	skipHealth := flag.Bool("skip-health", false, "Skip the service liveness precheck")
	flag.Parse()

	if *prompt == "" && *inputFile == "" {
		fmt.Println("Usage: search-cli -prompt <text> [-max-candidates <n>] | -input <payload.json>")
		fmt.Println("\nExample:")
		fmt.Println("  search-cli -prompt \"find senior engineers\" -max-candidates 2")
		fmt.Println("  search-cli -input ./payloads/hubspot_sync.json")
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if *skipHealth {
		cfg.SkipHealthCheck = true
	}

	payload, summary, err := buildPayload(*prompt, *maxCandidates, *inputFile)
	if err != nil {
		logger.Error("invalid payload", "error", err)
		os.Exit(1)
	}

	logger.Info("=== Search CLI ===", "service", cfg.BaseURL, "data_dir", cfg.DataDir)

	// Initialize adapters
	headers := map[string]string{}
	if cfg.AuthHeader != "" {
		headers["Authorization"] = cfg.AuthHeader
	}
	client, err := searchapi.NewClient(searchapi.Config{
		BaseURL:      cfg.BaseURL,
		SubmitPath:   cfg.SubmitPath,
		StatusPath:   cfg.StatusPath,
		HealthPath:   cfg.HealthPath,
		PollInterval: cfg.PollInterval,
		MaxAttempts:  cfg.MaxAttempts,
		Timeout:      cfg.RequestTimeout,
		Headers:      headers,
		Logger:       logger,
	})
	if err != nil {
		logger.Error("failed to initialize client", "error", err)
		os.Exit(1)
	}

	storage := localstore.NewLocalStore(cfg.DataDir)

	orchestrator := service.NewOrchestrator(client, storage, logger)
	if cfg.SkipHealthCheck {
		orchestrator.SkipHealthCheck()
	}

	if cfg.MetricsAddr != "" {
		go func() {
			if err := http.ListenAndServe(cfg.MetricsAddr, telemetry.Handler()); err != nil {
				logger.Error("metrics listener stopped", "error", err)
			}
		}()
	}

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("received interrupt signal, cancelling")
		cancel()
	}()

	report, err := orchestrator.Run(ctx, payload, summary)
	printSummary(report)
	if err != nil {
		os.Exit(1)
	}
}

// buildPayload produces the job payload either from a JSON file or from the
// canonical prompt flags. One code path serves every payload shape.
func buildPayload(prompt string, maxCandidates int, inputFile string) (map[string]any, string, error) {
	if inputFile != "" {
		data, err := os.ReadFile(inputFile)
		if err != nil {
			return nil, "", fmt.Errorf("read payload file: %w", err)
		}
		var payload map[string]any
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, "", fmt.Errorf("payload file %s is not a JSON object: %w", inputFile, err)
		}
		return payload, "payload from " + inputFile, nil
	}

	return map[string]any{
		"prompt":         prompt,
		"max_candidates": maxCandidates,
	}, prompt, nil
}

func printSummary(report *domain.RunReport) {
	fmt.Println("\n=== Run Summary ===")
	fmt.Printf("Run ID:       %s\n", report.Run.ID)
	fmt.Printf("Handle:       %s\n", report.Handle)
	fmt.Printf("Success:      %t\n", report.Success)
	fmt.Printf("Attempts:     %d\n", report.Attempts)
	if !report.Success {
		fmt.Printf("Error:        %s\n", report.ErrorMessage)
	} else {
		fmt.Printf("Request:      %s\n", report.RequestPath)
		fmt.Printf("Result:       %s\n", report.ResultPath)
		fmt.Printf("Completed At: %s\n", report.CompletedAt.Format("2006-01-02 15:04:05 UTC"))
	}
}
