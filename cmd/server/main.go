package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/GriffinCanCode/dwpnxt/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/dwpnxt/backend/internal/infrastructure/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Flags override environment
	pflag.StringVar(&cfg.Server.Port, "port", cfg.Server.Port, "Server port")
	pflag.StringVar(&cfg.Server.Host, "host", cfg.Server.Host, "Server host")
	pflag.StringVar(&cfg.Analysis.BackendURL, "backend", cfg.Analysis.BackendURL, "Analysis backend base URL")
	pflag.BoolVar(&cfg.Logging.Development, "dev", cfg.Logging.Development, "Development mode (colored logs, debug level)")
	pflag.Parse()

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	log.Println(strings.Repeat("=", 60))
	log.Println("DWPNxt Intake Service")
	log.Println(strings.Repeat("=", 60))

	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runErr := srv.Run(ctx)
	if err := srv.Close(); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	if runErr != nil {
		log.Fatalf("Server error: %v", runErr)
	}
}
