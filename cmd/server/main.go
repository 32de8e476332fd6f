package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pkaul/serverchallenge/internal/config"
	"github.com/pkaul/serverchallenge/internal/logger"
	"github.com/pkaul/serverchallenge/internal/server"
)

func main() {
	var (
		configPath string
		address    string
		root       string
	)
	flag.StringVar(&configPath, "config", "", "path to TOML configuration file")
	flag.StringVar(&address, "addr", "", "listen address (overrides config)")
	flag.StringVar(&root, "root", "", "document root directory (overrides config)")
	flag.Parse()

	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if address != "" {
		cfg.Server.Address = &address
	}
	if root != "" {
		cfg.Static.DocumentRoot = root
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	lg, err := logger.New(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	srv, err := server.New(cfg, lg)
	if err != nil {
		lg.Error("server initialization failed", logger.LogFields{"error": err.Error()})
		os.Exit(1)
	}

	lg.Info("serving static content", logger.LogFields{
		"document_root": cfg.Static.DocumentRoot,
		"address":       *cfg.Server.Address,
	})

	if err := srv.Run(); err != nil {
		lg.Error("server exited with error", logger.LogFields{"error": err.Error()})
		os.Exit(1)
	}
	lg.Info("server stopped", nil)
}
