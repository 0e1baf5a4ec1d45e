package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/peterkuimelis/bridgegen/internal/config"
	bgmcp "github.com/peterkuimelis/bridgegen/internal/mcp"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML config (default $BRIDGEGEN_CONFIG)")
	seed := flag.Int64("seed", 0, "shuffle seed (0 seeds from the clock)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}

	s := server.NewMCPServer("bridgegen", "1.0.0",
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)
	bgmcp.NewTools(cfg).RegisterTools(s)

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
