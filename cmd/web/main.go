package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/peterkuimelis/bridgegen/internal/config"
	"github.com/peterkuimelis/bridgegen/internal/web"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML config (default $BRIDGEGEN_CONFIG)")
	addr := flag.String("addr", "", "HTTP listen address (default from config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Web.Addr = *addr
	}

	srv := web.NewServer(cfg)
	log.Printf("bridgegen web UI listening on %s", cfg.Web.Addr)
	if err := srv.ListenAndServe(cfg.Web.Addr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
