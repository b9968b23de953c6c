package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/five82/rally/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "override rally config path (optional)")
	headless := flag.Bool("headless", false, "run without the terminal monitor")
	reconnectSeconds := flag.Int("reconnect", 0, "event channel reconnect base delay in seconds (optional, defaults to config)")
	refreshSeconds := flag.Int("refresh", 0, "nearby matches refresh interval in seconds (optional, defaults to 60s)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{ConfigPath: *configPath, Headless: *headless}
	if s := *reconnectSeconds; s > 0 {
		opts.Reconnect = s
	}
	if s := *refreshSeconds; s > 0 {
		opts.RefreshEvery = s
	}

	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "rally: %v\n", err)
		return 1
	}
	return 0
}
