package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskrun/internal/app"
)

func main() {
	var (
		cfgPath string
		runFor  time.Duration
	)
	flag.StringVar(&cfgPath, "config", "", "path to config file (yaml or json); empty runs the built-in reference set")
	flag.DurationVar(&runFor, "run-for", 0, "request a cooperative stop after this duration (overrides run.stop_after)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := app.New(cfgPath)
	if err != nil {
		fmt.Println("fatal:", err)
		os.Exit(1)
	}
	a.OverrideStopAfter(runFor)

	if err := a.Run(ctx); err != nil {
		fmt.Println("fatal run:", err)
		os.Exit(1)
	}
}
