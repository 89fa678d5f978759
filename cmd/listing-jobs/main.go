package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"car-finder/internal"
)

func main() {
	job := flag.String("job", "", "job to run once: "+strings.Join(internal.JobNames(), "|"))
	flag.Parse()

	if *job == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := internal.RunJob(ctx, *job); err != nil {
		log.Fatalf("Job run failed: %v", err)
	}
}
