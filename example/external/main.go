package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ghalamif/AstraLink"
)

// Reads newline-delimited JSON records from stdin and pushes them through
// the runtime, e.g. `cat flight.jsonl | go run ./example/external`.
func main() {
	cfg := &astralink.Config{Metrics: astralink.MetricsConfig{Addr: "127.0.0.1:9101"}}
	feed := astralink.NewExternalFeed("stdin")

	rt, err := astralink.NewGroundRuntime(cfg, astralink.WithFeedSource(feed))
	if err != nil {
		log.Fatalf("build runtime: %v", err)
	}
	if err := rt.Start(); err != nil {
		log.Fatalf("start runtime: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if err := feed.Publish(ctx, scanner.Bytes()); err != nil {
			log.Printf("publish: %v", err)
			break
		}
	}

	// Let the ingest loop drain before reading the final snapshot.
	time.Sleep(100 * time.Millisecond)
	snap := rt.Snapshot()
	sum := snap.Summary()
	fmt.Printf("ingested=%d max_alt=%.2fm flight_time=%.1fs stage=%s\n",
		snap.Ingested(), sum.MaxAltitude, sum.FlightTime, snap.Mission().FlightStage)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rt.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("shutdown: %v", err)
	}
}
