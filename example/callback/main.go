package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/ghalamif/AstraLink/pkg/astralink"
)

func main() {
	flow, err := astralink.Conf("../../data/config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	flow.Config().Feed.Kind = astralink.FeedSim

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	callback := func(snap *astralink.Snapshot) error {
		sum := snap.Summary()
		mission := snap.Mission()
		fmt.Printf("t=%5.1fs alt=%8.2fm vel=%7.2fm/s stage=%-10s recovery=%s\n",
			sum.FlightTime,
			sum.CurrentAltitude,
			sum.CurrentVelocity,
			mission.FlightStage,
			mission.RecoveryStatus,
		)
		return nil
	}

	if err := flow.Run(ctx, astralink.StreamOutCallback("stdout", callback)); err != nil && err != context.Canceled {
		log.Fatalf("runtime error: %v", err)
	}
}
