package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/ghalamif/AstraLink"
)

func main() {
	flow, err := astralink.Conf("../../data/config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sink, snapshots, closeSnapshots := astralink.NewChannelSink("renderer", 32)
	defer closeSnapshots()

	go render(snapshots)

	if err := flow.Run(ctx, astralink.StreamOutSink(sink)); err != nil && err != context.Canceled {
		log.Fatalf("runtime error: %v", err)
	}
}

func render(snapshots <-chan *astralink.Snapshot) {
	var lastStage astralink.FlightStage
	for snap := range snapshots {
		mission := snap.Mission()
		if mission.FlightStage != lastStage {
			fmt.Printf("stage change: %q -> %q at t=%.1fs\n", lastStage, mission.FlightStage, snap.FlightTime())
			lastStage = mission.FlightStage
		}
		if packets := snap.PacketLog(); len(packets) > 0 {
			fmt.Printf("  latest packet: %s\n", packets[0])
		}
	}
}
