package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/ghalamif/AstraLink/internal/domain"
	"github.com/ghalamif/AstraLink/internal/ports"
)

const maxLoggedPayload = 256

// RunFeedPipeline starts src and decodes its packets onto q in arrival
// order. Undecodable packets are counted and skipped. It returns once the
// source is started; the decode loop exits when ctx is cancelled.
func RunFeedPipeline(ctx context.Context, src ports.FeedSource, dec ports.Decoder, q ports.SampleQueue, pol ports.Policy, obs ports.Observability) error {
	ch := make(chan *domain.Packet, pol.MaxQueueLen)

	if err := src.Start(ch); err != nil {
		return fmt.Errorf("start %s feed: %w", src.Name(), err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case pkt := <-ch:
				if pkt == nil {
					continue
				}
				decodePacket(ctx, pkt, dec, q, pol, obs)
			}
		}
	}()

	return nil
}

func decodePacket(ctx context.Context, pkt *domain.Packet, dec ports.Decoder, q ports.SampleQueue, pol ports.Policy, obs ports.Observability) {
	sample, err := dec.Decode([]byte(pkt.Raw))
	if err != nil {
		obs.IncCounter("astra_decode_errors_total", 1)
		obs.LogError("decode_failed", err, ports.Field{Key: "payload", Value: truncate(pkt.Raw)})
		return
	}

	item := ports.QueuedSample{Sample: sample, Raw: pkt.Raw, ReceivedAt: pkt.ReceivedAt}
	if !enqueueWithPolicy(ctx, q, item, pol, obs) {
		obs.IncCounter("astra_queue_dropped_total", 1)
	}
}

func enqueueWithPolicy(ctx context.Context, q ports.SampleQueue, item ports.QueuedSample, pol ports.Policy, obs ports.Observability) bool {
	sleep := pol.IdleSleep
	if sleep <= 0 {
		sleep = 5 * time.Millisecond
	}

	for {
		if ok := q.Enqueue(item); ok {
			return true
		}

		switch pol.OnQueueFull {
		case "block":
			select {
			case <-ctx.Done():
				return false
			case <-time.After(sleep):
			}
		case "drop":
			obs.LogError("queue_full_drop", fmt.Errorf("queue length exceeded capacity %d", pol.MaxQueueLen))
			return false
		default:
			obs.LogError("queue_policy_invalid", fmt.Errorf("policy=%s", pol.OnQueueFull))
			return false
		}
	}
}

func truncate(s string) string {
	if len(s) <= maxLoggedPayload {
		return s
	}
	return s[:maxLoggedPayload] + "..."
}
