package queue

import (
	"testing"

	"github.com/ghalamif/AstraLink/internal/domain"
	"github.com/ghalamif/AstraLink/internal/ports"
)

func item(t float64, raw string) ports.QueuedSample {
	return ports.QueuedSample{Sample: domain.Sample{Time: t}, Raw: raw}
}

func TestMemQueueEnqueueDequeueOrder(t *testing.T) {
	q := NewMemQueue(4)

	if !q.Enqueue(item(1, "p1")) || !q.Enqueue(item(2, "p2")) {
		t.Fatalf("expected successful enqueue")
	}

	batch := q.DequeueBatch(1)
	if len(batch) != 1 || batch[0].Sample.Time != 1 || batch[0].Raw != "p1" {
		t.Fatalf("unexpected first batch: %+v", batch)
	}

	remaining := q.DequeueBatch(10)
	if len(remaining) != 1 || remaining[0].Raw != "p2" {
		t.Fatalf("unexpected second batch: %+v", remaining)
	}

	if q.Len() != 0 {
		t.Fatalf("queue should be empty, got %d", q.Len())
	}
	if q.DequeueBatch(5) != nil {
		t.Fatalf("expected nil batch from empty queue")
	}
}

func TestMemQueueCapacity(t *testing.T) {
	q := NewMemQueue(2)

	if !q.Enqueue(item(1, "a")) || !q.Enqueue(item(2, "b")) {
		t.Fatalf("expected enqueue within capacity")
	}
	if q.Enqueue(item(3, "c")) {
		t.Fatalf("enqueue should fail when capacity exceeded")
	}

	q.DequeueBatch(1)
	if !q.Enqueue(item(4, "d")) {
		t.Fatalf("expected enqueue to succeed after dequeue")
	}

	batch := q.DequeueBatch(0)
	if len(batch) != 2 || batch[0].Raw != "b" || batch[1].Raw != "d" {
		t.Fatalf("unexpected order after refill: %+v", batch)
	}
}
