package telemetry

import "testing"

func TestAppendBoundedDoesNotAlias(t *testing.T) {
	base := make([]int, 3, 10)
	copy(base, []int{1, 2, 3})

	a := appendBounded(base, 4, 3)
	b := appendBounded(base, 5, 3)
	if a[2] != 4 || b[2] != 5 {
		t.Fatalf("appends shared storage: a=%v b=%v", a, b)
	}
	if len(a) != 3 || a[0] != 2 {
		t.Fatalf("expected oldest evicted, got %v", a)
	}
	if base[0] != 1 || base[2] != 3 {
		t.Fatalf("input modified: %v", base)
	}
}

func TestPrependBounded(t *testing.T) {
	var log []string
	for _, v := range []string{"a", "b", "c", "d"} {
		log = prependBounded(log, v, 3)
	}
	if len(log) != 3 || log[0] != "d" || log[1] != "c" || log[2] != "b" {
		t.Fatalf("unexpected log %v", log)
	}
}
