package testfixtures

import (
	"sync"
	"testing"
)

func TestIDGeneratorProducesSequentialIDs(t *testing.T) {
	gen := NewIDGenerator("occ")

	if last := gen.Last(); last != "" {
		t.Fatalf("expected no identifier before the first call, got %q", last)
	}

	first := gen.Next()
	second := gen.Next()

	if first != "occ-1" || second != "occ-2" {
		t.Fatalf("unexpected identifiers: %q, %q", first, second)
	}
	if gen.Last() != "occ-2" {
		t.Fatalf("expected Last to report occ-2, got %q", gen.Last())
	}
}

func TestIDGeneratorIsSafeForConcurrentJoins(t *testing.T) {
	gen := NewIDGenerator("reg")
	next := gen.NextFunc()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			next()
		}()
	}
	wg.Wait()

	seen := make(map[string]bool)
	for _, id := range gen.Issued() {
		if seen[id] {
			t.Fatalf("duplicate identifier %q", id)
		}
		seen[id] = true
	}
	if len(seen) != 20 {
		t.Fatalf("expected 20 identifiers, got %d", len(seen))
	}
}
