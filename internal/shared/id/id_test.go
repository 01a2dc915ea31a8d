package id

import (
	"strings"
	"sync"
	"testing"
)

func TestUUIDSourceProducesUniqueUUIDs(t *testing.T) {
	src := UUID()
	seen := make(map[MessageID]bool)

	for i := 0; i < 1000; i++ {
		id := src.Next()
		if !IsUUID(id) {
			t.Fatalf("not a UUID: %s", id)
		}
		if seen[id] {
			t.Fatalf("duplicate message ID: %s", id)
		}
		seen[id] = true
	}
}

func TestSequence(t *testing.T) {
	seq := NewSequence("msg")

	if got := seq.Next(); got != "msg-1" {
		t.Errorf("first ID = %s, want msg-1", got)
	}
	if got := seq.Next(); got != "msg-2" {
		t.Errorf("second ID = %s, want msg-2", got)
	}
}

func TestSequenceConcurrent(t *testing.T) {
	seq := NewSequence("c")

	const goroutines = 50
	const perGoroutine = 100

	var wg sync.WaitGroup
	ids := make(chan MessageID, goroutines*perGoroutine)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				ids <- seq.Next()
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[MessageID]bool)
	for id := range ids {
		if seen[id] {
			t.Errorf("duplicate ID in concurrent generation: %s", id)
		}
		seen[id] = true
	}
	if len(seen) != goroutines*perGoroutine {
		t.Errorf("expected %d unique IDs, got %d", goroutines*perGoroutine, len(seen))
	}
}

func TestPrefixedInstanceIDs(t *testing.T) {
	ids := map[string]string{
		BridgePrefix:  string(NewBridgeID()),
		SessionPrefix: string(NewSessionKey()),
	}

	for prefix, id := range ids {
		parts := strings.Split(id, "_")
		if len(parts) != 2 {
			t.Errorf("ID should have format 'prefix_ulid', got: %s", id)
			continue
		}
		if parts[0] != prefix {
			t.Errorf("expected prefix %q, got %q", prefix, parts[0])
		}
		if !IsValid(parts[1]) {
			t.Errorf("ULID part should be valid: %s", parts[1])
		}
	}
}

func TestIsValid(t *testing.T) {
	if !IsValid(NewGenerator().GenerateString()) {
		t.Error("generated ULID should be valid")
	}
	for _, bad := range []string{"", "invalid", "zzzzzzzzzzzzzzzzzzzzzzzzzzz"} {
		if IsValid(bad) {
			t.Errorf("ID should be invalid: %s", bad)
		}
	}
}

func TestDefaultGenerator(t *testing.T) {
	if Default() != Default() {
		t.Error("Default() should return the same instance")
	}
}

func BenchmarkUUIDSource(b *testing.B) {
	src := UUID()
	for i := 0; i < b.N; i++ {
		_ = src.Next()
	}
}
