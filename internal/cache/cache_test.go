package cache

import (
	"testing"
	"time"
)

func TestKey_Deterministic(t *testing.T) {
	k1 := Key("verify", "claim text", "fp1")
	k2 := Key("verify", "claim text", "fp1")
	if k1 != k2 {
		t.Errorf("same parts must produce the same key: %q vs %q", k1, k2)
	}

	if Key("verify", "claim text", "fp2") == k1 {
		t.Error("different fingerprint must change the key")
	}

	// Joining must not be ambiguous across part boundaries
	if Key("ab", "c") == Key("a", "bc") {
		t.Error("part boundaries must be preserved")
	}
}

func TestMemoryCache_RoundTrip(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if _, found := c.Get("missing"); found {
		t.Error("unexpected hit for missing key")
	}

	if err := c.Set("k", []byte("v"), 0); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	val, found := c.Get("k")
	if !found || string(val) != "v" {
		t.Errorf("expected v, got %q (found=%v)", val, found)
	}

	if err := c.Delete("k"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, found := c.Get("k"); found {
		t.Error("key survived delete")
	}
}

func TestDiskCache_RoundTrip(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)

	if err := c.Set("k", []byte("v"), 0); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	val, found := c.Get("k")
	if !found || string(val) != "v" {
		t.Errorf("expected v, got %q (found=%v)", val, found)
	}
}

func TestDiskCache_Expiry(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)

	if err := c.Set("k", []byte("v"), -time.Second); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if _, found := c.Get("k"); found {
		t.Error("expired entry must not be returned")
	}
}

func TestLayeredCache_PromotesDiskHits(t *testing.T) {
	dir := t.TempDir()

	// Seed through one layered cache, read through a fresh one so the
	// memory layer starts cold.
	seed := NewLayeredCache(time.Minute, dir, time.Hour)
	if err := seed.Set("k", []byte("v"), 0); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	c := NewLayeredCache(time.Minute, dir, time.Hour)
	val, found := c.Get("k")
	if !found || string(val) != "v" {
		t.Fatalf("expected disk hit, got %q (found=%v)", val, found)
	}

	// Now present in the memory layer too
	if _, found := c.memory.Get("k"); !found {
		t.Error("disk hit was not promoted to memory")
	}
}
