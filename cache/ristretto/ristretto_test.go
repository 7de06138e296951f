package ristretto

import (
	"testing"
	"time"
)

// ristretto applies writes asynchronously; tests sleep briefly after a
// write before asserting on reads.
const writeSettle = 10 * time.Millisecond

func TestNew_Presets(t *testing.T) {
	t.Parallel()

	for _, preset := range []string{"small", "medium", "large", "very-large"} {
		t.Run(preset, func(t *testing.T) {
			c, err := New[string](preset)
			if err != nil {
				t.Fatalf("New(%q) error = %v", preset, err)
			}
			if c == nil {
				t.Fatalf("New(%q) returned a nil cache", preset)
			}
		})
	}

	for _, preset := range []string{"", "tiny", " small"} {
		t.Run("invalid/"+preset, func(t *testing.T) {
			if _, err := New[string](preset); err == nil {
				t.Errorf("New(%q) error = nil, want an unknown-preset error", preset)
			}
		})
	}
}

func TestCache_SetGetOverwrite(t *testing.T) {
	t.Parallel()
	c, err := New[string]("small")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	c.Set("k", "v1", 1)
	time.Sleep(writeSettle)
	if got, found := c.Get("k"); !found || got != "v1" {
		t.Errorf("Get(k) = (%q, %v), want (v1, true)", got, found)
	}

	c.Set("k", "v2", 1)
	time.Sleep(writeSettle)
	if got, found := c.Get("k"); !found || got != "v2" {
		t.Errorf("Get(k) after overwrite = (%q, %v), want (v2, true)", got, found)
	}

	if got, found := c.Get("absent"); found || got != "" {
		t.Errorf("Get(absent) = (%q, %v), want zero value and false", got, found)
	}
}

func TestCache_TTLEviction(t *testing.T) {
	t.Parallel()
	c, err := New[int]("small")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	const ttl = 20 * time.Millisecond
	c.SetWithTTL("k", 42, 1, ttl)
	time.Sleep(writeSettle)

	if got, found := c.Get("k"); !found || got != 42 {
		t.Fatalf("Get(k) before expiry = (%d, %v), want (42, true)", got, found)
	}

	time.Sleep(ttl)
	if _, found := c.Get("k"); found {
		t.Error("Get(k) after expiry found the entry, want it evicted")
	}
}

// The directory-search handler caches []*hit slices keyed "query:limit";
// exercise that exact shape.
func TestCache_SearchResultShape(t *testing.T) {
	t.Parallel()

	type hit struct {
		UserID string
		Login  string
	}

	c, err := New[[]*hit]("small")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	hits := []*hit{{UserID: "u1", Login: "alice"}, {UserID: "u2", Login: "alicia"}}
	c.SetWithTTL("ali:20", hits, int64(len(hits)), 20*time.Millisecond)
	time.Sleep(writeSettle)

	got, found := c.Get("ali:20")
	if !found {
		t.Fatal("cached search results not found before expiry")
	}
	if len(got) != 2 || got[0].Login != "alice" {
		t.Errorf("Get(ali:20) = %+v, want the two cached hits", got)
	}

	if missing, found := c.Get("bob:20"); found || missing != nil {
		t.Errorf("Get(bob:20) = (%v, %v), want (nil, false)", missing, found)
	}

	time.Sleep(20 * time.Millisecond)
	if _, found := c.Get("ali:20"); found {
		t.Error("cached search results still present after expiry")
	}
}
