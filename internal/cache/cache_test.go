package cache

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func newTestCache(t *testing.T, cfg ProviderConfig) Cache {
	t.Helper()
	c, err := New("memory", cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// ---------------------------------------------------------------------------
// Memory provider
// ---------------------------------------------------------------------------

func TestMemoryCacheGetSet(t *testing.T) {
	c := newTestCache(t, ProviderConfig{Size: 8, TTL: time.Minute})

	if _, ok := c.Get("building:b1"); ok {
		t.Error("expected miss on empty cache")
	}

	c.Set("building:b1", []byte("payload"))
	val, ok := c.Get("building:b1")
	if !ok {
		t.Fatal("expected hit after Set")
	}
	if string(val) != "payload" {
		t.Errorf("value = %q", val)
	}
	if !c.Contains("building:b1") {
		t.Error("Contains should report the key")
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
}

func TestMemoryCacheEvictsLRU(t *testing.T) {
	var evicted []string
	c := newTestCache(t, ProviderConfig{
		Size: 2,
		TTL:  time.Minute,
		OnEvict: func(key string, value []byte) {
			evicted = append(evicted, key)
		},
	})

	c.Set("a", []byte("1"))
	c.Set("b", []byte("2"))
	c.Set("c", []byte("3"))

	if len(evicted) != 1 || evicted[0] != "a" {
		t.Errorf("evicted = %v, want [a]", evicted)
	}
	if _, ok := c.Get("a"); ok {
		t.Error("oldest entry should be gone")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("newest entry should remain")
	}
}

// ---------------------------------------------------------------------------
// Factory
// ---------------------------------------------------------------------------

func TestNewUnknownProvider(t *testing.T) {
	_, err := New("no-such-provider", ProviderConfig{Size: 1})
	if err == nil {
		t.Fatal("expected an error for unknown provider")
	}
}

func TestRegisteredProvidersSorted(t *testing.T) {
	names := RegisteredProviders()
	if len(names) < 2 {
		t.Fatalf("expected at least memory and redis, got %v", names)
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Errorf("providers not sorted: %v", names)
		}
	}
}

// ---------------------------------------------------------------------------
// Instrumentation
// ---------------------------------------------------------------------------

func TestGroupWrapsWithMetrics(t *testing.T) {
	// Isolate the entries collector registry from the default registerer.
	orig := entriesReg
	entriesReg = prometheus.NewRegistry()
	t.Cleanup(func() { entriesReg = orig })

	c, err := New("memory", ProviderConfig{Size: 4, TTL: time.Minute, Group: "test-group"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	if _, ok := c.(*instrumentedCache); !ok {
		t.Fatalf("expected instrumented cache, got %T", c)
	}

	c.Set("k", []byte("v"))
	before := counterValue(t, HitsTotal, "test-group")
	if _, ok := c.Get("k"); !ok {
		t.Fatal("expected hit")
	}
	after := counterValue(t, HitsTotal, "test-group")
	if after != before+1 {
		t.Errorf("hits = %v, want %v", after, before+1)
	}
}

func counterValue(t *testing.T, vec *prometheus.CounterVec, label string) float64 {
	t.Helper()
	counter, err := vec.GetMetricWithLabelValues(label)
	if err != nil {
		t.Fatalf("get metric: %v", err)
	}
	var m dto.Metric
	if err := counter.Write(&m); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	return m.GetCounter().GetValue()
}
