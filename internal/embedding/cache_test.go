package embedding

import (
	"context"
	"sync"
	"testing"
)

func TestCache_GetSet(t *testing.T) {
	c := NewCache(2)
	if _, ok := c.Get("a"); ok {
		t.Error("empty cache should miss")
	}
	c.Set("a", []float32{1})
	c.Set("b", []float32{2})
	if v, ok := c.Get("a"); !ok || v[0] != 1 {
		t.Error("a should be cached")
	}
	// a was just touched, so adding c evicts b.
	c.Set("c", []float32{3})
	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("a should survive eviction")
	}
}

func TestCache_ConcurrentGet(t *testing.T) {
	c := NewCache(4)
	c.Set("hot", []float32{1, 2, 3})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if v, ok := c.Get("hot"); !ok || v[0] != 1 {
					t.Error("hot entry should stay cached")
					return
				}
			}
		}()
	}
	wg.Wait()
}

type countingEmbedder struct {
	*MockEmbedder
	calls int
}

func (c *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	c.calls++
	return c.MockEmbedder.Embed(ctx, text)
}

func (c *countingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	c.calls += len(texts)
	return c.MockEmbedder.EmbedBatch(ctx, texts)
}

func TestCachedEmbedder(t *testing.T) {
	inner := &countingEmbedder{MockEmbedder: NewMockEmbedder(4)}
	cached := NewCachedEmbedder(inner, 10)
	ctx := context.Background()

	v1, err := cached.Embed(ctx, "hello")
	if err != nil {
		t.Fatal(err)
	}
	v2, err := cached.Embed(ctx, "hello")
	if err != nil {
		t.Fatal(err)
	}
	if inner.calls != 1 {
		t.Errorf("expected 1 inner call, got %d", inner.calls)
	}
	for i := range v1 {
		if v1[i] != v2[i] {
			t.Fatal("cached embedding differs from original")
		}
	}

	// Batch serves hits from cache and only embeds misses.
	vecs, err := cached.EmbedBatch(ctx, []string{"hello", "world"})
	if err != nil {
		t.Fatal(err)
	}
	if len(vecs) != 2 || vecs[0] == nil || vecs[1] == nil {
		t.Fatal("batch should fill every slot")
	}
	if inner.calls != 2 {
		t.Errorf("expected 2 inner calls total, got %d", inner.calls)
	}
}

func TestMockEmbedder_deterministicUnitVectors(t *testing.T) {
	e := NewMockEmbedder(16)
	ctx := context.Background()
	a, _ := e.Embed(ctx, "same text")
	b, _ := e.Embed(ctx, "same text")
	var dot, norm float64
	for i := range a {
		dot += float64(a[i] * b[i])
		norm += float64(a[i] * a[i])
	}
	if dot < 0.999 {
		t.Errorf("same text should embed identically, dot = %f", dot)
	}
	if norm < 0.999 || norm > 1.001 {
		t.Errorf("embedding should be unit length, norm² = %f", norm)
	}
}
