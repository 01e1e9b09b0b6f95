package cache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type failingStore struct {
	getErr error
	setErr error
	data   []byte
	sets   int
}

func (f *failingStore) Get(context.Context, string) ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.data, nil
}

func (f *failingStore) Set(context.Context, string, []byte, time.Duration) error {
	f.sets++
	return f.setErr
}

func (f *failingStore) Close() error { return nil }

func TestMemoryStore_GetSet(t *testing.T) {
	m := NewMemoryStore(10, 0)
	defer m.Close()
	ctx := context.Background()

	if _, err := m.Get(ctx, "missing"); !errors.Is(err, ErrMiss) {
		t.Errorf("Get(missing) err = %v, want ErrMiss", err)
	}

	if err := m.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := m.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "v" {
		t.Errorf("Get = %q, want %q", got, "v")
	}

	if err := m.Set(ctx, "k", []byte("v2"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, _ = m.Get(ctx, "k")
	if string(got) != "v2" {
		t.Errorf("Get after overwrite = %q, want %q", got, "v2")
	}
}

func TestMemoryStore_Expiry(t *testing.T) {
	m := NewMemoryStore(10, 0)
	defer m.Close()
	ctx := context.Background()

	_ = m.Set(ctx, "k", []byte("v"), time.Millisecond)
	time.Sleep(5 * time.Millisecond)

	if _, err := m.Get(ctx, "k"); !errors.Is(err, ErrMiss) {
		t.Errorf("Get(expired) err = %v, want ErrMiss", err)
	}
	if s := m.Stats(); s.Size != 0 {
		t.Errorf("size = %d, want 0", s.Size)
	}
}

func TestMemoryStore_EvictsLeastUsed(t *testing.T) {
	m := NewMemoryStore(2, 0)
	defer m.Close()
	ctx := context.Background()

	_ = m.Set(ctx, "a", []byte("1"), time.Minute)
	_ = m.Set(ctx, "b", []byte("2"), time.Minute)
	_, _ = m.Get(ctx, "a")
	_ = m.Set(ctx, "c", []byte("3"), time.Minute)

	if _, err := m.Get(ctx, "b"); !errors.Is(err, ErrMiss) {
		t.Errorf("least used entry should have been evicted, err = %v", err)
	}
	if _, err := m.Get(ctx, "a"); err != nil {
		t.Errorf("Get(a) err = %v, want nil", err)
	}
	if _, err := m.Get(ctx, "c"); err != nil {
		t.Errorf("Get(c) err = %v, want nil", err)
	}
}

func TestNamespace_KeyNormalization(t *testing.T) {
	n := NewNamespace(NewMemoryStore(10, 0), "fast_recipe", NamespaceRecipe, time.Hour, true)

	a := n.Key("Chicken Curry", "Vegan")
	b := n.Key("  chicken curry ", " vegan")
	if a != b {
		t.Errorf("keys differ: %q vs %q", a, b)
	}
	if !strings.HasPrefix(a, "fast_recipe:recipe:") {
		t.Errorf("key = %q, want prefix fast_recipe:recipe:", a)
	}
	if len(strings.TrimPrefix(a, "fast_recipe:recipe:")) != 16 {
		t.Errorf("digest length = %d, want 16", len(strings.TrimPrefix(a, "fast_recipe:recipe:")))
	}
	if n.Key("chicken curry", "") == a {
		t.Error("different inputs produced the same key")
	}
}

func TestNamespace_IndependentNamespaces(t *testing.T) {
	store := NewMemoryStore(10, 0)
	search := NewNamespace(store, "fast_recipe", NamespaceSearch, time.Hour, true)
	recipe := NewNamespace(store, "fast_recipe", NamespaceRecipe, 2*time.Hour, true)

	if search.Key("pasta") == recipe.Key("pasta") {
		t.Error("namespaces share keys")
	}
	if search.TTL() == recipe.TTL() {
		t.Error("namespaces should carry their own TTL")
	}
}

func TestNamespace_RoundTrip(t *testing.T) {
	ctx := context.Background()
	n := NewNamespace(NewMemoryStore(10, 0), "p", NamespaceSearch, time.Hour, true)

	type entry struct {
		Context string `json:"context"`
	}
	key := n.Key("pasta")
	n.Save(ctx, key, entry{Context: "- Pasta: boil"})

	var got entry
	if !n.Lookup(ctx, key, &got) {
		t.Fatal("Lookup = false, want true")
	}
	if got.Context != "- Pasta: boil" {
		t.Errorf("context = %q", got.Context)
	}
}

func TestNamespace_DisabledNeverTouchesStore(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{data: []byte(`{}`)}
	n := NewNamespace(store, "p", NamespaceRecipe, time.Hour, false)

	var dst map[string]interface{}
	if n.Lookup(ctx, "k", &dst) {
		t.Error("disabled namespace reported a hit")
	}
	n.Save(ctx, "k", map[string]string{"a": "b"})
	if store.sets != 0 {
		t.Errorf("sets = %d, want 0", store.sets)
	}
}

func TestNamespace_BackendErrorsDegradeToMiss(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{getErr: errors.New("connection refused"), setErr: errors.New("connection refused")}
	n := NewNamespace(store, "p", NamespaceRecipe, time.Hour, true)

	var dst map[string]interface{}
	if n.Lookup(ctx, "k", &dst) {
		t.Error("Lookup with failing backend = true, want false")
	}
	n.Save(ctx, "k", map[string]string{"a": "b"})
	if store.sets != 1 {
		t.Errorf("sets = %d, want 1", store.sets)
	}
}

func TestNamespace_CorruptEntryIsMiss(t *testing.T) {
	store := &failingStore{data: []byte("not json")}
	n := NewNamespace(store, "p", NamespaceRecipe, time.Hour, true)

	var dst map[string]interface{}
	if n.Lookup(context.Background(), "k", &dst) {
		t.Error("Lookup of corrupt entry = true, want false")
	}
}
