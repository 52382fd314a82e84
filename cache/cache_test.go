package cache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestMemoryExpiry(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.now = func() time.Time { return now }
	ctx := context.Background()

	if err := m.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}
	if v, ok, _ := m.Get(ctx, "k"); !ok || string(v) != "v" {
		t.Fatalf("get = %q, %v", v, ok)
	}
	now = now.Add(time.Minute)
	if _, ok, _ := m.Get(ctx, "k"); ok {
		t.Fatal("entry should have expired")
	}

	_ = m.Set(ctx, "forever", []byte("x"), 0)
	now = now.Add(24 * time.Hour)
	if _, ok, _ := m.Get(ctx, "forever"); !ok {
		t.Fatal("ttl 0 should not expire")
	}
}

func TestMemoizeCallsOnce(t *testing.T) {
	m := NewMemory()
	calls := 0
	fn := func(context.Context) ([]string, error) {
		calls++
		return []string{"neck pain"}, nil
	}
	for i := 0; i < 3; i++ {
		got, err := Memoize(context.Background(), m, "key", time.Hour, fn)
		if err != nil || len(got) != 1 || got[0] != "neck pain" {
			t.Fatalf("memoize = %v, %v", got, err)
		}
	}
	if calls != 1 {
		t.Fatalf("fn called %d times", calls)
	}
}

func TestMemoizeDoesNotCacheErrors(t *testing.T) {
	m := NewMemory()
	calls := 0
	fn := func(context.Context) (string, error) {
		calls++
		return "", errors.New("boom")
	}
	for i := 0; i < 2; i++ {
		if _, err := Memoize(context.Background(), m, "key", time.Hour, fn); err == nil {
			t.Fatal("expected error")
		}
	}
	if calls != 2 {
		t.Fatalf("fn called %d times", calls)
	}
}

func TestMemoizeNilStore(t *testing.T) {
	got, err := Memoize(context.Background(), nil, "key", 0, func(context.Context) (int, error) { return 7, nil })
	if err != nil || got != 7 {
		t.Fatalf("memoize = %v, %v", got, err)
	}
}

func TestKey(t *testing.T) {
	a := Key("tagger", "some text")
	if !strings.HasPrefix(a, "clinote:tagger:") || a != Key("tagger", "some text") {
		t.Fatalf("key not stable: %s", a)
	}
	if Key("tagger", "a", "bc") == Key("tagger", "ab", "c") {
		t.Fatal("part boundaries must change the key")
	}
}
