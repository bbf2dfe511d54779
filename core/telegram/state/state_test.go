package state

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type testSession struct {
	Step  string            `json:"step"`
	Slots map[string]string `json:"slots"`
}

func (s *testSession) Clone() *testSession {
	c := &testSession{Step: s.Step, Slots: make(map[string]string, len(s.Slots))}
	for k, v := range s.Slots {
		c.Slots[k] = v
	}
	return c
}

func TestMemoryStoreTTL(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	store := NewMemoryStore[*testSession](time.Hour, WithClock(func() time.Time { return now }))
	ctx := context.Background()

	if _, err := store.Load(ctx, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("empty load err = %v", err)
	}
	if err := store.Save(ctx, 1, &testSession{Step: "title", Slots: map[string]string{"actor": "x"}}); err != nil {
		t.Fatalf("save: %v", err)
	}

	now = now.Add(59 * time.Minute)
	got, err := store.Load(ctx, 1)
	if err != nil || got.Step != "title" {
		t.Fatalf("load = %+v, %v", got, err)
	}

	now = now.Add(2 * time.Minute)
	if _, err := store.Load(ctx, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expired load err = %v", err)
	}
	if store.Len() != 0 {
		t.Fatal("expired session must be evicted on load")
	}
}

func TestMemoryStoreIsolatesCopies(t *testing.T) {
	store := NewMemoryStore[*testSession](0)
	ctx := context.Background()
	s := &testSession{Step: "a", Slots: map[string]string{"k": "v"}}
	_ = store.Save(ctx, 1, s)
	s.Slots["k"] = "mutated"

	got, _ := store.Load(ctx, 1)
	if got.Slots["k"] != "v" {
		t.Fatalf("store shares memory with caller: %v", got.Slots)
	}
	got.Step = "b"
	again, _ := store.Load(ctx, 1)
	if again.Step != "a" {
		t.Fatal("loaded copy leaked into store")
	}

	_ = store.Clear(ctx, 1)
	if _, err := store.Load(ctx, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("cleared load err = %v", err)
	}
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	store := NewRedisStore[*testSession](client, "nzd:session:", 30*time.Minute)
	ctx := context.Background()

	if _, err := store.Load(ctx, 5); !errors.Is(err, ErrNotFound) {
		t.Fatalf("empty load err = %v", err)
	}
	if err := store.Save(ctx, 5, &testSession{Step: "year", Slots: map[string]string{"title": "love"}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !mr.Exists("nzd:session:5") {
		t.Fatal("expected prefixed key")
	}
	if ttl := mr.TTL("nzd:session:5"); ttl != 30*time.Minute {
		t.Fatalf("ttl = %s", ttl)
	}

	got, err := store.Load(ctx, 5)
	if err != nil || got.Step != "year" || got.Slots["title"] != "love" {
		t.Fatalf("load = %+v, %v", got, err)
	}

	mr.FastForward(31 * time.Minute)
	if _, err := store.Load(ctx, 5); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expired load err = %v", err)
	}

	_ = store.Save(ctx, 6, &testSession{Step: "x"})
	if err := store.Clear(ctx, 6); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if mr.Exists("nzd:session:6") {
		t.Fatal("key must be deleted")
	}
}

func TestRedisStoreCorruptPayload(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	_ = mr.Set("session:9", "{not json")

	store := NewRedisStore[*testSession](client, "", 0)
	if _, err := store.Load(context.Background(), 9); err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestLockerSerializesPerUser(t *testing.T) {
	l := NewLocker()
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		active  int
		maxSeen int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.Lock(1)
			defer unlock()
			mu.Lock()
			active++
			if active > maxSeen {
				maxSeen = active
			}
			mu.Unlock()
			time.Sleep(time.Millisecond)
			mu.Lock()
			active--
			mu.Unlock()
		}()
	}
	wg.Wait()
	if maxSeen != 1 {
		t.Fatalf("max concurrent holders = %d, want 1", maxSeen)
	}
	if l.Held() != 0 {
		t.Fatalf("locks leaked: %d", l.Held())
	}
}

func TestLockerIndependentUsers(t *testing.T) {
	l := NewLocker()
	unlockA := l.Lock(1)
	done := make(chan struct{})
	go func() {
		unlockB := l.Lock(2)
		unlockB()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock for another user must not block")
	}
	unlockA()
	unlockA()
}
