package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/redis/go-redis/v9"
)

func stubRedis(t *testing.T, pingErr error) *string {
	t.Helper()
	origNewClient := newRedisClient
	origPing := pingRedis
	t.Cleanup(func() {
		newRedisClient = origNewClient
		pingRedis = origPing
	})

	var capturedAddr string
	newRedisClient = func(opts *redis.Options) *redis.Client {
		capturedAddr = opts.Addr
		return redis.NewClient(opts)
	}
	pingRedis = func(ctx context.Context, client *redis.Client) error {
		return pingErr
	}
	return &capturedAddr
}

func TestConnectWithCustomAddr(t *testing.T) {
	addr := stubRedis(t, nil)

	client, err := Connect(context.Background(), "redis:9999")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer client.Close()
	if *addr != "redis:9999" {
		t.Fatalf("expected custom addr, got %s", *addr)
	}
}

func TestConnectDefaults(t *testing.T) {
	addr := stubRedis(t, nil)

	client, err := Connect(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer client.Close()
	if *addr != DefaultAddr {
		t.Fatalf("expected default addr, got %s", *addr)
	}
}

func TestConnectParsesURL(t *testing.T) {
	addr := stubRedis(t, nil)

	client, err := Connect(context.Background(), "redis://cache.internal:6380/2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer client.Close()
	if *addr != "cache.internal:6380" {
		t.Fatalf("expected parsed addr, got %s", *addr)
	}
}

func TestConnectPingFailure(t *testing.T) {
	stubRedis(t, errors.New("connection refused"))

	if _, err := Connect(context.Background(), "localhost:1"); err == nil {
		t.Fatal("expected ping failure to surface")
	}
}

// fakeStore answers GET and SET from a map without a network connection.
type fakeStore struct {
	mu   sync.Mutex
	data map[string]string
}

func (f *fakeStore) DialHook(next redis.DialHook) redis.DialHook { return next }

func (f *fakeStore) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func (f *fakeStore) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		f.mu.Lock()
		defer f.mu.Unlock()
		args := cmd.Args()
		switch strings.ToLower(cmd.Name()) {
		case "get":
			v, ok := f.data[fmt.Sprint(args[1])]
			if !ok {
				cmd.SetErr(redis.Nil)
				return redis.Nil
			}
			cmd.(*redis.StringCmd).SetVal(v)
		case "set":
			f.data[fmt.Sprint(args[1])] = fmt.Sprint(args[2])
			cmd.(*redis.StatusCmd).SetVal("OK")
		default:
			return next(ctx, cmd)
		}
		return nil
	}
}

func newFakeRedis(t *testing.T) (*redis.Client, *fakeStore) {
	t.Helper()
	store := &fakeStore{data: make(map[string]string)}
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	client.AddHook(store)
	t.Cleanup(func() { client.Close() })
	return client, store
}

func TestRedisKV(t *testing.T) {
	client, store := newFakeRedis(t)
	kv := NewRedisKV(client, "cryptopulse")

	if _, ok, err := kv.Get(context.Background(), "theme"); err != nil || ok {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}
	if err := kv.Set(context.Background(), "theme", "dark"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if store.data["cryptopulse:theme"] != "dark" {
		t.Fatalf("expected prefixed key, got %v", store.data)
	}
	v, ok, err := kv.Get(context.Background(), "theme")
	if err != nil || !ok || v != "dark" {
		t.Fatalf("unexpected get: %q %v %v", v, ok, err)
	}
}

func TestMemoryKV(t *testing.T) {
	kv := NewMemoryKV()
	if _, ok, _ := kv.Get(context.Background(), "theme"); ok {
		t.Fatal("expected empty store")
	}
	kv.Set(context.Background(), "theme", "light")
	if v, ok, _ := kv.Get(context.Background(), "theme"); !ok || v != "light" {
		t.Fatalf("unexpected value %q", v)
	}
}
