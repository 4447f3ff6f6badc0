package storage

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func TestRedisStoreIntegration(t *testing.T) {
	if strings.TrimSpace(os.Getenv("REDIS_INTEGRATION")) != "1" {
		t.Skip("set REDIS_INTEGRATION=1 to run Redis integration tests")
	}
	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Fatalf("redis not reachable at %s: %v", addr, err)
	}

	s, err := NewRedisStore(client, "eduguide_it_"+uuid.NewString()+":")
	if err != nil {
		t.Fatalf("NewRedisStore: %v", err)
	}
	exerciseStore(t, s)
}

func TestNewRedisStoreRequiresClient(t *testing.T) {
	if _, err := NewRedisStore(nil, "x:"); err == nil {
		t.Fatalf("NewRedisStore: expected error for nil client")
	}
}
