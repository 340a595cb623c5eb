package postgres

import (
	"context"
	"io/fs"
	"strings"
	"testing"
	"time"

	"github.com/iho/gowallet/internal/infrastructure/postgres/migrations"
)

func TestNewPoolWithConfigDefaults(t *testing.T) {
	ctx := context.Background()

	// using invalid URL should return error
	if _, err := NewPoolWithConfig(ctx, PoolConfig{DatabaseURL: "not-a-url"}); err == nil {
		t.Fatalf("expected error when parsing invalid URL")
	}
}

func TestNewPoolWithConfigPingFailure(t *testing.T) {
	ctx := context.Background()
	cfg := PoolConfig{
		DatabaseURL:    "postgres://invalid:5432/db",
		MaxConns:       1,
		MinConns:       0,
		ConnectTimeout: time.Second,
	}

	_, err := NewPoolWithConfig(ctx, cfg)
	if err == nil {
		t.Fatalf("expected error when pool cannot connect")
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	names, err := fs.Glob(migrations.FS, "*.sql")
	if err != nil {
		t.Fatalf("glob failed: %v", err)
	}

	var up, down int
	for _, name := range names {
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			up++
		case strings.HasSuffix(name, ".down.sql"):
			down++
		}
	}

	if up == 0 || up != down {
		t.Fatalf("expected matching up/down migrations, got up=%d down=%d", up, down)
	}

	schema, err := fs.ReadFile(migrations.FS, "000001_init.up.sql")
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}

	for _, table := range []string{"accounts", "ledger_entries", "idempotency_records", "transfers", "seamless_events", "outbox_events", "audit_logs"} {
		if !strings.Contains(string(schema), "CREATE TABLE "+table+" (") {
			t.Errorf("schema is missing table %s", table)
		}
	}
}
