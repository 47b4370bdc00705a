//go:build integration

package postgres

// go test -tags=integration ./internal/repo/postgres -count=1

import (
	"context"
	"os"
	"testing"

	"go.uber.org/zap"

	"github.com/hamed0406/slotwatch/internal/domain"
)

func TestPostgresStore_SaveLoadRoundTrip(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set; skipping Postgres integration test")
	}

	ctx := context.Background()
	store, err := New(ctx, dsn, zap.NewNop())
	if err != nil {
		t.Fatalf("New store: %v", err)
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}

	want := domain.SendLog{
		"s1": {NumSends: 2, LastSendDT: "2021-05-10T10:00:00.123456+00:00", CenterName: "PHC A"},
		"s2": {NumSends: 5, LastSendDT: "2021-05-10T10:05:00Z", CenterName: "PHC B"},
	}
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("want %d rows, got %d", len(want), len(got))
	}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("entry %s: want=%+v got=%+v", k, v, got[k])
		}
	}

	// Save replaces, it does not merge.
	if err := store.Save(ctx, domain.SendLog{"s3": {NumSends: 1}}); err != nil {
		t.Fatalf("Save 2: %v", err)
	}
	got, _ = store.Load(ctx)
	if len(got) != 1 || got["s3"].NumSends != 1 {
		t.Fatalf("expected replace semantics, got %+v", got)
	}
}
