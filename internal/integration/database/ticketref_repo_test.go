package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/seatosky-chris/StatusCake-AutotaskIntegration/internal/integration/model"
)

// newTestRepo connects to the database named by TEST_DATABASE_DSN; the suite
// is skipped when the variable is unset.
func newTestRepo(t *testing.T) *TicketReferenceRepo {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set, skipping database tests")
	}

	db, err := New(dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	repo := NewTicketReferenceRepo(db)
	if err := repo.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return repo
}

func TestTicketReferenceRoundtrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	testID := "roundtrip-" + uuid.NewString()

	older := &model.CorrelationRecord{
		ID:        uuid.NewString(),
		TestID:    testID,
		TestName:  "Acme-WebSite",
		URL:       "https://acme.example",
		TicketID:  555,
		CreatedAt: time.Now().Add(-time.Hour).UTC(),
	}
	newer := &model.CorrelationRecord{
		ID:        uuid.NewString(),
		TestID:    testID,
		TicketID:  556,
		CreatedAt: time.Now().UTC(),
	}
	for _, rec := range []*model.CorrelationRecord{newer, older} {
		if err := repo.Insert(ctx, rec); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	recs, err := repo.FindByTestID(ctx, testID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("records = %d, want 2", len(recs))
	}
	if recs[0].TicketID != 555 || recs[1].TicketID != 556 {
		t.Errorf("records not ordered oldest first: %+v", recs)
	}
	if recs[0].TestName != "Acme-WebSite" || recs[0].URL != "https://acme.example" {
		t.Errorf("fields lost in roundtrip: %+v", recs[0])
	}

	for _, rec := range recs {
		if err := repo.Delete(ctx, rec.ID, testID); err != nil {
			t.Fatalf("delete: %v", err)
		}
	}
	recs, err = repo.FindByTestID(ctx, testID)
	if err != nil {
		t.Fatalf("find after delete: %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("records after delete = %d, want 0", len(recs))
	}
}

func TestTicketReferenceDeleteIsScopedToTest(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	testID := "scoped-" + uuid.NewString()

	rec := &model.CorrelationRecord{
		ID:        uuid.NewString(),
		TestID:    testID,
		TicketID:  777,
		CreatedAt: time.Now().UTC(),
	}
	if err := repo.Insert(ctx, rec); err != nil {
		t.Fatalf("insert: %v", err)
	}
	t.Cleanup(func() { repo.Delete(ctx, rec.ID, testID) })

	if err := repo.Delete(ctx, rec.ID, "some-other-test"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	recs, err := repo.FindByTestID(ctx, testID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(recs) != 1 {
		t.Errorf("record deleted despite mismatched test id")
	}
}
