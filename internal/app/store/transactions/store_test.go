// internal/app/store/transactions/store_test.go
package transactions

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/secondbraindb/sbdwallet/internal/domain/models"
	"github.com/secondbraindb/sbdwallet/internal/testutil"
)

func TestInsertAndListRecent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := New(db)
	base := time.Now().UTC().Add(-time.Hour)

	for i := 0; i < 12; i++ {
		_, err := store.Insert(ctx, models.Transaction{
			TransactionID: uuid.NewString(),
			WorkspaceID:   "ws1",
			Type:          models.TxnTokenGrant,
			Amount:        int64(i + 1),
			FromAccount:   "sbd_team_abc",
			ToUser:        "member1",
			CreatedAt:     base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}
	if _, err := store.Insert(ctx, models.Transaction{
		TransactionID: uuid.NewString(),
		WorkspaceID:   "ws2",
		Type:          models.TxnTokenGrant,
		Amount:        999,
	}); err != nil {
		t.Fatalf("insert other workspace: %v", err)
	}

	txns, err := store.ListRecent(ctx, "ws1", 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(txns) != 10 {
		t.Fatalf("list returned %d, want 10", len(txns))
	}
	// Newest first.
	if txns[0].Amount != 12 {
		t.Errorf("first entry amount = %d, want 12", txns[0].Amount)
	}
	for i := 1; i < len(txns); i++ {
		if txns[i].CreatedAt.After(txns[i-1].CreatedAt) {
			t.Fatal("transactions not sorted newest first")
		}
	}
}

func TestCountByRequest(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := New(db)
	if _, err := store.Insert(ctx, models.Transaction{
		TransactionID: uuid.NewString(),
		WorkspaceID:   "ws1",
		Type:          models.TxnTokenGrant,
		Amount:        100,
		RequestID:     "req1",
	}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	n, err := store.CountByRequest(ctx, "req1")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("count = %d, want 1", n)
	}

	n, err = store.CountByRequest(ctx, "other")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Errorf("count for unknown request = %d, want 0", n)
	}
}
