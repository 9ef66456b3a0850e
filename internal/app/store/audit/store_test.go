// internal/app/store/audit/store_test.go
package audit

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/secondbraindb/sbdwallet/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
)

func sampleRecord() Record {
	return Record{
		AuditID:     uuid.NewString(),
		TeamID:      "team1",
		EventType:   EventTokenRequestApproved,
		Actor:       "admin1",
		TargetUser:  "member1",
		Reason:      "quarterly budget",
		Amount:      500,
		FromAccount: "sbd_team_abc",
		ToAccount:   "user:member1",
		Details:     map[string]string{"request_id": "req1", "comments": "approved"},
		Timestamp:   time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC),
	}
}

func TestHashDeterministic(t *testing.T) {
	rec := sampleRecord()
	if rec.Hash() != rec.Hash() {
		t.Error("hash of the same record differs between calls")
	}

	same := sampleRecord()
	same.AuditID = rec.AuditID
	if rec.Hash() != same.Hash() {
		t.Error("identical records produced different hashes")
	}
}

func TestHashDetectsTampering(t *testing.T) {
	base := sampleRecord()
	baseHash := base.Hash()

	mutations := map[string]func(r *Record){
		"team_id":             func(r *Record) { r.TeamID = "team2" },
		"event_type":          func(r *Record) { r.EventType = EventTokenRequestDenied },
		"actor":               func(r *Record) { r.Actor = "intruder" },
		"target_user":         func(r *Record) { r.TargetUser = "someone" },
		"reason":              func(r *Record) { r.Reason = "edited" },
		"amount":              func(r *Record) { r.Amount = 9999 },
		"from_account":        func(r *Record) { r.FromAccount = "sbd_team_xyz" },
		"to_account":          func(r *Record) { r.ToAccount = "user:intruder" },
		"timestamp":           func(r *Record) { r.Timestamp = r.Timestamp.Add(time.Second) },
		"compliance_eligible": func(r *Record) { r.ComplianceEligible = !r.ComplianceEligible },
		"detail value":        func(r *Record) { r.Details["request_id"] = "req2" },
		"detail added":        func(r *Record) { r.Details["extra"] = "x" },
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			rec := sampleRecord()
			rec.AuditID = base.AuditID
			mutate(&rec)
			if rec.Hash() == baseHash {
				t.Errorf("mutating %s did not change the hash", name)
			}
		})
	}
}

func TestHashDetailOrderIndependent(t *testing.T) {
	a := sampleRecord()
	b := sampleRecord()
	b.AuditID = a.AuditID
	b.Details = map[string]string{"comments": "approved", "request_id": "req1"}
	if a.Hash() != b.Hash() {
		t.Error("detail map insertion order changed the hash")
	}
}

func TestInsertRoundTripVerifies(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := New(db)
	rec := sampleRecord()
	// Sub-millisecond precision must survive the Mongo round trip.
	rec.Timestamp = time.Now().UTC()

	stored, err := store.Insert(ctx, rec)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if stored.IntegrityHash == "" {
		t.Fatal("insert did not stamp an integrity hash")
	}

	got, err := store.Get(ctx, rec.AuditID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.Verified() {
		t.Error("round-tripped record failed verification")
	}
}

func TestVerifyDetectsComplianceFlip(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := New(db)
	rec := sampleRecord()
	rec.ComplianceEligible = true

	if _, err := store.Insert(ctx, rec); err != nil {
		t.Fatalf("insert: %v", err)
	}

	// Flip the eligibility flag out of band; verification must catch it so
	// tampered records cannot slip in or out of compliance reports.
	_, err := db.Collection("team_audit_records").UpdateOne(ctx,
		bson.M{"audit_id": rec.AuditID},
		bson.M{"$set": bson.M{"compliance_eligible": false}})
	if err != nil {
		t.Fatalf("tamper update: %v", err)
	}

	got, err := store.Get(ctx, rec.AuditID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Verified() {
		t.Error("record with flipped compliance_eligible passed verification")
	}
}

func TestGetNotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := New(db)
	if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("get missing record error = %v, want ErrNotFound", err)
	}
}

func TestQueryFilters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := New(db)
	base := time.Now().UTC().Add(-time.Hour)

	insert := func(teamID, eventType string, at time.Time) {
		t.Helper()
		rec := Record{
			AuditID:   uuid.NewString(),
			TeamID:    teamID,
			EventType: eventType,
			Actor:     "admin1",
			Timestamp: at,
		}
		if _, err := store.Insert(ctx, rec); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	insert("team1", EventWalletInitialized, base)
	insert("team1", EventTokenRequestCreated, base.Add(10*time.Minute))
	insert("team1", EventTokenRequestCreated, base.Add(20*time.Minute))
	insert("team2", EventTokenRequestCreated, base.Add(15*time.Minute))

	recs, err := store.Query(ctx, QueryFilter{TeamID: "team1"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("team1 record count = %d, want 3", len(recs))
	}
	// Newest first.
	for i := 1; i < len(recs); i++ {
		if recs[i].Timestamp.After(recs[i-1].Timestamp) {
			t.Error("query results not sorted newest first")
		}
	}

	recs, err = store.Query(ctx, QueryFilter{TeamID: "team1", EventType: EventWalletInitialized})
	if err != nil {
		t.Fatalf("query by event type: %v", err)
	}
	if len(recs) != 1 {
		t.Errorf("event type filter count = %d, want 1", len(recs))
	}

	start := base.Add(5 * time.Minute)
	end := base.Add(15 * time.Minute)
	recs, err = store.Query(ctx, QueryFilter{TeamID: "team1", Start: &start, End: &end})
	if err != nil {
		t.Fatalf("query by range: %v", err)
	}
	if len(recs) != 1 {
		t.Errorf("time range filter count = %d, want 1", len(recs))
	}

	recs, err = store.Query(ctx, QueryFilter{TeamID: "team1", Limit: 2})
	if err != nil {
		t.Fatalf("query with limit: %v", err)
	}
	if len(recs) != 2 {
		t.Errorf("limited query count = %d, want 2", len(recs))
	}

	n, err := store.CountByFilter(ctx, QueryFilter{TeamID: "team1"})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 3 {
		t.Errorf("count = %d, want 3", n)
	}
}
