// internal/app/system/teamwallet/requests_test.go
package teamwallet

import (
	"context"
	"testing"
	"time"

	"github.com/secondbraindb/sbdwallet/internal/app/system/ratelimit"
	"github.com/secondbraindb/sbdwallet/internal/domain/models"
	"github.com/secondbraindb/sbdwallet/internal/testutil"
)

func TestCreateTokenRequestAutoApproved(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := testutil.Admin()
	member := testutil.Member()
	ws := env.fx.CreateWorkspaceWithWallet(ctx, "Team Alpha", admin, member)

	res, err := env.mgr.CreateTokenRequest(ctx, ws.WorkspaceID, member.UserID, 50, "tokens for batch job")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !res.AutoApproved || res.Status != models.RequestApproved {
		t.Errorf("result = %+v, want auto-approved", res)
	}
	if res.TransactionID == "" {
		t.Error("auto-approved request has no transaction id")
	}

	bal, _ := env.mem.Balance(context.Background(), ws.SBDAccount.AccountUsername)
	if bal != testSeedBalance-50 {
		t.Errorf("balance = %d, want %d", bal, testSeedBalance-50)
	}

	got, err := env.requests.Get(ctx, res.RequestID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ProcessedAt == nil || got.ReviewedBy != member.UserID {
		t.Errorf("stored request = %+v", got)
	}
}

func TestAutoApprovedTransferReplayIsSafe(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := testutil.Admin()
	member := testutil.Member()
	ws := env.fx.CreateWorkspaceWithWallet(ctx, "Team Alpha", admin, member)

	res, err := env.mgr.CreateTokenRequest(ctx, ws.WorkspaceID, member.UserID, 50, "tokens for batch job")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Processing keys the transfer on the request ID, so a replay of the
	// same transfer (a rolled-back transaction attempt, a sweep retry)
	// collapses into the original move instead of debiting again.
	if _, err := env.mem.Transfer(ctx, ws.SBDAccount.AccountUsername, member.UserID, 50, "retry", res.RequestID); err != nil {
		t.Fatalf("replayed transfer: %v", err)
	}
	bal, _ := env.mem.Balance(context.Background(), ws.SBDAccount.AccountUsername)
	if bal != testSeedBalance-50 {
		t.Errorf("balance after replay = %d, want %d", bal, testSeedBalance-50)
	}
}

func TestCreateTokenRequestAboveThreshold(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := testutil.Admin()
	member := testutil.Member()
	ws := env.fx.CreateWorkspaceWithWallet(ctx, "Team Alpha", admin, member)

	res, err := env.mgr.CreateTokenRequest(ctx, ws.WorkspaceID, member.UserID, 500, "large compute budget")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if res.AutoApproved || res.Status != models.RequestPending {
		t.Errorf("result = %+v, want pending", res)
	}
	if res.TransactionID != "" {
		t.Error("pending request should not carry a transaction id")
	}

	// No transfer until an admin approves.
	bal, _ := env.mem.Balance(context.Background(), ws.SBDAccount.AccountUsername)
	if bal != testSeedBalance {
		t.Errorf("balance = %d, want untouched %d", bal, testSeedBalance)
	}
}

func TestCreateTokenRequestValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := testutil.Admin()
	member := testutil.Member()
	ws := env.fx.CreateWorkspaceWithWallet(ctx, "Team Alpha", admin, member)

	_, err := env.mgr.CreateTokenRequest(ctx, ws.WorkspaceID, "stranger", 50, "valid reason here")
	assertCode(t, err, CodeInsufficientPermissions)

	_, err = env.mgr.CreateTokenRequest(ctx, "missing", member.UserID, 50, "valid reason here")
	assertCode(t, err, CodeWorkspaceNotFound)

	bare := env.fx.CreateWorkspace(ctx, "No Wallet", admin, member)
	_, err = env.mgr.CreateTokenRequest(ctx, bare.WorkspaceID, member.UserID, 50, "valid reason here")
	assertCode(t, err, CodeWalletNotInitialized)

	_, err = env.mgr.CreateTokenRequest(ctx, ws.WorkspaceID, member.UserID, 0, "valid reason here")
	assertCode(t, err, CodeValidationError)

	_, err = env.mgr.CreateTokenRequest(ctx, ws.WorkspaceID, member.UserID, -5, "valid reason here")
	assertCode(t, err, CodeValidationError)

	_, err = env.mgr.CreateTokenRequest(ctx, ws.WorkspaceID, member.UserID, 50, "hi")
	assertCode(t, err, CodeValidationError)

	// Markup-only reasons sanitize to nothing.
	_, err = env.mgr.CreateTokenRequest(ctx, ws.WorkspaceID, member.UserID, 50, "<b><i></i></b>")
	assertCode(t, err, CodeValidationError)
}

func TestCreateTokenRequestFrozenAccount(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := testutil.Admin()
	member := testutil.Member()
	ws := env.fx.CreateWorkspaceWithWallet(ctx, "Team Alpha", admin, member)

	if _, err := env.mgr.FreezeTeamAccount(ctx, ws.WorkspaceID, admin.UserID, "suspicious activity"); err != nil {
		t.Fatalf("freeze: %v", err)
	}

	_, err := env.mgr.CreateTokenRequest(ctx, ws.WorkspaceID, member.UserID, 50, "tokens for batch job")
	assertCode(t, err, CodeAccountFrozen)
}

func TestCreateTokenRequestRateLimited(t *testing.T) {
	env := newTestEnvWithLimiter(t, ratelimit.New(2, time.Hour))
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := testutil.Admin()
	member := testutil.Member()
	ws := env.fx.CreateWorkspaceWithWallet(ctx, "Team Alpha", admin, member)

	for i := 0; i < 2; i++ {
		if _, err := env.mgr.CreateTokenRequest(ctx, ws.WorkspaceID, member.UserID, 500, "large compute budget"); err != nil {
			t.Fatalf("request %d: %v", i+1, err)
		}
	}

	_, err := env.mgr.CreateTokenRequest(ctx, ws.WorkspaceID, member.UserID, 500, "large compute budget")
	assertCode(t, err, CodeRateLimitExceeded)

	// Another member is unaffected.
	other := testutil.Member()
	ws2 := env.fx.CreateWorkspaceWithWallet(ctx, "Team Beta", admin, other)
	if _, err := env.mgr.CreateTokenRequest(ctx, ws2.WorkspaceID, other.UserID, 500, "large compute budget"); err != nil {
		t.Errorf("other member request: %v", err)
	}
}

func TestCreateTokenRequestInsufficientBalance(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := testutil.Admin()
	member := testutil.Member()
	ws := env.fx.CreateWorkspaceWithWallet(ctx, "Team Alpha", admin, member)

	// Drain the team account so the auto-approve transfer fails.
	env.mem.Credit(ws.SBDAccount.AccountUsername, -testSeedBalance)

	_, err := env.mgr.CreateTokenRequest(ctx, ws.WorkspaceID, member.UserID, 50, "tokens for batch job")
	assertCode(t, err, CodeInsufficientBalance)
}

func TestReviewTokenRequestApprove(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := testutil.Admin()
	member := testutil.Member()
	ws := env.fx.CreateWorkspaceWithWallet(ctx, "Team Alpha", admin, member)

	created, err := env.mgr.CreateTokenRequest(ctx, ws.WorkspaceID, member.UserID, 500, "large compute budget")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	res, err := env.mgr.ReviewTokenRequest(ctx, created.RequestID, admin.UserID, ActionApprove, "within budget")
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if res.Status != models.RequestApproved || res.ReviewedBy != admin.UserID {
		t.Errorf("result = %+v", res)
	}
	if res.TransactionID == "" || res.ProcessedAt == nil {
		t.Error("approval did not process the transfer")
	}

	bal, _ := env.mem.Balance(context.Background(), ws.SBDAccount.AccountUsername)
	if bal != testSeedBalance-500 {
		t.Errorf("balance = %d, want %d", bal, testSeedBalance-500)
	}

	// The decision is final.
	_, err = env.mgr.ReviewTokenRequest(ctx, created.RequestID, admin.UserID, ActionDeny, "changed my mind")
	assertCode(t, err, CodeValidationError)
}

func TestReviewTokenRequestDeny(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := testutil.Admin()
	member := testutil.Member()
	ws := env.fx.CreateWorkspaceWithWallet(ctx, "Team Alpha", admin, member)

	created, err := env.mgr.CreateTokenRequest(ctx, ws.WorkspaceID, member.UserID, 500, "large compute budget")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	res, err := env.mgr.ReviewTokenRequest(ctx, created.RequestID, admin.UserID, ActionDeny, "over budget this month")
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if res.Status != models.RequestDenied {
		t.Errorf("status = %q, want denied", res.Status)
	}
	if res.TransactionID != "" {
		t.Error("denial produced a transaction")
	}

	bal, _ := env.mem.Balance(context.Background(), ws.SBDAccount.AccountUsername)
	if bal != testSeedBalance {
		t.Errorf("balance = %d, want untouched %d", bal, testSeedBalance)
	}

	got, err := env.requests.Get(ctx, created.RequestID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.AdminComments != "over budget this month" {
		t.Errorf("admin comments = %q", got.AdminComments)
	}
}

func TestReviewTokenRequestErrors(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := testutil.Admin()
	member := testutil.Member()
	ws := env.fx.CreateWorkspaceWithWallet(ctx, "Team Alpha", admin, member)

	created, err := env.mgr.CreateTokenRequest(ctx, ws.WorkspaceID, member.UserID, 500, "large compute budget")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = env.mgr.ReviewTokenRequest(ctx, "missing", admin.UserID, ActionApprove, "")
	assertCode(t, err, CodeTokenRequestNotFound)

	_, err = env.mgr.ReviewTokenRequest(ctx, created.RequestID, member.UserID, ActionApprove, "")
	assertCode(t, err, CodeInsufficientPermissions)

	_, err = env.mgr.ReviewTokenRequest(ctx, created.RequestID, admin.UserID, "maybe", "")
	assertCode(t, err, CodeValidationError)

	// Past its deadline the request is no longer reviewable.
	now := time.Now().UTC()
	stale, err := env.requests.Insert(ctx, models.TokenRequest{
		RequestID:   "stale-request",
		WorkspaceID: ws.WorkspaceID,
		RequesterID: member.UserID,
		Amount:      500,
		Reason:      "forgotten request",
		Status:      models.RequestPending,
		CreatedAt:   now.Add(-8 * 24 * time.Hour),
		ExpiresAt:   now.Add(-time.Hour),
	})
	if err != nil {
		t.Fatalf("insert stale: %v", err)
	}
	_, err = env.mgr.ReviewTokenRequest(ctx, stale.RequestID, admin.UserID, ActionApprove, "")
	assertCode(t, err, CodeValidationError)
}

func TestGetPendingTokenRequests(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := testutil.Admin()
	member := testutil.Member()
	ws := env.fx.CreateWorkspaceWithWallet(ctx, "Team Alpha", admin, member)

	if _, err := env.mgr.CreateTokenRequest(ctx, ws.WorkspaceID, member.UserID, 500, "large compute budget"); err != nil {
		t.Fatalf("create pending: %v", err)
	}
	// Auto-approved requests never show up as pending.
	if _, err := env.mgr.CreateTokenRequest(ctx, ws.WorkspaceID, member.UserID, 50, "small compute budget"); err != nil {
		t.Fatalf("create auto-approved: %v", err)
	}

	_, err := env.mgr.GetPendingTokenRequests(ctx, ws.WorkspaceID, member.UserID)
	assertCode(t, err, CodeInsufficientPermissions)

	reqs, err := env.mgr.GetPendingTokenRequests(ctx, ws.WorkspaceID, admin.UserID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(reqs) != 1 || reqs[0].Amount != 500 {
		t.Errorf("pending = %+v, want one request of 500", reqs)
	}
}
