// internal/app/features/tokens/handler_test.go
package tokens

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/secondbraindb/sbdwallet/internal/app/store/apitokens"
	"github.com/secondbraindb/sbdwallet/internal/app/system/auth"
	"github.com/secondbraindb/sbdwallet/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	db := testutil.SetupTestDB(t)
	svc := auth.NewService(apitokens.New(db), zap.NewNop())
	return &Handler{Tokens: svc, Log: zap.NewNop(), BootstrapToken: "bootstrap-secret"}
}

func TestServeIssueAuthenticated(t *testing.T) {
	h := newTestHandler(t)

	rec := testutil.NewRecorder()
	h.ServeIssue(rec.ResponseRecorder, testutil.NewAuthenticatedRequest(http.MethodPost, "/", `{"name":"ci token"}`, "user1"))
	rec.AssertStatus(t, http.StatusCreated)
	rec.AssertContains(t, `"raw_token":"sbd_`)

	var issued auth.IssuedToken
	if err := json.Unmarshal(rec.Body.Bytes(), &issued); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if issued.Token.UserID != "user1" {
		t.Errorf("token owner = %q, want user1", issued.Token.UserID)
	}

	// Authenticated callers always issue for themselves; user_id in the body
	// is ignored.
	rec = testutil.NewRecorder()
	h.ServeIssue(rec.ResponseRecorder, testutil.NewAuthenticatedRequest(http.MethodPost, "/", `{"name":"sneaky","user_id":"victim"}`, "user1"))
	rec.AssertStatus(t, http.StatusCreated)
	if err := json.Unmarshal(rec.Body.Bytes(), &issued); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if issued.Token.UserID != "user1" {
		t.Errorf("token owner = %q, want user1", issued.Token.UserID)
	}
}

func TestServeIssueBootstrap(t *testing.T) {
	h := newTestHandler(t)

	// No credentials at all.
	rec := testutil.NewRecorder()
	h.ServeIssue(rec.ResponseRecorder, testutil.NewRequest(http.MethodPost, "/", `{"name":"first token","user_id":"user1"}`))
	rec.AssertStatus(t, http.StatusUnauthorized)

	// Wrong bootstrap token.
	rec = testutil.NewRecorder()
	req := testutil.NewRequest(http.MethodPost, "/", `{"name":"first token","user_id":"user1"}`)
	req.Header.Set("Authorization", "Bearer wrong-secret")
	h.ServeIssue(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusUnauthorized)

	// Bootstrap token without a target user.
	rec = testutil.NewRecorder()
	req = testutil.NewRequest(http.MethodPost, "/", `{"name":"first token"}`)
	req.Header.Set("Authorization", "Bearer bootstrap-secret")
	h.ServeIssue(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusUnauthorized)

	// Correct bootstrap token issues for the named user.
	rec = testutil.NewRecorder()
	req = testutil.NewRequest(http.MethodPost, "/", `{"name":"first token","user_id":"user1"}`)
	req.Header.Set("Authorization", "Bearer bootstrap-secret")
	h.ServeIssue(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusCreated)

	var issued auth.IssuedToken
	if err := json.Unmarshal(rec.Body.Bytes(), &issued); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if issued.Token.UserID != "user1" {
		t.Errorf("token owner = %q, want user1", issued.Token.UserID)
	}
}

func TestServeIssueValidation(t *testing.T) {
	h := newTestHandler(t)

	rec := testutil.NewRecorder()
	h.ServeIssue(rec.ResponseRecorder, testutil.NewAuthenticatedRequest(http.MethodPost, "/", `{"name":""}`, "user1"))
	rec.AssertStatus(t, http.StatusBadRequest)

	rec = testutil.NewRecorder()
	h.ServeIssue(rec.ResponseRecorder, testutil.NewAuthenticatedRequest(http.MethodPost, "/", `not json`, "user1"))
	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestServeListAndRevoke(t *testing.T) {
	h := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	issued, err := h.Tokens.Issue(ctx, "user1", "ci token")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := h.Tokens.Issue(ctx, "user2", "other token"); err != nil {
		t.Fatalf("issue: %v", err)
	}

	// List shows only the caller's tokens and never the hash.
	rec := testutil.NewRecorder()
	h.ServeList(rec.ResponseRecorder, testutil.NewAuthenticatedRequest(http.MethodGet, "/", "", "user1"))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"count":1`)
	rec.AssertContains(t, issued.Token.TokenID)

	// A user cannot revoke someone else's token.
	rec = testutil.NewRecorder()
	req := testutil.WithChiURLParam(testutil.NewAuthenticatedRequest(http.MethodDelete, "/", "", "user2"), "tokenID", issued.Token.TokenID)
	h.ServeRevoke(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusNotFound)

	rec = testutil.NewRecorder()
	req = testutil.WithChiURLParam(testutil.NewAuthenticatedRequest(http.MethodDelete, "/", "", "user1"), "tokenID", issued.Token.TokenID)
	h.ServeRevoke(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"status":"revoked"`)

	rec = testutil.NewRecorder()
	req = testutil.WithChiURLParam(testutil.NewAuthenticatedRequest(http.MethodDelete, "/", "", "user1"), "tokenID", issued.Token.TokenID)
	h.ServeRevoke(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusConflict)
}
