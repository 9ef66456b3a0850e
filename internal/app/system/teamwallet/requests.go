// internal/app/system/teamwallet/requests.go
package teamwallet

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/secondbraindb/sbdwallet/internal/app/store/audit"
	"github.com/secondbraindb/sbdwallet/internal/app/store/tokenrequests"
	"github.com/secondbraindb/sbdwallet/internal/app/system/auditlog"
	"github.com/secondbraindb/sbdwallet/internal/app/system/inputval"
	"github.com/secondbraindb/sbdwallet/internal/app/system/ratelimit"
	"github.com/secondbraindb/sbdwallet/internal/domain/models"
	"go.uber.org/zap"
)

// Review actions accepted by ReviewTokenRequest.
const (
	ActionApprove = "approve"
	ActionDeny    = "deny"
)

// CreateTokenRequest files a member's ask for tokens from the team account.
// Amounts at or below the workspace auto-approval threshold are approved and
// processed in the same call; anything larger waits for admin review.
func (m *Manager) CreateTokenRequest(ctx context.Context, workspaceID, userID string, amount int64, reason string) (TokenRequestResult, error) {
	ws, err := m.requireMember(ctx, workspaceID, userID)
	if err != nil {
		return TokenRequestResult{}, err
	}
	if err := requireInitialized(ws); err != nil {
		return TokenRequestResult{}, err
	}
	if ws.SBDAccount.IsFrozen {
		return TokenRequestResult{}, newError(CodeAccountFrozen, "team account is frozen")
	}
	if amount <= 0 {
		return TokenRequestResult{}, newError(CodeValidationError, "amount must be greater than zero")
	}
	reason = inputval.SanitizeText(reason)
	if !inputval.ValidReason(reason) {
		return TokenRequestResult{}, newError(CodeValidationError, "reason must be at least 5 characters")
	}
	if m.limiter != nil && !m.limiter.Allow(ratelimit.RequestKey(workspaceID, userID)) {
		return TokenRequestResult{}, newError(CodeRateLimitExceeded, "too many token requests, try again later")
	}

	now := time.Now().UTC()
	req := models.TokenRequest{
		RequestID:   uuid.NewString(),
		WorkspaceID: workspaceID,
		RequesterID: userID,
		Amount:      amount,
		Reason:      reason,
		Status:      models.RequestPending,
		CreatedAt:   now,
		ExpiresAt:   now.Add(models.RequestTTL),
	}
	if amount <= ws.Settings.AutoApprovalThreshold {
		// Auto-approved requests skip review entirely; the requester is
		// recorded as the reviewer so the reconciliation sweep can pick up
		// any that fail to process below.
		req.Status = models.RequestApproved
		req.AutoApproved = true
		req.ReviewedBy = userID
		req.ReviewedAt = &now
	}

	req, err = m.requests.Insert(ctx, req)
	if err != nil {
		return TokenRequestResult{}, infraError("token request creation", err)
	}

	audited := m.auditTransaction(ctx, auditlog.TransactionEvent{
		TeamID:      workspaceID,
		EventType:   audit.EventTokenRequestCreated,
		Actor:       userID,
		Amount:      amount,
		FromAccount: ws.SBDAccount.AccountUsername,
		ToAccount:   "pending",
		Reason:      reason,
		RequestID:   req.RequestID,
	})

	result := TokenRequestResult{
		RequestID:     req.RequestID,
		WorkspaceID:   workspaceID,
		Status:        req.Status,
		AutoApproved:  req.AutoApproved,
		Amount:        amount,
		ExpiresAt:     req.ExpiresAt,
		AuditRecorded: audited,
	}

	m.log.Info("token request created",
		zap.String("workspace_id", workspaceID),
		zap.String("request_id", req.RequestID),
		zap.String("requester_id", userID),
		zap.Int64("amount", amount),
		zap.Bool("auto_approved", req.AutoApproved),
	)

	if !req.AutoApproved {
		return result, nil
	}

	record, err := m.runProcess(ctx, ws.SBDAccount.AccountUsername, req, userID)
	if err != nil {
		return TokenRequestResult{}, err
	}
	result.TransactionID = record.TransactionID
	return result, nil
}

// ReviewTokenRequest applies an admin's approve or deny decision to a
// pending request. Approval processes the transfer in the same call; the
// review transition itself happens exactly once even under concurrent
// reviewers.
func (m *Manager) ReviewTokenRequest(ctx context.Context, requestID, adminID, action, comments string) (ReviewResult, error) {
	req, err := m.requests.Get(ctx, requestID)
	if err != nil {
		if errors.Is(err, tokenrequests.ErrNotFound) {
			return ReviewResult{}, newError(CodeTokenRequestNotFound, "token request not found")
		}
		return ReviewResult{}, infraError("token request lookup", err)
	}

	ws, err := m.requireAdmin(ctx, req.WorkspaceID, adminID)
	if err != nil {
		return ReviewResult{}, err
	}

	var status string
	switch action {
	case ActionApprove:
		status = models.RequestApproved
	case ActionDeny:
		status = models.RequestDenied
	default:
		return ReviewResult{}, newError(CodeValidationError, "action must be approve or deny")
	}
	if req.Status != models.RequestPending {
		return ReviewResult{}, newError(CodeValidationError, "token request has already been reviewed")
	}

	now := time.Now().UTC()
	if req.Expired(now) {
		return ReviewResult{}, newError(CodeValidationError, "token request has expired")
	}

	comments = inputval.SanitizeText(comments)
	if err := m.requests.MarkReviewed(ctx, requestID, status, adminID, comments, now); err != nil {
		switch {
		case errors.Is(err, tokenrequests.ErrNotReviewable):
			return ReviewResult{}, newError(CodeValidationError, "token request is no longer reviewable")
		case errors.Is(err, tokenrequests.ErrNotFound):
			return ReviewResult{}, newError(CodeTokenRequestNotFound, "token request not found")
		default:
			return ReviewResult{}, infraError("token request review", err)
		}
	}
	req.Status = status
	req.ReviewedBy = adminID
	req.ReviewedAt = &now
	req.AdminComments = comments

	eventType := audit.EventTokenRequestApproved
	if status == models.RequestDenied {
		eventType = audit.EventTokenRequestDenied
	}
	audited := m.auditTransaction(ctx, auditlog.TransactionEvent{
		TeamID:      req.WorkspaceID,
		EventType:   eventType,
		Actor:       adminID,
		Amount:      req.Amount,
		FromAccount: ws.SBDAccount.AccountUsername,
		ToAccount:   req.RequesterID,
		Reason:      comments,
		RequestID:   req.RequestID,
	})

	result := ReviewResult{
		RequestID:     requestID,
		Status:        status,
		ReviewedBy:    adminID,
		ReviewedAt:    now,
		AuditRecorded: audited,
	}

	m.log.Info("token request reviewed",
		zap.String("workspace_id", req.WorkspaceID),
		zap.String("request_id", requestID),
		zap.String("admin_id", adminID),
		zap.String("status", status),
	)

	if status != models.RequestApproved {
		return result, nil
	}

	record, err := m.runProcess(ctx, ws.SBDAccount.AccountUsername, req, adminID)
	if err != nil {
		return ReviewResult{}, err
	}
	result.TransactionID = record.TransactionID
	result.ProcessedAt = &record.CreatedAt
	return result, nil
}

// GetPendingTokenRequests lists a workspace's reviewable requests, newest
// first. Admin only.
func (m *Manager) GetPendingTokenRequests(ctx context.Context, workspaceID, adminID string) ([]models.TokenRequest, error) {
	if _, err := m.requireAdmin(ctx, workspaceID, adminID); err != nil {
		return nil, err
	}
	reqs, err := m.requests.ListPending(ctx, workspaceID, time.Now().UTC())
	if err != nil {
		return nil, infraError("pending request listing", err)
	}
	return reqs, nil
}
