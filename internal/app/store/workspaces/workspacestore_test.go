// internal/app/store/workspaces/workspacestore_test.go
package workspacestore

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/secondbraindb/sbdwallet/internal/domain/models"
	"github.com/secondbraindb/sbdwallet/internal/testutil"
)

func newWorkspace(members ...models.Member) models.Workspace {
	return models.Workspace{
		WorkspaceID: uuid.NewString(),
		Name:        "Test Workspace",
		Members:     members,
		Settings: models.WorkspaceSettings{
			AutoApprovalThreshold: 100,
		},
	}
}

func TestCreateAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := New(db)
	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}

	admin := testutil.Admin()
	ws, err := store.Create(ctx, newWorkspace(admin))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := store.Get(ctx, ws.WorkspaceID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.IsAdmin(admin.UserID) {
		t.Errorf("creator %q is not admin in stored workspace", admin.UserID)
	}

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("get missing error = %v, want ErrNotFound", err)
	}

	// Same external id again hits the unique index.
	dup := newWorkspace(admin)
	dup.WorkspaceID = ws.WorkspaceID
	if _, err := store.Create(ctx, dup); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("duplicate create error = %v, want ErrDuplicateID", err)
	}
}

func TestAddMember(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := New(db)
	admin := testutil.Admin()
	ws, err := store.Create(ctx, newWorkspace(admin))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	member := testutil.Member()
	if err := store.AddMember(ctx, ws.WorkspaceID, member); err != nil {
		t.Fatalf("add member: %v", err)
	}
	if err := store.AddMember(ctx, ws.WorkspaceID, member); !errors.Is(err, ErrAlreadyMember) {
		t.Errorf("duplicate member error = %v, want ErrAlreadyMember", err)
	}
	if err := store.AddMember(ctx, "missing", member); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing workspace error = %v, want ErrNotFound", err)
	}

	got, err := store.Get(ctx, ws.WorkspaceID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.IsMember(member.UserID) || len(got.Members) != 2 {
		t.Errorf("members after add = %+v", got.Members)
	}
}

func TestInitializeWalletOnce(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := New(db)
	admin := testutil.Admin()
	ws, err := store.Create(ctx, newWorkspace(admin))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	account := models.SBDAccount{
		AccountUsername: "sbd_team_abc123def456",
		SpendingPermissions: map[string]models.SpendingPermission{
			admin.UserID: {CanSpend: true, SpendingLimit: -1, UpdatedBy: admin.UserID, UpdatedAt: time.Now().UTC()},
		},
	}
	if err := store.InitializeWallet(ctx, ws.WorkspaceID, account); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	// The account username is set once.
	second := account
	second.AccountUsername = "sbd_team_other"
	if err := store.InitializeWallet(ctx, ws.WorkspaceID, second); !errors.Is(err, ErrWalletExists) {
		t.Errorf("second initialize error = %v, want ErrWalletExists", err)
	}
	if err := store.InitializeWallet(ctx, "missing", account); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing workspace error = %v, want ErrNotFound", err)
	}

	got, err := store.Get(ctx, ws.WorkspaceID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.SBDAccount.AccountUsername != "sbd_team_abc123def456" {
		t.Errorf("account username = %q", got.SBDAccount.AccountUsername)
	}
	perm := got.SBDAccount.SpendingPermissions[admin.UserID]
	if !perm.CanSpend || perm.SpendingLimit != -1 {
		t.Errorf("admin permission = %+v", perm)
	}
}

func TestSetSpendingPermission(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := New(db)
	admin := testutil.Admin()
	member := testutil.Member()
	ws, err := store.Create(ctx, newWorkspace(admin, member))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	perm := models.SpendingPermission{CanSpend: true, SpendingLimit: 250, UpdatedBy: admin.UserID, UpdatedAt: time.Now().UTC()}
	if err := store.SetSpendingPermission(ctx, ws.WorkspaceID, member.UserID, perm); err != nil {
		t.Fatalf("set permission: %v", err)
	}
	if err := store.SetSpendingPermission(ctx, "missing", member.UserID, perm); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing workspace error = %v, want ErrNotFound", err)
	}

	got, err := store.Get(ctx, ws.WorkspaceID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	stored := got.SBDAccount.SpendingPermissions[member.UserID]
	if !stored.CanSpend || stored.SpendingLimit != 250 {
		t.Errorf("stored permission = %+v", stored)
	}
}

func TestFreezeLifecycle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := New(db)
	admin := testutil.Admin()
	ws, err := store.Create(ctx, newWorkspace(admin))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	now := time.Now().UTC()

	if err := store.Unfreeze(ctx, ws.WorkspaceID, now); !errors.Is(err, ErrNotFrozen) {
		t.Errorf("unfreeze unfrozen error = %v, want ErrNotFrozen", err)
	}

	if err := store.Freeze(ctx, ws.WorkspaceID, admin.UserID, now); err != nil {
		t.Fatalf("freeze: %v", err)
	}
	if err := store.Freeze(ctx, ws.WorkspaceID, admin.UserID, now); !errors.Is(err, ErrAlreadyFrozen) {
		t.Errorf("double freeze error = %v, want ErrAlreadyFrozen", err)
	}

	got, err := store.Get(ctx, ws.WorkspaceID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.SBDAccount.IsFrozen || got.SBDAccount.FrozenBy != admin.UserID {
		t.Errorf("frozen state = %+v", got.SBDAccount)
	}

	if err := store.Unfreeze(ctx, ws.WorkspaceID, now); err != nil {
		t.Fatalf("unfreeze: %v", err)
	}
	got, err = store.Get(ctx, ws.WorkspaceID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.SBDAccount.IsFrozen || got.SBDAccount.FrozenBy != "" {
		t.Errorf("state after unfreeze = %+v", got.SBDAccount)
	}
}

func TestEmergencyUnfreezeAndAcknowledge(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := New(db)
	admin := testutil.Admin()
	ws, err := store.Create(ctx, newWorkspace(admin))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	now := time.Now().UTC()

	if err := store.AcknowledgeEmergency(ctx, ws.WorkspaceID, now); !errors.Is(err, ErrNoEmergency) {
		t.Errorf("acknowledge with no record error = %v, want ErrNoEmergency", err)
	}
	if err := store.EmergencyUnfreeze(ctx, ws.WorkspaceID, "backup1", "admin unreachable", now); !errors.Is(err, ErrNotFrozen) {
		t.Errorf("emergency unfreeze unfrozen error = %v, want ErrNotFrozen", err)
	}

	if err := store.Freeze(ctx, ws.WorkspaceID, admin.UserID, now); err != nil {
		t.Fatalf("freeze: %v", err)
	}
	if err := store.EmergencyUnfreeze(ctx, ws.WorkspaceID, "backup1", "admin unreachable", now); err != nil {
		t.Fatalf("emergency unfreeze: %v", err)
	}

	got, err := store.Get(ctx, ws.WorkspaceID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	acct := got.SBDAccount
	if acct.IsFrozen {
		t.Error("account still frozen after emergency unfreeze")
	}
	if !acct.EmergencyUnfrozen || acct.EmergencyUnfrozenBy != "backup1" || acct.EmergencyReason != "admin unreachable" {
		t.Errorf("emergency record = %+v", acct)
	}

	if err := store.AcknowledgeEmergency(ctx, ws.WorkspaceID, now); err != nil {
		t.Fatalf("acknowledge: %v", err)
	}
	got, err = store.Get(ctx, ws.WorkspaceID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.SBDAccount.EmergencyUnfrozen || got.SBDAccount.EmergencyUnfrozenBy != "" {
		t.Errorf("emergency record after acknowledge = %+v", got.SBDAccount)
	}
}

func TestBackupAdmins(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := New(db)
	admin := testutil.Admin()
	member := testutil.Member()
	ws, err := store.Create(ctx, newWorkspace(admin, member))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := store.RemoveBackupAdmin(ctx, ws.WorkspaceID, member.UserID); !errors.Is(err, ErrNotBackupAdmin) {
		t.Errorf("remove undesignated error = %v, want ErrNotBackupAdmin", err)
	}

	if err := store.AddBackupAdmin(ctx, ws.WorkspaceID, member.UserID); err != nil {
		t.Fatalf("add backup admin: %v", err)
	}
	if err := store.AddBackupAdmin(ctx, ws.WorkspaceID, member.UserID); !errors.Is(err, ErrAlreadyBackup) {
		t.Errorf("double designate error = %v, want ErrAlreadyBackup", err)
	}

	got, err := store.Get(ctx, ws.WorkspaceID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.IsBackupAdmin(member.UserID) {
		t.Error("member not recorded as backup admin")
	}

	if err := store.RemoveBackupAdmin(ctx, ws.WorkspaceID, member.UserID); err != nil {
		t.Fatalf("remove backup admin: %v", err)
	}
	got, err = store.Get(ctx, ws.WorkspaceID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.IsBackupAdmin(member.UserID) {
		t.Error("member still backup admin after removal")
	}
}

func TestSettingsUpdates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := New(db)
	admin := testutil.Admin()
	ws, err := store.Create(ctx, newWorkspace(admin))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := store.SetAutoApprovalThreshold(ctx, ws.WorkspaceID, 250); err != nil {
		t.Fatalf("set threshold: %v", err)
	}
	if err := store.SetAutoApprovalThreshold(ctx, "missing", 250); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing workspace error = %v, want ErrNotFound", err)
	}

	if err := store.SetEnabledAuthMethods(ctx, ws.WorkspaceID, []string{models.AuthPassword, models.AuthAPIToken}); err != nil {
		t.Fatalf("set auth methods: %v", err)
	}

	got, err := store.Get(ctx, ws.WorkspaceID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Settings.AutoApprovalThreshold != 250 {
		t.Errorf("threshold = %d, want 250", got.Settings.AutoApprovalThreshold)
	}
	if len(got.Settings.EnabledAuthMethods) != 2 {
		t.Errorf("enabled auth methods = %v", got.Settings.EnabledAuthMethods)
	}
}
