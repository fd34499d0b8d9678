package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/heavenboards/user-service/internal/database/testutil"
	"github.com/heavenboards/user-service/internal/models"
)

const testProjectID = "6f1c2d3e-4a5b-4c6d-8e7f-9a0b1c2d3e4f"

func newTestStore(t *testing.T) *Store {
	t.Helper()

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	store, err := New(db)
	require.NoError(t, err)
	return store
}

func createUser(t *testing.T, store *Store, username string) *models.User {
	t.Helper()

	user := &models.User{Username: username, Password: "hash", Role: models.RoleUser}
	require.NoError(t, store.Users().Create(context.Background(), user))
	return user
}

func TestNewRequiresDB(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
}

func TestIsUniqueViolation(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"gorm duplicated key", fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey), true},
		{"already exists", ErrAlreadyExists, true},
		{"postgres", &pgconn.PgError{Code: "23505"}, true},
		{"postgres foreign key", &pgconn.PgError{Code: "23503"}, false},
		{"mysql", &mysql.MySQLError{Number: 1062}, true},
		{"sqlite text", errors.New("UNIQUE constraint failed: users.username"), true},
		{"foreign key text", errors.New("FOREIGN KEY constraint failed"), false},
		{"other", errors.New("connection reset"), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, IsUniqueViolation(tc.err))
		})
	}
}

func TestWithTxRollsBackOnError(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.WithTx(ctx, func(tx *Store) error {
		require.NoError(t, tx.Users().Create(ctx, &models.User{Username: "ghost", Password: "x", Role: models.RoleUser}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	exists, err := store.Users().ExistsByUsername(ctx, "ghost")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestWithTxCommits(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.WithTx(ctx, func(tx *Store) error {
		return tx.Users().Create(ctx, &models.User{Username: "kept", Password: "x", Role: models.RoleUser})
	})
	require.NoError(t, err)

	exists, err := store.Users().ExistsByUsername(ctx, "kept")
	require.NoError(t, err)
	require.True(t, exists)
}

func TestUsersRepository(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	users := store.Users()

	alice := createUser(t, store, "alice")
	bob := createUser(t, store, "bob")
	require.NotEmpty(t, alice.ID)

	exists, err := users.ExistsByUsername(ctx, "alice")
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = users.ExistsByUsername(ctx, "Alice")
	require.NoError(t, err)
	require.False(t, exists)

	found, err := users.FindByUsername(ctx, "bob")
	require.NoError(t, err)
	require.Equal(t, bob.ID, found.ID)

	_, err = users.FindByUsername(ctx, "carol")
	require.ErrorIs(t, err, ErrNotFound)

	byID, err := users.FindByID(ctx, alice.ID)
	require.NoError(t, err)
	require.Equal(t, "alice", byID.Username)

	list, err := users.FindAllByIDs(ctx, []string{bob.ID, alice.ID, "5d0c1b2a-3948-4756-a5b4-c3d2e1f0a9b8"})
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "alice", list[0].Username)
	require.Equal(t, "bob", list[1].Username)

	empty, err := users.FindAllByIDs(ctx, nil)
	require.NoError(t, err)
	require.Empty(t, empty)

	err = users.Create(ctx, &models.User{Username: "alice", Password: "x", Role: models.RoleUser})
	require.ErrorIs(t, err, ErrAlreadyExists)

	defaulted := &models.User{Username: "dave", Password: "x"}
	require.NoError(t, users.Create(ctx, defaulted))
	require.Equal(t, models.RoleUser, defaulted.Role)

	require.Error(t, users.Create(ctx, &models.User{Username: "eve", Password: "x", Role: "ROOT"}))
	exists, err = users.ExistsByUsername(ctx, "eve")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestInvitationsRepository(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	invitations := store.Invitations()

	alice := createUser(t, store, "alice")
	bob := createUser(t, store, "bob")
	carol := createUser(t, store, "carol")

	first := &models.Invitation{ProjectID: testProjectID, InvitedUserID: bob.ID, InvitationSenderID: alice.ID}
	require.NoError(t, invitations.Create(ctx, first))
	second := &models.Invitation{ProjectID: testProjectID, InvitedUserID: carol.ID, InvitationSenderID: alice.ID}
	require.NoError(t, invitations.Create(ctx, second))

	duplicate := &models.Invitation{ProjectID: testProjectID, InvitedUserID: bob.ID, InvitationSenderID: carol.ID}
	require.ErrorIs(t, invitations.Create(ctx, duplicate), ErrAlreadyExists)

	existing, err := invitations.FindByProjectAndInvitedUser(ctx, testProjectID, bob.ID)
	require.NoError(t, err)
	require.Equal(t, first.ID, existing.ID)

	_, err = invitations.FindByProjectAndInvitedUser(ctx, testProjectID, alice.ID)
	require.ErrorIs(t, err, ErrNotFound)

	received, err := invitations.FindAllByInvitedUser(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, received, 1)
	require.NotNil(t, received[0].InvitedUser)
	require.NotNil(t, received[0].InvitationSender)
	require.Equal(t, "bob", received[0].InvitedUser.Username)
	require.Equal(t, "alice", received[0].InvitationSender.Username)

	sent, err := invitations.FindAllBySender(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, sent, 2)

	count, err := invitations.CountBySender(ctx, alice.ID)
	require.NoError(t, err)
	require.Equal(t, int64(2), count)

	count, err = invitations.CountByInvitedUser(ctx, alice.ID)
	require.NoError(t, err)
	require.Zero(t, count)

	locked, err := invitations.FindByIDForUpdate(ctx, first.ID)
	require.NoError(t, err)
	require.Equal(t, bob.ID, locked.InvitedUserID)

	require.NoError(t, invitations.Delete(ctx, first.ID))
	require.ErrorIs(t, invitations.Delete(ctx, first.ID), ErrNotFound)

	_, err = invitations.FindByIDForUpdate(ctx, first.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAuditLogsRepository(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	audit := store.AuditLogs()

	alice := createUser(t, store, "alice")
	old := &models.AuditLog{UserID: &alice.ID, Action: "auth.authenticate", Result: "OK", CreatedAt: time.Now().AddDate(0, 0, -40)}
	recent := &models.AuditLog{UserID: &alice.ID, Action: "invitation.create", Result: "OK"}
	require.NoError(t, audit.Create(ctx, old))
	require.NoError(t, audit.Create(ctx, recent))

	var entries []models.AuditLog
	require.NoError(t, store.DB().Where("user_id = ?", alice.ID).Order("created_at DESC").Find(&entries).Error)
	require.Len(t, entries, 2)
	require.Equal(t, "invitation.create", entries[0].Action)

	removed, err := audit.DeleteOlderThan(ctx, time.Now().AddDate(0, 0, -30))
	require.NoError(t, err)
	require.Equal(t, int64(1), removed)
}
