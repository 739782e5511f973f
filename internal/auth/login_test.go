package auth

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jeanscarter/clinidesk/internal/model"
	"github.com/jeanscarter/clinidesk/internal/storage"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestAuthenticator(t *testing.T) (*Authenticator, *storage.Store, *fakeClock) {
	t.Helper()

	store, err := storage.Open(context.Background(), filepath.Join(t.TempDir(), "clinic.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	hasher, err := NewHasher(testParams())
	require.NoError(t, err)

	clock := &fakeClock{now: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)}
	return NewAuthenticator(store.Accounts, hasher, clock, nil), store, clock
}

// testParams keeps argon2 cheap so the suite stays fast.
func testParams() Params {
	return Params{
		Memory:      8 * 1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLen:     8,
		KeyLen:      16,
	}
}

func createAccount(t *testing.T, store *storage.Store, username, password string) *model.Account {
	t.Helper()

	hasher, err := NewHasher(testParams())
	require.NoError(t, err)
	hash, salt, err := hasher.Generate(password)
	require.NoError(t, err)

	account := &model.Account{
		Username:     username,
		PasswordHash: hash,
		Salt:         salt,
		Role:         model.RoleReceptionist,
		FullName:     "Ana Perez",
		Active:       true,
	}
	require.NoError(t, store.Accounts.Save(context.Background(), account))
	return account
}

func TestLoginSuccessSetsLastLogin(t *testing.T) {
	t.Parallel()

	authenticator, store, clock := newTestAuthenticator(t)
	createAccount(t, store, "ana", "correct horse")

	account, err := authenticator.Login(context.Background(), "ana", "correct horse")
	require.NoError(t, err)
	require.NotNil(t, account.LastLogin)
	require.True(t, account.LastLogin.Equal(clock.now))
	require.Zero(t, account.FailedAttempts)
}

func TestLoginUnknownUser(t *testing.T) {
	t.Parallel()

	authenticator, _, _ := newTestAuthenticator(t)
	_, err := authenticator.Login(context.Background(), "nobody", "whatever")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginInactiveAccount(t *testing.T) {
	t.Parallel()

	authenticator, store, _ := newTestAuthenticator(t)
	account := createAccount(t, store, "ana", "pw")
	account.Active = false
	require.NoError(t, store.Accounts.Update(context.Background(), account))

	_, err := authenticator.Login(context.Background(), "ana", "pw")
	require.ErrorIs(t, err, ErrAccountInactive)
}

func TestThreeFailuresLockTheAccount(t *testing.T) {
	t.Parallel()

	authenticator, store, clock := newTestAuthenticator(t)
	createAccount(t, store, "ana", "pw")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := authenticator.Login(ctx, "ana", "wrong")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	}

	account, err := store.Accounts.FindByUsername(ctx, "ana")
	require.NoError(t, err)
	require.Equal(t, 3, account.FailedAttempts)
	require.NotNil(t, account.LockedUntil)
	require.True(t, account.LockedUntil.Equal(clock.now.Add(5*time.Minute)))

	// Locked: even the correct password is rejected without a credential
	// check, and the counter does not move.
	_, err = authenticator.Login(ctx, "ana", "pw")
	require.ErrorIs(t, err, ErrAccountLocked)

	account, err = store.Accounts.FindByUsername(ctx, "ana")
	require.NoError(t, err)
	require.Equal(t, 3, account.FailedAttempts)
}

func TestLockExpiresLazily(t *testing.T) {
	t.Parallel()

	authenticator, store, clock := newTestAuthenticator(t)
	createAccount(t, store, "ana", "pw")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := authenticator.Login(ctx, "ana", "wrong")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	}

	clock.advance(5*time.Minute + time.Second)

	account, err := authenticator.Login(ctx, "ana", "pw")
	require.NoError(t, err)
	require.Zero(t, account.FailedAttempts)
	require.Nil(t, account.LockedUntil)

	stored, err := store.Accounts.FindByUsername(ctx, "ana")
	require.NoError(t, err)
	require.Zero(t, stored.FailedAttempts)
	require.Nil(t, stored.LockedUntil)
}

func TestFailureAfterExpiredLockRelocks(t *testing.T) {
	t.Parallel()

	authenticator, store, clock := newTestAuthenticator(t)
	createAccount(t, store, "ana", "pw")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := authenticator.Login(ctx, "ana", "wrong")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	}
	clock.advance(6 * time.Minute)

	// The expired lock admits a new check; a further failure keeps the
	// counter monotonic and locks again.
	_, err := authenticator.Login(ctx, "ana", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	account, err := store.Accounts.FindByUsername(ctx, "ana")
	require.NoError(t, err)
	require.Equal(t, 4, account.FailedAttempts)
	require.NotNil(t, account.LockedUntil)
	require.True(t, account.LockedUntil.Equal(clock.now.Add(5*time.Minute)))
}

func TestSuccessBeforeThresholdResetsCounter(t *testing.T) {
	t.Parallel()

	authenticator, store, _ := newTestAuthenticator(t)
	createAccount(t, store, "ana", "pw")
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := authenticator.Login(ctx, "ana", "wrong")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	}

	_, err := authenticator.Login(ctx, "ana", "pw")
	require.NoError(t, err)

	account, err := store.Accounts.FindByUsername(ctx, "ana")
	require.NoError(t, err)
	require.Zero(t, account.FailedAttempts)
	require.Nil(t, account.LockedUntil)
}

func TestUnlockClearsLockout(t *testing.T) {
	t.Parallel()

	authenticator, store, _ := newTestAuthenticator(t)
	createAccount(t, store, "ana", "pw")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := authenticator.Login(ctx, "ana", "wrong")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	}

	require.NoError(t, authenticator.Unlock(ctx, "ana"))

	_, err := authenticator.Login(ctx, "ana", "pw")
	require.NoError(t, err)
}
