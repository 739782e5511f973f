package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jeanscarter/clinidesk/internal/model"
	"github.com/jeanscarter/clinidesk/internal/storage"
)

// Lockout window: a fixed constant, not a configuration surface.
const (
	maxFailedAttempts = 3
	lockoutWindow     = 5 * time.Minute
)

var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrAccountLocked      = errors.New("auth: account locked")
	ErrAccountInactive    = errors.New("auth: account inactive")
)

// Authenticator checks staff credentials and drives the per-account lockout
// state machine. State lives in the users row; expiry is lazy, evaluated on
// the next check, with no timers.
type Authenticator struct {
	accounts storage.AccountRepository
	hasher   *Hasher
	clock    Clock
	logger   *slog.Logger
}

func NewAuthenticator(accounts storage.AccountRepository, hasher *Hasher, clock Clock, logger *slog.Logger) *Authenticator {
	if clock == nil {
		clock = realClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Authenticator{
		accounts: accounts,
		hasher:   hasher,
		clock:    clock,
		logger:   logger,
	}
}

// Login verifies the password for username. A locked account whose window has
// not expired is rejected without a credential check. Three consecutive
// failures lock the account for five minutes; any success resets the counter
// and clears the lock.
func (a *Authenticator) Login(ctx context.Context, username, password string) (*model.Account, error) {
	account, err := a.accounts.FindByUsername(ctx, username)
	if err != nil {
		if model.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !account.Active {
		return nil, ErrAccountInactive
	}

	now := a.clock.Now()
	if account.Locked(now) {
		a.logger.Warn("login rejected, account locked",
			slog.String("username", username),
			slog.Time("locked_until", *account.LockedUntil))
		return nil, ErrAccountLocked
	}

	ok, err := a.hasher.Verify(password, account.Salt, account.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify credentials: %w", err)
	}

	if !ok {
		account.FailedAttempts++
		if account.FailedAttempts >= maxFailedAttempts {
			lockedUntil := now.Add(lockoutWindow)
			account.LockedUntil = &lockedUntil
			a.logger.Warn("account locked after repeated failures",
				slog.String("username", username),
				slog.Int("failed_attempts", account.FailedAttempts))
		}
		if err := a.accounts.Update(ctx, account); err != nil {
			return nil, fmt.Errorf("record failed attempt: %w", err)
		}
		return nil, ErrInvalidCredentials
	}

	account.FailedAttempts = 0
	account.LockedUntil = nil
	account.LastLogin = &now
	if err := a.accounts.Update(ctx, account); err != nil {
		return nil, fmt.Errorf("record successful login: %w", err)
	}

	a.logger.Info("login succeeded", slog.String("username", username))
	return account, nil
}

// Unlock clears the lockout state without a credential check, for an
// administrator resetting a colleague's account.
func (a *Authenticator) Unlock(ctx context.Context, username string) error {
	account, err := a.accounts.FindByUsername(ctx, username)
	if err != nil {
		return err
	}
	account.FailedAttempts = 0
	account.LockedUntil = nil
	return a.accounts.Update(ctx, account)
}
