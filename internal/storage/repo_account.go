package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jeanscarter/clinidesk/internal/model"
)

type accountRepository struct {
	provider *Provider
}

const accountColumns = `id, username, password_hash, salt, role, full_name, active, created_at, last_login, failed_attempts, locked_until`

func (r *accountRepository) Save(ctx context.Context, account *model.Account) error {
	if account == nil {
		return fmt.Errorf("save account: account is nil")
	}
	db, err := r.provider.DB(ctx)
	if err != nil {
		return err
	}

	if account.CreatedAt.IsZero() {
		account.CreatedAt = nowUTC()
	}

	result, err := db.ExecContext(ctx, `
		INSERT INTO users(username, password_hash, salt, role, full_name, active, created_at, last_login, failed_attempts, locked_until)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, account.Username, account.PasswordHash, account.Salt, string(account.Role), account.FullName,
		boolToInt(account.Active), fmtTime(account.CreatedAt), fmtNullableTime(account.LastLogin),
		account.FailedAttempts, fmtNullableTime(account.LockedUntil))
	if err != nil {
		return translateConstraint("users", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return model.NewStorage("users", fmt.Errorf("last insert id: %w", err))
	}
	account.ID = id
	return nil
}

func (r *accountRepository) FindByID(ctx context.Context, id int64) (*model.Account, error) {
	db, err := r.provider.DB(ctx)
	if err != nil {
		return nil, err
	}

	row := db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM users WHERE id = ?`, id)
	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.NewNotFound("users", id)
		}
		return nil, model.NewStorage("users", err)
	}
	return account, nil
}

func (r *accountRepository) FindByUsername(ctx context.Context, username string) (*model.Account, error) {
	db, err := r.provider.DB(ctx)
	if err != nil {
		return nil, err
	}

	row := db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM users WHERE username = ?`, username)
	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &model.Error{Kind: model.KindNotFound, Entity: "users", Field: "username"}
		}
		return nil, model.NewStorage("users", err)
	}
	return account, nil
}

func (r *accountRepository) FindAll(ctx context.Context) ([]model.Account, error) {
	db, err := r.provider.DB(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT `+accountColumns+` FROM users ORDER BY username, id`)
	if err != nil {
		return nil, model.NewStorage("users", err)
	}
	defer rows.Close()

	var out []model.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, model.NewStorage("users", err)
		}
		out = append(out, *account)
	}
	if err := rows.Err(); err != nil {
		return nil, model.NewStorage("users", fmt.Errorf("iterate: %w", err))
	}
	return out, nil
}

func (r *accountRepository) Update(ctx context.Context, account *model.Account) error {
	if account == nil {
		return fmt.Errorf("update account: account is nil")
	}
	if account.ID <= 0 {
		return model.NewNotFound("users", account.ID)
	}
	db, err := r.provider.DB(ctx)
	if err != nil {
		return err
	}

	result, err := db.ExecContext(ctx, `
		UPDATE users
		SET username = ?, password_hash = ?, salt = ?, role = ?, full_name = ?, active = ?, created_at = ?, last_login = ?, failed_attempts = ?, locked_until = ?
		WHERE id = ?
	`, account.Username, account.PasswordHash, account.Salt, string(account.Role), account.FullName,
		boolToInt(account.Active), fmtTime(account.CreatedAt), fmtNullableTime(account.LastLogin),
		account.FailedAttempts, fmtNullableTime(account.LockedUntil), account.ID)
	if err != nil {
		return translateConstraint("users", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return model.NewStorage("users", fmt.Errorf("rows affected: %w", err))
	}
	if count == 0 {
		return model.NewNotFound("users", account.ID)
	}
	return nil
}

func (r *accountRepository) Delete(ctx context.Context, id int64) error {
	db, err := r.provider.DB(ctx)
	if err != nil {
		return err
	}

	result, err := db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return model.NewStorage("users", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return model.NewStorage("users", fmt.Errorf("rows affected: %w", err))
	}
	if count == 0 {
		return model.NewNotFound("users", id)
	}
	return nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func scanAccount(scanner rowScanner) (*model.Account, error) {
	var (
		account     model.Account
		role        string
		active      int
		createdAt   string
		lastLogin   sql.NullString
		lockedUntil sql.NullString
	)
	if err := scanner.Scan(&account.ID, &account.Username, &account.PasswordHash, &account.Salt, &role,
		&account.FullName, &active, &createdAt, &lastLogin, &account.FailedAttempts, &lockedUntil); err != nil {
		return nil, err
	}

	created, err := parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	account.CreatedAt = created
	account.Role = model.Role(role)
	account.Active = active != 0

	if account.LastLogin, err = parseNullableTime(lastLogin); err != nil {
		return nil, err
	}
	if account.LockedUntil, err = parseNullableTime(lockedUntil); err != nil {
		return nil, err
	}
	return &account, nil
}
