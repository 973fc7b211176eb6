/**
 * @description
 * This file provides the PostgreSQL implementation of the `Repository`
 * interface. All query methods are defined on an inner `queries` type bound
 * to a querier that is either the connection pool (for standalone calls) or
 * an open pgx.Tx (for calls inside a unit of work), so the same SQL runs in
 * both contexts.
 *
 * @dependencies
 * - context, errors, fmt, time: Standard Go libraries.
 * - github.com/jackc/pgx/v5: The PostgreSQL driver.
 * - github.com/shopspring/decimal: Monetary amounts.
 * - internal/domain: Domain models used for data transfer.
 */

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/fundme/ledger-service/internal/domain"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository is the concrete Repository backed by a pgx pool.
type PostgresRepository struct {
	pool *pgxpool.Pool
	queries
}

// NewPostgresRepository creates a new PostgresRepository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool, queries: queries{db: pool}}
}

// Begin opens a database transaction and returns a unit of work whose
// account and transaction stores are bound to it.
func (r *PostgresRepository) Begin(ctx context.Context) (UnitOfWork, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &postgresUnitOfWork{tx: tx, queries: queries{db: tx}}, nil
}

// postgresUnitOfWork wraps an open pgx.Tx. Rollback after a successful
// Commit is swallowed so callers can defer it unconditionally.
type postgresUnitOfWork struct {
	tx pgx.Tx
	queries
}

func (u *postgresUnitOfWork) Accounts() AccountStore           { return &u.queries }
func (u *postgresUnitOfWork) Transactions() TransactionStore   { return &u.queries }
func (u *postgresUnitOfWork) Commit(ctx context.Context) error { return u.tx.Commit(ctx) }

func (u *postgresUnitOfWork) Rollback(ctx context.Context) error {
	if err := u.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return err
	}
	return nil
}

type queries struct {
	db querier
}

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

func (q *queries) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	query := `
		INSERT INTO users (id, first_name, last_name, email, password_hash, is_admin)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`
	err := q.db.QueryRow(ctx, query,
		user.ID, user.FirstName, user.LastName, user.Email, user.PasswordHash, user.IsAdmin,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateUser
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

const userColumns = `id, first_name, last_name, email, password_hash, is_admin, reset_token_hash, reset_token_date, created_at, updated_at`

func (q *queries) scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID, &user.FirstName, &user.LastName, &user.Email, &user.PasswordHash,
		&user.IsAdmin, &user.ResetTokenHash, &user.ResetTokenDate, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (q *queries) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	return q.scanUser(q.db.QueryRow(ctx, query, email))
}

func (q *queries) FindUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return q.scanUser(q.db.QueryRow(ctx, query, userID))
}

func (q *queries) ListUsers(ctx context.Context) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`
	rows, err := q.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(
			&user.ID, &user.FirstName, &user.LastName, &user.Email, &user.PasswordHash,
			&user.IsAdmin, &user.ResetTokenHash, &user.ResetTokenDate, &user.CreatedAt, &user.UpdatedAt,
		); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (q *queries) UpdateUserPassword(ctx context.Context, userID uuid.UUID, passwordHash string) error {
	query := `UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`
	tag, err := q.db.Exec(ctx, query, userID, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (q *queries) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	tag, err := q.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (q *queries) SetResetToken(ctx context.Context, userID uuid.UUID, tokenHash string, at time.Time) error {
	query := `UPDATE users SET reset_token_hash = $2, reset_token_date = $3, updated_at = NOW() WHERE id = $1`
	tag, err := q.db.Exec(ctx, query, userID, tokenHash, at)
	if err != nil {
		return fmt.Errorf("failed to set reset token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (q *queries) FindUserByResetTokenHash(ctx context.Context, tokenHash string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE reset_token_hash = $1`
	user, err := q.scanUser(q.db.QueryRow(ctx, query, tokenHash))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrResetTokenNotFound
		}
		return nil, err
	}
	return user, nil
}

func (q *queries) ClearResetToken(ctx context.Context, userID uuid.UUID) error {
	query := `UPDATE users SET reset_token_hash = NULL, reset_token_date = NULL, updated_at = NOW() WHERE id = $1`
	if _, err := q.db.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to clear reset token: %w", err)
	}
	return nil
}

func (q *queries) DeleteExpiredResetTokens(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		UPDATE users
		SET reset_token_hash = NULL, reset_token_date = NULL, updated_at = NOW()
		WHERE reset_token_hash IS NOT NULL AND reset_token_date < $1
	`
	tag, err := q.db.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired reset tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ---------------------------------------------------------------------------
// Accounts
// ---------------------------------------------------------------------------

const accountColumns = `id, account_num, user_id, name, email, type, available, total, date_of_last_action, created_at, updated_at`

func (q *queries) scanAccount(row pgx.Row) (*domain.Account, error) {
	var account domain.Account
	err := row.Scan(
		&account.ID, &account.AccountNumber, &account.UserID, &account.Name, &account.Email,
		&account.Type, &account.Available, &account.Total, &account.DateOfLastAction,
		&account.CreatedAt, &account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

func (q *queries) CreateAccount(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	// The unique constraint on (user_id, type) is the authoritative duplicate
	// check; the application pre-check only exists for a friendlier message.
	query := `
		INSERT INTO accounts (id, account_num, user_id, name, email, type, available, total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`
	err := q.db.QueryRow(ctx, query,
		account.ID, account.AccountNumber, account.UserID, account.Name,
		account.Email, account.Type, account.Available, account.Total,
	).Scan(&account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateAccount
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return account, nil
}

func (q *queries) FindAccountByUserID(ctx context.Context, userID uuid.UUID) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1`
	return q.scanAccount(q.db.QueryRow(ctx, query, userID))
}

func (q *queries) FindAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_num = $1`
	return q.scanAccount(q.db.QueryRow(ctx, query, accountNumber))
}

func (q *queries) FindAccountByID(ctx context.Context, accountID uuid.UUID) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return q.scanAccount(q.db.QueryRow(ctx, query, accountID))
}

func (q *queries) FindAccountByTypeAndEmail(ctx context.Context, accountType, email string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE type = $1 AND lower(email) = lower($2)`
	return q.scanAccount(q.db.QueryRow(ctx, query, accountType, email))
}

func (q *queries) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY created_at DESC`
	rows, err := q.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		var account domain.Account
		if err := rows.Scan(
			&account.ID, &account.AccountNumber, &account.UserID, &account.Name, &account.Email,
			&account.Type, &account.Available, &account.Total, &account.DateOfLastAction,
			&account.CreatedAt, &account.UpdatedAt,
		); err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

func (q *queries) RenameAccount(ctx context.Context, accountID uuid.UUID, name string) (*domain.Account, error) {
	query := `
		UPDATE accounts SET name = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + accountColumns
	return q.scanAccount(q.db.QueryRow(ctx, query, accountID, name))
}

func (q *queries) DeleteAccount(ctx context.Context, accountID uuid.UUID) error {
	tag, err := q.db.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, accountID)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// ApplyBalanceDelta increments both balance fields in a single statement so
// concurrent transfers against the same account serialize at the row level
// instead of losing updates to read-modify-write races.
func (q *queries) ApplyBalanceDelta(ctx context.Context, accountID uuid.UUID, availableDelta, totalDelta decimal.Decimal, at time.Time) (*domain.Account, error) {
	query := `
		UPDATE accounts
		SET available = available + $2,
		    total = total + $3,
		    date_of_last_action = $4,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + accountColumns
	return q.scanAccount(q.db.QueryRow(ctx, query, accountID, availableDelta, totalDelta, at))
}

// ---------------------------------------------------------------------------
// Transactions
// ---------------------------------------------------------------------------

func (q *queries) CreateTransaction(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	query := `
		INSERT INTO transactions (id, ref_no, trans_type, trans_date, amount, charge, total_amount, status, user_id, account_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`
	err := q.db.QueryRow(ctx, query,
		tx.ID, tx.RefNo, tx.TransType, tx.TransDate, tx.Amount, tx.Charge,
		tx.TotalAmount, tx.Status, tx.UserID, tx.AccountID,
	).Scan(&tx.CreatedAt, &tx.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	return tx, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
