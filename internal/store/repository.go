/**
 * @description
 * This file defines the `Repository` interface, the contract for all data
 * access required by the ledger service, and the `UnitOfWork` abstraction
 * that groups the writes of one transfer into a single atomic unit. Defining
 * interfaces here decouples the business logic from PostgreSQL and lets the
 * application layer be tested against in-memory fakes.
 *
 * @dependencies
 * - context, time: Standard Go libraries.
 * - github.com/google/uuid: For UUID handling.
 * - github.com/shopspring/decimal: For monetary amounts.
 * - internal/domain: For the service's domain models.
 */

package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fundme/ledger-service/internal/domain"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrAccountNotFound    = errors.New("account not found")
	ErrDuplicateUser      = errors.New("user already exists")
	ErrDuplicateAccount   = errors.New("account already exists")
	ErrResetTokenNotFound = errors.New("reset token not found")
)

// UserStore defines data access for users, including the password-reset
// token lifecycle.
type UserStore interface {
	CreateUser(ctx context.Context, user *domain.User) (*domain.User, error)
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
	FindUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	UpdateUserPassword(ctx context.Context, userID uuid.UUID, passwordHash string) error
	DeleteUser(ctx context.Context, userID uuid.UUID) error

	SetResetToken(ctx context.Context, userID uuid.UUID, tokenHash string, at time.Time) error
	FindUserByResetTokenHash(ctx context.Context, tokenHash string) (*domain.User, error)
	ClearResetToken(ctx context.Context, userID uuid.UUID) error
	DeleteExpiredResetTokens(ctx context.Context, cutoff time.Time) (int64, error)
}

// AccountStore defines data access for accounts. Balance mutation is
// expressed exclusively as a relative delta applied atomically at the
// storage layer, so concurrent transfers against the same account never
// lose updates.
type AccountStore interface {
	CreateAccount(ctx context.Context, account *domain.Account) (*domain.Account, error)
	FindAccountByUserID(ctx context.Context, userID uuid.UUID) (*domain.Account, error)
	FindAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error)
	FindAccountByID(ctx context.Context, accountID uuid.UUID) (*domain.Account, error)
	FindAccountByTypeAndEmail(ctx context.Context, accountType, email string) (*domain.Account, error)
	ListAccounts(ctx context.Context) ([]domain.Account, error)
	RenameAccount(ctx context.Context, accountID uuid.UUID, name string) (*domain.Account, error)
	DeleteAccount(ctx context.Context, accountID uuid.UUID) error

	// ApplyBalanceDelta atomically increments both balance fields and stamps
	// the account's date of last action. Deltas may be negative.
	ApplyBalanceDelta(ctx context.Context, accountID uuid.UUID, availableDelta, totalDelta decimal.Decimal, at time.Time) (*domain.Account, error)
}

// TransactionStore defines data access for ledger entries. The ledger is
// append-only: there are no update or delete operations.
type TransactionStore interface {
	CreateTransaction(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error)
}

// UnitOfWork scopes a group of writes against the account and transaction
// stores to one atomic unit: either every write persists or none do.
// Exactly one of Commit or Rollback must be reached on every path; calling
// Rollback after a successful Commit is a no-op, so callers can safely
// `defer uow.Rollback(ctx)` immediately after Begin.
type UnitOfWork interface {
	Accounts() AccountStore
	Transactions() TransactionStore
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Repository is the full data access contract: plain reads and single
// writes execute against the pool, while Begin opens a transactional unit
// of work spanning both ledger collections.
type Repository interface {
	UserStore
	AccountStore
	TransactionStore

	Begin(ctx context.Context) (UnitOfWork, error)
}
