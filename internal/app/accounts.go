/**
 * @description
 * Account management operations: creation with a fresh random account
 * number, admin listing, administrative rename (display name only), and
 * deletion. Balance fields are never touched here; only the transfer
 * orchestrator mutates them.
 */

package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fundme/ledger-service/internal/domain"
	"github.com/fundme/ledger-service/internal/store"
)

var (
	ErrAccountExists = errors.New("account already exists")
	ErrUserNotFound  = errors.New("user does not exist")
)

// CreateAccount opens a new account for the given user. The duplicate
// pre-check keeps the historical error message; the storage-level unique
// constraint on (user, type) is what actually closes the check-then-act
// race under concurrent creation.
func (s *Service) CreateAccount(ctx context.Context, userID uuid.UUID, req domain.CreateAccountRequest) (*domain.Account, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	existing, err := s.repo.FindAccountByTypeAndEmail(ctx, req.Type, req.Email)
	if err != nil && !errors.Is(err, store.ErrAccountNotFound) {
		return nil, fmt.Errorf("failed to check for existing account: %w", err)
	}
	if existing != nil {
		return nil, ErrAccountExists
	}

	account := &domain.Account{
		AccountNumber: newAccountNumber(),
		UserID:        userID,
		Name:          strings.TrimSpace(req.Name),
		Email:         strings.ToLower(strings.TrimSpace(req.Email)),
		Type:          strings.TrimSpace(req.Type),
		Available:     decimal.Zero,
		Total:         decimal.Zero,
	}

	created, err := s.repo.CreateAccount(ctx, account)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateAccount) {
			return nil, ErrAccountExists
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	log.Printf("level=info component=service msg=\"account created\" account_id=%s user_id=%s type=%s", created.ID, userID, created.Type)
	return created, nil
}

// GetAccount returns a single account by id.
func (s *Service) GetAccount(ctx context.Context, accountID uuid.UUID) (*domain.Account, error) {
	account, err := s.repo.FindAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}

// ListAccounts returns every account, newest first.
func (s *Service) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	accounts, err := s.repo.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

// RenameAccount changes an account's display name. Nothing else on the
// account is administratively mutable.
func (s *Service) RenameAccount(ctx context.Context, accountID uuid.UUID, name string) (*domain.Account, error) {
	account, err := s.repo.RenameAccount(ctx, accountID, strings.TrimSpace(name))
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to rename account: %w", err)
	}
	return account, nil
}

// DeleteAccount removes an account entirely. Admin only; ledger entries
// referencing the account are kept for audit.
func (s *Service) DeleteAccount(ctx context.Context, accountID uuid.UUID) error {
	if err := s.repo.DeleteAccount(ctx, accountID); err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("failed to delete account: %w", err)
	}
	log.Printf("level=info component=service msg=\"account deleted\" account_id=%s", accountID)
	return nil
}
