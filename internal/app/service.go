/**
 * @description
 * This file contains the core application service for the ledger: the
 * transfer orchestrator. Given an authenticated caller, a funding mode, and
 * an amount, it validates preconditions, computes the charge, and persists
 * the ledger entry plus one or two balance mutations as a single atomic unit
 * of work. A failure at any step before commit discards every write.
 *
 * @dependencies
 * - context, errors, fmt, log, strings, time: Standard Go libraries.
 * - github.com/google/uuid, github.com/shopspring/decimal: Ids and amounts.
 * - internal/domain, internal/store: Domain models and persistence contracts.
 * - pkg/rabbitmq: Post-commit event publishing.
 */

package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fundme/ledger-service/internal/domain"
	"github.com/fundme/ledger-service/internal/store"
	"github.com/fundme/ledger-service/pkg/rabbitmq"
)

// Domain validation errors surfaced to the API boundary. The three distinct
// not-found variants preserve the endpoint's historical messages for the
// caller-owned, recipient, and generic lookups.
var (
	ErrUnauthenticated          = errors.New("unauthenticated user")
	ErrAmountRequired           = errors.New("provide the amount")
	ErrFlagRequired             = errors.New("provide a flag")
	ErrInvalidFlag              = errors.New("invalid flag")
	ErrAccountNumberRequired    = errors.New("provide the account number")
	ErrAccountNotFound          = errors.New("account does not exist")
	ErrSenderAccountNotFound    = errors.New("your account does not exist")
	ErrRecipientAccountNotFound = errors.New("other account does not exist")
	ErrRateLimited              = errors.New("too many transfer attempts")
)

// RateLimiter gates transfer traffic per caller. A nil limiter disables
// rate limiting entirely.
type RateLimiter interface {
	ConsumeRateLimit(ctx context.Context, scope, subject string, limit int, window time.Duration) (count int, retryAfterSeconds int, err error)
}

// Service holds the dependencies and settings of the ledger's business logic.
type Service struct {
	repo     store.Repository
	producer rabbitmq.Publisher
	limiter  RateLimiter

	jwtSecret     []byte
	tokenTTL      time.Duration
	resetTokenTTL time.Duration

	transferRateLimit  int
	transferRateWindow time.Duration
}

// NewService creates the application service.
func NewService(
	repo store.Repository,
	producer rabbitmq.Publisher,
	limiter RateLimiter,
	jwtSecret string,
	tokenTTL time.Duration,
	resetTokenTTL time.Duration,
	transferRateLimit int,
	transferRateWindow time.Duration,
) *Service {
	return &Service{
		repo:               repo,
		producer:           producer,
		limiter:            limiter,
		jwtSecret:          []byte(jwtSecret),
		tokenTTL:           tokenTTL,
		resetTokenTTL:      resetTokenTTL,
		transferRateLimit:  transferRateLimit,
		transferRateWindow: transferRateWindow,
	}
}

// FundParams carries an already-typed funding request into the orchestrator.
type FundParams struct {
	UserID     uuid.UUID
	Amount     decimal.Decimal
	Flag       string
	AccountNum string
}

// WithdrawParams carries a withdrawal request.
type WithdrawParams struct {
	UserID uuid.UUID
	Amount decimal.Decimal
}

// Fund moves money into an account. With the `my_account` flag the caller
// funds their own account; with `other_account` the caller sends to the
// account identified by AccountNum. Preconditions are checked in order and
// the first failure wins.
func (s *Service) Fund(ctx context.Context, p FundParams) (*domain.Transaction, error) {
	if p.UserID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	if p.Amount.Sign() <= 0 {
		return nil, ErrAmountRequired
	}
	switch p.Flag {
	case "":
		return nil, ErrFlagRequired
	case domain.FundModeSelf, domain.FundModeOther:
	default:
		return nil, ErrInvalidFlag
	}
	if p.Flag == domain.FundModeOther && strings.TrimSpace(p.AccountNum) == "" {
		return nil, ErrAccountNumberRequired
	}

	if err := s.consumeTransferLimit(ctx, "fund", p.UserID); err != nil {
		return nil, err
	}

	if p.Flag == domain.FundModeSelf {
		return s.fundSelf(ctx, p.UserID, p.Amount)
	}
	return s.fundOther(ctx, p.UserID, p.Amount, strings.TrimSpace(p.AccountNum))
}

func (s *Service) fundSelf(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*domain.Transaction, error) {
	account, err := s.repo.FindAccountByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to resolve caller account: %w", err)
	}

	result := calculateCharge(amount, creditSelf)
	now := time.Now().UTC()
	entry := &domain.Transaction{
		RefNo:       newRefNo(),
		TransType:   result.TransType,
		TransDate:   now,
		Amount:      amount,
		Charge:      result.Charge,
		TotalAmount: result.TotalAmount,
		Status:      domain.TransStatusSuccess,
		UserID:      userID,
		AccountID:   account.ID,
	}

	uow, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open unit of work: %w", err)
	}
	defer uow.Rollback(ctx)

	created, err := uow.Transactions().CreateTransaction(ctx, entry)
	if err != nil {
		return nil, fmt.Errorf("failed to record transaction: %w", err)
	}
	if _, err := uow.Accounts().ApplyBalanceDelta(ctx, account.ID, result.TotalAmount, result.TotalAmount, now); err != nil {
		return nil, fmt.Errorf("failed to apply balance delta: %w", err)
	}
	if err := uow.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transfer: %w", err)
	}

	log.Printf("level=info component=service msg=\"self fund committed\" user_id=%s account_id=%s ref_no=%s amount=%s charge=%s",
		userID, account.ID, created.RefNo, amount, result.Charge)
	s.publishTransferEvent(ctx, created)
	return created, nil
}

// fundOther credits the recipient and debits the sender by the same net
// amount. The ledger record is attributed to the sender's account; the
// charge is borne once, on the record, never double-applied to balances.
func (s *Service) fundOther(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, accountNum string) (*domain.Transaction, error) {
	sender, err := s.repo.FindAccountByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			return nil, ErrSenderAccountNotFound
		}
		return nil, fmt.Errorf("failed to resolve sender account: %w", err)
	}

	recipient, err := s.repo.FindAccountByNumber(ctx, accountNum)
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			return nil, ErrRecipientAccountNotFound
		}
		return nil, fmt.Errorf("failed to resolve recipient account: %w", err)
	}

	result := calculateCharge(amount, debitToOther)
	now := time.Now().UTC()
	entry := &domain.Transaction{
		RefNo:       newRefNo(),
		TransType:   result.TransType,
		TransDate:   now,
		Amount:      amount,
		Charge:      result.Charge,
		TotalAmount: result.TotalAmount,
		Status:      domain.TransStatusSuccess,
		UserID:      userID,
		AccountID:   sender.ID,
	}

	uow, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open unit of work: %w", err)
	}
	defer uow.Rollback(ctx)

	created, err := uow.Transactions().CreateTransaction(ctx, entry)
	if err != nil {
		return nil, fmt.Errorf("failed to record transaction: %w", err)
	}
	if _, err := uow.Accounts().ApplyBalanceDelta(ctx, recipient.ID, result.TotalAmount, result.TotalAmount, now); err != nil {
		return nil, fmt.Errorf("failed to credit recipient: %w", err)
	}
	if _, err := uow.Accounts().ApplyBalanceDelta(ctx, sender.ID, result.TotalAmount.Neg(), result.TotalAmount.Neg(), now); err != nil {
		return nil, fmt.Errorf("failed to debit sender: %w", err)
	}
	if err := uow.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transfer: %w", err)
	}

	log.Printf("level=info component=service msg=\"transfer committed\" sender_account=%s recipient_account=%s ref_no=%s amount=%s charge=%s",
		sender.ID, recipient.ID, created.RefNo, amount, result.Charge)
	s.publishTransferEvent(ctx, created)
	return created, nil
}

// Withdraw subtracts the full amount from the caller's own account. No
// charge rule applies to withdrawals.
func (s *Service) Withdraw(ctx context.Context, p WithdrawParams) (*domain.Transaction, error) {
	if p.UserID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	if p.Amount.Sign() <= 0 {
		return nil, ErrAmountRequired
	}

	if err := s.consumeTransferLimit(ctx, "withdraw", p.UserID); err != nil {
		return nil, err
	}

	account, err := s.repo.FindAccountByUserID(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to resolve caller account: %w", err)
	}

	now := time.Now().UTC()
	entry := &domain.Transaction{
		RefNo:       newRefNo(),
		TransType:   domain.TransTypeDebit,
		TransDate:   now,
		Amount:      p.Amount,
		Charge:      decimal.Zero,
		TotalAmount: p.Amount,
		Status:      domain.TransStatusSuccess,
		UserID:      p.UserID,
		AccountID:   account.ID,
	}

	uow, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open unit of work: %w", err)
	}
	defer uow.Rollback(ctx)

	created, err := uow.Transactions().CreateTransaction(ctx, entry)
	if err != nil {
		return nil, fmt.Errorf("failed to record transaction: %w", err)
	}
	if _, err := uow.Accounts().ApplyBalanceDelta(ctx, account.ID, p.Amount.Neg(), p.Amount.Neg(), now); err != nil {
		return nil, fmt.Errorf("failed to apply balance delta: %w", err)
	}
	if err := uow.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit withdrawal: %w", err)
	}

	log.Printf("level=info component=service msg=\"withdrawal committed\" user_id=%s account_id=%s ref_no=%s amount=%s",
		p.UserID, account.ID, created.RefNo, p.Amount)
	s.publishTransferEvent(ctx, created)
	return created, nil
}

// consumeTransferLimit applies the per-user fixed window. Limiter failures
// are logged and the request is allowed through; rate limiting is a guard
// rail, not a correctness dependency.
func (s *Service) consumeTransferLimit(ctx context.Context, scope string, userID uuid.UUID) error {
	if s.limiter == nil || s.transferRateLimit <= 0 {
		return nil
	}
	count, retryAfter, err := s.limiter.ConsumeRateLimit(ctx, scope, userID.String(), s.transferRateLimit, s.transferRateWindow)
	if err != nil {
		log.Printf("level=warn component=service msg=\"rate limiter unavailable; allowing request\" scope=%s err=%v", scope, err)
		return nil
	}
	if count > s.transferRateLimit {
		log.Printf("level=warn component=service msg=\"transfer rate limited\" scope=%s user_id=%s retry_after=%d", scope, userID, retryAfter)
		return ErrRateLimited
	}
	return nil
}

// publishTransferEvent emits a post-commit notification. The transfer has
// already taken effect; a publish failure must never roll it back.
func (s *Service) publishTransferEvent(ctx context.Context, tx *domain.Transaction) {
	if s.producer == nil {
		return
	}
	event := rabbitmq.TransferEvent{
		TransactionID: tx.ID,
		RefNo:         tx.RefNo,
		UserID:        tx.UserID,
		AccountID:     tx.AccountID,
		TransType:     tx.TransType,
		Amount:        tx.Amount.String(),
		Charge:        tx.Charge.String(),
		TotalAmount:   tx.TotalAmount.String(),
		Timestamp:     tx.TransDate,
	}
	if err := s.producer.PublishTransferEvent(ctx, event); err != nil {
		log.Printf("level=warn component=service msg=\"transfer event publish failed\" ref_no=%s err=%v", tx.RefNo, err)
	}
}

// newRefNo returns a short uppercase hex reference for human display. It is
// not guaranteed globally unique and must never be used as a key.
func newRefNo() string {
	buf := make([]byte, 5)
	if _, err := rand.Read(buf); err != nil {
		return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
	}
	return strings.ToUpper(hex.EncodeToString(buf))
}

// newAccountNumber returns a random ten-digit numeric account number.
func newAccountNumber() string {
	max := big.NewInt(0).Exp(big.NewInt(10), big.NewInt(10), nil)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		n = big.NewInt(time.Now().UnixNano())
	}
	return fmt.Sprintf("%010d", n)
}
