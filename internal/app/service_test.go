package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fundme/ledger-service/internal/domain"
)

func TestFundSelfBelowThreshold(t *testing.T) {
	repo := newFakeRepo()
	userID := uuid.New()
	account := repo.addAccount(userID, "0000000001", "100")
	svc := newTestService(repo)

	created, err := svc.Fund(context.Background(), FundParams{
		UserID: userID,
		Amount: decimal.RequireFromString("5000"),
		Flag:   domain.FundModeSelf,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if created.TransType != domain.TransTypeCredit {
		t.Fatalf("expected credit, got %q", created.TransType)
	}
	if !created.Charge.IsZero() {
		t.Fatalf("expected zero charge, got %s", created.Charge)
	}
	if !created.TotalAmount.Equal(decimal.RequireFromString("5000")) {
		t.Fatalf("expected total 5000, got %s", created.TotalAmount)
	}
	if got := repo.balanceOf(account.ID); !got.Equal(decimal.RequireFromString("5100")) {
		t.Fatalf("expected balance 5100, got %s", got)
	}
	if len(repo.transactions) != 1 {
		t.Fatalf("expected one ledger entry, got %d", len(repo.transactions))
	}
	if got := len(repo.transactions[0].RefNo); got != 10 {
		t.Fatalf("expected 10-character reference, got %d", got)
	}
}

func TestFundSelfAboveThresholdDeductsCharge(t *testing.T) {
	repo := newFakeRepo()
	userID := uuid.New()
	account := repo.addAccount(userID, "0000000001", "0")
	svc := newTestService(repo)

	created, err := svc.Fund(context.Background(), FundParams{
		UserID: userID,
		Amount: decimal.RequireFromString("250000"),
		Flag:   domain.FundModeSelf,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !created.Charge.Equal(decimal.RequireFromString("50")) {
		t.Fatalf("expected charge 50, got %s", created.Charge)
	}
	if !created.TotalAmount.Equal(decimal.RequireFromString("249950")) {
		t.Fatalf("expected total 249950, got %s", created.TotalAmount)
	}
	if got := repo.balanceOf(account.ID); !got.Equal(decimal.RequireFromString("249950")) {
		t.Fatalf("expected balance 249950, got %s", got)
	}
}

func TestFundOtherConservesMoney(t *testing.T) {
	repo := newFakeRepo()
	senderID := uuid.New()
	recipientID := uuid.New()
	sender := repo.addAccount(senderID, "1111111111", "500000")
	recipient := repo.addAccount(recipientID, "2222222222", "1000")
	svc := newTestService(repo)

	created, err := svc.Fund(context.Background(), FundParams{
		UserID:     senderID,
		Amount:     decimal.RequireFromString("20000"),
		Flag:       domain.FundModeOther,
		AccountNum: "2222222222",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 20000 over the threshold nets 19950 after the flat charge.
	net := decimal.RequireFromString("19950")
	if got := repo.balanceOf(recipient.ID); !got.Equal(decimal.RequireFromString("1000").Add(net)) {
		t.Fatalf("expected recipient balance 20950, got %s", got)
	}
	if got := repo.balanceOf(sender.ID); !got.Equal(decimal.RequireFromString("500000").Sub(net)) {
		t.Fatalf("expected sender balance 480050, got %s", got)
	}

	if created.TransType != domain.TransTypeDebit {
		t.Fatalf("expected debit label, got %q", created.TransType)
	}
	if created.UserID != senderID || created.AccountID != sender.ID {
		t.Fatalf("expected ledger entry attributed to sender, got user=%s account=%s", created.UserID, created.AccountID)
	}
	if len(repo.transactions) != 1 {
		t.Fatalf("expected exactly one ledger entry, got %d", len(repo.transactions))
	}
}

func TestFundOtherSmallAmountNoCharge(t *testing.T) {
	repo := newFakeRepo()
	senderID := uuid.New()
	sender := repo.addAccount(senderID, "1111111111", "1000")
	recipient := repo.addAccount(uuid.New(), "2222222222", "0")
	svc := newTestService(repo)

	created, err := svc.Fund(context.Background(), FundParams{
		UserID:     senderID,
		Amount:     decimal.RequireFromString("1000"),
		Flag:       domain.FundModeOther,
		AccountNum: "2222222222",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !created.Charge.IsZero() {
		t.Fatalf("expected zero charge, got %s", created.Charge)
	}
	if got := repo.balanceOf(recipient.ID); !got.Equal(decimal.RequireFromString("1000")) {
		t.Fatalf("expected recipient balance 1000, got %s", got)
	}
	if got := repo.balanceOf(sender.ID); !got.IsZero() {
		t.Fatalf("expected sender balance 0, got %s", got)
	}
}

func TestFundValidationOrder(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	userID := uuid.New()
	repo.addAccount(userID, "0000000001", "0")

	tests := []struct {
		name    string
		params  FundParams
		wantErr error
	}{
		{
			name:    "missing user wins over everything",
			params:  FundParams{Amount: decimal.Zero, Flag: "bogus"},
			wantErr: ErrUnauthenticated,
		},
		{
			name:    "missing amount",
			params:  FundParams{UserID: userID, Flag: domain.FundModeSelf},
			wantErr: ErrAmountRequired,
		},
		{
			name:    "negative amount",
			params:  FundParams{UserID: userID, Amount: decimal.RequireFromString("-5"), Flag: domain.FundModeSelf},
			wantErr: ErrAmountRequired,
		},
		{
			name:    "missing flag",
			params:  FundParams{UserID: userID, Amount: decimal.RequireFromString("100")},
			wantErr: ErrFlagRequired,
		},
		{
			name:    "invalid flag",
			params:  FundParams{UserID: userID, Amount: decimal.RequireFromString("100"), Flag: "someone_elses_account"},
			wantErr: ErrInvalidFlag,
		},
		{
			name:    "other account without number",
			params:  FundParams{UserID: userID, Amount: decimal.RequireFromString("100"), Flag: domain.FundModeOther},
			wantErr: ErrAccountNumberRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Fund(context.Background(), tt.params)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	if len(repo.transactions) != 0 {
		t.Fatalf("validation failures must not write ledger entries, got %d", len(repo.transactions))
	}
}

func TestFundAccountLookupFailures(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	orphanID := uuid.New()

	_, err := svc.Fund(context.Background(), FundParams{
		UserID: orphanID,
		Amount: decimal.RequireFromString("100"),
		Flag:   domain.FundModeSelf,
	})
	if !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}

	_, err = svc.Fund(context.Background(), FundParams{
		UserID:     orphanID,
		Amount:     decimal.RequireFromString("100"),
		Flag:       domain.FundModeOther,
		AccountNum: "2222222222",
	})
	if !errors.Is(err, ErrSenderAccountNotFound) {
		t.Fatalf("expected ErrSenderAccountNotFound, got %v", err)
	}

	senderID := uuid.New()
	repo.addAccount(senderID, "1111111111", "1000")
	_, err = svc.Fund(context.Background(), FundParams{
		UserID:     senderID,
		Amount:     decimal.RequireFromString("100"),
		Flag:       domain.FundModeOther,
		AccountNum: "9999999999",
	})
	if !errors.Is(err, ErrRecipientAccountNotFound) {
		t.Fatalf("expected ErrRecipientAccountNotFound, got %v", err)
	}
}

func TestFundOtherRollsBackOnDebitFailure(t *testing.T) {
	repo := newFakeRepo()
	senderID := uuid.New()
	recipientID := uuid.New()
	sender := repo.addAccount(senderID, "1111111111", "500")
	recipient := repo.addAccount(recipientID, "2222222222", "500")
	repo.deltaErr[sender.ID] = errors.New("disk on fire")
	svc := newTestService(repo)

	_, err := svc.Fund(context.Background(), FundParams{
		UserID:     senderID,
		Amount:     decimal.RequireFromString("100"),
		Flag:       domain.FundModeOther,
		AccountNum: "2222222222",
	})
	if err == nil {
		t.Fatal("expected an error when the debit leg fails")
	}

	if len(repo.transactions) != 0 {
		t.Fatalf("aborted transfer must leave no ledger entries, got %d", len(repo.transactions))
	}
	if got := repo.balanceOf(recipient.ID); !got.Equal(decimal.RequireFromString("500")) {
		t.Fatalf("aborted transfer must leave recipient untouched, got %s", got)
	}
	if got := repo.balanceOf(sender.ID); !got.Equal(decimal.RequireFromString("500")) {
		t.Fatalf("aborted transfer must leave sender untouched, got %s", got)
	}
}

func TestWithdrawDebitsFullAmount(t *testing.T) {
	repo := newFakeRepo()
	userID := uuid.New()
	account := repo.addAccount(userID, "0000000001", "50000")
	svc := newTestService(repo)

	created, err := svc.Withdraw(context.Background(), WithdrawParams{
		UserID: userID,
		Amount: decimal.RequireFromString("20000"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if created.TransType != domain.TransTypeDebit {
		t.Fatalf("expected debit, got %q", created.TransType)
	}
	if !created.Charge.IsZero() {
		t.Fatalf("withdrawals carry no charge, got %s", created.Charge)
	}
	if got := repo.balanceOf(account.ID); !got.Equal(decimal.RequireFromString("30000")) {
		t.Fatalf("expected balance 30000, got %s", got)
	}
}

func TestWithdrawValidation(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	if _, err := svc.Withdraw(context.Background(), WithdrawParams{Amount: decimal.RequireFromString("10")}); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if _, err := svc.Withdraw(context.Background(), WithdrawParams{UserID: uuid.New()}); !errors.Is(err, ErrAmountRequired) {
		t.Fatalf("expected ErrAmountRequired, got %v", err)
	}
	if _, err := svc.Withdraw(context.Background(), WithdrawParams{UserID: uuid.New(), Amount: decimal.RequireFromString("10")}); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestFundRateLimited(t *testing.T) {
	repo := newFakeRepo()
	userID := uuid.New()
	repo.addAccount(userID, "0000000001", "0")
	limiter := &fakeLimiter{count: 31}
	svc := NewService(repo, nil, limiter, "test-secret", time.Hour, 30*time.Minute, 30, time.Minute)

	_, err := svc.Fund(context.Background(), FundParams{
		UserID: userID,
		Amount: decimal.RequireFromString("100"),
		Flag:   domain.FundModeSelf,
	})
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if len(repo.transactions) != 0 {
		t.Fatalf("rate limited request must not write, got %d entries", len(repo.transactions))
	}
}

func TestFundAllowedWhenLimiterFails(t *testing.T) {
	repo := newFakeRepo()
	userID := uuid.New()
	repo.addAccount(userID, "0000000001", "0")
	limiter := &fakeLimiter{err: errors.New("redis unreachable")}
	svc := NewService(repo, nil, limiter, "test-secret", time.Hour, 30*time.Minute, 30, time.Minute)

	if _, err := svc.Fund(context.Background(), FundParams{
		UserID: userID,
		Amount: decimal.RequireFromString("100"),
		Flag:   domain.FundModeSelf,
	}); err != nil {
		t.Fatalf("limiter outage must not block transfers, got %v", err)
	}
	if limiter.calls != 1 {
		t.Fatalf("expected one limiter call, got %d", limiter.calls)
	}
}

func TestFundPublishesTransferEvent(t *testing.T) {
	repo := newFakeRepo()
	userID := uuid.New()
	repo.addAccount(userID, "0000000001", "0")
	producer := &fakeProducer{}
	svc := NewService(repo, producer, nil, "test-secret", time.Hour, 30*time.Minute, 0, time.Minute)

	created, err := svc.Fund(context.Background(), FundParams{
		UserID: userID,
		Amount: decimal.RequireFromString("15000"),
		Flag:   domain.FundModeSelf,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(producer.transferEvents) != 1 {
		t.Fatalf("expected one published event, got %d", len(producer.transferEvents))
	}
	event := producer.transferEvents[0]
	if event.RefNo != created.RefNo {
		t.Fatalf("expected event ref %q, got %q", created.RefNo, event.RefNo)
	}
	if event.TotalAmount != "14950" {
		t.Fatalf("expected event total 14950, got %q", event.TotalAmount)
	}
}

func TestFundSucceedsWhenPublishFails(t *testing.T) {
	repo := newFakeRepo()
	userID := uuid.New()
	account := repo.addAccount(userID, "0000000001", "0")
	producer := &fakeProducer{publishErr: errors.New("broker gone")}
	svc := NewService(repo, producer, nil, "test-secret", time.Hour, 30*time.Minute, 0, time.Minute)

	if _, err := svc.Fund(context.Background(), FundParams{
		UserID: userID,
		Amount: decimal.RequireFromString("100"),
		Flag:   domain.FundModeSelf,
	}); err != nil {
		t.Fatalf("publish failure must not fail the transfer, got %v", err)
	}
	if got := repo.balanceOf(account.ID); !got.Equal(decimal.RequireFromString("100")) {
		t.Fatalf("expected committed balance 100, got %s", got)
	}
}

func TestNewAccountNumberFormat(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		num := newAccountNumber()
		if len(num) != 10 {
			t.Fatalf("expected 10 digits, got %q", num)
		}
		for _, r := range num {
			if r < '0' || r > '9' {
				t.Fatalf("expected numeric account number, got %q", num)
			}
		}
		seen[num] = true
	}
	if len(seen) < 2 {
		t.Fatal("expected account numbers to vary")
	}
}
