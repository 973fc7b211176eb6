package app

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fundme/ledger-service/internal/domain"
	"github.com/fundme/ledger-service/internal/store"
	"github.com/fundme/ledger-service/pkg/rabbitmq"
)

// fakeRepo is an in-memory store.Repository. Writes issued through a unit of
// work are staged and become visible only on Commit, which is exactly the
// property the orchestrator tests depend on.
type fakeRepo struct {
	mu           sync.Mutex
	users        map[uuid.UUID]*domain.User
	accounts     map[uuid.UUID]*domain.Account
	transactions []domain.Transaction

	// deltaErr, when set for an account id, makes ApplyBalanceDelta fail
	// inside a unit of work so rollback paths can be exercised.
	deltaErr map[uuid.UUID]error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:    make(map[uuid.UUID]*domain.User),
		accounts: make(map[uuid.UUID]*domain.Account),
		deltaErr: make(map[uuid.UUID]error),
	}
}

func (f *fakeRepo) addAccount(userID uuid.UUID, number, balance string) *domain.Account {
	f.mu.Lock()
	defer f.mu.Unlock()
	account := &domain.Account{
		ID:            uuid.New(),
		AccountNumber: number,
		UserID:        userID,
		Name:          "test account",
		Email:         "test@example.com",
		Type:          "savings",
		Available:     decimal.RequireFromString(balance),
		Total:         decimal.RequireFromString(balance),
	}
	f.accounts[account.ID] = account
	return account
}

func (f *fakeRepo) balanceOf(accountID uuid.UUID) decimal.Decimal {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.accounts[accountID].Available
}

// UserStore

func (f *fakeRepo) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return nil, store.ErrDuplicateUser
		}
	}
	copied := *user
	copied.ID = uuid.New()
	copied.CreatedAt = time.Now()
	f.users[copied.ID] = &copied
	out := copied
	return &out, nil
}

func (f *fakeRepo) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			out := *user
			return &out, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (f *fakeRepo) FindUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[userID]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	out := *user
	return &out, nil
}

func (f *fakeRepo) ListUsers(ctx context.Context) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.User, 0, len(f.users))
	for _, user := range f.users {
		out = append(out, *user)
	}
	return out, nil
}

func (f *fakeRepo) UpdateUserPassword(ctx context.Context, userID uuid.UUID, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[userID]
	if !ok {
		return store.ErrUserNotFound
	}
	user.PasswordHash = passwordHash
	return nil
}

func (f *fakeRepo) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[userID]; !ok {
		return store.ErrUserNotFound
	}
	delete(f.users, userID)
	return nil
}

func (f *fakeRepo) SetResetToken(ctx context.Context, userID uuid.UUID, tokenHash string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[userID]
	if !ok {
		return store.ErrUserNotFound
	}
	user.ResetTokenHash = &tokenHash
	user.ResetTokenDate = &at
	return nil
}

func (f *fakeRepo) FindUserByResetTokenHash(ctx context.Context, tokenHash string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.ResetTokenHash != nil && *user.ResetTokenHash == tokenHash {
			out := *user
			return &out, nil
		}
	}
	return nil, store.ErrResetTokenNotFound
}

func (f *fakeRepo) ClearResetToken(ctx context.Context, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[userID]
	if !ok {
		return store.ErrUserNotFound
	}
	user.ResetTokenHash = nil
	user.ResetTokenDate = nil
	return nil
}

func (f *fakeRepo) DeleteExpiredResetTokens(ctx context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var purged int64
	for _, user := range f.users {
		if user.ResetTokenDate != nil && user.ResetTokenDate.Before(cutoff) {
			user.ResetTokenHash = nil
			user.ResetTokenDate = nil
			purged++
		}
	}
	return purged, nil
}

// AccountStore

func (f *fakeRepo) CreateAccount(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.accounts {
		if existing.UserID == account.UserID && existing.Type == account.Type {
			return nil, store.ErrDuplicateAccount
		}
	}
	copied := *account
	copied.ID = uuid.New()
	copied.CreatedAt = time.Now()
	f.accounts[copied.ID] = &copied
	out := copied
	return &out, nil
}

func (f *fakeRepo) FindAccountByUserID(ctx context.Context, userID uuid.UUID) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, account := range f.accounts {
		if account.UserID == userID {
			out := *account
			return &out, nil
		}
	}
	return nil, store.ErrAccountNotFound
}

func (f *fakeRepo) FindAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, account := range f.accounts {
		if account.AccountNumber == accountNumber {
			out := *account
			return &out, nil
		}
	}
	return nil, store.ErrAccountNotFound
}

func (f *fakeRepo) FindAccountByID(ctx context.Context, accountID uuid.UUID) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[accountID]
	if !ok {
		return nil, store.ErrAccountNotFound
	}
	out := *account
	return &out, nil
}

func (f *fakeRepo) FindAccountByTypeAndEmail(ctx context.Context, accountType, email string) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, account := range f.accounts {
		if account.Type == accountType && account.Email == email {
			out := *account
			return &out, nil
		}
	}
	return nil, store.ErrAccountNotFound
}

func (f *fakeRepo) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Account, 0, len(f.accounts))
	for _, account := range f.accounts {
		out = append(out, *account)
	}
	return out, nil
}

func (f *fakeRepo) RenameAccount(ctx context.Context, accountID uuid.UUID, name string) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[accountID]
	if !ok {
		return nil, store.ErrAccountNotFound
	}
	account.Name = name
	out := *account
	return &out, nil
}

func (f *fakeRepo) DeleteAccount(ctx context.Context, accountID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.accounts[accountID]; !ok {
		return store.ErrAccountNotFound
	}
	delete(f.accounts, accountID)
	return nil
}

func (f *fakeRepo) ApplyBalanceDelta(ctx context.Context, accountID uuid.UUID, availableDelta, totalDelta decimal.Decimal, at time.Time) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.applyDeltaLocked(accountID, availableDelta, totalDelta, at)
}

func (f *fakeRepo) applyDeltaLocked(accountID uuid.UUID, availableDelta, totalDelta decimal.Decimal, at time.Time) (*domain.Account, error) {
	account, ok := f.accounts[accountID]
	if !ok {
		return nil, store.ErrAccountNotFound
	}
	account.Available = account.Available.Add(availableDelta)
	account.Total = account.Total.Add(totalDelta)
	account.DateOfLastAction = &at
	out := *account
	return &out, nil
}

// TransactionStore

func (f *fakeRepo) CreateTransaction(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *tx
	copied.ID = uuid.New()
	f.transactions = append(f.transactions, copied)
	out := copied
	return &out, nil
}

// Begin opens a staging unit of work over the fake.

func (f *fakeRepo) Begin(ctx context.Context) (store.UnitOfWork, error) {
	return &fakeUnitOfWork{repo: f}, nil
}

type stagedDelta struct {
	accountID      uuid.UUID
	availableDelta decimal.Decimal
	totalDelta     decimal.Decimal
	at             time.Time
}

type fakeUnitOfWork struct {
	repo      *fakeRepo
	stagedTx  []domain.Transaction
	deltas    []stagedDelta
	committed bool
}

func (u *fakeUnitOfWork) Accounts() store.AccountStore         { return &stagedStores{u} }
func (u *fakeUnitOfWork) Transactions() store.TransactionStore { return &stagedStores{u} }

func (u *fakeUnitOfWork) Commit(ctx context.Context) error {
	u.repo.mu.Lock()
	defer u.repo.mu.Unlock()
	for i := range u.stagedTx {
		u.repo.transactions = append(u.repo.transactions, u.stagedTx[i])
	}
	for _, d := range u.deltas {
		if _, err := u.repo.applyDeltaLocked(d.accountID, d.availableDelta, d.totalDelta, d.at); err != nil {
			return err
		}
	}
	u.committed = true
	return nil
}

func (u *fakeUnitOfWork) Rollback(ctx context.Context) error {
	if u.committed {
		return nil
	}
	u.stagedTx = nil
	u.deltas = nil
	return nil
}

// stagedStores delegates reads to the underlying fake and stages writes on
// the unit of work until commit.
type stagedStores struct {
	uow *fakeUnitOfWork
}

func (s *stagedStores) CreateTransaction(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	copied := *tx
	copied.ID = uuid.New()
	s.uow.stagedTx = append(s.uow.stagedTx, copied)
	out := copied
	return &out, nil
}

func (s *stagedStores) ApplyBalanceDelta(ctx context.Context, accountID uuid.UUID, availableDelta, totalDelta decimal.Decimal, at time.Time) (*domain.Account, error) {
	repo := s.uow.repo
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if err, ok := repo.deltaErr[accountID]; ok {
		return nil, err
	}
	account, ok := repo.accounts[accountID]
	if !ok {
		return nil, store.ErrAccountNotFound
	}
	s.uow.deltas = append(s.uow.deltas, stagedDelta{accountID, availableDelta, totalDelta, at})
	projected := *account
	projected.Available = projected.Available.Add(availableDelta)
	projected.Total = projected.Total.Add(totalDelta)
	return &projected, nil
}

func (s *stagedStores) CreateAccount(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	return s.uow.repo.CreateAccount(ctx, account)
}

func (s *stagedStores) FindAccountByUserID(ctx context.Context, userID uuid.UUID) (*domain.Account, error) {
	return s.uow.repo.FindAccountByUserID(ctx, userID)
}

func (s *stagedStores) FindAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	return s.uow.repo.FindAccountByNumber(ctx, accountNumber)
}

func (s *stagedStores) FindAccountByID(ctx context.Context, accountID uuid.UUID) (*domain.Account, error) {
	return s.uow.repo.FindAccountByID(ctx, accountID)
}

func (s *stagedStores) FindAccountByTypeAndEmail(ctx context.Context, accountType, email string) (*domain.Account, error) {
	return s.uow.repo.FindAccountByTypeAndEmail(ctx, accountType, email)
}

func (s *stagedStores) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	return s.uow.repo.ListAccounts(ctx)
}

func (s *stagedStores) RenameAccount(ctx context.Context, accountID uuid.UUID, name string) (*domain.Account, error) {
	return s.uow.repo.RenameAccount(ctx, accountID, name)
}

func (s *stagedStores) DeleteAccount(ctx context.Context, accountID uuid.UUID) error {
	return s.uow.repo.DeleteAccount(ctx, accountID)
}

// fakeProducer records published events.
type fakeProducer struct {
	mu              sync.Mutex
	transferEvents  []rabbitmq.TransferEvent
	resetEvents     []rabbitmq.PasswordResetEvent
	publishErr      error
	resetPublishErr error
}

func (p *fakeProducer) PublishTransferEvent(ctx context.Context, event rabbitmq.TransferEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.publishErr != nil {
		return p.publishErr
	}
	p.transferEvents = append(p.transferEvents, event)
	return nil
}

func (p *fakeProducer) PublishPasswordResetEvent(ctx context.Context, event rabbitmq.PasswordResetEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.resetPublishErr != nil {
		return p.resetPublishErr
	}
	p.resetEvents = append(p.resetEvents, event)
	return nil
}

func (p *fakeProducer) Close() {}

// fakeLimiter returns a fixed count, or an error when set.
type fakeLimiter struct {
	count int
	err   error
	calls int
}

func (l *fakeLimiter) ConsumeRateLimit(ctx context.Context, scope, subject string, limit int, window time.Duration) (int, int, error) {
	l.calls++
	if l.err != nil {
		return 0, 0, l.err
	}
	return l.count, 30, nil
}

func newTestService(repo *fakeRepo) *Service {
	return NewService(repo, nil, nil, "test-secret", time.Hour, 30*time.Minute, 0, time.Minute)
}
