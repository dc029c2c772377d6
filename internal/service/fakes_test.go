package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/xjinkx/license-gateway/internal/models"
	"github.com/xjinkx/license-gateway/internal/repository"
	"github.com/xjinkx/license-gateway/internal/upstream"
)

// The gorm repositories must keep satisfying the store interfaces the
// services consume.
var (
	_ UserStore     = (*repository.UserRepository)(nil)
	_ ProductStore  = (*repository.ProductRepository)(nil)
	_ PurchaseStore = (*repository.PurchaseRepository)(nil)
	_ TopUpStore    = (*repository.TopUpRepository)(nil)
	_ AdminStore    = (*repository.AdminRepository)(nil)
)

type fakeUserStore struct {
	user    *models.User
	created []*models.User

	debitOK     bool
	debits      []int
	credits     []int
	tokenGrants []int

	consumeOK        bool
	consumeRemaining int
	consumeCalls     int
}

func (f *fakeUserStore) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return f.user, nil
}

func (f *fakeUserStore) FindByDiscordID(ctx context.Context, discordID string) (*models.User, error) {
	if f.user != nil && f.user.DiscordID == discordID {
		return f.user, nil
	}
	return nil, nil
}

func (f *fakeUserStore) Create(ctx context.Context, user *models.User) error {
	user.ID = uuid.New()
	f.created = append(f.created, user)
	return nil
}

func (f *fakeUserStore) DebitPoints(ctx context.Context, id uuid.UUID, total int) (bool, error) {
	f.debits = append(f.debits, total)
	return f.debitOK, nil
}

func (f *fakeUserStore) CreditPoints(ctx context.Context, id uuid.UUID, amount int) error {
	f.credits = append(f.credits, amount)
	return nil
}

func (f *fakeUserStore) AddResetTokens(ctx context.Context, id uuid.UUID, amount int) error {
	f.tokenGrants = append(f.tokenGrants, amount)
	return nil
}

func (f *fakeUserStore) ConsumeResetToken(ctx context.Context, id uuid.UUID) (int, bool, error) {
	f.consumeCalls++
	return f.consumeRemaining, f.consumeOK, nil
}

type fakeMinter struct {
	mintCalls  []upstream.MintPayload
	mintResult *upstream.MintResult
	mintErr    *upstream.Error

	resetCalls  int
	resetResult *upstream.ResetResult
	resetErr    *upstream.Error
}

func (f *fakeMinter) CreateKey(ctx context.Context, payload upstream.MintPayload) (*upstream.MintResult, *upstream.Error) {
	f.mintCalls = append(f.mintCalls, payload)
	if f.mintErr != nil {
		return nil, f.mintErr
	}
	return f.mintResult, nil
}

func (f *fakeMinter) GetUser(ctx context.Context, userKey string) (*upstream.KeyDetails, *upstream.Error) {
	return &upstream.KeyDetails{UserKey: userKey}, nil
}

func (f *fakeMinter) ResetHWID(ctx context.Context, userKey string, force bool) (*upstream.ResetResult, *upstream.Error) {
	f.resetCalls++
	if f.resetErr != nil {
		return nil, f.resetErr
	}
	return f.resetResult, nil
}

type fakeProductStore struct {
	product        *models.Product
	soldsIncrement int
}

func (f *fakeProductStore) FindActiveByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return f.product, nil
}

func (f *fakeProductStore) IncrementSolds(ctx context.Context, id uuid.UUID, qty int) error {
	f.soldsIncrement += qty
	return nil
}

type fakePurchaseStore struct {
	inserted  []models.PurchaseRecord
	insertErr error
}

func (f *fakePurchaseStore) InsertBatch(ctx context.Context, records []models.PurchaseRecord) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, records...)
	return nil
}

type fakeTopUpStore struct {
	inserted []*models.TopUpRecord
}

func (f *fakeTopUpStore) Insert(ctx context.Context, record *models.TopUpRecord) error {
	f.inserted = append(f.inserted, record)
	return nil
}

type fakeRedeemer struct {
	result *upstream.RedeemResult
	err    *upstream.Error
}

func (f *fakeRedeemer) Redeem(ctx context.Context, voucherCode string) (*upstream.RedeemResult, *upstream.Error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}
