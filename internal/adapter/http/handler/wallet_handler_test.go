package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/walletledger/internal/adapter/http/dto"
	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/usecase"
)

type stubWalletService struct {
	saveFn    func(ctx context.Context, userID string, input usecase.SaveWalletInput) (*domain.Wallet, error)
	getFn     func(ctx context.Context, userID, id string) (*domain.Wallet, error)
	listFn    func(ctx context.Context, userID string) ([]*domain.Wallet, error)
	summaryFn func(ctx context.Context, userID string) (*domain.WalletSummary, error)
	deleteFn  func(ctx context.Context, userID, walletID string) (*usecase.DeleteWalletResult, error)
}

func (s *stubWalletService) SaveWallet(ctx context.Context, userID string, input usecase.SaveWalletInput) (*domain.Wallet, error) {
	return s.saveFn(ctx, userID, input)
}

func (s *stubWalletService) GetWallet(ctx context.Context, userID, id string) (*domain.Wallet, error) {
	return s.getFn(ctx, userID, id)
}

func (s *stubWalletService) ListWallets(ctx context.Context, userID string) ([]*domain.Wallet, error) {
	return s.listFn(ctx, userID)
}

func (s *stubWalletService) Summary(ctx context.Context, userID string) (*domain.WalletSummary, error) {
	return s.summaryFn(ctx, userID)
}

func (s *stubWalletService) DeleteWallet(ctx context.Context, userID, walletID string) (*usecase.DeleteWalletResult, error) {
	return s.deleteFn(ctx, userID, walletID)
}

func sampleWallet(id, amount, income, expenses string) *domain.Wallet {
	return &domain.Wallet{
		ID:            id,
		UserID:        testUser,
		Name:          "wallet " + id,
		Amount:        decimal.RequireFromString(amount),
		TotalIncome:   decimal.RequireFromString(income),
		TotalExpenses: decimal.RequireFromString(expenses),
		Created:       time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestWalletHandlerCreate(t *testing.T) {
	svc := &stubWalletService{
		saveFn: func(_ context.Context, userID string, input usecase.SaveWalletInput) (*domain.Wallet, error) {
			assert.Equal(t, testUser, userID)
			assert.Empty(t, input.ID)
			require.NotNil(t, input.Name)
			assert.Equal(t, "Cash", *input.Name)
			return sampleWallet("w1", "0", "0", "0"), nil
		},
	}
	h := NewWalletHandler(svc)

	rec := httptest.NewRecorder()
	h.Create(rec, newRequest(http.MethodPost, "/api/v1/wallets", strings.NewReader(`{"name":"Cash"}`)))

	require.Equal(t, http.StatusCreated, rec.Code)
	var wallet dto.WalletResponse
	env := decodeEnvelope(t, rec, &wallet)
	assert.True(t, env.Success)
	assert.Equal(t, "w1", wallet.ID)
	assert.Equal(t, "0", wallet.Amount)
}

func TestWalletHandlerCreateInvalidName(t *testing.T) {
	svc := &stubWalletService{
		saveFn: func(context.Context, string, usecase.SaveWalletInput) (*domain.Wallet, error) {
			return nil, domain.ErrInvalidWalletName
		},
	}
	h := NewWalletHandler(svc)

	rec := httptest.NewRecorder()
	h.Create(rec, newRequest(http.MethodPost, "/api/v1/wallets", strings.NewReader(`{"name":""}`)))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec, nil)
	assert.False(t, env.Success)
	assert.Contains(t, env.Msg, "invalid wallet name")
}

func TestWalletHandlerUpdatePassesID(t *testing.T) {
	svc := &stubWalletService{
		saveFn: func(_ context.Context, _ string, input usecase.SaveWalletInput) (*domain.Wallet, error) {
			assert.Equal(t, "w1", input.ID)
			assert.Nil(t, input.Name)
			require.NotNil(t, input.Image)
			return sampleWallet("w1", "10", "10", "0"), nil
		},
	}
	h := NewWalletHandler(svc)

	rec := httptest.NewRecorder()
	h.Update(rec, newRequest(http.MethodPatch, "/api/v1/wallets/w1", strings.NewReader(`{"image":"https://cdn/x.png"}`), "id", "w1"))

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestWalletHandlerGetNotFound(t *testing.T) {
	svc := &stubWalletService{
		getFn: func(_ context.Context, _ string, id string) (*domain.Wallet, error) {
			assert.Equal(t, "missing", id)
			return nil, domain.ErrWalletNotFound
		},
	}
	h := NewWalletHandler(svc)

	rec := httptest.NewRecorder()
	h.Get(rec, newRequest(http.MethodGet, "/api/v1/wallets/missing", nil, "id", "missing"))

	require.Equal(t, http.StatusNotFound, rec.Code)
	env := decodeEnvelope(t, rec, nil)
	assert.Equal(t, domain.ErrWalletNotFound.Error(), env.Msg)
}

func TestWalletHandlerList(t *testing.T) {
	svc := &stubWalletService{
		listFn: func(context.Context, string) ([]*domain.Wallet, error) {
			return []*domain.Wallet{sampleWallet("w2", "5", "5", "0"), sampleWallet("w1", "1", "3", "2")}, nil
		},
	}
	h := NewWalletHandler(svc)

	rec := httptest.NewRecorder()
	h.List(rec, newRequest(http.MethodGet, "/api/v1/wallets", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var wallets []dto.WalletResponse
	decodeEnvelope(t, rec, &wallets)
	require.Len(t, wallets, 2)
	assert.Equal(t, "w2", wallets[0].ID)
	assert.Equal(t, "2", wallets[1].TotalExpenses)
}

func TestWalletHandlerSummary(t *testing.T) {
	svc := &stubWalletService{
		summaryFn: func(context.Context, string) (*domain.WalletSummary, error) {
			return domain.Summarize([]*domain.Wallet{
				sampleWallet("w1", "70", "100", "30"),
				sampleWallet("w2", "5.5", "5.5", "0"),
			}), nil
		},
	}
	h := NewWalletHandler(svc)

	rec := httptest.NewRecorder()
	h.Summary(rec, newRequest(http.MethodGet, "/api/v1/wallets/summary", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var summary dto.SummaryResponse
	decodeEnvelope(t, rec, &summary)
	assert.Equal(t, "75.5", summary.TotalBalance)
	assert.Equal(t, "105.5", summary.TotalIncome)
	assert.Equal(t, "30", summary.TotalExpenses)
	assert.Len(t, summary.Wallets, 2)
}

func TestWalletHandlerDelete(t *testing.T) {
	svc := &stubWalletService{
		deleteFn: func(_ context.Context, _ string, walletID string) (*usecase.DeleteWalletResult, error) {
			return &usecase.DeleteWalletResult{WalletID: walletID, TransactionsDeleted: 42}, nil
		},
	}
	h := NewWalletHandler(svc)

	rec := httptest.NewRecorder()
	h.Delete(rec, newRequest(http.MethodDelete, "/api/v1/wallets/w1", nil, "id", "w1"))

	require.Equal(t, http.StatusOK, rec.Code)
	var result dto.DeleteWalletResponse
	decodeEnvelope(t, rec, &result)
	assert.Equal(t, "w1", result.WalletID)
	assert.EqualValues(t, 42, result.TransactionsDeleted)
}

func TestWalletHandlerUpstreamFailure(t *testing.T) {
	svc := &stubWalletService{
		deleteFn: func(context.Context, string, string) (*usecase.DeleteWalletResult, error) {
			return nil, domain.Upstream(context.DeadlineExceeded)
		},
	}
	h := NewWalletHandler(svc)

	rec := httptest.NewRecorder()
	h.Delete(rec, newRequest(http.MethodDelete, "/api/v1/wallets/w1", nil, "id", "w1"))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	env := decodeEnvelope(t, rec, nil)
	assert.False(t, env.Success)
	assert.NotEmpty(t, env.Msg)
}
