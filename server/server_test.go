package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"magbank/models"
)

type mockWagerService struct {
	mock.Mock
}

func (m *mockWagerService) Play(ctx context.Context, userID, gameID, bet int64, sourceIP string) (*models.PlayResult, error) {
	args := m.Called(ctx, userID, gameID, bet, sourceIP)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PlayResult), args.Error(1)
}

func (m *mockWagerService) ListGames(ctx context.Context) ([]*models.Game, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Game), args.Error(1)
}

func (m *mockWagerService) GetSymbols(ctx context.Context, gameID int64) ([]models.SlotSymbol, error) {
	args := m.Called(ctx, gameID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SlotSymbol), args.Error(1)
}

func (m *mockWagerService) GetHistory(ctx context.Context, userID int64, limit int) ([]*models.PlayRecord, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PlayRecord), args.Error(1)
}

func (m *mockWagerService) GetStats(ctx context.Context, userID int64) (*models.PlayerStats, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PlayerStats), args.Error(1)
}

type mockLedgerService struct {
	mock.Mock
}

func (m *mockLedgerService) GetMagysBalance(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockLedgerService) GetMagysHistory(ctx context.Context, userID int64, limit int) ([]*models.LedgerEvent, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LedgerEvent), args.Error(1)
}

func (m *mockLedgerService) GetTicketAccount(ctx context.Context, userID int64) (*models.TicketAccount, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TicketAccount), args.Error(1)
}

type mockAccountService struct {
	mock.Mock
}

func (m *mockAccountService) RequestAccount(ctx context.Context, userID int64) (*models.RequestAccountResult, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RequestAccountResult), args.Error(1)
}

func (m *mockAccountService) ResolveRequest(ctx context.Context, accountID int64, action models.ResolveAction, reason, notes string) (*models.ResolveRequestResult, error) {
	args := m.Called(ctx, accountID, action, reason, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ResolveRequestResult), args.Error(1)
}

func (m *mockAccountService) GetAccounts(ctx context.Context, userID int64) ([]*models.CurrentAccount, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.CurrentAccount), args.Error(1)
}

func (m *mockAccountService) GetAccountDetail(ctx context.Context, accountID, userID int64) (*models.CurrentAccount, error) {
	args := m.Called(ctx, accountID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CurrentAccount), args.Error(1)
}

func (m *mockAccountService) ListPendingRequests(ctx context.Context) ([]*models.PendingRequest, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PendingRequest), args.Error(1)
}

type mockRedemptionService struct {
	mock.Mock
}

func (m *mockRedemptionService) ListPrizes(ctx context.Context, category models.PrizeCategory) ([]*models.Prize, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Prize), args.Error(1)
}

func (m *mockRedemptionService) Redeem(ctx context.Context, userID, prizeID int64, shippingAddress string) (*models.RedeemResult, error) {
	args := m.Called(ctx, userID, prizeID, shippingAddress)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RedeemResult), args.Error(1)
}

func (m *mockRedemptionService) GetRedemptions(ctx context.Context, userID int64) ([]*models.Redemption, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Redemption), args.Error(1)
}

type mockUserService struct {
	mock.Mock
}

func (m *mockUserService) GetDashboard(ctx context.Context, userID int64) (*models.Dashboard, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Dashboard), args.Error(1)
}

func newTestServer() (*Server, *mockWagerService, *mockLedgerService, *mockAccountService, *mockRedemptionService, *mockUserService) {
	wagers := new(mockWagerService)
	ledger := new(mockLedgerService)
	accounts := new(mockAccountService)
	redemptions := new(mockRedemptionService)
	users := new(mockUserService)
	srv := NewServer(wagers, ledger, accounts, redemptions, users)
	return srv, wagers, ledger, accounts, redemptions, users
}

func TestServer_RequiresIdentity(t *testing.T) {
	srv, _, _, _, _, _ := newTestServer()
	handler := srv.Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/games/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestServer_Play(t *testing.T) {
	srv, wagers, _, _, _, _ := newTestServer()
	handler := srv.Handler()

	wagers.On("Play", mock.Anything, int64(42), int64(1), int64(100), mock.AnythingOfType("string")).
		Return(&models.PlayResult{
			Reels: []models.SlotSymbol{
				{ID: 4, Glyph: "💎"}, {ID: 4, Glyph: "💎"}, {ID: 4, Glyph: "💎"},
			},
			Won:        true,
			Multiplier: 10,
			TicketsWon: 1000,
			Bet:        100,
			Balances:   models.Balances{Magys: 900, Tickets: 1000},
		}, nil)

	body := bytes.NewBufferString(`{"gameId": 1, "bet": 100}`)
	req := httptest.NewRequest(http.MethodPost, "/api/games/slots/play", body)
	req.Header.Set(headerUserID, "42")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp playResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Won)
	assert.Equal(t, []string{"💎", "💎", "💎"}, resp.Reels)
	assert.Equal(t, int64(900), resp.Balances.Magys)

	wagers.AssertExpectations(t)
}

func TestServer_Play_InsufficientFundsMapsToConflict(t *testing.T) {
	srv, wagers, _, _, _, _ := newTestServer()
	handler := srv.Handler()

	wagers.On("Play", mock.Anything, int64(42), int64(1), int64(100), mock.AnythingOfType("string")).
		Return(nil, models.NewInsufficientFunds(30, 100))

	body := bytes.NewBufferString(`{"gameId": 1, "bet": 100}`)
	req := httptest.NewRequest(http.MethodPost, "/api/games/slots/play", body)
	req.Header.Set(headerUserID, "42")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Balance)
	require.NotNil(t, resp.Required)
	assert.Equal(t, int64(30), *resp.Balance)
	assert.Equal(t, int64(100), *resp.Required)
}

func TestServer_Play_InvalidBetMapsToBadRequest(t *testing.T) {
	srv, wagers, _, _, _, _ := newTestServer()
	handler := srv.Handler()

	wagers.On("Play", mock.Anything, int64(42), int64(1), int64(5), mock.AnythingOfType("string")).
		Return(nil, models.ErrInvalidBet)

	body := bytes.NewBufferString(`{"gameId": 1, "bet": 5}`)
	req := httptest.NewRequest(http.MethodPost, "/api/games/slots/play", body)
	req.Header.Set(headerUserID, "42")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_PendingRequests_RequiresAdmin(t *testing.T) {
	srv, _, _, accounts, _, _ := newTestServer()
	handler := srv.Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/accounts/requests/pending", nil)
	req.Header.Set(headerUserID, "42")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	accounts.AssertNotCalled(t, "ListPendingRequests", mock.Anything)
}

func TestServer_ResolveRequest_Admin(t *testing.T) {
	srv, _, _, accounts, _, _ := newTestServer()
	handler := srv.Handler()

	accounts.On("ResolveRequest", mock.Anything, int64(7), models.ResolveActionApprove, "", "ok").
		Return(&models.ResolveRequestResult{
			AccountID:    7,
			State:        models.RequestStateApproved,
			RewardIssued: 500,
		}, nil)

	body := bytes.NewBufferString(`{"action": "approve", "notes": "ok"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/accounts/requests/7/resolve", body)
	req.Header.Set(headerUserID, "1")
	req.Header.Set(headerUserRole, "admin")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.ResolveRequestResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.RequestStateApproved, resp.State)
	assert.Equal(t, int64(500), resp.RewardIssued)
}

func TestServer_RequestAccount_DuplicateMapsToConflict(t *testing.T) {
	srv, _, _, accounts, _, _ := newTestServer()
	handler := srv.Handler()

	accounts.On("RequestAccount", mock.Anything, int64(42)).
		Return(nil, models.ErrDuplicateRequest)

	req := httptest.NewRequest(http.MethodPost, "/api/accounts/request", nil)
	req.Header.Set(headerUserID, "42")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestServer_Redeem_OutOfStockMapsToConflict(t *testing.T) {
	srv, _, _, _, redemptions, _ := newTestServer()
	handler := srv.Handler()

	redemptions.On("Redeem", mock.Anything, int64(42), int64(3), "").
		Return(nil, models.ErrOutOfStock)

	body := bytes.NewBufferString(`{"prizeId": 3}`)
	req := httptest.NewRequest(http.MethodPost, "/api/prizes/redeem", body)
	req.Header.Set(headerUserID, "42")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestServer_TicketBalance(t *testing.T) {
	srv, _, ledger, _, _, _ := newTestServer()
	handler := srv.Handler()

	ledger.On("GetTicketAccount", mock.Anything, int64(42)).
		Return(&models.TicketAccount{UserID: 42, Balance: 300, TotalWon: 1000, TotalRedeemed: 700}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/tickets", nil)
	req.Header.Set(headerUserID, "42")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]int64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(300), resp["balance"])
	assert.Equal(t, int64(1000), resp["totalWon"])
	assert.Equal(t, int64(700), resp["totalRedeemed"])
}

func TestServer_GameNotFoundMapsToNotFound(t *testing.T) {
	srv, wagers, _, _, _, _ := newTestServer()
	handler := srv.Handler()

	wagers.On("GetSymbols", mock.Anything, int64(99)).Return(nil, models.ErrGameNotFound)

	req := httptest.NewRequest(http.MethodGet, "/api/games/99/symbols", nil)
	req.Header.Set(headerUserID, "42")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_Health(t *testing.T) {
	srv, _, _, _, _, _ := newTestServer()
	handler := srv.Handler()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
