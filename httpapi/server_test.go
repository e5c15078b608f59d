package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"celestia/application/dto"
	"celestia/domain/entities"
	"celestia/domain/testhelpers"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockExchange struct{ mock.Mock }

func (m *mockExchange) Buy(ctx context.Context, userID int64, code string, amount decimal.Decimal) dto.SettlementResult {
	return m.Called(ctx, userID, code, amount).Get(0).(dto.SettlementResult)
}

func (m *mockExchange) Sell(ctx context.Context, userID int64, code string, amount decimal.Decimal) dto.SettlementResult {
	return m.Called(ctx, userID, code, amount).Get(0).(dto.SettlementResult)
}

type mockGames struct{ mock.Mock }

func (m *mockGames) Play(ctx context.Context, userID int64, code string, gameType entities.GameType, stake decimal.Decimal) dto.GameResult {
	return m.Called(ctx, userID, code, gameType, stake).Get(0).(dto.GameResult)
}

type mockAccounts struct{ mock.Mock }

func (m *mockAccounts) GetUser(ctx context.Context, userID int64) (*entities.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *mockAccounts) GetWallet(ctx context.Context, userID int64) (*entities.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Wallet), args.Error(1)
}

func (m *mockAccounts) ListTransactions(ctx context.Context, userID int64, limit int) ([]*entities.Transaction, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Transaction), args.Error(1)
}

func (m *mockAccounts) ListGames(ctx context.Context, userID int64, limit int) ([]*entities.Game, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Game), args.Error(1)
}

func (m *mockAccounts) MarketStats(ctx context.Context, code string) (*entities.MarketStats, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.MarketStats), args.Error(1)
}

type mockIdentity struct{ mock.Mock }

func (m *mockIdentity) ListInstitutions(ctx context.Context) ([]entities.Institution, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.Institution), args.Error(1)
}

func (m *mockIdentity) VerifyInstitute(ctx context.Context, matric, providerID string) (string, error) {
	args := m.Called(ctx, matric, providerID)
	return args.String(0), args.Error(1)
}

func (m *mockIdentity) Register(ctx context.Context, req dto.RegistrationRequest) (*dto.SessionResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.SessionResult), args.Error(1)
}

func (m *mockIdentity) Authenticate(ctx context.Context, token string) (int64, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockIdentity) Logout(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

type fixture struct {
	exchange *mockExchange
	games    *mockGames
	accounts *mockAccounts
	identity *mockIdentity
	server   *Server
}

func newFixture() *fixture {
	f := &fixture{
		exchange: &mockExchange{},
		games:    &mockGames{},
		accounts: &mockAccounts{},
		identity: &mockIdentity{},
	}
	f.server = NewServer(f.exchange, f.games, f.accounts, f.identity)
	return f
}

// signedIn stubs a valid bearer token for user 42 of institution UNN01
func (f *fixture) signedIn() {
	f.identity.On("Authenticate", mock.Anything, "good-token").Return(int64(42), nil)
	f.accounts.On("GetUser", mock.Anything, int64(42)).Return(&entities.User{ID: 42, InstitutionCode: "UNN01"}, nil).Maybe()
}

func (f *fixture) do(method, path, body string, authed bool) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer good-token")
	}
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	f := newFixture()
	rec := f.do(http.MethodGet, "/health", "", false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestPreflight(t *testing.T) {
	f := newFixture()
	rec := f.do(http.MethodOptions, "/api/token/buy", "", false)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}

func TestAuthRequired(t *testing.T) {
	f := newFixture()
	f.identity.On("Authenticate", mock.Anything, "bad").Return(int64(0), entities.ErrUnauthenticated)

	rec := f.do(http.MethodGet, "/api/me", "", false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer bad")
	rec = httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
}

func TestAuth_SessionStoreOutageIsServerError(t *testing.T) {
	f := newFixture()
	f.identity.On("Authenticate", mock.Anything, "good-token").Return(int64(0), errors.New("failed to check revocation: redis down"))

	rec := f.do(http.MethodGet, "/api/me", "", true)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, rec.Header().Get("WWW-Authenticate"))
	f.accounts.AssertNotCalled(t, "GetUser", mock.Anything, mock.Anything)
}

func TestBuy_UsesCallerInstitution(t *testing.T) {
	f := newFixture()
	f.signedIn()
	f.exchange.On("Buy", mock.Anything, int64(42), "UNN01", testhelpers.DecimalEq("1000")).Return(dto.SettlementResult{
		Success:    true,
		Message:    "Successfully bought 1000 tokens",
		NewBalance: decimal.NewFromInt(1000),
		TokenValue: decimal.RequireFromString("1.00005"),
		Fee:        decimal.NewFromInt(5),
	})

	rec := f.do(http.MethodPost, "/api/token/buy", `{"amount": 1000}`, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result dto.SettlementResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Success)
	assert.True(t, result.TokenValue.Equal(decimal.RequireFromString("1.00005")))
	f.exchange.AssertExpectations(t)
}

func TestSell_FailureStatusMapping(t *testing.T) {
	cases := []struct {
		reason dto.FailureReason
		status int
	}{
		{dto.ReasonInsufficientBalance, http.StatusBadRequest},
		{dto.ReasonInvalidAmount, http.StatusBadRequest},
		{dto.ReasonStorageConflict, http.StatusConflict},
		{dto.ReasonMarketConfiguration, http.StatusInternalServerError},
		{dto.ReasonInternal, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(string(tc.reason), func(t *testing.T) {
			f := newFixture()
			f.signedIn()
			f.exchange.On("Sell", mock.Anything, int64(42), "UNN01", mock.Anything).Return(dto.SettlementResult{
				Success: false,
				Reason:  tc.reason,
				Message: "nope",
			})

			rec := f.do(http.MethodPost, "/api/token/sell", `{"amount": "-5"}`, true)
			assert.Equal(t, tc.status, rec.Code)

			var result dto.SettlementResult
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
			assert.False(t, result.Success)
			assert.Equal(t, tc.reason, result.Reason)
		})
	}
}

func TestTrade_RequestValidation(t *testing.T) {
	f := newFixture()
	f.signedIn()

	for _, body := range []string{``, `{}`, `{"amount": 0}`, `{"amount": "abc"}`} {
		rec := f.do(http.MethodPost, "/api/token/buy", body, true)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %q", body)
	}
	f.exchange.AssertNotCalled(t, "Buy", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPlay(t *testing.T) {
	f := newFixture()
	f.signedIn()
	f.games.On("Play", mock.Anything, int64(42), "UNN01", entities.GameTypeCoinFlip, testhelpers.DecimalEq("10")).Return(dto.GameResult{
		Success: true,
		Message: "You won!",
		Result:  entities.GameResultWon,
	})
	f.games.On("Play", mock.Anything, int64(42), "UNN01", entities.GameType("roulette"), testhelpers.DecimalEq("10")).Return(dto.GameResult{
		Success: false,
		Reason:  dto.ReasonInvalidGameType,
	})

	rec := f.do(http.MethodPost, "/api/games/play", `{"game_type": "coin_flip", "stake_amount": 10}`, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "You won!")

	rec = f.do(http.MethodPost, "/api/games/play", `{"game_type": "roulette", "stake_amount": 10}`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHistoryLimits(t *testing.T) {
	f := newFixture()
	f.signedIn()
	f.accounts.On("ListTransactions", mock.Anything, int64(42), 0).Return(nil, nil)
	f.accounts.On("ListGames", mock.Anything, int64(42), 25).Return([]*entities.Game{{ID: 1}}, nil)

	rec := f.do(http.MethodGet, "/api/me/transactions", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = f.do(http.MethodGet, "/api/games/history?limit=25", "", true)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(http.MethodGet, "/api/games/history?limit=lots", "", true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWalletAndMe(t *testing.T) {
	f := newFixture()
	f.signedIn()
	f.accounts.On("GetWallet", mock.Anything, int64(42)).Return(&entities.Wallet{ID: 3, UserID: 42, Balance: decimal.NewFromInt(50)}, nil)

	rec := f.do(http.MethodGet, "/api/me/wallet", "", true)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(http.MethodGet, "/api/me", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"institution_code":"UNN01"`)
}

func TestMarketStats(t *testing.T) {
	f := newFixture()
	f.accounts.On("MarketStats", mock.Anything, "UNN01").Return(&entities.MarketStats{InstitutionCode: "UNN01"}, nil)
	f.accounts.On("MarketStats", mock.Anything, "NOPE").Return(nil, fmt.Errorf("wrap: %w", entities.ErrMarketNotFound))
	f.accounts.On("MarketStats", mock.Anything, "BROKEN").Return(nil, errors.New("db down"))

	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/api/token/market/UNN01", "", false).Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/api/token/market/NOPE", "", false).Code)
	assert.Equal(t, http.StatusInternalServerError, f.do(http.MethodGet, "/api/token/market/BROKEN", "", false).Code)
}

func TestVerification(t *testing.T) {
	f := newFixture()
	f.identity.On("VerifyInstitute", mock.Anything, "2019/1", "UNN01").Return("provider-token", nil)
	f.identity.On("VerifyInstitute", mock.Anything, "2019/2", "UNN01").Return("", entities.ErrVerificationFailed)
	f.identity.On("Register", mock.Anything, dto.RegistrationRequest{
		ProviderToken: "provider-token",
		DateOfBirth:   "2001-02-03",
		ExamNumber:    "J-1",
	}).Return(&dto.SessionResult{AccessToken: "jwt", TokenType: "bearer"}, nil)
	f.identity.On("Register", mock.Anything, mock.MatchedBy(func(req dto.RegistrationRequest) bool {
		return req.ExamNumber == "J-2"
	})).Return(nil, fmt.Errorf("exam: %w", entities.ErrVerificationFailed))

	rec := f.do(http.MethodPost, "/api/verify/institute", `{"matric_number":"2019/1","provider_id":"UNN01"}`, false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"provider_token":"provider-token"}`, rec.Body.String())

	rec = f.do(http.MethodPost, "/api/verify/institute", `{"matric_number":"2019/2","provider_id":"UNN01"}`, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodPost, "/api/verify/institute", `{"matric_number":"2019/1"}`, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodPost, "/api/verify/jamb", `{"provider_token":"provider-token","jamb_number":"J-1","date_of_birth":"2001-02-03"}`, false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"access_token":"jwt"`)

	rec = f.do(http.MethodPost, "/api/verify/jamb", `{"jamb_number":"J-1","date_of_birth":"2001-02-03"}`, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "institute fields are required without a provider token")

	rec = f.do(http.MethodPost, "/api/verify/jamb", `{"matric_number":"2019/1","provider_id":"UNN01","jamb_number":"J-2","date_of_birth":"2001-02-03"}`, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogout(t *testing.T) {
	f := newFixture()
	f.signedIn()
	f.identity.On("Logout", mock.Anything, "good-token").Return(nil)

	rec := f.do(http.MethodPost, "/api/logout", "", true)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	f.identity.AssertExpectations(t)
}
