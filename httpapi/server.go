package httpapi

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"celestia/application/dto"
	"celestia/domain/entities"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// Exchange settles buy and sell requests
type Exchange interface {
	Buy(ctx context.Context, userID int64, institutionCode string, amount decimal.Decimal) dto.SettlementResult
	Sell(ctx context.Context, userID int64, institutionCode string, amount decimal.Decimal) dto.SettlementResult
}

// Games plays chance games
type Games interface {
	Play(ctx context.Context, userID int64, institutionCode string, gameType entities.GameType, stake decimal.Decimal) dto.GameResult
}

// Accounts answers read-only queries
type Accounts interface {
	GetUser(ctx context.Context, userID int64) (*entities.User, error)
	GetWallet(ctx context.Context, userID int64) (*entities.Wallet, error)
	ListTransactions(ctx context.Context, userID int64, limit int) ([]*entities.Transaction, error)
	ListGames(ctx context.Context, userID int64, limit int) ([]*entities.Game, error)
	MarketStats(ctx context.Context, institutionCode string) (*entities.MarketStats, error)
}

// Identity verifies students and manages their sessions
type Identity interface {
	ListInstitutions(ctx context.Context) ([]entities.Institution, error)
	VerifyInstitute(ctx context.Context, matricNumber, providerID string) (string, error)
	Register(ctx context.Context, req dto.RegistrationRequest) (*dto.SessionResult, error)
	Authenticate(ctx context.Context, accessToken string) (int64, error)
	Logout(ctx context.Context, accessToken string) error
}

// Server exposes the token economy over HTTP
type Server struct {
	router   *mux.Router
	exchange Exchange
	games    Games
	accounts Accounts
	identity Identity
	validate *validator.Validate

	mu   sync.Mutex
	http *http.Server
}

// NewServer creates a server and registers its routes
func NewServer(exchange Exchange, games Games, accounts Accounts, identity Identity) *Server {
	s := &Server{
		router:   mux.NewRouter(),
		exchange: exchange,
		games:    games,
		accounts: accounts,
		identity: identity,
		validate: newValidator(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(recoverMiddleware, loggingMiddleware, corsMiddleware)

	// preflight requests for any path
	s.router.Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/institutions", s.handleInstitutions).Methods(http.MethodGet, http.MethodPost)
	api.HandleFunc("/verify/institute", s.handleVerifyInstitute).Methods(http.MethodPost)
	api.HandleFunc("/verify/jamb", s.handleVerifyExam).Methods(http.MethodPost)
	api.HandleFunc("/token/market/{institution_code}", s.handleMarketStats).Methods(http.MethodGet)

	authed := api.NewRoute().Subrouter()
	authed.Use(s.authMiddleware)
	authed.HandleFunc("/logout", s.handleLogout).Methods(http.MethodPost)
	authed.HandleFunc("/me", s.handleMe).Methods(http.MethodGet)
	authed.HandleFunc("/me/wallet", s.handleWallet).Methods(http.MethodGet)
	authed.HandleFunc("/me/transactions", s.handleTransactions).Methods(http.MethodGet)
	authed.HandleFunc("/token/buy", s.handleTrade(entities.TransactionTypeBuy)).Methods(http.MethodPost)
	authed.HandleFunc("/token/sell", s.handleTrade(entities.TransactionTypeSell)).Methods(http.MethodPost)
	authed.HandleFunc("/games/play", s.handlePlay).Methods(http.MethodPost)
	authed.HandleFunc("/games/history", s.handleGameHistory).Methods(http.MethodGet)
}

// Handler returns the root handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves on addr until Shutdown is called
func (s *Server) Start(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
	s.mu.Lock()
	s.http = srv
	s.mu.Unlock()

	log.WithField("addr", addr).Info("HTTP server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.http
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
