package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"celestia/application/dto"
	"celestia/domain/entities"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleInstitutions(w http.ResponseWriter, r *http.Request) {
	institutions, err := s.identity.ListInstitutions(r.Context())
	if err != nil {
		log.WithError(err).Warn("Failed to fetch institutions")
		writeError(w, http.StatusBadRequest, "verification_failed", "Failed to fetch institutions")
		return
	}
	writeJSON(w, http.StatusOK, institutions)
}

func (s *Server) handleVerifyInstitute(w http.ResponseWriter, r *http.Request) {
	var req InstituteVerificationRequest
	if err := s.decodeAndValidate(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	token, err := s.identity.VerifyInstitute(r.Context(), req.MatricNumber, req.ProviderID)
	if err != nil {
		log.WithError(err).Info("Institute verification failed")
		writeError(w, http.StatusBadRequest, "verification_failed", "Institute verification failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"provider_token": token})
}

func (s *Server) handleVerifyExam(w http.ResponseWriter, r *http.Request) {
	var req ExamVerificationRequest
	if err := s.decodeAndValidate(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	session, err := s.identity.Register(r.Context(), dto.RegistrationRequest{
		MatricNumber:  req.MatricNumber,
		ProviderID:    req.ProviderID,
		ProviderToken: req.ProviderToken,
		DateOfBirth:   req.DateOfBirth,
		ExamNumber:    req.JambNumber,
	})
	if err != nil {
		if errors.Is(err, entities.ErrVerificationFailed) {
			log.WithError(err).Info("Exam record verification failed")
			writeError(w, http.StatusBadRequest, "verification_failed", "Verification failed")
			return
		}
		log.WithError(err).Error("Registration failed")
		writeError(w, http.StatusInternalServerError, "internal_error", "Registration failed")
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.identity.Logout(r.Context(), accessTokenFrom(r.Context())); err != nil {
		log.WithError(err).Error("Logout failed")
		writeError(w, http.StatusInternalServerError, "internal_error", "Logout failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleWallet(w http.ResponseWriter, r *http.Request) {
	wallet, err := s.accounts.GetWallet(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		if errors.Is(err, entities.ErrWalletNotFound) {
			writeError(w, http.StatusNotFound, "wallet_not_found", "Wallet not found")
			return
		}
		s.internalError(w, "Failed to load wallet", err)
		return
	}
	writeJSON(w, http.StatusOK, wallet)
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	limit, ok := limitParam(w, r)
	if !ok {
		return
	}
	txs, err := s.accounts.ListTransactions(r.Context(), userIDFrom(r.Context()), limit)
	if err != nil {
		s.internalError(w, "Failed to load transactions", err)
		return
	}
	if txs == nil {
		txs = []*entities.Transaction{}
	}
	writeJSON(w, http.StatusOK, txs)
}

func (s *Server) handleTrade(txType entities.TransactionType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req TradeRequest
		if err := s.decodeAndValidate(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}

		user, ok := s.currentUser(w, r)
		if !ok {
			return
		}

		var result dto.SettlementResult
		if txType == entities.TransactionTypeBuy {
			result = s.exchange.Buy(r.Context(), user.ID, user.InstitutionCode, req.Amount)
		} else {
			result = s.exchange.Sell(r.Context(), user.ID, user.InstitutionCode, req.Amount)
		}

		if !result.Success {
			writeJSON(w, statusForFailure(result.Reason), result)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func (s *Server) handleMarketStats(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["institution_code"]
	stats, err := s.accounts.MarketStats(r.Context(), code)
	if err != nil {
		if errors.Is(err, entities.ErrMarketNotFound) {
			writeError(w, http.StatusNotFound, "market_not_found", "Market not found")
			return
		}
		s.internalError(w, "Failed to load market", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	var req PlayRequest
	if err := s.decodeAndValidate(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	result := s.games.Play(r.Context(), user.ID, user.InstitutionCode, entities.GameType(req.GameType), req.StakeAmount)
	if !result.Success {
		writeJSON(w, statusForFailure(result.Reason), result)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleGameHistory(w http.ResponseWriter, r *http.Request) {
	limit, ok := limitParam(w, r)
	if !ok {
		return
	}
	games, err := s.accounts.ListGames(r.Context(), userIDFrom(r.Context()), limit)
	if err != nil {
		s.internalError(w, "Failed to load games", err)
		return
	}
	if games == nil {
		games = []*entities.Game{}
	}
	writeJSON(w, http.StatusOK, games)
}

// currentUser loads the authenticated user, writing an error response on failure
func (s *Server) currentUser(w http.ResponseWriter, r *http.Request) (*entities.User, bool) {
	user, err := s.accounts.GetUser(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		if errors.Is(err, entities.ErrUserNotFound) {
			writeError(w, http.StatusUnauthorized, "unauthenticated", "Could not validate credentials")
			return nil, false
		}
		s.internalError(w, "Failed to load user", err)
		return nil, false
	}
	return user, true
}

func (s *Server) internalError(w http.ResponseWriter, message string, err error) {
	log.WithError(err).Error(message)
	writeError(w, http.StatusInternalServerError, "internal_error", message)
}

func limitParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "limit must be a non-negative integer")
		return 0, false
	}
	return limit, true
}
