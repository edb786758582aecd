package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"magbank/models"
)

type playRequest struct {
	GameID int64 `json:"gameId"`
	Bet    int64 `json:"bet"`
}

type playResponse struct {
	Reels      []string        `json:"reels"`
	Won        bool            `json:"won"`
	Multiplier int64           `json:"multiplier"`
	TicketsWon int64           `json:"ticketsWon"`
	Bet        int64           `json:"bet"`
	Balances   models.Balances `json:"balances"`
}

func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	var req playRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	result, err := s.wagers.Play(r.Context(), userIDFrom(r.Context()), req.GameID, req.Bet, r.RemoteAddr)
	if err != nil {
		writeError(w, err)
		return
	}

	reels := make([]string, len(result.Reels))
	for i, sym := range result.Reels {
		reels[i] = sym.Glyph
	}

	writeJSON(w, http.StatusOK, playResponse{
		Reels:      reels,
		Won:        result.Won,
		Multiplier: result.Multiplier,
		TicketsWon: result.TicketsWon,
		Bet:        result.Bet,
		Balances:   result.Balances,
	})
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	games, err := s.wagers.ListGames(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, games)
}

func (s *Server) handleGetSymbols(w http.ResponseWriter, r *http.Request) {
	gameID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid game id"})
		return
	}

	symbols, err := s.wagers.GetSymbols(r.Context(), gameID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, symbols)
}

func (s *Server) handlePlayHistory(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	history, err := s.wagers.GetHistory(r.Context(), userIDFrom(r.Context()), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if history == nil {
		history = []*models.PlayRecord{}
	}
	writeJSON(w, http.StatusOK, history)
}

func (s *Server) handlePlayerStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.wagers.GetStats(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleTicketBalance(w http.ResponseWriter, r *http.Request) {
	account, err := s.ledger.GetTicketAccount(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{
		"balance":       account.Balance,
		"totalWon":      account.TotalWon,
		"totalRedeemed": account.TotalRedeemed,
	})
}

func (s *Server) handleMagysBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := s.ledger.GetMagysBalance(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"balance": balance})
}

func (s *Server) handleMagysHistory(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	history, err := s.ledger.GetMagysHistory(r.Context(), userIDFrom(r.Context()), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if history == nil {
		history = []*models.LedgerEvent{}
	}
	writeJSON(w, http.StatusOK, history)
}

func (s *Server) handleRequestAccount(w http.ResponseWriter, r *http.Request) {
	result, err := s.accounts.RequestAccount(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

type resolveRequest struct {
	Action string `json:"action"`
	Reason string `json:"reason"`
	Notes  string `json:"notes"`
}

func (s *Server) handleResolveRequest(w http.ResponseWriter, r *http.Request) {
	accountID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request id"})
		return
	}

	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	result, err := s.accounts.ResolveRequest(r.Context(), accountID, models.ResolveAction(req.Action), req.Reason, req.Notes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.accounts.GetAccounts(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	if accounts == nil {
		accounts = []*models.CurrentAccount{}
	}
	writeJSON(w, http.StatusOK, accounts)
}

func (s *Server) handleAccountDetail(w http.ResponseWriter, r *http.Request) {
	accountID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid account id"})
		return
	}

	account, err := s.accounts.GetAccountDetail(r.Context(), accountID, userIDFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (s *Server) handlePendingRequests(w http.ResponseWriter, r *http.Request) {
	pending, err := s.accounts.ListPendingRequests(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if pending == nil {
		pending = []*models.PendingRequest{}
	}
	writeJSON(w, http.StatusOK, pending)
}

func (s *Server) handleListPrizes(w http.ResponseWriter, r *http.Request) {
	category := models.PrizeCategory(r.URL.Query().Get("category"))

	prizes, err := s.redemptions.ListPrizes(r.Context(), category)
	if err != nil {
		writeError(w, err)
		return
	}
	if prizes == nil {
		prizes = []*models.Prize{}
	}
	writeJSON(w, http.StatusOK, prizes)
}

type redeemRequest struct {
	PrizeID         int64  `json:"prizeId"`
	ShippingAddress string `json:"shippingAddress"`
}

func (s *Server) handleRedeem(w http.ResponseWriter, r *http.Request) {
	var req redeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	result, err := s.redemptions.Redeem(r.Context(), userIDFrom(r.Context()), req.PrizeID, req.ShippingAddress)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleRedemptions(w http.ResponseWriter, r *http.Request) {
	redemptions, err := s.redemptions.GetRedemptions(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	if redemptions == nil {
		redemptions = []*models.Redemption{}
	}
	writeJSON(w, http.StatusOK, redemptions)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := s.users.GetDashboard(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboard)
}
