package server

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"magbank/models"
)

type errorResponse struct {
	Error    string `json:"error"`
	Balance  *int64 `json:"balance,omitempty"`
	Required *int64 `json:"required,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("Failed to encode response")
	}
}

// writeError maps domain errors to HTTP statuses. Insufficient-balance
// errors carry the balance and requirement so the client can render the
// shortfall without another round trip.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, models.ErrInvalidBet),
		errors.Is(err, models.ErrInvalidAction):
		status = http.StatusBadRequest
	case errors.Is(err, models.ErrGameNotFound),
		errors.Is(err, models.ErrRequestNotFound),
		errors.Is(err, models.ErrAccountNotFound),
		errors.Is(err, models.ErrPrizeNotFound),
		errors.Is(err, models.ErrUserNotFound),
		errors.Is(err, models.ErrMagysAccountNotFound),
		errors.Is(err, models.ErrTicketAccountNotFound):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrInsufficientFunds),
		errors.Is(err, models.ErrInsufficientTickets),
		errors.Is(err, models.ErrDuplicateRequest),
		errors.Is(err, models.ErrRequestNotPending),
		errors.Is(err, models.ErrPrizeInactive),
		errors.Is(err, models.ErrOutOfStock):
		status = http.StatusConflict
	}

	resp := errorResponse{Error: err.Error()}

	var balErr *models.BalanceError
	if errors.As(err, &balErr) {
		resp.Balance = &balErr.Balance
		resp.Required = &balErr.Required
	}

	if status == http.StatusInternalServerError {
		log.WithError(err).Error("Request failed")
		// Internal details stay in the logs
		resp.Error = "internal server error"
	}

	writeJSON(w, status, resp)
}
