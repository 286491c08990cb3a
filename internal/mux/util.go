package mux

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"fairtable-server/pkg/blackjack"
	"fairtable-server/pkg/mines"
	"fairtable-server/pkg/room"
	"fairtable-server/pkg/round"
	"fairtable-server/pkg/verify"
)

// maxBatch is the most bets that can be verified in one request
const maxBatch = 100

func decodeRequest(w http.ResponseWriter, r *http.Request, payload interface{}) bool {
	if ct := r.Header.Get("Content-Type"); ct != "application/json" && ct != "text/json" {
		writeJSONError(w, http.StatusUnsupportedMediaType, nil)
		return false
	}

	if err := json.NewDecoder(r.Body).Decode(payload); err != nil {
		writeJSONError(w, http.StatusBadRequest, err)
		return false
	}

	return true
}

func writeJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logrus.WithError(err).Error("could not write JSON response")
	}
}

type errorResponse struct {
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
}

func writeJSONError(w http.ResponseWriter, statusCode int, err error) {
	var msg string

	if statusCode < 500 && err != nil {
		msg = err.Error()
	} else {
		msg = http.StatusText(statusCode)
	}

	if statusCode >= 500 {
		logrus.WithField("statusCode", statusCode).Error(err)
	}

	writeJSON(w, statusCode, errorResponse{
		Message:    msg,
		StatusCode: statusCode,
	})
}

// writeGameError maps errors from the game and verification layers to a status code
func writeGameError(w http.ResponseWriter, err error) {
	writeJSONError(w, statusCodeFor(err), err)
}

func statusCodeFor(err error) int {
	var bjErr blackjack.UserError
	var minesErr mines.UserError
	var roomErr room.UserError

	switch {
	case errors.Is(err, round.ErrRoundStillActive):
		return http.StatusConflict
	case errors.Is(err, verify.ErrRoundTooOld), errors.Is(err, round.ErrRoundExpired):
		return http.StatusGone
	case errors.Is(err, room.ErrGameNotFound),
		errors.Is(err, round.ErrBetNotFound),
		errors.Is(err, round.ErrRoundNotFound):
		return http.StatusNotFound
	case errors.Is(err, verify.ErrResultMismatch):
		return http.StatusUnprocessableEntity
	case errors.Is(err, round.ErrNoRoundOnBet),
		errors.Is(err, verify.ErrBetNotSettled),
		errors.Is(err, blackjack.ErrUnknownPlayerOrHand),
		errors.Is(err, blackjack.ErrIllegalAction),
		errors.Is(err, blackjack.ErrNotThisHandsTurn),
		errors.Is(err, blackjack.ErrRoundComplete),
		errors.Is(err, mines.ErrGameOver),
		errors.Is(err, mines.ErrTileRevealed),
		errors.As(err, &bjErr),
		errors.As(err, &minesErr),
		errors.As(err, &roomErr):
		return http.StatusBadRequest
	}

	return http.StatusInternalServerError
}
