package mux

import (
	"fmt"
	"net/http"

	gmux "github.com/gorilla/mux"
)

func (m *Mux) getVerify() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := gmux.Vars(r)
		result, err := m.verifier.Verify(r.Context(), vars["game"], vars["betId"])
		if err != nil {
			writeGameError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

type postVerifyPayload struct {
	BetIDs []string `json:"betIds"`
}

func (m *Mux) postVerify() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload postVerifyPayload
		if !decodeRequest(w, r, &payload) {
			return
		}

		if len(payload.BetIDs) == 0 || len(payload.BetIDs) > maxBatch {
			writeJSONError(w, http.StatusBadRequest, fmt.Errorf("betIds must have between 1 and %d entries", maxBatch))
			return
		}

		results, err := m.verifier.VerifyMany(r.Context(), gmux.Vars(r)["game"], payload.BetIDs)
		if err != nil {
			writeGameError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, results)
	}
}
