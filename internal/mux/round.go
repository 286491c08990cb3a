package mux

import (
	"net/http"

	"fairtable-server/pkg/blackjack"
	"fairtable-server/pkg/mines"
	"fairtable-server/pkg/playable"
	"fairtable-server/pkg/room"
)

// postRound starts a game
// The body is the client seed plus whatever the game needs: wagers for blackjack, amount and minesCount for mines.
func (m *Mux) postRound(gameName string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload playable.AdditionalData
		if !decodeRequest(w, r, &payload) {
			return
		}

		clientSeed, _ := payload.GetString("clientSeed")
		state, err := m.pitBoss.StartGame(r.Context(), room.StartRequest{
			UserID:         userID(r),
			GameName:       gameName,
			ClientSeed:     clientSeed,
			AdditionalData: payload,
		})
		if err != nil {
			writeGameError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, state)
	}
}

func (m *Mux) getRound(gameName string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, err := m.pitBoss.State(r.Context(), userID(r), gameName)
		if err != nil {
			writeGameError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, state)
	}
}

func (m *Mux) action(w http.ResponseWriter, r *http.Request, gameName string, message *playable.PayloadIn) (*room.State, bool) {
	state, err := m.pitBoss.Action(r.Context(), userID(r), gameName, message)
	if err != nil {
		writeGameError(w, err)
		return nil, false
	}

	return state, true
}

type postBlackjackActionPayload struct {
	HandIndex int    `json:"handIndex"`
	Action    string `json:"action"`
}

func (m *Mux) postBlackjackAction() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload postBlackjackActionPayload
		if !decodeRequest(w, r, &payload) {
			return
		}

		state, ok := m.action(w, r, blackjack.Name, &playable.PayloadIn{
			Action:    payload.Action,
			HandIndex: payload.HandIndex,
		})
		if !ok {
			return
		}

		writeJSON(w, http.StatusOK, state)
	}
}

type postMinesPickPayload struct {
	Tile *int `json:"tile"`
}

type minesPickResponse struct {
	Label string `json:"label"`
	*room.State
}

func (m *Mux) postMinesPick() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload postMinesPickPayload
		if !decodeRequest(w, r, &payload) {
			return
		}

		if payload.Tile == nil {
			writeJSONError(w, http.StatusBadRequest, mines.UserError("tile is required"))
			return
		}

		state, ok := m.action(w, r, mines.Name, &playable.PayloadIn{
			Action:         "pick",
			AdditionalData: playable.AdditionalData{"tile": float64(*payload.Tile)},
		})
		if !ok {
			return
		}

		resp := minesPickResponse{State: state}
		if view, ok := state.Game.(*mines.View); ok {
			resp.Label = view.Tiles[*payload.Tile]
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func (m *Mux) postMinesEnd() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, ok := m.action(w, r, mines.Name, &playable.PayloadIn{Action: "cashout"})
		if !ok {
			return
		}

		writeJSON(w, http.StatusOK, state)
	}
}
