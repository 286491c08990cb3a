package mux

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	gmux "github.com/gorilla/mux"

	"fairtable-server/internal/jwt"
	"fairtable-server/pkg/blackjack"
	"fairtable-server/pkg/mines"
	"fairtable-server/pkg/room"
	"fairtable-server/pkg/verify"
)

type ctxKey int

const (
	ctxUserIDKey ctxKey = iota
)

// Mux handles HTTP requests
type Mux struct {
	*gmux.Router
	version  string
	pitBoss  *room.PitBoss
	verifier *verify.Service

	// store for testing purposes
	authRouter *gmux.Router
}

// NewMux returns a new HTTP mux
// The pit boss must already be on shift.
func NewMux(version string, pitBoss *room.PitBoss, verifier *verify.Service) *Mux {
	this := &Mux{
		Router:   gmux.NewRouter(),
		version:  version,
		pitBoss:  pitBoss,
		verifier: verifier,
	}

	this.authRouter = this.Router.NewRoute().Subrouter()
	this.authRouter.Use(this.authMiddleware)

	// unauthorized endpoints
	{
		r := this.Router
		r.Methods(http.MethodGet).Path("/health").Handler(this.getHealth())
	}

	// requires bearer authorization
	{
		r := this.authRouter

		r.Methods(http.MethodPost).Path("/blackjack/round").Handler(this.postRound(blackjack.Name))
		r.Methods(http.MethodGet).Path("/blackjack/round").Handler(this.getRound(blackjack.Name))
		r.Methods(http.MethodPost).Path("/blackjack/round/action").Handler(this.postBlackjackAction())

		r.Methods(http.MethodPost).Path("/mines/round").Handler(this.postRound(mines.Name))
		r.Methods(http.MethodGet).Path("/mines/round").Handler(this.getRound(mines.Name))
		r.Methods(http.MethodPost).Path("/mines/round/pick").Handler(this.postMinesPick())
		r.Methods(http.MethodPost).Path("/mines/round/end").Handler(this.postMinesEnd())

		game := "{game:" + blackjack.Name + "|" + mines.Name + "}"
		r.Methods(http.MethodGet).Path("/verify/" + game + "/{betId}").Handler(this.getVerify())
		r.Methods(http.MethodPost).Path("/verify/" + game).Handler(this.postVerify())
	}

	return this
}

func (m *Mux) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.FormValue("access_token")
		if token == "" {
			authHeader := strings.Split(r.Header.Get("Authorization"), " ")
			if len(authHeader) != 2 || strings.ToLower(authHeader[0]) != "bearer" {
				writeJSONError(w, http.StatusUnauthorized, nil)
				return
			}

			token = authHeader[1]
		}

		id, err := jwt.ValidUserID(token)
		if err != nil {
			writeJSONError(w, http.StatusUnauthorized, nil)
			return
		}

		newCtx := context.WithValue(r.Context(), ctxUserIDKey, id)
		w.Header().Set("FairTable-UserID", strconv.FormatInt(id, 10))
		next.ServeHTTP(w, r.WithContext(newCtx))
	})
}

// userID requires authMiddleware to execute first
func userID(r *http.Request) int64 {
	return r.Context().Value(ctxUserIDKey).(int64)
}
