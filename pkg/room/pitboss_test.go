package room

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"

	"fairtable-server/pkg/blackjack"
	"fairtable-server/pkg/fairness"
	"fairtable-server/pkg/mines"
	"fairtable-server/pkg/playable"
	"fairtable-server/pkg/room/gamefactory"
	"fairtable-server/pkg/round"
	"fairtable-server/pkg/store"
)

func newTestPitBoss(t *testing.T) (*PitBoss, *round.Manager, *store.Memory) {
	t.Helper()

	mem := store.NewMemory(quartz.NewReal())
	manager := round.NewManager(mem, quartz.NewReal(), round.DefaultOptions())
	p := NewPitBoss(manager, mem, gamefactory.New(blackjack.DefaultOptions()))
	p.StartShift()
	t.Cleanup(p.EndShift)

	return p, manager, mem
}

func minesRequest(userID int64) StartRequest {
	return StartRequest{
		UserID:     userID,
		GameName:   mines.Name,
		ClientSeed: "lucky",
		AdditionalData: playable.AdditionalData{
			"amount":     float64(100),
			"minesCount": float64(3),
		},
	}
}

func TestPitBoss_StartGame_validation(t *testing.T) {
	a := assert.New(t)
	p, _, _ := newTestPitBoss(t)
	ctx := context.Background()

	req := minesRequest(1)
	req.GameName = "poker"
	_, err := p.StartGame(ctx, req)
	a.EqualError(err, "no factory with name: poker")

	req = minesRequest(1)
	req.ClientSeed = ""
	_, err = p.StartGame(ctx, req)
	a.Equal(UserError("clientSeed is required"), err)

	req = minesRequest(1)
	req.AdditionalData["amount"] = float64(0)
	_, err = p.StartGame(ctx, req)
	a.EqualError(err, "amount must be positive")

	// failed requests never hold the key
	state, err := p.StartGame(ctx, minesRequest(1))
	a.NoError(err)
	a.Equal(int64(1), state.Nonce)
}

func TestPitBoss_mines(t *testing.T) {
	a := assert.New(t)
	p, manager, mem := newTestPitBoss(t)
	ctx := context.Background()

	state, err := p.StartGame(ctx, minesRequest(1))
	a.NoError(err)
	a.NotEmpty(state.RoundID)
	a.NotEmpty(state.BetID)
	a.NotEmpty(state.PublicHash)
	a.Equal("lucky", state.ClientSeed)
	a.Equal(int64(1), state.Nonce)
	a.Nil(state.Reveal)
	a.IsType(&mines.View{}, state.Game)

	_, err = p.StartGame(ctx, minesRequest(1))
	a.ErrorIs(err, round.ErrRoundStillActive)

	// other players are unaffected
	_, err = p.StartGame(ctx, minesRequest(2))
	a.NoError(err)

	again, err := p.State(ctx, 1, mines.Name)
	a.NoError(err)
	a.Equal(state.RoundID, again.RoundID)

	_, err = p.Action(ctx, 1, mines.Name, &playable.PayloadIn{Action: "dig"})
	a.EqualError(err, "invalid action: dig")

	final, err := p.Action(ctx, 1, mines.Name, &playable.PayloadIn{Action: "cashout"})
	a.NoError(err)
	if a.NotNil(final.Reveal) {
		a.Equal(map[int64]int{1: 0}, final.Reveal.Payouts)
		a.True(fairness.Commitment{SecretSeed: final.Reveal.ServerSeed, PublicHash: state.PublicHash}.Verify())
	}

	active, err := manager.IsActive(ctx, 1, mines.Name)
	a.NoError(err)
	a.False(active)

	bet, err := mem.GetBet(ctx, state.BetID)
	a.NoError(err)
	a.True(bet.IsSettled())
	a.Equal(100, bet.Amount)

	var settlement mines.Settlement
	a.NoError(json.Unmarshal(bet.Result, &settlement))
	finalHash := fairness.Combine(final.Reveal.ServerSeed, "lucky", 1)
	_, err = mines.Replay(finalHash, &settlement)
	a.NoError(err)

	_, err = p.State(ctx, 1, mines.Name)
	a.ErrorIs(err, ErrGameNotFound)

	_, err = p.Action(ctx, 1, mines.Name, &playable.PayloadIn{Action: "cashout"})
	a.ErrorIs(err, ErrGameNotFound)

	next, err := p.StartGame(ctx, minesRequest(1))
	a.NoError(err)
	a.Equal(int64(2), next.Nonce)
	a.NotEqual(state.RoundID, next.RoundID)
}

func TestPitBoss_blackjack(t *testing.T) {
	a := assert.New(t)
	p, _, mem := newTestPitBoss(t)
	ctx := context.Background()

	state, err := p.StartGame(ctx, StartRequest{
		UserID:     1,
		GameName:   blackjack.Name,
		ClientSeed: "lucky",
		AdditionalData: playable.AdditionalData{
			"wagers": []interface{}{map[string]interface{}{"amount": float64(10)}},
		},
	})
	a.NoError(err)

	// stand on every hand until the house has played
	for i := 0; i < 5 && state.Reveal == nil; i++ {
		view, ok := state.Game.(*blackjack.View)
		if !a.True(ok) || !a.NotNil(view.CurrentHand) {
			return
		}

		state, err = p.Action(ctx, 1, blackjack.Name, &playable.PayloadIn{
			Action:    "stand",
			HandIndex: *view.CurrentHand,
		})
		if !a.NoError(err) {
			return
		}
	}

	if !a.NotNil(state.Reveal) {
		return
	}

	a.Equal(blackjack.RoundCompleted, state.Game.(*blackjack.View).Status)

	bet, err := mem.GetBet(ctx, state.BetID)
	a.NoError(err)

	var settlement blackjack.Settlement
	a.NoError(json.Unmarshal(bet.Result, &settlement))
	a.Equal(state.Reveal.Payouts, settlement.Payouts)

	finalHash := fairness.Combine(state.Reveal.ServerSeed, "lucky", state.Nonce)
	_, err = blackjack.Replay(finalHash, blackjack.DefaultOptions(), &settlement)
	a.NoError(err)
}

// flakyBets fails SettleBet until failures reaches zero
type flakyBets struct {
	*store.Memory
	failures int
}

func (f *flakyBets) SettleBet(ctx context.Context, betID string, result []byte) error {
	if f.failures > 0 {
		f.failures--
		return errors.New("connection reset")
	}

	return f.Memory.SettleBet(ctx, betID, result)
}

func TestPitBoss_settleFailureKeepsRoundActive(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()

	mem := store.NewMemory(quartz.NewReal())
	manager := round.NewManager(mem, quartz.NewReal(), round.DefaultOptions())
	bets := &flakyBets{Memory: mem, failures: 1}
	p := NewPitBoss(manager, bets, gamefactory.New(blackjack.DefaultOptions()))
	p.StartShift()
	t.Cleanup(p.EndShift)

	state, err := p.StartGame(ctx, minesRequest(1))
	a.NoError(err)

	_, err = p.Action(ctx, 1, mines.Name, &playable.PayloadIn{Action: "cashout"})
	a.ErrorIs(err, round.ErrRoundStillActive)

	// nothing is revealed before the bet is settled
	active, err := manager.IsActive(ctx, 1, mines.Name)
	a.NoError(err)
	a.True(active)

	bet, err := mem.GetBet(ctx, state.BetID)
	a.NoError(err)
	a.False(bet.IsSettled())

	final, err := p.State(ctx, 1, mines.Name)
	a.NoError(err)
	if a.NotNil(final) && a.NotNil(final.Reveal) {
		a.True(fairness.Commitment{SecretSeed: final.Reveal.ServerSeed, PublicHash: state.PublicHash}.Verify())
	}

	active, err = manager.IsActive(ctx, 1, mines.Name)
	a.NoError(err)
	a.False(active)

	bet, err = mem.GetBet(ctx, state.BetID)
	a.NoError(err)
	a.True(bet.IsSettled())
}

func TestPitBoss_StartGame_closesOrphanedRound(t *testing.T) {
	a := assert.New(t)
	p, manager, _ := newTestPitBoss(t)
	ctx := context.Background()

	orphan, err := manager.Start(ctx, 1, mines.Name)
	a.NoError(err)

	state, err := p.StartGame(ctx, minesRequest(1))
	a.NoError(err)
	a.NotEqual(orphan.ID, state.RoundID)

	closed, err := manager.Get(ctx, orphan.ID)
	a.NoError(err)
	a.False(closed.IsActive())
}

func TestPitBoss_StartGame_concurrent(t *testing.T) {
	a := assert.New(t)
	p, _, _ := newTestPitBoss(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	var lock sync.Mutex
	started, rejected := 0, 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := p.StartGame(ctx, minesRequest(1))

			lock.Lock()
			defer lock.Unlock()
			if err == nil {
				started++
			} else if a.ErrorIs(err, round.ErrRoundStillActive) {
				rejected++
			}
		}()
	}

	wg.Wait()
	a.Equal(1, started)
	a.Equal(9, rejected)
}

func TestPitBoss_EndShift(t *testing.T) {
	a := assert.New(t)
	p, _, _ := newTestPitBoss(t)
	ctx := context.Background()

	_, err := p.StartGame(ctx, minesRequest(1))
	a.NoError(err)

	p.EndShift()

	_, err = p.State(ctx, 1, mines.Name)
	a.ErrorIs(err, ErrClosed)
}
