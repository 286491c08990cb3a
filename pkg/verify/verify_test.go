package verify

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fairtable-server/pkg/blackjack"
	"fairtable-server/pkg/fairness"
	"fairtable-server/pkg/mines"
	"fairtable-server/pkg/round"
	"fairtable-server/pkg/store"
)

type fixture struct {
	mClock  *quartz.Mock
	mem     *store.Memory
	service *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	mClock := quartz.NewMock(t)
	mem := store.NewMemory(mClock)
	return &fixture{
		mClock:  mClock,
		mem:     mem,
		service: NewService(mem, mem, mClock, DefaultOptions(), Replayers(blackjack.DefaultOptions())),
	}
}

// playMines starts a round, places a bet, picks the given tiles and cashes out
func (f *fixture) playMines(t *testing.T, userID int64, picks ...int) (*round.Record, *round.Bet) {
	t.Helper()
	ctx := context.Background()

	commitment, err := fairness.GenerateCommitment(mines.Name)
	require.NoError(t, err)

	record := &round.Record{
		ID:         "round-" + commitment.PublicHash[:8],
		UserID:     userID,
		GameName:   mines.Name,
		SecretSeed: commitment.SecretSeed,
		PublicHash: commitment.PublicHash,
		Created:    f.mClock.Now(),
	}
	require.NoError(t, f.mem.Create(ctx, record))

	bet := &round.Bet{RoundID: record.ID, UserID: userID, GameName: mines.Name, ClientSeed: "lucky", Amount: 100}
	require.NoError(t, f.mem.CreateBet(ctx, bet))

	game, err := mines.NewGame(record.FinalHash(bet.ClientSeed, bet.Nonce), 3, 100)
	require.NoError(t, err)
	for _, tile := range picks {
		if game.IsOver() {
			break
		}

		_, err := game.Pick(tile)
		require.NoError(t, err)
	}

	if !game.IsOver() {
		require.NoError(t, game.CashOut())
	}

	settlement, err := game.Settlement()
	require.NoError(t, err)
	result, err := json.Marshal(settlement)
	require.NoError(t, err)
	require.NoError(t, f.mem.SettleBet(ctx, bet.ID, result))

	bet, err = f.mem.GetBet(ctx, bet.ID)
	require.NoError(t, err)
	require.NotEmpty(t, bet.Result)

	return record, bet
}

func (f *fixture) end(t *testing.T, record *round.Record) {
	t.Helper()
	_, err := f.mem.End(context.Background(), record.ID)
	require.NoError(t, err)
}

func TestService_Verify(t *testing.T) {
	a := assert.New(t)
	f := newFixture(t)
	ctx := context.Background()

	record, bet := f.playMines(t, 1, 0, 1, 2)
	f.end(t, record)

	result, err := f.service.Verify(ctx, mines.Name, bet.ID)
	a.NoError(err)
	a.Equal(bet.ID, result.BetID)
	a.Equal(record.ID, result.RoundID)
	a.Equal(record.SecretSeed, result.ServerSeed)
	a.Equal(record.PublicHash, result.HashedServerSeed)
	a.Equal(int64(1), result.Nonce)
	a.Equal("lucky", result.ClientSeed)
	a.Equal(fairness.Combine(record.SecretSeed, "lucky", 1), result.FinalHash)

	var recorded mines.Settlement
	a.NoError(json.Unmarshal(bet.Result, &recorded))
	if a.IsType(&mines.Settlement{}, result.Result) {
		a.Equal(recorded.Mines, result.Result.(*mines.Settlement).Mines)
		a.Equal(recorded.Payout, result.Result.(*mines.Settlement).Payout)
	}
}

func TestService_Verify_errors(t *testing.T) {
	a := assert.New(t)
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.Verify(ctx, "poker", "bet")
	a.EqualError(err, "no replayer for game: poker")

	_, err = f.service.Verify(ctx, mines.Name, "missing")
	a.ErrorIs(err, round.ErrBetNotFound)

	record, bet := f.playMines(t, 1)
	f.end(t, record)

	_, err = f.service.Verify(ctx, blackjack.Name, bet.ID)
	a.ErrorIs(err, round.ErrBetNotFound)

	orphan := &round.Bet{UserID: 1, GameName: mines.Name, ClientSeed: "lucky"}
	a.NoError(f.mem.CreateBet(ctx, orphan))
	_, err = f.service.Verify(ctx, mines.Name, orphan.ID)
	a.ErrorIs(err, round.ErrNoRoundOnBet)
}

func TestService_Verify_unsettled(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	record, _ := f.playMines(t, 1)
	f.end(t, record)

	bet := &round.Bet{RoundID: record.ID, UserID: 1, GameName: mines.Name, ClientSeed: "lucky"}
	assert.NoError(t, f.mem.CreateBet(ctx, bet))

	_, err := f.service.Verify(ctx, mines.Name, bet.ID)
	assert.ErrorIs(t, err, ErrBetNotSettled)
}

func TestService_Verify_mismatch(t *testing.T) {
	a := assert.New(t)
	f := newFixture(t)
	ctx := context.Background()

	record, bet := f.playMines(t, 1)
	f.end(t, record)

	var settlement mines.Settlement
	a.NoError(json.Unmarshal(bet.Result, &settlement))
	settlement.Payout = 1000
	tampered, _ := json.Marshal(settlement)
	a.NoError(f.mem.SettleBet(ctx, bet.ID, tampered))

	_, err := f.service.Verify(ctx, mines.Name, bet.ID)
	a.ErrorIs(err, ErrResultMismatch)
}

func TestService_Verify_tooOld(t *testing.T) {
	a := assert.New(t)
	f := newFixture(t)
	ctx := context.Background()

	record, bet := f.playMines(t, 1)
	f.end(t, record)

	f.mClock.Advance(DefaultOptions().Retention + time.Hour).MustWait(ctx)
	_, err := f.service.Verify(ctx, mines.Name, bet.ID)
	a.ErrorIs(err, ErrRoundTooOld)

	// purged records are too old as well
	record, bet = f.playMines(t, 2)
	f.end(t, record)
	f.mClock.Advance(time.Hour).MustWait(ctx)
	_, err = f.mem.PurgeEnded(ctx, f.mClock.Now())
	a.NoError(err)

	_, err = f.service.Verify(ctx, mines.Name, bet.ID)
	a.ErrorIs(err, ErrRoundTooOld)
}

// closingStore ends the round right after the first lookup sees it active
type closingStore struct {
	*store.Memory
	once sync.Once
}

func (c *closingStore) Get(ctx context.Context, roundID string) (*round.Record, error) {
	record, err := c.Memory.Get(ctx, roundID)
	if err == nil && record.IsActive() {
		c.once.Do(func() {
			_, err = c.Memory.End(ctx, roundID)
		})
	}

	return record, err
}

// verifyWithClock runs Verify while advancing the clock until it returns
func verifyWithClock(t *testing.T, mClock *quartz.Mock, service *Service, gameName, betID string) (*Result, error) {
	t.Helper()
	ctx := context.Background()

	type outcome struct {
		result *Result
		err    error
	}

	done := make(chan outcome, 1)
	go func() {
		result, err := service.Verify(ctx, gameName, betID)
		done <- outcome{result, err}
	}()

	for {
		select {
		case o := <-done:
			return o.result, o.err
		case <-time.After(10 * time.Millisecond):
			mClock.Advance(DefaultOptions().Wait).MustWait(ctx)
		}
	}
}

func TestService_Verify_waitsForClose(t *testing.T) {
	a := assert.New(t)
	f := newFixture(t)

	record, bet := f.playMines(t, 1)
	closing := &closingStore{Memory: f.mem}
	service := NewService(closing, f.mem, f.mClock, DefaultOptions(), Replayers(blackjack.DefaultOptions()))

	result, err := verifyWithClock(t, f.mClock, service, mines.Name, bet.ID)
	a.NoError(err)
	if a.NotNil(result) {
		a.Equal(record.SecretSeed, result.ServerSeed)
	}
}

func TestService_Verify_stillActive(t *testing.T) {
	a := assert.New(t)
	f := newFixture(t)

	_, bet := f.playMines(t, 1)

	result, err := verifyWithClock(t, f.mClock, f.service, mines.Name, bet.ID)
	a.ErrorIs(err, round.ErrRoundStillActive)
	a.Nil(result)
}

func TestService_Verify_userHasActiveRound(t *testing.T) {
	a := assert.New(t)
	f := newFixture(t)

	record, bet := f.playMines(t, 1, 0)
	f.end(t, record)

	// another user's active round does not block
	f.playMines(t, 2)
	_, err := f.service.Verify(context.Background(), mines.Name, bet.ID)
	a.NoError(err)

	next, _ := f.playMines(t, 1)
	result, err := verifyWithClock(t, f.mClock, f.service, mines.Name, bet.ID)
	a.ErrorIs(err, round.ErrRoundStillActive)
	a.Nil(result)

	f.end(t, next)
	result, err = f.service.Verify(context.Background(), mines.Name, bet.ID)
	a.NoError(err)
	if a.NotNil(result) {
		a.Equal(record.SecretSeed, result.ServerSeed)
	}
}

func TestService_Verify_canceled(t *testing.T) {
	f := newFixture(t)
	_, bet := f.playMines(t, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.service.Verify(ctx, mines.Name, bet.ID)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestService_VerifyMany(t *testing.T) {
	a := assert.New(t)
	f := newFixture(t)
	ctx := context.Background()

	var betIDs []string
	for i := 0; i < 5; i++ {
		record, bet := f.playMines(t, int64(i+1), i)
		f.end(t, record)
		betIDs = append(betIDs, bet.ID)
	}

	results, err := f.service.VerifyMany(ctx, mines.Name, betIDs)
	a.NoError(err)
	a.Len(results, 5)
	for i, result := range results {
		a.Equal(betIDs[i], result.BetID)
	}

	_, err = f.service.VerifyMany(ctx, mines.Name, append(betIDs, "missing"))
	a.ErrorIs(err, round.ErrBetNotFound)
	a.Contains(err.Error(), "bet missing")
}

func TestService_blackjack(t *testing.T) {
	a := assert.New(t)
	f := newFixture(t)
	ctx := context.Background()

	commitment, err := fairness.GenerateCommitment(blackjack.Name)
	a.NoError(err)
	record := &round.Record{
		ID:         "bj",
		UserID:     1,
		GameName:   blackjack.Name,
		SecretSeed: commitment.SecretSeed,
		PublicHash: commitment.PublicHash,
		Created:    f.mClock.Now(),
	}
	a.NoError(f.mem.Create(ctx, record))

	bet := &round.Bet{RoundID: record.ID, UserID: 1, GameName: blackjack.Name, ClientSeed: "lucky", Amount: 10}
	a.NoError(f.mem.CreateBet(ctx, bet))

	r, err := blackjack.NewRound(record.ID, record.PublicHash, record.FinalHash("lucky", bet.Nonce), blackjack.DefaultOptions(), []blackjack.SeatRequest{{
		PlayerID: 1,
		BetID:    bet.ID,
		Wagers:   []blackjack.Wager{{Amount: 10}},
	}})
	a.NoError(err)
	a.NoError(r.Deal())
	for i := 0; i < 5 && !r.IsComplete(); i++ {
		hand := r.CurrentHand()
		if !a.NotNil(hand) {
			return
		}

		_, err := r.Apply(1, hand.HandIndex, blackjack.ActionStand)
		a.NoError(err)
	}

	settlement, err := r.Settlement()
	a.NoError(err)
	result, _ := json.Marshal(settlement)
	a.NoError(f.mem.SettleBet(ctx, bet.ID, result))
	f.end(t, record)

	verified, err := f.service.Verify(ctx, blackjack.Name, bet.ID)
	a.NoError(err)
	if a.NotNil(verified) {
		a.Equal(settlement.Payouts, verified.Result.(*blackjack.Settlement).Payouts)
	}
}
