package blackjack

import (
	"fmt"
	"sort"
	"time"

	"fairtable-server/pkg/deck"
)

// RoundStatus is the state of a blackjack round
type RoundStatus string

// RoundStatus constants
const (
	RoundActive    RoundStatus = "active"
	RoundCompleted RoundStatus = "completed"
)

// SeatRequest asks for a player seat with one wager per hand
type SeatRequest struct {
	PlayerID int64   `json:"playerId"`
	BetID    string  `json:"betId,omitempty"`
	Wagers   []Wager `json:"wagers"`
}

// Move is a player action accepted by the round
type Move struct {
	PlayerID  int64      `json:"playerId"`
	HandIndex int        `json:"handIndex"`
	Type      ActionType `json:"type"`
}

// Round is a single blackjack round dealt from a shoe derived from a FinalHash.
//
// Round is not safe for concurrent use. The owner serializes all access, and
// every mutating method either succeeds entirely or leaves the round untouched.
type Round struct {
	ID         string      `json:"id"`
	Status     RoundStatus `json:"status"`
	PublicHash string      `json:"publicHash"`
	Seats      []*Seat     `json:"seats"`
	Dealt      bool        `json:"dealt"`

	options  Options
	shoe     *deck.Shoe
	requests []SeatRequest
	moves    []Move
	now      func() time.Time
}

// NewRound returns an undealt round.
// The house takes seat 0 and players follow in request order.
// Hand indexes are unique within the round; the house hand is 0.
func NewRound(id, publicHash, finalHash string, options Options, requests []SeatRequest) (*Round, error) {
	options = options.withDefaults()
	if len(requests) == 0 {
		return nil, UserError("at least one seat is required")
	}

	house := &Seat{
		PlayerID:  HousePlayerID,
		SeatIndex: 0,
		Hands:     []*Hand{newHand(HouseHandIndex, Wager{Type: WagerMain})},
	}

	seats := []*Seat{house}
	players := make(map[int64]bool)
	handIndex := HouseHandIndex
	for i, req := range requests {
		if req.PlayerID == HousePlayerID {
			return nil, UserError(fmt.Sprintf("invalid player ID: %d", req.PlayerID))
		}

		if players[req.PlayerID] {
			return nil, UserError(fmt.Sprintf("player %d has more than one seat", req.PlayerID))
		}
		players[req.PlayerID] = true

		if len(req.Wagers) == 0 || len(req.Wagers) > options.MaxHandsPerSeat {
			return nil, UserError(fmt.Sprintf("a seat must have between 1 and %d hands", options.MaxHandsPerSeat))
		}

		seat := &Seat{
			PlayerID:  req.PlayerID,
			BetID:     req.BetID,
			SeatIndex: i + 1,
			Hands:     make([]*Hand, 0, len(req.Wagers)),
		}

		for _, wager := range req.Wagers {
			if err := validateWager(wager, options); err != nil {
				return nil, err
			}

			wager = wager.clone()
			wager.Type = WagerMain
			handIndex++
			seat.Hands = append(seat.Hands, newHand(handIndex, wager))
		}

		seats = append(seats, seat)
	}

	r := &Round{
		ID:         id,
		Status:     RoundActive,
		PublicHash: publicHash,
		Seats:      seats,
		options:    options,
		shoe:       deck.NewShoe(finalHash, options.Decks),
		requests:   cloneRequests(requests),
		moves:      []Move{},
		now:        time.Now,
	}

	r.refresh()
	return r, nil
}

func validateWager(wager Wager, options Options) error {
	if wager.Amount < options.MinWager {
		return UserError(fmt.Sprintf("the minimum wager is %d", options.MinWager))
	}

	if options.MaxWager > 0 && wager.Amount > options.MaxWager {
		return UserError(fmt.Sprintf("the maximum wager is %d", options.MaxWager))
	}

	for _, side := range wager.Sides {
		if side.Type == SideWagerInsurance {
			return UserError("insurance cannot be placed before the deal")
		}

		if side.Amount <= 0 {
			return UserError("side wagers must be positive")
		}

		if !options.PayTable.Supports(side.Type) {
			return UserError(fmt.Sprintf("unsupported side wager: %s", side.Type))
		}
	}

	return nil
}

func cloneRequests(requests []SeatRequest) []SeatRequest {
	cp := make([]SeatRequest, len(requests))
	for i, req := range requests {
		cp[i] = req
		cp[i].Wagers = make([]Wager, len(req.Wagers))
		for j, w := range req.Wagers {
			cp[i].Wagers[j] = w.clone()
		}
	}

	return cp
}

// House returns the house hand
func (r *Round) House() *Hand {
	return r.Seats[0].Hands[0]
}

// Moves returns the player actions accepted so far
func (r *Round) Moves() []Move {
	return append([]Move(nil), r.moves...)
}

// IsComplete returns true once the house has played and outcomes are known
func (r *Round) IsComplete() bool {
	return r.Status == RoundCompleted
}

// Seat returns the seat of the player, or nil
func (r *Round) Seat(playerID int64) *Seat {
	for _, s := range r.Seats {
		if s.PlayerID == playerID {
			return s
		}
	}

	return nil
}

// Hand returns the player's hand, or nil
func (r *Round) Hand(playerID int64, handIndex int) *Hand {
	seat := r.Seat(playerID)
	if seat == nil {
		return nil
	}

	return seat.hand(handIndex)
}

// CurrentHand returns the hand that must act next, or nil if no player hand can act
func (r *Round) CurrentHand() *Hand {
	if !r.Dealt || r.Status != RoundActive {
		return nil
	}

	for _, h := range r.playerHands() {
		if IsPlayableHand(h, StrictPlayable) {
			return h
		}
	}

	return nil
}

// playerHands returns every player hand in seat order, then hand order
func (r *Round) playerHands() []*Hand {
	seats := make([]*Seat, 0, len(r.Seats))
	for _, s := range r.Seats {
		if !s.IsHouse() {
			seats = append(seats, s)
		}
	}

	sort.SliceStable(seats, func(i, j int) bool {
		return seats[i].SeatIndex < seats[j].SeatIndex
	})

	hands := make([]*Hand, 0)
	for _, s := range seats {
		seatHands := append([]*Hand(nil), s.Hands...)
		sort.SliceStable(seatHands, func(i, j int) bool {
			return seatHands[i].HandIndex < seatHands[j].HandIndex
		})

		hands = append(hands, seatHands...)
	}

	return hands
}

func (r *Round) nextHandIndex() int {
	highest := HouseHandIndex
	for _, s := range r.Seats {
		for _, h := range s.Hands {
			if h.HandIndex > highest {
				highest = h.HandIndex
			}
		}
	}

	return highest + 1
}

func (r *Round) seatOf(hand *Hand) *Seat {
	for _, s := range r.Seats {
		for _, h := range s.Hands {
			if h == hand {
				return s
			}
		}
	}

	return nil
}

// Deal deals two cards to every player hand and then the house, one pass at a time.
// The house's second card is dealt face down.
func (r *Round) Deal() error {
	if r.Status != RoundActive {
		return ErrRoundComplete
	}

	if r.Dealt {
		return ErrAlreadyDealt
	}

	hands := r.playerHands()
	if !r.shoe.CanDraw(2 * (len(hands) + 1)) {
		return deck.ErrEndOfDeck
	}

	c := r.clone()
	hands = c.playerHands()
	house := c.House()
	for pass := 0; pass < 2; pass++ {
		for _, h := range append(hands, house) {
			card, idx, err := c.shoe.Draw()
			if err != nil {
				return err
			}

			if h == house && pass == 1 {
				card.Hidden = true
			}

			h.Cards.AddCard(card)
			h.Actions = append(h.Actions, newDrawAction(ActionDeal, c.now(), idx))
		}
	}

	c.Dealt = true
	c.refresh()
	if err := c.advance(); err != nil {
		return err
	}

	*r = *c
	return nil
}

// advance lets the house play once no player hand can act
func (r *Round) advance() error {
	if r.Status != RoundActive || !r.Dealt || r.CurrentHand() != nil {
		return nil
	}

	return r.playHouse()
}

// refresh recomputes the status of every hand
func (r *Round) refresh() {
	for _, s := range r.Seats {
		for _, h := range s.Hands {
			h.Status = r.statusFor(s, h)
		}
	}
}

func (r *Round) houseStatus() HandStatus {
	return ComputeStatus(r.House().Cards)
}

func (r *Round) statusFor(seat *Seat, hand *Hand) HandStatus {
	st := ComputeStatus(hand.Cards)
	if hand.IsHouse() {
		return st
	}

	splitFrom, isSplit := hand.SplitFrom()
	if isSplit {
		st.IsBlackjack = false
		st.SplitFrom = &splitFrom
	}

	st.WasDoubled = hand.hasAction(ActionDoubleDown)
	finished := st.IsBust || st.IsBlackjack || st.WasDoubled || hand.hasAction(ActionStand)
	if r.Status == RoundActive && r.Dealt && !finished {
		twoCards := len(hand.Cards) == 2
		st.CanHit = true
		st.CanStand = true
		st.CanDoubleDown = twoCards && (!isSplit || r.options.DoubleAfterSplit)
		st.CanSplit = twoCards &&
			hand.Cards[0].Rank == hand.Cards[1].Rank &&
			seat.splits() < r.options.MaxSplits

		up := r.House().upCard()
		st.CanInsure = up != nil && up.Rank == deck.Ace && !isSplit && hand.onlyDealt()
	}

	if r.Status == RoundCompleted {
		st.Outcome = outcomeFor(st, r.houseStatus())
	}

	return st
}

func (r *Round) clone() *Round {
	cp := *r
	cp.Seats = make([]*Seat, len(r.Seats))
	for i, s := range r.Seats {
		cp.Seats[i] = s.clone()
	}

	cp.shoe = r.shoe.Clone()
	cp.moves = append([]Move{}, r.moves...)
	return &cp
}
