package blackjack

// Options contains options for a blackjack table
type Options struct {
	// Decks is the number of decks in the shoe
	Decks int
	// HitSoft17 makes the house draw on a soft 17
	HitSoft17 bool
	// MaxSplits is the number of splits a seat may make in a round
	MaxSplits int
	// MaxHandsPerSeat is the number of hands a seat may be dealt
	MaxHandsPerSeat int
	MinWager        int
	MaxWager        int
	// DoubleAfterSplit allows doubling down on a hand created by a split
	DoubleAfterSplit bool
	// BlackjackPaysNum and BlackjackPaysDenom are the payout ratio for a blackjack (3:2)
	BlackjackPaysNum   int
	BlackjackPaysDenom int
	// PayTable resolves side wagers
	PayTable PayTable
}

// DefaultOptions returns the default set of options
func DefaultOptions() Options {
	return Options{
		Decks:              1,
		HitSoft17:          false,
		MaxSplits:          3,
		MaxHandsPerSeat:    3,
		MinWager:           1,
		MaxWager:           500,
		DoubleAfterSplit:   true,
		BlackjackPaysNum:   3,
		BlackjackPaysDenom: 2,
		PayTable:           PerfectPairs{},
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Decks < 1 {
		o.Decks = d.Decks
	}

	if o.MaxHandsPerSeat < 1 {
		o.MaxHandsPerSeat = d.MaxHandsPerSeat
	}

	if o.MaxSplits < 0 {
		o.MaxSplits = 0
	}

	if o.BlackjackPaysNum <= 0 || o.BlackjackPaysDenom <= 0 {
		o.BlackjackPaysNum = d.BlackjackPaysNum
		o.BlackjackPaysDenom = d.BlackjackPaysDenom
	}

	if o.PayTable == nil {
		o.PayTable = d.PayTable
	}

	return o
}
