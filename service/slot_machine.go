package service

import (
	"math/rand"

	"magbank/models"
)

// ReelCount is the number of independent reels drawn per slot play
const ReelCount = 3

// SlotMachine draws weighted-random symbols for slot plays. It is pure and
// stateless apart from its randomness source, so it needs no coordination.
type SlotMachine struct {
	randFloat func() float64
}

// NewSlotMachine creates a slot machine backed by the shared random source
func NewSlotMachine() *SlotMachine {
	return &SlotMachine{randFloat: rand.Float64}
}

// NewSlotMachineWithRand creates a slot machine with an injected random
// function returning values in [0, 1). Used by tests to force outcomes.
func NewSlotMachineWithRand(randFloat func() float64) *SlotMachine {
	return &SlotMachine{randFloat: randFloat}
}

// Spin draws one symbol using weighted sampling: a uniform draw in
// [0, totalWeight) walks the cumulative weights in table order and the
// first symbol whose cumulative weight reaches the draw wins. If
// floating-point drift leaves no match, the first symbol is returned;
// that fallback is defined behavior, not an error.
func (m *SlotMachine) Spin(symbols []models.SlotSymbol) models.SlotSymbol {
	var total float64
	for _, s := range symbols {
		total += s.Weight
	}

	draw := m.randFloat() * total

	var cumulative float64
	for _, s := range symbols {
		cumulative += s.Weight
		if draw <= cumulative {
			return s
		}
	}

	return symbols[0]
}

// Play draws reelCount independent symbols over the same full table
// (sampling with replacement). The play wins only when every reel shows
// the same symbol; two of three is a loss by design. The multiplier is
// the winning symbol's, zero on a loss.
func (m *SlotMachine) Play(symbols []models.SlotSymbol, reelCount int) (reels []models.SlotSymbol, won bool, multiplier int64) {
	reels = make([]models.SlotSymbol, reelCount)
	for i := range reels {
		reels[i] = m.Spin(symbols)
	}

	won = true
	for _, r := range reels[1:] {
		// Compare by symbol identity, not display name
		if r.ID != reels[0].ID {
			won = false
			break
		}
	}

	if won {
		multiplier = reels[0].Multiplier
	}
	return reels, won, multiplier
}
