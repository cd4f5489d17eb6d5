package card

import (
	"slices"

	"github.com/mcoot/bingogame-go/internal/dependencies/random"
	"github.com/mcoot/bingogame-go/internal/model"
)

// Factory builds player cards and ball pools from a random source
type Factory struct {
	random random.Random
}

// New creates a new card Factory
func New(rnd random.Random) *Factory {
	return &Factory{random: rnd}
}

// Build generates a new card. Each column draws distinct values from its
// fixed range; the center column draws four and gets the free cell at
// index 2.
func (f *Factory) Build() model.Card {
	var card model.Card
	for col, rng := range model.ColumnRanges {
		if col == model.CenterCol {
			values := f.uniqueInRange(rng, model.CardSize-1)
			values = slices.Insert(values, model.CenterRow, model.FreeCell)
			copy(card[col][:], values)
			continue
		}
		copy(card[col][:], f.uniqueInRange(rng, model.CardSize))
	}
	return card
}

// uniqueInRange draws count distinct values from rng by rejection sampling
func (f *Factory) uniqueInRange(rng model.ColumnRange, count int) []int {
	values := make([]int, 0, count)
	for len(values) < count {
		v := random.Between(f.random, rng.Min, rng.Max)
		if !slices.Contains(values, v) {
			values = append(values, v)
		}
	}
	return values
}

// NewPool returns a pool holding a shuffled permutation of [1..n] with
// nothing drawn
func (f *Factory) NewPool(n int) model.BallPool {
	remaining := make([]int, n)
	for i := range remaining {
		remaining[i] = i + 1
	}
	random.Shuffle(f.random, remaining)
	return model.BallPool{
		Remaining: remaining,
		Drawn:     []int{},
	}
}
