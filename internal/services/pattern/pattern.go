package pattern

import (
	"github.com/mcoot/bingogame-go/internal/model"
)

// Checker decides whether a card completes a pattern given the drawn balls
type Checker func(card model.Card, drawn map[int]bool) bool

var checkers = map[model.WinStrategy]Checker{
	model.StrategyFullCard:       FullCard,
	model.StrategyHorizontalLine: HorizontalLine,
	model.StrategyVerticalLine:   VerticalLine,
	model.StrategyDiagonal:       Diagonal,
	model.StrategyCorners:        Corners,
	model.StrategyFrame:          Frame,
}

// For resolves a strategy tag to its checker
func For(strategy model.WinStrategy) (Checker, error) {
	checker, ok := checkers[strategy]
	if !ok {
		return nil, model.ErrInvalidStrategy
	}
	return checker, nil
}

// CheckWin evaluates the strategy for card against the drawn set
func CheckWin(strategy model.WinStrategy, card model.Card, drawn map[int]bool) (bool, error) {
	checker, err := For(strategy)
	if err != nil {
		return false, err
	}
	return checker(card, drawn), nil
}

// marked reports whether the cell at col/row is satisfied
func marked(card model.Card, drawn map[int]bool, col, row int) bool {
	v := card[col][row]
	return v == model.FreeCell || drawn[v]
}

const last = model.CardSize - 1

// FullCard requires every cell
func FullCard(card model.Card, drawn map[int]bool) bool {
	for col := 0; col < model.CardSize; col++ {
		for row := 0; row < model.CardSize; row++ {
			if !marked(card, drawn, col, row) {
				return false
			}
		}
	}
	return true
}

// HorizontalLine requires any complete row
func HorizontalLine(card model.Card, drawn map[int]bool) bool {
	for row := 0; row < model.CardSize; row++ {
		complete := true
		for col := 0; col < model.CardSize; col++ {
			if !marked(card, drawn, col, row) {
				complete = false
				break
			}
		}
		if complete {
			return true
		}
	}
	return false
}

// VerticalLine requires any complete column
func VerticalLine(card model.Card, drawn map[int]bool) bool {
	for col := 0; col < model.CardSize; col++ {
		complete := true
		for row := 0; row < model.CardSize; row++ {
			if !marked(card, drawn, col, row) {
				complete = false
				break
			}
		}
		if complete {
			return true
		}
	}
	return false
}

// Diagonal requires the main or the anti-diagonal
func Diagonal(card model.Card, drawn map[int]bool) bool {
	main, anti := true, true
	for i := 0; i < model.CardSize; i++ {
		if !marked(card, drawn, i, i) {
			main = false
		}
		if !marked(card, drawn, i, last-i) {
			anti = false
		}
	}
	return main || anti
}

// Corners requires the four corner cells
func Corners(card model.Card, drawn map[int]bool) bool {
	return marked(card, drawn, 0, 0) &&
		marked(card, drawn, last, 0) &&
		marked(card, drawn, 0, last) &&
		marked(card, drawn, last, last)
}

// Frame requires the outer border: first and last rows, plus the first
// and last columns for the interior rows
func Frame(card model.Card, drawn map[int]bool) bool {
	for col := 0; col < model.CardSize; col++ {
		if !marked(card, drawn, col, 0) || !marked(card, drawn, col, last) {
			return false
		}
	}
	for row := 1; row < last; row++ {
		if !marked(card, drawn, 0, row) || !marked(card, drawn, last, row) {
			return false
		}
	}
	return true
}
