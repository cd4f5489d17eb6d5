package model

// WinStrategy selects the pattern a card must complete to win.
// Values 0-3 match the game types hosts have always been able to pick.
type WinStrategy int

const (
	StrategyFullCard WinStrategy = iota
	StrategyDiagonal
	StrategyCorners
	StrategyFrame
	StrategyHorizontalLine
	StrategyVerticalLine
)

// DefaultStrategy is used for new sessions
const DefaultStrategy = StrategyFullCard

var strategyNames = map[WinStrategy]string{
	StrategyFullCard:       "full_card",
	StrategyDiagonal:       "diagonal",
	StrategyCorners:        "corners",
	StrategyFrame:          "frame",
	StrategyHorizontalLine: "horizontal_line",
	StrategyVerticalLine:   "vertical_line",
}

// IsValid reports whether the strategy is one of the known variants
func (s WinStrategy) IsValid() bool {
	_, ok := strategyNames[s]
	return ok
}

// String returns the strategy's stable name
func (s WinStrategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return "unknown"
}

// ParseStrategy resolves a strategy name to its tag
func ParseStrategy(name string) (WinStrategy, error) {
	for s, n := range strategyNames {
		if n == name {
			return s, nil
		}
	}
	return 0, ErrInvalidStrategy
}

// ValidStrategies returns all strategies in tag order
func ValidStrategies() []WinStrategy {
	return []WinStrategy{
		StrategyFullCard,
		StrategyDiagonal,
		StrategyCorners,
		StrategyFrame,
		StrategyHorizontalLine,
		StrategyVerticalLine,
	}
}
