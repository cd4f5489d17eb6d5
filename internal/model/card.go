package model

// Card dimensions and the sentinel used for the free cell
const (
	CardSize  = 5
	FreeCell  = 0
	CenterCol = 2
	CenterRow = 2
)

// ColumnLabels are the conventional column headers, indexed by column
var ColumnLabels = [CardSize]string{"B", "I", "N", "G", "O"}

// ColumnRange is the inclusive range of ball values a column draws from
type ColumnRange struct {
	Min int
	Max int
}

// ColumnRanges holds the fixed, non-overlapping range for each card column
var ColumnRanges = [CardSize]ColumnRange{
	{Min: 1, Max: 15},
	{Min: 16, Max: 30},
	{Min: 31, Max: 45},
	{Min: 46, Max: 60},
	{Min: 61, Max: 75},
}

// Column is one labeled card column, top row first
type Column [CardSize]int

// Card is a player's 5x5 grid, column-major: Card[col][row].
// Cards are plain values; replacing a card assigns a new one.
type Card [CardSize]Column

// Cell returns the value at the given column and row
func (c Card) Cell(col, row int) int {
	return c[col][row]
}

// IsFree reports whether the cell at col/row is the free cell
func (c Card) IsFree(col, row int) bool {
	return c[col][row] == FreeCell
}

// Row returns the values of a row across all columns
func (c Card) Row(row int) [CardSize]int {
	var out [CardSize]int
	for col := 0; col < CardSize; col++ {
		out[col] = c[col][row]
	}
	return out
}

// Values returns every non-free value on the card
func (c Card) Values() []int {
	values := make([]int, 0, CardSize*CardSize-1)
	for col := 0; col < CardSize; col++ {
		for row := 0; row < CardSize; row++ {
			if c[col][row] != FreeCell {
				values = append(values, c[col][row])
			}
		}
	}
	return values
}
