package model

import "slices"

// DefaultBallCount is the number of balls in a standard pool
const DefaultBallCount = 75

// BallPool tracks undrawn and drawn balls for a session.
// The next ball to draw is the last element of Remaining.
type BallPool struct {
	Remaining []int
	Drawn     []int
}

// Size returns the total number of balls in the pool
func (p *BallPool) Size() int {
	return len(p.Remaining) + len(p.Drawn)
}

// IsExhausted returns true when no balls remain
func (p *BallPool) IsExhausted() bool {
	return len(p.Remaining) == 0
}

// DrawNext pops the tail of Remaining and records it as drawn.
// exhausted reports whether Remaining is empty after this draw.
func (p *BallPool) DrawNext() (ball int, exhausted bool, err error) {
	if len(p.Remaining) == 0 {
		return 0, true, ErrPoolExhausted
	}
	last := len(p.Remaining) - 1
	ball = p.Remaining[last]
	p.Remaining = p.Remaining[:last]
	p.Drawn = append(p.Drawn, ball)
	return ball, len(p.Remaining) == 0, nil
}

// LastDrawn returns the most recently drawn ball, or 0 if none
func (p *BallPool) LastDrawn() int {
	if len(p.Drawn) == 0 {
		return 0
	}
	return p.Drawn[len(p.Drawn)-1]
}

// DrawnSet returns the drawn balls as a set
func (p *BallPool) DrawnSet() map[int]bool {
	set := make(map[int]bool, len(p.Drawn))
	for _, b := range p.Drawn {
		set[b] = true
	}
	return set
}

// Clone returns a deep copy of the pool
func (p BallPool) Clone() BallPool {
	return BallPool{
		Remaining: slices.Clone(p.Remaining),
		Drawn:     slices.Clone(p.Drawn),
	}
}

// Validate checks that remaining and drawn partition [1..n]
func (p *BallPool) Validate(n int) error {
	if p.Size() != n {
		return ErrInvalidPool
	}
	seen := make([]bool, n+1)
	for _, set := range [][]int{p.Remaining, p.Drawn} {
		for _, b := range set {
			if b < 1 || b > n || seen[b] {
				return ErrInvalidPool
			}
			seen[b] = true
		}
	}
	return nil
}
