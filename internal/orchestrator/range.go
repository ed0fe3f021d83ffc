package orchestrator

import (
	"math/big"
)

const DEFAULT_STEP = 5000

var (
	shrinkNumerator   = big.NewInt(8)
	shrinkDenominator = big.NewInt(10)
	one               = big.NewInt(1)
)

// RangeScheduler walks [from, head] in windows of at most step blocks.
// from is the last block already processed; it only moves forward.
type RangeScheduler struct {
	from        *big.Int
	to          *big.Int
	head        *big.Int
	step        *big.Int
	defaultStep *big.Int
}

func NewRangeScheduler(from *big.Int, head *big.Int, step int64) *RangeScheduler {
	if step < 1 {
		step = DEFAULT_STEP
	}
	return &RangeScheduler{
		from:        new(big.Int).Set(from),
		to:          new(big.Int).Set(from),
		head:        new(big.Int).Set(head),
		step:        big.NewInt(step),
		defaultStep: big.NewInt(step),
	}
}

// Done reports whether the cursor reached the head.
func (r *RangeScheduler) Done() bool {
	return r.from.Cmp(r.head) >= 0
}

// Begin opens the next window starting right after the last processed block.
func (r *RangeScheduler) Begin() {
	r.from.Add(r.from, one)
	r.AdvanceWindow()
}

// AdvanceWindow sets to = min(from+step, head).
func (r *RangeScheduler) AdvanceWindow() {
	r.to.Add(r.from, r.step)
	if r.to.Cmp(r.head) > 0 {
		r.to.Set(r.head)
	}
}

// Shrink reduces the step to floor(step*8/10), never below one block, and
// recomputes the window.
func (r *RangeScheduler) Shrink() {
	r.step.Mul(r.step, shrinkNumerator)
	r.step.Quo(r.step, shrinkDenominator)
	if r.step.Cmp(one) < 0 {
		r.step.Set(one)
	}
	r.AdvanceWindow()
}

func (r *RangeScheduler) ResetStep() {
	r.step.Set(r.defaultStep)
}

// Commit marks the current window as processed.
func (r *RangeScheduler) Commit() {
	r.from.Set(r.to)
}

// Window returns copies of the current bounds.
func (r *RangeScheduler) Window() (from *big.Int, to *big.Int) {
	return new(big.Int).Set(r.from), new(big.Int).Set(r.to)
}

func (r *RangeScheduler) Head() *big.Int {
	return new(big.Int).Set(r.head)
}

func (r *RangeScheduler) Step() *big.Int {
	return new(big.Int).Set(r.step)
}
