/*
optimizer.go - Leave placement

PURPOSE:
  Turns a classified calendar and a leave budget into a plan: which work
  days become leave so that rest comes in long contiguous windows.

KEY CONCEPTS:
  - Anchor: a maximal run of rest days (weekends, holidays, closures,
    imposed leave)
  - Gap: a maximal run of non-rest days between anchors (or between an
    anchor and the edge of the year)
  - Qualifying days: days in a rest window of at least minRest days.
    The optimizer maximizes them first and total rest second.

ALGORITHM:
  1. Bridging. Every gap made only of placeable work days, with an anchor
     on at least one side, is ranked by qualifying days gained per leave
     day spent (ties: shorter gap, then earlier gap). Gaps are taken whole
     in rank order while the budget allows; a gap that does not fit is
     skipped, never partially bridged. When a gap is bridged its
     neighbours now touch a longer anchor, so they are re-ranked.
  2. Extension. Leftover whole days are placed one at a time on the edge
     of an existing rest window, preferring the day with the highest
     qualifying gain, then the longest resulting window, then the
     earliest date.
  3. Envelope. Steps 1-2 are evaluated with the bridging phase limited to
     k = W, W-1, ..., 0 days (W = whole days available, capped at the
     number of placeable days) and extension always receiving the
     remainder. Budgets that bridge the same gaps give the same plan and
     are evaluated once. The best score wins; ties keep the
     larger k, so k = W is the plain greedy plan unless a smaller bridging
     budget strictly beats it. Because extension is prefix-stable this
     makes the final score non-decreasing in the budget.

INVARIANTS:
  - Only WORK days with no leave and no lock receive leave
  - Imposed leave is charged to the budget before anything else
  - Placed leave never exceeds the budget (enforced by the ledger)
  - Only whole days are placed; a trailing half day stays unused

SEE ALSO:
  - classifier.go: Produces the input calendar
  - scoring.go: score() used to compare candidate plans
  - generic/ledger.go: Budget accounting
*/
package timeoff

import (
	"container/heap"
	"fmt"

	"github.com/warp/rest-planner/generic"
)

// Allocation is the optimizer output: the planned day map and the ledger
// recording how the budget was spent.
type Allocation struct {
	Days   []DayRecord
	Ledger *generic.LeaveLedger
}

// Optimize places leave on a copy of days. The input slice is not modified.
//
// Errors are *generic.ConfigError for a negative or non half-day budget,
// minRest below one, or imposed leave exceeding the budget. A budget too
// small to bridge anything is not an error.
func Optimize(days []DayRecord, budget generic.Amount, minRest int) (*Allocation, error) {
	if err := validateBudget(budget); err != nil {
		return nil, err
	}
	if err := validateMinRest(minRest); err != nil {
		return nil, err
	}

	ledger := generic.NewLeaveLedger(budget)
	for _, d := range days {
		if d.Imposed && d.Leave != LeaveNone {
			if err := ledger.Spend(d.Date, d.Leave.Weight(), generic.EntryImposed, d.Reason); err != nil {
				return nil, &generic.ConfigError{
					Field:   "leave_budget",
					Message: fmt.Sprintf("imposed leave exceeds budget: %v", err),
				}
			}
		}
	}
	// No plan can place more days than there are placeable work days.
	available := min(ledger.Balance().WholeDays(), countCandidates(days))

	var best *Allocation
	bestScore := -1
	for k := available; k >= 0; {
		plan := cloneDays(days)
		l := ledger.Fork()

		spent, err := bridgeGaps(plan, k, minRest, l)
		if err != nil {
			return nil, err
		}
		if err := extendWindows(plan, available-spent, minRest, l); err != nil {
			return nil, err
		}

		s := score(Segment(plan), minRest)
		if best == nil || s > bestScore {
			best = &Allocation{Days: plan, Ledger: l}
			bestScore = s
		}
		// Every bridging budget in [spent, k] takes the same gaps, so the
		// next distinct plan needs fewer than spent days.
		k = spent - 1
	}
	return best, nil
}

func countCandidates(days []DayRecord) int {
	n := 0
	for _, d := range days {
		if d.IsCandidate() {
			n++
		}
	}
	return n
}

func cloneDays(days []DayRecord) []DayRecord {
	out := make([]DayRecord, len(days))
	copy(out, days)
	return out
}

// qualifying counts the days of a window that reach minRest.
func qualifying(length, minRest int) int {
	if length >= minRest {
		return length
	}
	return 0
}

func placeLeave(plan []DayRecord, i int, reason string, ledger *generic.LeaveLedger) error {
	if err := ledger.Spend(plan[i].Date, LeaveFull.Weight(), generic.EntryPlanned, reason); err != nil {
		return fmt.Errorf("placing leave on %s: %w", plan[i].Date, err)
	}
	plan[i].Leave = LeaveFull
	plan[i].Reason = reason
	return nil
}

// =============================================================================
// BRIDGING
// =============================================================================

type gap struct {
	start, end  int // inclusive indices into the plan
	left, right int // lengths of the adjacent rest runs, 0 at the year edge
	prev, next  int // neighbouring gaps still open, -1 at the ends
	placeable   bool
	bridged     bool
	version     int
}

func (g *gap) length() int { return g.end - g.start + 1 }

func (g *gap) eligible() bool {
	return g.placeable && !g.bridged && (g.left > 0 || g.right > 0)
}

func (g *gap) gain(minRest int) int {
	merged := g.left + g.length() + g.right
	return qualifying(merged, minRest) - qualifying(g.left, minRest) - qualifying(g.right, minRest)
}

func findGaps(plan []DayRecord) []gap {
	var gaps []gap
	run := 0
	for i := 0; i < len(plan); {
		if plan[i].IsRest() {
			run++
			i++
			continue
		}
		g := gap{start: i, left: run, placeable: true, prev: len(gaps) - 1, next: -1}
		for i < len(plan) && !plan[i].IsRest() {
			if !plan[i].IsCandidate() {
				g.placeable = false
			}
			i++
		}
		g.end = i - 1
		if len(gaps) > 0 {
			gaps[len(gaps)-1].next = len(gaps)
		}
		gaps = append(gaps, g)
		run = 0
	}
	for k := range gaps {
		if gaps[k].next >= 0 {
			gaps[k].right = gaps[gaps[k].next].left
		} else {
			gaps[k].right = run
		}
	}
	return gaps
}

type gapEntry struct {
	gap     int
	gain    int
	length  int
	start   int
	version int
}

// gapHeap pops the most efficient gap first.
type gapHeap []gapEntry

func (h gapHeap) Len() int { return len(h) }
func (h gapHeap) Less(i, j int) bool {
	a, b := h[i], h[j]
	// a.gain/a.length vs b.gain/b.length without division
	if lhs, rhs := a.gain*b.length, b.gain*a.length; lhs != rhs {
		return lhs > rhs
	}
	if a.length != b.length {
		return a.length < b.length
	}
	return a.start < b.start
}
func (h gapHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *gapHeap) Push(x interface{}) { *h = append(*h, x.(gapEntry)) }
func (h *gapHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

func pushGap(h *gapHeap, gaps []gap, i, minRest int) {
	g := &gaps[i]
	if !g.eligible() {
		return
	}
	heap.Push(h, gapEntry{gap: i, gain: g.gain(minRest), length: g.length(), start: g.start, version: g.version})
}

// bridgeGaps fills whole gaps in rank order with at most budget days and
// returns the days spent.
func bridgeGaps(plan []DayRecord, budget, minRest int, ledger *generic.LeaveLedger) (int, error) {
	gaps := findGaps(plan)
	h := &gapHeap{}
	for i := range gaps {
		pushGap(h, gaps, i, minRest)
	}

	spent := 0
	for h.Len() > 0 && spent < budget {
		e := heap.Pop(h).(gapEntry)
		g := &gaps[e.gap]
		if g.bridged || e.version != g.version {
			continue
		}
		if g.length() > budget-spent {
			continue
		}

		merged := g.left + g.length() + g.right
		reason := fmt.Sprintf("bridges %s..%s into a %d-day rest window",
			plan[g.start].Date, plan[g.end].Date, merged)
		for i := g.start; i <= g.end; i++ {
			if err := placeLeave(plan, i, reason, ledger); err != nil {
				return 0, err
			}
		}
		spent += g.length()
		g.bridged = true

		if g.prev >= 0 {
			p := &gaps[g.prev]
			p.right = merged
			p.next = g.next
			p.version++
			pushGap(h, gaps, g.prev, minRest)
		}
		if g.next >= 0 {
			n := &gaps[g.next]
			n.left = merged
			n.prev = g.prev
			n.version++
			pushGap(h, gaps, g.next, minRest)
		}
	}
	return spent, nil
}

// =============================================================================
// EXTENSION
// =============================================================================

// extendWindows spends up to budget whole days, one at a time, on days
// touching an existing rest window. Each step depends only on the current
// plan, so a larger budget repeats the same steps and then adds more.
func extendWindows(plan []DayRecord, budget, minRest int, ledger *generic.LeaveLedger) error {
	for spent := 0; spent < budget; spent++ {
		i, length := bestExtension(plan, minRest)
		if i < 0 {
			return nil
		}
		reason := fmt.Sprintf("extends a rest window to %d days", length)
		if err := placeLeave(plan, i, reason, ledger); err != nil {
			return err
		}
	}
	return nil
}

// bestExtension returns the index of the best day to extend and the length
// of the window it would produce, or -1 when no window can grow.
func bestExtension(plan []DayRecord, minRest int) (int, int) {
	n := len(plan)
	endingAt := make([]int, n)   // rest run length ending at i
	startingAt := make([]int, n) // rest run length starting at i
	for i := 0; i < n; i++ {
		if plan[i].IsRest() {
			endingAt[i] = 1
			if i > 0 {
				endingAt[i] += endingAt[i-1]
			}
		}
	}
	for i := n - 1; i >= 0; i-- {
		if plan[i].IsRest() {
			startingAt[i] = 1
			if i < n-1 {
				startingAt[i] += startingAt[i+1]
			}
		}
	}

	best, bestGain, bestLen := -1, 0, 0
	for i := 0; i < n; i++ {
		if !plan[i].IsCandidate() {
			continue
		}
		left, right := 0, 0
		if i > 0 {
			left = endingAt[i-1]
		}
		if i < n-1 {
			right = startingAt[i+1]
		}
		if left == 0 && right == 0 {
			continue
		}
		length := left + 1 + right
		gain := qualifying(length, minRest) - qualifying(left, minRest) - qualifying(right, minRest)
		if best < 0 || gain > bestGain || (gain == bestGain && length > bestLen) {
			best, bestGain, bestLen = i, gain, length
		}
	}
	return best, bestLen
}
