/*
ledger.go - Append-only leave budget ledger

PURPOSE:
  The LeaveLedger records how a leave budget is spent while a plan is
  built. The budget is granted once; imposed closures, booked leave and
  every optimizer placement are appended as spending entries. The
  running balance is updated only by appending, so it always equals the
  replay of the entries.

CRITICAL INVARIANTS:
  1. APPEND-ONLY: entries are never edited or removed
  2. NEVER NEGATIVE: a spend that would overdraw the budget is rejected
     with InsufficientBalanceError and leaves the ledger untouched
  3. AUDITABLE: every spend carries the date and a reason

EXAMPLE FLOW:
  1. Budget of 10 days: EntryGrant +10
  2. Company closure imposed on Dec 24: EntryImposed -1
  3. Optimizer bridges Mon+Tue before a Wednesday holiday: EntryPlanned -1, -1

  Balance: [+10, -1, -1, -1] = 7 days

SEE ALSO:
  - timeoff/optimizer.go: Spends from the ledger while placing leave
  - errors.go: InsufficientBalanceError
*/
package generic

// =============================================================================
// LEDGER ENTRY
// =============================================================================

type EntryType string

const (
	EntryGrant   EntryType = "grant"   // Budget made available for the year
	EntryImposed EntryType = "imposed" // Closure or booked leave fixed before optimization
	EntryPlanned EntryType = "planned" // Leave placed by the optimizer
)

type LedgerEntry struct {
	Date   TimePoint // Zero for grants
	Delta  Amount
	Type   EntryType
	Reason string
}

// =============================================================================
// LEAVE LEDGER
// =============================================================================

// LeaveLedger is not safe for concurrent use. Each plan owns its own ledger.
type LeaveLedger struct {
	entries []LedgerEntry
	balance Amount
}

func NewLeaveLedger(budget Amount) *LeaveLedger {
	l := &LeaveLedger{balance: ZeroDays()}
	l.append(LedgerEntry{Delta: budget, Type: EntryGrant, Reason: "annual leave budget"})
	return l
}

func (l *LeaveLedger) append(e LedgerEntry) {
	l.entries = append(l.entries, e)
	l.balance = l.balance.Add(e.Delta)
}

// Spend appends a spending entry for amount on date.
func (l *LeaveLedger) Spend(date TimePoint, amount Amount, typ EntryType, reason string) error {
	available := l.Balance()
	if amount.GreaterThan(available) {
		return &InsufficientBalanceError{
			Available: available,
			Requested: amount,
			Shortfall: amount.Sub(available),
		}
	}
	l.append(LedgerEntry{
		Date:   date,
		Delta:  amount.Neg(),
		Type:   typ,
		Reason: reason,
	})
	return nil
}

// Balance is the unspent part of the budget.
func (l *LeaveLedger) Balance() Amount {
	return l.balance
}

func (l *LeaveLedger) Granted() Amount { return l.sum(EntryGrant) }

// Spent is the total of every spending entry, imposed and planned.
func (l *LeaveLedger) Spent() Amount {
	return l.sum(EntryImposed).Add(l.sum(EntryPlanned))
}

// SpentBy returns the total spent through entries of one type.
func (l *LeaveLedger) SpentBy(typ EntryType) Amount { return l.sum(typ) }

// Fork returns an independent ledger with the same history.
func (l *LeaveLedger) Fork() *LeaveLedger {
	return &LeaveLedger{entries: l.Entries(), balance: l.balance}
}

// Entries returns a copy of the log in append order.
func (l *LeaveLedger) Entries() []LedgerEntry {
	out := make([]LedgerEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *LeaveLedger) sum(typ EntryType) Amount {
	total := ZeroDays()
	for _, e := range l.entries {
		if e.Type != typ {
			continue
		}
		if typ == EntryGrant {
			total = total.Add(e.Delta)
		} else {
			total = total.Add(e.Delta.Neg())
		}
	}
	return total
}
