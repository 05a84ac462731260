/*
Package generic provides the domain-agnostic building blocks of the planner.

PURPOSE:
  Everything the leave optimizer needs that is not specific to leave
  optimization lives here: day-granular dates, inclusive periods, exact
  day amounts, holiday sets, the leave budget ledger, sentinel errors and
  the store interfaces. The timeoff package builds the calendar, the
  optimizer and the scoring on top of these types.

KEY CONCEPTS IN THIS FILE (types.go):
  - Amount: A quantity of days (leave budgets come in 0.5-day steps)
  - PlanID / JobID: Type-safe identifiers for persisted plans and batch jobs

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal so half days never drift
  2. Immutability: Values are passed by value and never shared mutably
  3. Type Safety: Strong typing for IDs prevents mixing plans and jobs

USAGE:
  budget := generic.NewAmount(12.5, generic.UnitDays)
  if !budget.IsHalfDayMultiple() {
      return &generic.ConfigError{Field: "leave_budget", Message: "must be a multiple of 0.5"}
  }

SEE ALSO:
  - time.go: TimePoint, weekends and holiday sets
  - period.go: Inclusive date ranges
  - ledger.go: Leave budget ledger
*/
package generic

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// AMOUNT - Quantity with unit (leave is always counted in days)
// =============================================================================

type Amount struct {
	Value decimal.Decimal
	Unit  Unit
}

type Unit string

const (
	UnitDays Unit = "days"
)

var half = decimal.NewFromFloat(0.5)

func NewAmount(value float64, unit Unit) Amount {
	return Amount{Value: decimal.NewFromFloat(value), Unit: unit}
}

func NewAmountFromInt(value int, unit Unit) Amount {
	return Amount{Value: decimal.NewFromInt(int64(value)), Unit: unit}
}

// Days is shorthand for a day amount.
func Days(value float64) Amount { return NewAmount(value, UnitDays) }

// ZeroDays is the empty day amount.
func ZeroDays() Amount { return Amount{Value: decimal.Zero, Unit: UnitDays} }


func (a Amount) Zero() Amount                 { return Amount{Value: decimal.Zero, Unit: a.Unit} }
func (a Amount) Add(b Amount) Amount          { return Amount{Value: a.Value.Add(b.Value), Unit: a.unit(b)} }
func (a Amount) Sub(b Amount) Amount          { return Amount{Value: a.Value.Sub(b.Value), Unit: a.unit(b)} }
func (a Amount) Neg() Amount                  { return Amount{Value: a.Value.Neg(), Unit: a.Unit} }
func (a Amount) IsNegative() bool             { return a.Value.IsNegative() }
func (a Amount) IsZero() bool                 { return a.Value.IsZero() }
func (a Amount) IsPositive() bool             { return a.Value.IsPositive() }
func (a Amount) Equal(b Amount) bool          { return a.Value.Equal(b.Value) }
func (a Amount) GreaterThan(b Amount) bool    { return a.Value.GreaterThan(b.Value) }
func (a Amount) LessThan(b Amount) bool       { return a.Value.LessThan(b.Value) }
func (a Amount) Float64() float64             { f, _ := a.Value.Float64(); return f }
func (a Amount) String() string               { return a.Value.String() + " " + string(a.Unit) }
func (a Amount) Min(b Amount) Amount {
	if a.LessThan(b) {
		return a
	}
	return b
}

// WholeDays returns the number of complete days in the amount, rounding down.
// Negative amounts yield zero.
func (a Amount) WholeDays() int {
	if a.Value.IsNegative() {
		return 0
	}
	return int(a.Value.Floor().IntPart())
}

// IsHalfDayMultiple reports whether the amount is expressible in 0.5-day steps.
func (a Amount) IsHalfDayMultiple() bool {
	return a.Value.Mod(half).IsZero()
}

// unit keeps the receiver's unit unless it is unset.
func (a Amount) unit(b Amount) Unit {
	if a.Unit == "" {
		return b.Unit
	}
	return a.Unit
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type PlanID string
type JobID string
type HolidayID string
