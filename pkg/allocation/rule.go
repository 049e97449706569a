package allocation

import "github.com/shopspring/decimal"

// Rule decides how a node claims its part of the parent's value.
// It is one of ValueOverride, PercentOverride or Weighted.
type Rule interface {
	rule()
}

// ValueOverride claims a fixed amount.
type ValueOverride struct {
	Amount decimal.Decimal
}

// PercentOverride claims a fixed fraction of the parent's value.
type PercentOverride struct {
	Fraction decimal.Decimal
}

// Weighted shares whatever the overrides left, proportionally to Multiplier.
type Weighted struct {
	Multiplier decimal.Decimal
}

func (ValueOverride) rule()   {}
func (PercentOverride) rule() {}
func (Weighted) rule()        {}

// RuleOf applies the override precedence: a value override hides the percent override and
// the multiplier, a percent override hides the multiplier.
func RuleOf(multiplier decimal.Decimal, percentOverride, valueOverride *decimal.Decimal) Rule {
	switch {
	case valueOverride != nil:
		return ValueOverride{Amount: *valueOverride}
	case percentOverride != nil:
		return PercentOverride{Fraction: *percentOverride}
	default:
		return Weighted{Multiplier: multiplier}
	}
}

func (c *Category) Rule() Rule {
	return RuleOf(c.Multiplier, c.PercentOverride, c.ValueOverride)
}

func (e *Entry) Rule() Rule {
	return RuleOf(e.Multiplier, e.PercentOverride, e.ValueOverride)
}
