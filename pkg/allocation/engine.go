package allocation

import "github.com/shopspring/decimal"

// moneyPlaces is the precision every amount and fraction is rounded to.
const moneyPlaces = 2

// Engine computes the derived shares of a List.
type Engine struct {
	// leftoverPercentBase is the fraction weighted nodes share before the percent claimed by
	// overrides is subtracted.
	leftoverPercentBase decimal.Decimal
}

type Option func(*Engine)

// WithLeftoverPercentBase sets the fraction weighted nodes share before overrides are
// subtracted. With zero, weighted percents become the negated sum of override percents.
func WithLeftoverPercentBase(base decimal.Decimal) Option {
	return func(e *Engine) {
		e.leftoverPercentBase = base
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{leftoverPercentBase: decimal.NewFromInt(1)}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Allocate overwrites every derived field of the list and returns it.
// Running it again on the same input yields the same result.
func (e *Engine) Allocate(list *List) *List {
	list.reset()
	e.resolveBudget(&list.Budget)
	e.splitCategories(list)
	for i := range list.Categories {
		e.splitEntries(&list.Categories[i])
	}
	return list
}

// Allocate runs the default engine.
func Allocate(list *List) *List {
	return NewEngine().Allocate(list)
}

func (e *Engine) resolveBudget(budget *Budget) {
	if budget.ValueOverride != nil {
		budget.DonationValue = *budget.ValueOverride
		return
	}
	budget.DonationValue = round(budget.TotalValue.Mul(budget.DonationPercent))
}

func (e *Engine) splitCategories(list *List) {
	claims := make([]claim, 0, len(list.Categories))
	for i := range list.Categories {
		category := &list.Categories[i]
		category.Included = category.Enabled && len(category.Entries) > 0
		if !category.Included {
			continue
		}
		claims = append(claims, claim{rule: category.Rule(), share: &category.Share})
	}
	e.split(list.Budget.DonationValue, claims)
}

func (e *Engine) splitEntries(category *Category) {
	if !category.Included {
		return
	}
	claims := make([]claim, 0, len(category.Entries))
	for i := range category.Entries {
		entry := &category.Entries[i]
		if !entry.Enabled {
			continue
		}
		claims = append(claims, claim{rule: entry.Rule(), share: &entry.Share})
	}
	category.HasEntryOverrides = e.split(category.Share.Value, claims)
}

type claim struct {
	rule  Rule
	share *Share
}

// split assigns overrides first and then hands the remainder to the weighted claims.
// It reports whether any claim was an override.
func (e *Engine) split(base decimal.Decimal, claims []claim) bool {
	overrideValueSum := decimal.Zero
	overridePercentSum := decimal.Zero
	multiplierSum := decimal.Zero
	weighted := make([]claim, 0, len(claims))

	for _, c := range claims {
		switch r := c.rule.(type) {
		case ValueOverride:
			c.share.Value = r.Amount
			c.share.Percent = round(ratio(r.Amount, base))
		case PercentOverride:
			c.share.Value = round(r.Fraction.Mul(base))
			c.share.Percent = r.Fraction
		case Weighted:
			multiplierSum = multiplierSum.Add(r.Multiplier)
			weighted = append(weighted, c)
			continue
		}
		overrideValueSum = overrideValueSum.Add(c.share.Value)
		overridePercentSum = overridePercentSum.Add(c.share.Percent)
	}

	if len(weighted) > 0 {
		leftoverCash := base.Sub(overrideValueSum)
		leftoverPercent := e.leftoverPercentBase.Sub(overridePercentSum)
		for _, c := range weighted {
			share := round(ratio(c.rule.(Weighted).Multiplier, multiplierSum))
			c.share.Value = round(leftoverCash.Mul(share))
			c.share.Percent = round(leftoverPercent.Mul(share))
		}
	}

	return len(weighted) < len(claims)
}

// round applies banker's rounding to two places.
func round(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(moneyPlaces)
}

func ratio(numerator, denominator decimal.Decimal) decimal.Decimal {
	if denominator.IsZero() {
		return decimal.Zero
	}
	return numerator.Div(denominator)
}
