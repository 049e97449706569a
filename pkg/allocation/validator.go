package allocation

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	valueTolerance   = decimal.NewFromInt(1)
	percentTolerance = decimal.New(1, -2)
	whole            = decimal.NewFromInt(1)
)

// Violation describes one failed consistency check.
type Violation struct {
	// Category is the name of the offending category, empty for budget level checks.
	Category string
	// Entry is the EIN of the offending entry, empty for category level checks.
	Entry  string
	Reason string
}

func (v Violation) String() string {
	switch {
	case v.Entry != "":
		return fmt.Sprintf("category %q entry %s: %s", v.Category, v.Entry, v.Reason)
	case v.Category != "":
		return fmt.Sprintf("category %q: %s", v.Category, v.Reason)
	default:
		return "budget: " + v.Reason
	}
}

// IsValid reports whether an allocated list reconciles at every level.
func IsValid(list *List) bool {
	return len(Violations(list)) == 0
}

// Violations scans the whole allocated list and returns every failed check.
// A list without categories, or without any included category, has nothing to reconcile.
func Violations(list *List) []Violation {
	var violations []Violation
	if len(list.Categories) == 0 {
		return violations
	}

	categoriesValueSum := decimal.Zero
	categoriesPercentSum := decimal.Zero
	scanned := 0

	for i := range list.Categories {
		category := &list.Categories[i]
		if !category.Included || len(category.Entries) == 0 {
			continue
		}
		scanned++

		if category.Share.Value.IsZero() || category.Share.Percent.IsZero() {
			violations = append(violations, Violation{Category: category.Name, Reason: "zero allocation"})
		}
		categoriesValueSum = categoriesValueSum.Add(category.Share.Value)
		categoriesPercentSum = categoriesPercentSum.Add(category.Share.Percent)

		entriesValueSum := decimal.Zero
		entriesPercentSum := decimal.Zero
		for j := range category.Entries {
			entry := &category.Entries[j]
			if !entry.Enabled {
				continue
			}
			if entry.Share.Value.IsZero() || entry.Share.Percent.IsZero() {
				violations = append(violations, Violation{Category: category.Name, Entry: entry.Ein, Reason: "zero allocation"})
			}
			entriesValueSum = entriesValueSum.Add(entry.Share.Value)
			entriesPercentSum = entriesPercentSum.Add(entry.Share.Percent)
		}

		if exceeds(entriesValueSum, category.Share.Value, valueTolerance) {
			violations = append(violations, Violation{
				Category: category.Name,
				Reason:   fmt.Sprintf("entries sum to %s, expected %s", entriesValueSum, category.Share.Value),
			})
		}
		if exceeds(entriesPercentSum, whole, percentTolerance) {
			violations = append(violations, Violation{
				Category: category.Name,
				Reason:   fmt.Sprintf("entry percents sum to %s", entriesPercentSum),
			})
		}
	}

	if scanned == 0 {
		return violations
	}

	if exceeds(categoriesValueSum, list.Budget.DonationValue, valueTolerance) {
		violations = append(violations, Violation{
			Reason: fmt.Sprintf("categories sum to %s, expected %s", categoriesValueSum, list.Budget.DonationValue),
		})
	}
	if exceeds(categoriesPercentSum, whole, percentTolerance) {
		violations = append(violations, Violation{
			Reason: fmt.Sprintf("category percents sum to %s", categoriesPercentSum),
		})
	}
	return violations
}

func exceeds(actual, expected, tolerance decimal.Decimal) bool {
	return actual.Sub(expected).Abs().GreaterThan(tolerance)
}
