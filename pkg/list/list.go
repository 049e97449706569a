package list

import (
	"github.com/g3tech/donation-engine/pkg/allocation"
	"github.com/shopspring/decimal"
)

// Defaults are the budget values of a list created on first access.
type Defaults struct {
	TotalValue      decimal.Decimal
	DonationPercent decimal.Decimal
}

// Donation is one transfer of the checkout: an amount for a single charity.
type Donation struct {
	Category string
	Ein      string
	Amount   decimal.Decimal
}

// Checkout is the donation plan handed to the external payment flow.
type Checkout struct {
	ListId    int
	Total     decimal.Decimal
	Donations []Donation
}

func checkoutOf(list *allocation.List) Checkout {
	checkout := Checkout{ListId: list.Id, Total: list.Budget.DonationValue, Donations: []Donation{}}
	for _, category := range list.Categories {
		if !category.Included {
			continue
		}
		for _, entry := range category.Entries {
			if !entry.Enabled || !entry.Share.Value.IsPositive() {
				continue
			}
			checkout.Donations = append(checkout.Donations, Donation{
				Category: category.Name,
				Ein:      entry.Ein,
				Amount:   entry.Share.Value,
			})
		}
	}
	return checkout
}
