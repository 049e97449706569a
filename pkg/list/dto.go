package list

import (
	"reflect"

	"github.com/g3tech/donation-engine/pkg/allocation"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Decimals travel as JSON strings. Derived fields are ignored on input.
type ListDTO struct {
	Id         int           `json:"id"`
	Budget     BudgetDTO     `json:"budget"`
	Categories []CategoryDTO `json:"categories" validate:"dive"`
	Valid      bool          `json:"valid"`
}

type BudgetDTO struct {
	TotalValue      decimal.Decimal  `json:"totalValue" validate:"gte=0"`
	DonationPercent decimal.Decimal  `json:"donationPercent" validate:"gte=0,lte=1"`
	ValueOverride   *decimal.Decimal `json:"valueOverride" validate:"omitempty,gte=0"`
	DonationValue   decimal.Decimal  `json:"donationValue"`
}

type CategoryDTO struct {
	Id              int              `json:"id"`
	Name            string           `json:"name" validate:"required"`
	Multiplier      *decimal.Decimal `json:"multiplier,omitempty" validate:"omitempty,gte=0"`
	PercentOverride *decimal.Decimal `json:"percentOverride" validate:"omitempty,gte=0,lte=1"`
	ValueOverride   *decimal.Decimal `json:"valueOverride" validate:"omitempty,gte=0"`
	Enabled         bool             `json:"enabled"`
	Entries         []EntryDTO       `json:"entries" validate:"dive"`

	Included          bool            `json:"included"`
	HasEntryOverrides bool            `json:"hasEntryOverrides"`
	DonationValue     decimal.Decimal `json:"donationValue"`
	DonationPercent   decimal.Decimal `json:"donationPercent"`
}

type EntryDTO struct {
	Id              int              `json:"id"`
	Ein             string           `json:"ein" validate:"required"`
	Multiplier      *decimal.Decimal `json:"multiplier,omitempty" validate:"omitempty,gte=0"`
	PercentOverride *decimal.Decimal `json:"percentOverride" validate:"omitempty,gte=0,lte=1"`
	ValueOverride   *decimal.Decimal `json:"valueOverride" validate:"omitempty,gte=0"`
	Enabled         bool             `json:"enabled"`

	DonationValue   decimal.Decimal `json:"donationValue"`
	DonationPercent decimal.Decimal `json:"donationPercent"`
}

type CheckoutDTO struct {
	ListId    int           `json:"listId"`
	Total     string        `json:"total"`
	Donations []DonationDTO `json:"donations"`
}

type DonationDTO struct {
	Category string `json:"category"`
	Ein      string `json:"ein"`
	Amount   string `json:"amount"`
}

// newValidator returns a validator that compares decimals by their float value.
func newValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return validate
}

func ListToDTO(list allocation.List) ListDTO {
	categories := make([]CategoryDTO, 0, len(list.Categories))
	for _, category := range list.Categories {
		categories = append(categories, CategoryToDTO(category))
	}
	return ListDTO{
		Id: list.Id,
		Budget: BudgetDTO{
			TotalValue:      list.Budget.TotalValue,
			DonationPercent: list.Budget.DonationPercent,
			ValueOverride:   list.Budget.ValueOverride,
			DonationValue:   list.Budget.DonationValue,
		},
		Categories: categories,
		Valid:      allocation.IsValid(&list),
	}
}

func CategoryToDTO(category allocation.Category) CategoryDTO {
	entries := make([]EntryDTO, 0, len(category.Entries))
	for _, entry := range category.Entries {
		multiplier := entry.Multiplier
		entries = append(entries, EntryDTO{
			Id:              entry.Id,
			Ein:             entry.Ein,
			Multiplier:      &multiplier,
			PercentOverride: entry.PercentOverride,
			ValueOverride:   entry.ValueOverride,
			Enabled:         entry.Enabled,
			DonationValue:   entry.Share.Value,
			DonationPercent: entry.Share.Percent,
		})
	}
	multiplier := category.Multiplier
	return CategoryDTO{
		Id:                category.Id,
		Name:              category.Name,
		Multiplier:        &multiplier,
		PercentOverride:   category.PercentOverride,
		ValueOverride:     category.ValueOverride,
		Enabled:           category.Enabled,
		Entries:           entries,
		Included:          category.Included,
		HasEntryOverrides: category.HasEntryOverrides,
		DonationValue:     category.Share.Value,
		DonationPercent:   category.Share.Percent,
	}
}

// DTOToList keeps only the user editable fields; a missing multiplier defaults to 1.
func DTOToList(dto ListDTO) allocation.List {
	categories := make([]allocation.Category, 0, len(dto.Categories))
	for _, categoryDTO := range dto.Categories {
		category := allocation.NewCategory(categoryDTO.Name)
		category.Id = categoryDTO.Id
		category.PercentOverride = categoryDTO.PercentOverride
		category.ValueOverride = categoryDTO.ValueOverride
		category.Enabled = categoryDTO.Enabled
		if categoryDTO.Multiplier != nil {
			category.Multiplier = *categoryDTO.Multiplier
		}
		category.Entries = make([]allocation.Entry, 0, len(categoryDTO.Entries))
		for _, entryDTO := range categoryDTO.Entries {
			entry := allocation.NewEntry(entryDTO.Ein)
			entry.Id = entryDTO.Id
			entry.PercentOverride = entryDTO.PercentOverride
			entry.ValueOverride = entryDTO.ValueOverride
			entry.Enabled = entryDTO.Enabled
			if entryDTO.Multiplier != nil {
				entry.Multiplier = *entryDTO.Multiplier
			}
			category.Entries = append(category.Entries, entry)
		}
		categories = append(categories, category)
	}
	return allocation.List{
		Id: dto.Id,
		Budget: allocation.Budget{
			TotalValue:      dto.Budget.TotalValue,
			DonationPercent: dto.Budget.DonationPercent,
			ValueOverride:   dto.Budget.ValueOverride,
		},
		Categories: categories,
	}
}

func CheckoutToDTO(checkout Checkout) CheckoutDTO {
	donations := make([]DonationDTO, 0, len(checkout.Donations))
	for _, donation := range checkout.Donations {
		donations = append(donations, DonationDTO{
			Category: donation.Category,
			Ein:      donation.Ein,
			Amount:   donation.Amount.StringFixed(2),
		})
	}
	return CheckoutDTO{
		ListId:    checkout.ListId,
		Total:     checkout.Total.StringFixed(2),
		Donations: donations,
	}
}
