package allocation

import "github.com/shopspring/decimal"

// List is the budget/category/entry hierarchy owned by a single user.
type List struct {
	Id         int
	UserId     string
	Budget     Budget
	Categories []Category
}

type Budget struct {
	Id     int
	ListId int
	// TotalValue is the base amount the donation is derived from.
	TotalValue decimal.Decimal
	// DonationPercent is the fraction of TotalValue donated when no ValueOverride is set.
	DonationPercent decimal.Decimal
	ValueOverride   *decimal.Decimal

	// DonationValue is the resolved amount distributed to the categories. Written by Allocate.
	DonationValue decimal.Decimal
}

type Category struct {
	Id      int
	ListId  int
	Name    string
	Entries []Entry

	Multiplier      decimal.Decimal
	PercentOverride *decimal.Decimal
	ValueOverride   *decimal.Decimal
	Enabled         bool

	Included          bool
	HasEntryOverrides bool
	Share             Share
}

type Entry struct {
	Id         int
	CategoryId int
	// Ein identifies the receiving charity. It is never interpreted.
	Ein string

	Multiplier      decimal.Decimal
	PercentOverride *decimal.Decimal
	ValueOverride   *decimal.Decimal
	Enabled         bool

	Share Share
}

// Share is the computed part of a node: the amount it receives and its fraction of the parent.
type Share struct {
	Value   decimal.Decimal
	Percent decimal.Decimal
}

var (
	DefaultTotalValue      = decimal.NewFromInt(50_000)
	DefaultDonationPercent = decimal.New(10, -2)
)

// NewDefaultList returns the hierarchy created for a user that has none yet.
func NewDefaultList(userId string) List {
	return List{
		UserId: userId,
		Budget: Budget{
			TotalValue:      DefaultTotalValue,
			DonationPercent: DefaultDonationPercent,
		},
		Categories: []Category{},
	}
}

// NewCategory returns an enabled category with the neutral multiplier.
func NewCategory(name string, entries ...Entry) Category {
	return Category{
		Name:       name,
		Entries:    entries,
		Multiplier: decimal.NewFromInt(1),
		Enabled:    true,
	}
}

// NewEntry returns an enabled entry with the neutral multiplier.
func NewEntry(ein string) Entry {
	return Entry{
		Ein:        ein,
		Multiplier: decimal.NewFromInt(1),
		Enabled:    true,
	}
}

func (l *List) reset() {
	l.Budget.DonationValue = decimal.Zero
	for i := range l.Categories {
		category := &l.Categories[i]
		category.Included = false
		category.HasEntryOverrides = false
		category.Share = Share{}
		for j := range category.Entries {
			category.Entries[j].Share = Share{}
		}
	}
}
