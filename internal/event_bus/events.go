package event_bus

import "github.com/shopspring/decimal"

const (
	ListAllocatedEvent     EventType = "list.allocated"
	CheckoutRequestedEvent EventType = "list.checkout.requested"
)

// ListAllocated is published after a recomputed list has been stored.
type ListAllocated struct {
	UserUid       string
	ListId        int
	DonationValue decimal.Decimal
	Valid         bool
}

// CheckoutRequested is published whenever a user asks to proceed to the donation checkout.
type CheckoutRequested struct {
	UserUid string
	ListId  int
	Total   decimal.Decimal
	Valid   bool
}
