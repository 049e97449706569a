package list

import (
	"context"
	"errors"
	"testing"

	"github.com/g3tech/donation-engine/internal/event_bus"
	"github.com/g3tech/donation-engine/pkg/allocation"
	"github.com/g3tech/donation-engine/pkg/user"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = user.WithUser(context.Background(), user.User{Uid: "4f0d3c1e-donor"})

var repoStub = NewRepositoryStub()

var testDefaults = Defaults{
	TotalValue:      decimal.NewFromInt(10_000),
	DonationPercent: decimal.RequireFromString("0.10"),
}

func setup(t *testing.T) (*ServiceImpl, *event_bus.EventBus) {
	bus := event_bus.NewEventBus()
	service := NewService(repoStub, allocation.NewEngine(), bus, testDefaults)
	t.Cleanup(func() {
		t.Log("Teardown after test")
		repoStub.Cleanup()
	})
	return service, bus
}

func charities(names ...string) []allocation.Category {
	categories := make([]allocation.Category, 0, len(names))
	for i, name := range names {
		categories = append(categories, allocation.NewCategory(name, allocation.NewEntry(einOf(i))))
	}
	return categories
}

func einOf(i int) string {
	return []string{"13-1623829", "53-0196605", "13-3433452", "94-1156258"}[i]
}

func TestServiceImpl_GetList(t *testing.T) {
	t.Run("should create the default list on first access", func(t *testing.T) {
		service, _ := setup(t)

		// when
		list, err := service.GetList(ctx)

		// then
		require.NoError(t, err)
		assert.NotZero(t, list.Id)
		assert.Equal(t, "4f0d3c1e-donor", list.UserId)
		assert.Empty(t, list.Categories)
		assert.Equal(t, "1000.00", list.Budget.DonationValue.StringFixed(2))
	})

	t.Run("should return the stored list on next access", func(t *testing.T) {
		service, _ := setup(t)
		first, err := service.GetList(ctx)
		require.NoError(t, err)

		// when
		second, err := service.GetList(ctx)

		// then
		require.NoError(t, err)
		assert.Equal(t, first.Id, second.Id)
	})

	t.Run("should return error when context has no user", func(t *testing.T) {
		service, _ := setup(t)

		// when
		_, err := service.GetList(context.Background())

		// then
		assert.ErrorIs(t, err, user.ErrNoUser)
		assert.Contains(t, err.Error(), "failed to get current user")
	})

	t.Run("should wrap repository failures", func(t *testing.T) {
		service, _ := setup(t)
		repoStub.FailWith(errors.New("connection reset"))

		// when
		_, err := service.GetList(ctx)

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "could not load your allocation")
	})
}

func TestServiceImpl_UpdateList(t *testing.T) {
	t.Run("should store and allocate the edited list", func(t *testing.T) {
		service, bus := setup(t)
		var published []event_bus.ListAllocated
		event_bus.SubscribeTyped(bus, event_bus.ListAllocatedEvent, func(e event_bus.EventT[event_bus.ListAllocated]) error {
			published = append(published, e.Data)
			return nil
		})
		edited := allocation.NewDefaultList("")
		edited.Categories = charities("Education", "Environment")

		// when
		updated, err := service.UpdateList(ctx, edited)

		// then
		require.NoError(t, err)
		assert.Equal(t, "4f0d3c1e-donor", updated.UserId)
		require.Len(t, updated.Categories, 2)
		assert.Equal(t, "500.00", updated.Categories[0].Share.Value.StringFixed(2))
		assert.Equal(t, "500.00", updated.Categories[1].Entries[0].Share.Value.StringFixed(2))

		stored, err := service.GetList(ctx)
		require.NoError(t, err)
		assert.Equal(t, updated.Id, stored.Id)
		assert.Len(t, stored.Categories, 2)

		require.Len(t, published, 1)
		assert.Equal(t, updated.Id, published[0].ListId)
		assert.True(t, published[0].Valid)
		assert.True(t, decimal.NewFromInt(1000).Equal(published[0].DonationValue))
	})

	t.Run("should succeed when a subscriber fails", func(t *testing.T) {
		service, bus := setup(t)
		bus.Subscribe(event_bus.ListAllocatedEvent, func(e event_bus.Event) error {
			return errors.New("subscriber down")
		})

		// when
		_, err := service.UpdateList(ctx, allocation.NewDefaultList(""))

		// then
		assert.NoError(t, err)
	})

	t.Run("should return error when saving fails", func(t *testing.T) {
		service, _ := setup(t)
		_, err := service.GetList(ctx)
		require.NoError(t, err)
		repoStub.FailWith(errors.New("disk full"))

		// when
		_, err = service.UpdateList(ctx, allocation.NewDefaultList(""))

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "could not load your allocation")
	})
}

func TestServiceImpl_Preview(t *testing.T) {
	t.Run("should allocate without storing", func(t *testing.T) {
		service, _ := setup(t)
		draft := allocation.NewDefaultList("")
		draft.Budget.TotalValue = decimal.NewFromInt(2_000)
		draft.Categories = charities("Culture", "Justice", "Education", "Environment")

		// when
		preview, err := service.Preview(ctx, draft)

		// then
		require.NoError(t, err)
		assert.Equal(t, "200.00", preview.Budget.DonationValue.StringFixed(2))
		for _, category := range preview.Categories {
			assert.Equal(t, "50.00", category.Share.Value.StringFixed(2))
			assert.Equal(t, "0.25", category.Share.Percent.StringFixed(2))
		}

		stored, err := service.GetList(ctx)
		require.NoError(t, err)
		assert.Empty(t, stored.Categories)
	})

	t.Run("should return error when context has no user", func(t *testing.T) {
		service, _ := setup(t)

		// when
		_, err := service.Preview(context.Background(), allocation.NewDefaultList(""))

		// then
		assert.ErrorIs(t, err, user.ErrNoUser)
	})
}

func TestServiceImpl_Validate(t *testing.T) {
	t.Run("should accept the default list", func(t *testing.T) {
		service, _ := setup(t)

		// when
		valid, err := service.Validate(ctx)

		// then
		require.NoError(t, err)
		assert.True(t, valid)
	})

	t.Run("should reject categories that do not reconcile", func(t *testing.T) {
		service, _ := setup(t)
		edited := allocation.NewDefaultList("")
		edited.Categories = charities("Culture", "Education", "Justice")
		_, err := service.UpdateList(ctx, edited)
		require.NoError(t, err)

		// when
		valid, err := service.Validate(ctx)

		// then
		require.NoError(t, err)
		assert.False(t, valid)
	})
}

func TestServiceImpl_Checkout(t *testing.T) {
	t.Run("should return one donation per enabled entry", func(t *testing.T) {
		service, bus := setup(t)
		var requested []event_bus.CheckoutRequested
		event_bus.SubscribeTyped(bus, event_bus.CheckoutRequestedEvent, func(e event_bus.EventT[event_bus.CheckoutRequested]) error {
			requested = append(requested, e.Data)
			return nil
		})
		edited := allocation.NewDefaultList("")
		edited.Categories = charities("Education", "Environment")
		skipped := allocation.NewEntry("94-1156258")
		skipped.Enabled = false
		edited.Categories[1].Entries = append(edited.Categories[1].Entries, skipped)
		_, err := service.UpdateList(ctx, edited)
		require.NoError(t, err)

		// when
		checkout, err := service.Checkout(ctx)

		// then
		require.NoError(t, err)
		assert.Equal(t, "1000.00", checkout.Total.StringFixed(2))
		require.Len(t, checkout.Donations, 2)
		assert.Equal(t, "Education", checkout.Donations[0].Category)
		assert.Equal(t, "13-1623829", checkout.Donations[0].Ein)
		assert.Equal(t, "500.00", checkout.Donations[0].Amount.StringFixed(2))
		assert.Equal(t, "53-0196605", checkout.Donations[1].Ein)

		require.Len(t, requested, 1)
		assert.True(t, requested[0].Valid)
	})

	t.Run("should refuse a list that does not reconcile", func(t *testing.T) {
		service, bus := setup(t)
		var requested []event_bus.CheckoutRequested
		event_bus.SubscribeTyped(bus, event_bus.CheckoutRequestedEvent, func(e event_bus.EventT[event_bus.CheckoutRequested]) error {
			requested = append(requested, e.Data)
			return nil
		})
		edited := allocation.NewDefaultList("")
		edited.Categories = charities("Culture", "Education", "Justice")
		_, err := service.UpdateList(ctx, edited)
		require.NoError(t, err)

		// when
		_, err = service.Checkout(ctx)

		// then
		assert.ErrorIs(t, err, ErrInvalidAllocation)
		require.Len(t, requested, 1)
		assert.False(t, requested[0].Valid)
	})
}
