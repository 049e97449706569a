package list

import (
	"context"
	"errors"
	"fmt"

	"github.com/g3tech/donation-engine/internal/event_bus"
	"github.com/g3tech/donation-engine/pkg/allocation"
	"github.com/g3tech/donation-engine/pkg/user"
	log "github.com/sirupsen/logrus"
)

var ErrInvalidAllocation = errors.New("allocation is not consistent")

type Service interface {
	// GetList returns the allocated list of the current user, creating the default one on first access.
	GetList(ctx context.Context) (allocation.List, error)
	// UpdateList stores the user's edits and returns the list allocated from them.
	UpdateList(ctx context.Context, list allocation.List) (allocation.List, error)
	// Preview allocates the given list without storing it.
	Preview(ctx context.Context, list allocation.List) (allocation.List, error)
	Validate(ctx context.Context) (bool, error)
	// Checkout returns the donation plan, or ErrInvalidAllocation when the stored list does not reconcile.
	Checkout(ctx context.Context) (Checkout, error)
}

type ServiceImpl struct {
	repo     Repository
	engine   *allocation.Engine
	eventBus *event_bus.EventBus
	defaults Defaults
}

func NewService(repo Repository, engine *allocation.Engine, eventBus *event_bus.EventBus, defaults Defaults) *ServiceImpl {
	return &ServiceImpl{repo: repo, engine: engine, eventBus: eventBus, defaults: defaults}
}

func (s *ServiceImpl) GetList(ctx context.Context) (allocation.List, error) {
	list, err := s.load(ctx)
	if err != nil {
		return allocation.List{}, err
	}
	s.engine.Allocate(&list)
	return list, nil
}

func (s *ServiceImpl) UpdateList(ctx context.Context, list allocation.List) (allocation.List, error) {
	stored, err := s.load(ctx)
	if err != nil {
		return allocation.List{}, err
	}
	list.Id = stored.Id
	list.UserId = stored.UserId

	saved, err := s.repo.Save(ctx, list)
	if err != nil {
		return allocation.List{}, fmt.Errorf("could not save your allocation: %w", err)
	}
	s.engine.Allocate(&saved)
	valid := allocation.IsValid(&saved)

	// Metrics only; the list is already stored so a failing subscriber does not fail the request.
	err = s.eventBus.Publish(event_bus.NewEvent(ctx, event_bus.ListAllocatedEvent, event_bus.ListAllocated{
		UserUid:       saved.UserId,
		ListId:        saved.Id,
		DonationValue: saved.Budget.DonationValue,
		Valid:         valid,
	}))
	if err != nil {
		log.Errorf("failed to publish list allocated event: %v", err)
	}
	return saved, nil
}

func (s *ServiceImpl) Preview(ctx context.Context, list allocation.List) (allocation.List, error) {
	uid, err := user.CurrentUid(ctx)
	if err != nil {
		return allocation.List{}, fmt.Errorf("failed to get current user: %w", err)
	}
	list.UserId = uid
	s.engine.Allocate(&list)
	return list, nil
}

func (s *ServiceImpl) Validate(ctx context.Context) (bool, error) {
	list, err := s.GetList(ctx)
	if err != nil {
		return false, err
	}
	return allocation.IsValid(&list), nil
}

func (s *ServiceImpl) Checkout(ctx context.Context) (Checkout, error) {
	list, err := s.GetList(ctx)
	if err != nil {
		return Checkout{}, err
	}

	violations := allocation.Violations(&list)
	valid := len(violations) == 0

	err = s.eventBus.Publish(event_bus.NewEvent(ctx, event_bus.CheckoutRequestedEvent, event_bus.CheckoutRequested{
		UserUid: list.UserId,
		ListId:  list.Id,
		Total:   list.Budget.DonationValue,
		Valid:   valid,
	}))
	if err != nil {
		log.Errorf("failed to publish checkout event: %v", err)
	}

	if !valid {
		for _, violation := range violations {
			log.Debugf("list %d: %s", list.Id, violation)
		}
		log.Warnf("checkout refused for list %d: %d violation(s)", list.Id, len(violations))
		return Checkout{}, ErrInvalidAllocation
	}
	return checkoutOf(&list), nil
}

// load finds the current user's list or creates the default one.
func (s *ServiceImpl) load(ctx context.Context) (allocation.List, error) {
	uid, err := user.CurrentUid(ctx)
	if err != nil {
		return allocation.List{}, fmt.Errorf("failed to get current user: %w", err)
	}

	list, err := s.repo.FindByUser(ctx, uid)
	if err == nil {
		return list, nil
	}
	if !errors.Is(err, ErrListNotFound) {
		return allocation.List{}, fmt.Errorf("could not load your allocation: %w", err)
	}

	log.Infof("creating default list for user %s", uid)
	list = allocation.NewDefaultList(uid)
	list.Budget.TotalValue = s.defaults.TotalValue
	list.Budget.DonationPercent = s.defaults.DonationPercent
	list, err = s.repo.CreateDefault(ctx, list)
	if err != nil {
		return allocation.List{}, fmt.Errorf("could not create your allocation: %w", err)
	}
	return list, nil
}
