package list

import (
	"context"

	"github.com/g3tech/donation-engine/pkg/allocation"
)

type RepositoryStub struct {
	nextId int
	lists  map[string]allocation.List
	err    error
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{nextId: 1, lists: map[string]allocation.List{}}
}

func (s *RepositoryStub) FindByUser(ctx context.Context, userUid string) (allocation.List, error) {
	if s.err != nil {
		return allocation.List{}, s.err
	}
	list, ok := s.lists[userUid]
	if !ok {
		return allocation.List{}, ErrListNotFound
	}
	return clone(list), nil
}

func (s *RepositoryStub) CreateDefault(ctx context.Context, list allocation.List) (allocation.List, error) {
	if s.err != nil {
		return allocation.List{}, s.err
	}
	list.Id = s.id()
	list.Budget.Id = s.id()
	list.Budget.ListId = list.Id
	s.lists[list.UserId] = clone(list)
	return list, nil
}

func (s *RepositoryStub) Save(ctx context.Context, list allocation.List) (allocation.List, error) {
	if s.err != nil {
		return allocation.List{}, s.err
	}
	stored, ok := s.lists[list.UserId]
	if !ok {
		return allocation.List{}, ErrListNotFound
	}
	list.Id = stored.Id
	list.Budget.Id = stored.Budget.Id
	list.Budget.ListId = stored.Id
	for i := range list.Categories {
		category := &list.Categories[i]
		category.Id = s.id()
		category.ListId = list.Id
		for j := range category.Entries {
			category.Entries[j].Id = s.id()
			category.Entries[j].CategoryId = category.Id
		}
	}
	s.lists[list.UserId] = clone(list)
	return list, nil
}

func (s *RepositoryStub) FailWith(err error) {
	s.err = err
}

func (s *RepositoryStub) Cleanup() {
	s.lists = map[string]allocation.List{}
	s.err = nil
}

func (s *RepositoryStub) id() int {
	s.nextId++
	return s.nextId
}

// clone copies the slices so callers cannot mutate what the stub holds.
func clone(list allocation.List) allocation.List {
	categories := make([]allocation.Category, len(list.Categories))
	for i, category := range list.Categories {
		category.Entries = append([]allocation.Entry(nil), category.Entries...)
		categories[i] = category
	}
	list.Categories = categories
	return list
}
