package catalog

import "context"

type RepositoryStub struct {
	categories []DefaultCategory
	colors     []Color
	err        error
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{
		categories: []DefaultCategory{
			{Id: 1, Name: "Animal Welfare"},
			{Id: 2, Name: "Culture"},
			{Id: 3, Name: "Education"},
		},
		colors: []Color{
			{Id: 1, Name: "Red", Value: "#FF0000"},
			{Id: 2, Name: "Orange", Value: "#FF8000"},
		},
	}
}

func (s *RepositoryStub) ListDefaultCategories(ctx context.Context) ([]DefaultCategory, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.categories, nil
}

func (s *RepositoryStub) ListColors(ctx context.Context) ([]Color, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.colors, nil
}

func (s *RepositoryStub) FailWith(err error) {
	s.err = err
}
