package category

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"newsdesk/internal/domain/entity"
	"newsdesk/internal/infra/idgen"
	"newsdesk/internal/repository"
)

// Service provides category management use cases.
type Service struct {
	Repo repository.CategoryRepository
	IDs  idgen.Generator
}

// Create stores a new category. Name is required.
func (s *Service) Create(ctx context.Context, name string) (*entity.Category, error) {
	if err := entity.Required("name", name); err != nil {
		return nil, err
	}
	ids := s.IDs
	if ids == nil {
		ids = idgen.UUID{}
	}

	c := &entity.Category{ID: ids.NewID(), Name: strings.TrimSpace(name)}
	if err := s.Repo.Insert(ctx, c); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

// Edit renames a category.
func (s *Service) Edit(ctx context.Context, id, name string) (*entity.Category, error) {
	if err := entity.Required("name", name); err != nil {
		return nil, err
	}
	c, err := s.Repo.Modify(ctx, id, func(c *entity.Category) error {
		c.Name = strings.TrimSpace(name)
		return nil
	})
	if err != nil {
		return nil, wrap("edit category", err)
	}
	return c, nil
}

// Delete removes a category. Unknown IDs are ignored.
// Articles keep their category string.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.Repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

// Get retrieves a category by ID.
func (s *Service) Get(ctx context.Context, id string) (*entity.Category, error) {
	c, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, wrap("get category", err)
	}
	return c, nil
}

// List returns every category in insertion order.
func (s *Service) List(ctx context.Context) ([]*entity.Category, error) {
	cs, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cs, nil
}

func wrap(op string, err error) error {
	if errors.Is(err, entity.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, ErrCategoryNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}
