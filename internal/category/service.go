package category

import (
	"context"
	"log/slog"

	errors "github.com/frahmantamala/budget-ledger/internal"
	categoryDatamodel "github.com/frahmantamala/budget-ledger/internal/core/datamodel/category"
)

type RepositoryAPI interface {
	GetAll(ctx context.Context) ([]*categoryDatamodel.Category, error)
	// GetByID and GetByName return nil, nil when nothing matches.
	GetByID(ctx context.Context, id int64) (*categoryDatamodel.Category, error)
	GetByName(ctx context.Context, name string) (*categoryDatamodel.Category, error)
	Create(ctx context.Context, category *categoryDatamodel.Category) error
	Update(ctx context.Context, category *categoryDatamodel.Category) error
	Delete(ctx context.Context, id int64) error
	CountExpenses(ctx context.Context, id int64) (int64, error)
}

type Service struct {
	repo   RepositoryAPI
	cache  *Cache
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, cache *Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

func (s *Service) GetAllCategories(ctx context.Context) ([]CategoryResponse, error) {
	dataCategories, err := s.repo.GetAll(ctx)
	if err != nil {
		s.logger.Error("failed to get categories from repository", "error", err)
		return nil, err
	}

	responses := make([]CategoryResponse, 0, len(dataCategories))
	for _, dataCategory := range dataCategories {
		responses = append(responses, FromDataModel(dataCategory).ToResponse())
	}

	s.logger.Debug("retrieved categories", "count", len(responses))
	return responses, nil
}

// GetByID returns ErrCategoryNotFound when the id is unknown.
func (s *Service) GetByID(ctx context.Context, id int64) (*Category, error) {
	if cat, ok := s.cache.Get(id); ok {
		return cat, nil
	}

	dataCategory, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to get category", "error", err, "category_id", id)
		return nil, err
	}
	if dataCategory == nil {
		return nil, errors.ErrCategoryNotFound
	}

	cat := FromDataModel(dataCategory)
	s.cache.Set(cat)
	return cat, nil
}

// Exists reports whether a category with id is stored.
func (s *Service) Exists(ctx context.Context, id int64) (bool, error) {
	_, err := s.GetByID(ctx, id)
	if err == nil {
		return true, nil
	}
	if appErr, ok := errors.IsAppError(err); ok && appErr.Type == errors.ErrorTypeNotFound {
		return false, nil
	}
	return false, err
}

func (s *Service) Create(ctx context.Context, dto CategoryDTO) (*Category, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	cat := NewCategory(dto.Name, dto.Description)
	if err := s.ensureUniqueName(ctx, cat.Name, 0); err != nil {
		return nil, err
	}

	dataCategory := ToDataModel(cat)
	if err := s.repo.Create(ctx, dataCategory); err != nil {
		s.logger.Error("failed to create category", "error", err, "name", cat.Name)
		return nil, err
	}

	created := FromDataModel(dataCategory)
	s.logger.Info("category created", "category_id", created.ID, "name", created.Name)
	return created, nil
}

func (s *Service) Update(ctx context.Context, id int64, dto CategoryDTO) (*Category, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	dataCategory, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if dataCategory == nil {
		return nil, errors.ErrCategoryNotFound
	}

	cat := FromDataModel(dataCategory)
	cat.Rename(dto.Name, dto.Description)
	if err := s.ensureUniqueName(ctx, cat.Name, cat.ID); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, ToDataModel(cat)); err != nil {
		s.logger.Error("failed to update category", "error", err, "category_id", id)
		return nil, err
	}
	s.cache.Invalidate(id)

	return cat, nil
}

// Delete refuses to remove a category that expenses still reference.
func (s *Service) Delete(ctx context.Context, id int64) error {
	dataCategory, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if dataCategory == nil {
		return errors.ErrCategoryNotFound
	}

	count, err := s.repo.CountExpenses(ctx, id)
	if err != nil {
		s.logger.Error("failed to count category references", "error", err, "category_id", id)
		return err
	}
	if count > 0 {
		s.logger.Warn("category delete rejected: still referenced", "category_id", id, "expenses", count)
		return errors.ErrCategoryInUse
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete category", "error", err, "category_id", id)
		return err
	}
	s.cache.Invalidate(id)

	s.logger.Info("category deleted", "category_id", id)
	return nil
}

func (s *Service) ensureUniqueName(ctx context.Context, name string, selfID int64) error {
	existing, err := s.repo.GetByName(ctx, name)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != selfID {
		return errors.NewConflictError("category name has already been taken", errors.ErrCodeCategoryDuplicate)
	}
	return nil
}
