package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/yourusername/quiz-api/internal/domain/entity"
	"github.com/yourusername/quiz-api/internal/domain/repository"
	apperrors "github.com/yourusername/quiz-api/internal/pkg/errors"
)

const (
	msgCategoryExists = "Category with this name already exists"
	msgTagExists      = "Tag with this name already exists"
)

// CatalogService управляет категориями и тегами
type CatalogService struct {
	categoryRepo repository.CategoryRepository
	tagRepo      repository.TagRepository
}

// NewCatalogService создает новый сервис каталога
func NewCatalogService(categoryRepo repository.CategoryRepository, tagRepo repository.TagRepository) *CatalogService {
	return &CatalogService{categoryRepo: categoryRepo, tagRepo: tagRepo}
}

// checkName нормализует имя и проверяет, что оно не занято другой записью (без учета регистра).
// lookup возвращает ID существующей записи с таким именем.
func checkName(ctx context.Context, raw, existsMsg string, selfID uint, lookup func(context.Context, string) (uint, error)) (string, error) {
	name := entity.NormalizeName(raw)
	if name == "" {
		return "", apperrors.NewFieldError("name", msgBlankField, apperrors.ErrValidation)
	}
	existingID, err := lookup(ctx, name)
	switch {
	case err == nil && existingID != selfID:
		return "", apperrors.NewFieldError("name", existsMsg, apperrors.ErrValidation)
	case err != nil && !errors.Is(err, apperrors.ErrNotFound):
		return "", fmt.Errorf("failed to check name uniqueness: %w", err)
	}
	return name, nil
}

// conflictAsField превращает нарушение уникальности из БД (гонка двух запросов) в ошибку поля
func conflictAsField(err error, existsMsg string) error {
	if errors.Is(err, apperrors.ErrConflict) {
		return apperrors.NewFieldError("name", existsMsg, apperrors.ErrValidation)
	}
	return err
}

func (s *CatalogService) categoryIDByName(ctx context.Context, name string) (uint, error) {
	c, err := s.categoryRepo.GetByName(ctx, name)
	if err != nil {
		return 0, err
	}
	return c.ID, nil
}

func (s *CatalogService) tagIDByName(ctx context.Context, name string) (uint, error) {
	t, err := s.tagRepo.GetByName(ctx, name)
	if err != nil {
		return 0, err
	}
	return t.ID, nil
}

// CreateCategory создает категорию
func (s *CatalogService) CreateCategory(ctx context.Context, name string) (*entity.Category, error) {
	name, err := checkName(ctx, name, msgCategoryExists, 0, s.categoryIDByName)
	if err != nil {
		return nil, err
	}
	category := &entity.Category{Name: name}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, conflictAsField(err, msgCategoryExists)
	}
	return category, nil
}

// GetCategory возвращает категорию по ID
func (s *CatalogService) GetCategory(ctx context.Context, id uint) (*entity.Category, error) {
	return s.categoryRepo.GetByID(ctx, id)
}

// ListCategories возвращает все категории
func (s *CatalogService) ListCategories(ctx context.Context) ([]entity.Category, error) {
	return s.categoryRepo.List(ctx)
}

// UpdateCategory переименовывает категорию
func (s *CatalogService) UpdateCategory(ctx context.Context, id uint, name string) (*entity.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if category.Name, err = checkName(ctx, name, msgCategoryExists, id, s.categoryIDByName); err != nil {
		return nil, err
	}
	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, conflictAsField(err, msgCategoryExists)
	}
	return category, nil
}

// DeleteCategory удаляет категорию и ее связи с викторинами
func (s *CatalogService) DeleteCategory(ctx context.Context, id uint) error {
	return s.categoryRepo.Delete(ctx, id)
}

// CreateTag создает тег
func (s *CatalogService) CreateTag(ctx context.Context, name string) (*entity.Tag, error) {
	name, err := checkName(ctx, name, msgTagExists, 0, s.tagIDByName)
	if err != nil {
		return nil, err
	}
	tag := &entity.Tag{Name: name}
	if err := s.tagRepo.Create(ctx, tag); err != nil {
		return nil, conflictAsField(err, msgTagExists)
	}
	return tag, nil
}

// GetTag возвращает тег по ID
func (s *CatalogService) GetTag(ctx context.Context, id uint) (*entity.Tag, error) {
	return s.tagRepo.GetByID(ctx, id)
}

// ListTags возвращает все теги
func (s *CatalogService) ListTags(ctx context.Context) ([]entity.Tag, error) {
	return s.tagRepo.List(ctx)
}

// UpdateTag переименовывает тег
func (s *CatalogService) UpdateTag(ctx context.Context, id uint, name string) (*entity.Tag, error) {
	tag, err := s.tagRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tag.Name, err = checkName(ctx, name, msgTagExists, id, s.tagIDByName); err != nil {
		return nil, err
	}
	if err := s.tagRepo.Update(ctx, tag); err != nil {
		return nil, conflictAsField(err, msgTagExists)
	}
	return tag, nil
}

// DeleteTag удаляет тег и его связи с викторинами
func (s *CatalogService) DeleteTag(ctx context.Context, id uint) error {
	return s.tagRepo.Delete(ctx, id)
}
