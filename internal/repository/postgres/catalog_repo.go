package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/yourusername/quiz-api/internal/domain/entity"
	apperrors "github.com/yourusername/quiz-api/internal/pkg/errors"
)

// CategoryRepo реализует repository.CategoryRepository
type CategoryRepo struct {
	db *gorm.DB
}

// NewCategoryRepo создает новый репозиторий категорий
func NewCategoryRepo(db *gorm.DB) *CategoryRepo {
	return &CategoryRepo{db: db}
}

// Create создает категорию. Совпадение имени без учета регистра дает ErrConflict.
func (r *CategoryRepo) Create(ctx context.Context, category *entity.Category) error {
	return mapError(r.db.WithContext(ctx).Create(category).Error, "category")
}

// GetByID возвращает категорию по ID
func (r *CategoryRepo) GetByID(ctx context.Context, id uint) (*entity.Category, error) {
	var category entity.Category
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, mapError(err, "category")
	}
	return &category, nil
}

// GetByName ищет категорию по имени без учета регистра
func (r *CategoryRepo) GetByName(ctx context.Context, name string) (*entity.Category, error) {
	var category entity.Category
	if err := r.db.WithContext(ctx).Where("LOWER(name) = LOWER(?)", name).First(&category).Error; err != nil {
		return nil, mapError(err, "category")
	}
	return &category, nil
}

// GetByIDs возвращает найденные категории; отсутствующие ID просто пропускаются
func (r *CategoryRepo) GetByIDs(ctx context.Context, ids []uint) ([]entity.Category, error) {
	var categories []entity.Category
	if len(ids) == 0 {
		return categories, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&categories).Error
	return categories, err
}

// List возвращает все категории по алфавиту
func (r *CategoryRepo) List(ctx context.Context) ([]entity.Category, error) {
	var categories []entity.Category
	err := r.db.WithContext(ctx).Order("name").Find(&categories).Error
	return categories, err
}

// Update переименовывает категорию
func (r *CategoryRepo) Update(ctx context.Context, category *entity.Category) error {
	result := r.db.WithContext(ctx).Model(category).Update("name", category.Name)
	if result.Error != nil {
		return mapError(result.Error, "category")
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// Delete удаляет категорию вместе со связями с викторинами
func (r *CategoryRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM quiz_categories WHERE category_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&entity.Category{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperrors.ErrNotFound
		}
		return nil
	})
}

// TagRepo реализует repository.TagRepository
type TagRepo struct {
	db *gorm.DB
}

// NewTagRepo создает новый репозиторий тегов
func NewTagRepo(db *gorm.DB) *TagRepo {
	return &TagRepo{db: db}
}

// Create создает тег
func (r *TagRepo) Create(ctx context.Context, tag *entity.Tag) error {
	return mapError(r.db.WithContext(ctx).Create(tag).Error, "tag")
}

// GetByID возвращает тег по ID
func (r *TagRepo) GetByID(ctx context.Context, id uint) (*entity.Tag, error) {
	var tag entity.Tag
	if err := r.db.WithContext(ctx).First(&tag, id).Error; err != nil {
		return nil, mapError(err, "tag")
	}
	return &tag, nil
}

// GetByName ищет тег по имени без учета регистра
func (r *TagRepo) GetByName(ctx context.Context, name string) (*entity.Tag, error) {
	var tag entity.Tag
	if err := r.db.WithContext(ctx).Where("LOWER(name) = LOWER(?)", name).First(&tag).Error; err != nil {
		return nil, mapError(err, "tag")
	}
	return &tag, nil
}

// GetByIDs возвращает найденные теги
func (r *TagRepo) GetByIDs(ctx context.Context, ids []uint) ([]entity.Tag, error) {
	var tags []entity.Tag
	if len(ids) == 0 {
		return tags, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&tags).Error
	return tags, err
}

// List возвращает все теги по алфавиту
func (r *TagRepo) List(ctx context.Context) ([]entity.Tag, error) {
	var tags []entity.Tag
	err := r.db.WithContext(ctx).Order("name").Find(&tags).Error
	return tags, err
}

// Update переименовывает тег
func (r *TagRepo) Update(ctx context.Context, tag *entity.Tag) error {
	result := r.db.WithContext(ctx).Model(tag).Update("name", tag.Name)
	if result.Error != nil {
		return mapError(result.Error, "tag")
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// Delete удаляет тег вместе со связями с викторинами
func (r *TagRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM quiz_tags WHERE tag_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&entity.Tag{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperrors.ErrNotFound
		}
		return nil
	})
}
