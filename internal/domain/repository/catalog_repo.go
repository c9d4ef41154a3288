package repository

import (
	"context"

	"github.com/yourusername/quiz-api/internal/domain/entity"
)

// CategoryRepository определяет методы для работы с категориями
type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	GetByID(ctx context.Context, id uint) (*entity.Category, error)
	// GetByName ищет категорию без учета регистра
	GetByName(ctx context.Context, name string) (*entity.Category, error)
	GetByIDs(ctx context.Context, ids []uint) ([]entity.Category, error)
	List(ctx context.Context) ([]entity.Category, error)
	Update(ctx context.Context, category *entity.Category) error
	Delete(ctx context.Context, id uint) error
}

// TagRepository определяет методы для работы с тегами
type TagRepository interface {
	Create(ctx context.Context, tag *entity.Tag) error
	GetByID(ctx context.Context, id uint) (*entity.Tag, error)
	// GetByName ищет тег без учета регистра
	GetByName(ctx context.Context, name string) (*entity.Tag, error)
	GetByIDs(ctx context.Context, ids []uint) ([]entity.Tag, error)
	List(ctx context.Context) ([]entity.Tag, error)
	Update(ctx context.Context, tag *entity.Tag) error
	Delete(ctx context.Context, id uint) error
}
