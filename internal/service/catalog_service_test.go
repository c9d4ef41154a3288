package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/quiz-api/internal/domain/entity"
	apperrors "github.com/yourusername/quiz-api/internal/pkg/errors"
)

func TestCatalogService_CreateCategory_Success(t *testing.T) {
	// Arrange
	categoryRepo := new(MockCategoryRepository)
	categoryRepo.On("GetByName", mock.Anything, "Science").Return(nil, apperrors.ErrNotFound)
	categoryRepo.On("Create", mock.Anything, mock.MatchedBy(func(c *entity.Category) bool {
		return c.Name == "Science"
	})).Return(nil)

	svc := NewCatalogService(categoryRepo, new(MockTagRepository))

	// Act
	category, err := svc.CreateCategory(context.Background(), "  Science ")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "Science", category.Name)
	categoryRepo.AssertExpectations(t)
}

func TestCatalogService_CreateCategory_BlankName(t *testing.T) {
	categoryRepo := new(MockCategoryRepository)
	svc := NewCatalogService(categoryRepo, new(MockTagRepository))

	_, err := svc.CreateCategory(context.Background(), "   ")

	fe, ok := apperrors.AsFieldError(err)
	require.True(t, ok)
	assert.Equal(t, "name", fe.Field)
	assert.Equal(t, msgBlankField, fe.Message)
	categoryRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCatalogService_CreateCategory_DuplicateIgnoringCase(t *testing.T) {
	categoryRepo := new(MockCategoryRepository)
	categoryRepo.On("GetByName", mock.Anything, "science").Return(&entity.Category{ID: 1, Name: "Science"}, nil)

	svc := NewCatalogService(categoryRepo, new(MockTagRepository))
	_, err := svc.CreateCategory(context.Background(), "science")

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
	fe, ok := apperrors.AsFieldError(err)
	require.True(t, ok)
	assert.Equal(t, msgCategoryExists, fe.Message)
}

func TestCatalogService_CreateTag_RaceConflictReportedOnName(t *testing.T) {
	tagRepo := new(MockTagRepository)
	tagRepo.On("GetByName", mock.Anything, "go").Return(nil, apperrors.ErrNotFound)
	tagRepo.On("Create", mock.Anything, mock.Anything).Return(apperrors.ErrConflict)

	svc := NewCatalogService(new(MockCategoryRepository), tagRepo)
	_, err := svc.CreateTag(context.Background(), "go")

	fe, ok := apperrors.AsFieldError(err)
	require.True(t, ok)
	assert.Equal(t, "name", fe.Field)
	assert.Equal(t, msgTagExists, fe.Message)
}

func TestCatalogService_UpdateCategory_SameNameAllowed(t *testing.T) {
	categoryRepo := new(MockCategoryRepository)
	categoryRepo.On("GetByID", mock.Anything, uint(1)).Return(&entity.Category{ID: 1, Name: "Science"}, nil)
	categoryRepo.On("GetByName", mock.Anything, "SCIENCE").Return(&entity.Category{ID: 1, Name: "Science"}, nil)
	categoryRepo.On("Update", mock.Anything, mock.AnythingOfType("*entity.Category")).Return(nil)

	svc := NewCatalogService(categoryRepo, new(MockTagRepository))
	category, err := svc.UpdateCategory(context.Background(), 1, "SCIENCE")

	require.NoError(t, err)
	assert.Equal(t, "SCIENCE", category.Name)
}

func TestCatalogService_UpdateTag_NameTakenByAnother(t *testing.T) {
	tagRepo := new(MockTagRepository)
	tagRepo.On("GetByID", mock.Anything, uint(2)).Return(&entity.Tag{ID: 2, Name: "golang"}, nil)
	tagRepo.On("GetByName", mock.Anything, "go").Return(&entity.Tag{ID: 1, Name: "Go"}, nil)

	svc := NewCatalogService(new(MockCategoryRepository), tagRepo)
	_, err := svc.UpdateTag(context.Background(), 2, "go")

	fe, ok := apperrors.AsFieldError(err)
	require.True(t, ok)
	assert.Equal(t, msgTagExists, fe.Message)
	tagRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}
