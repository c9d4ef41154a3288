package entity

import (
	"strings"
	"time"
)

// Category группирует викторины по предметной области.
// Имя уникально без учета регистра (индекс на LOWER(name) в миграциях).
type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Category) TableName() string {
	return "categories"
}

// Tag - свободная метка викторины, уникальна без учета регистра
type Tag struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:50;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Tag) TableName() string {
	return "tags"
}

// NormalizeName обрезает пробелы по краям имени категории или тега
func NormalizeName(name string) string {
	return strings.TrimSpace(name)
}
