package category

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

var (
	ErrNotFound  = errors.New("category not found")
	ErrNameTaken = errors.New("category name already exists")
)

type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required"`
}

// NewID generates a category id in the cat-<8 hex chars> format.
func NewID() string {
	return "cat-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
