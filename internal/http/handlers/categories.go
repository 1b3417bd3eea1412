package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stocktrack/stationery/internal/config"
	"github.com/stocktrack/stationery/internal/domain/category"
)

type CategoryStore interface {
	List(ctx context.Context) ([]category.Category, error)
	Create(ctx context.Context, name string) (category.Category, error)
	Delete(ctx context.Context, id string) error
}

type CategoriesHandler struct {
	repo CategoryStore
}

func NewCategoriesHandler(repo CategoryStore) *CategoriesHandler {
	return &CategoriesHandler{repo: repo}
}

func (h *CategoriesHandler) ListCategories(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	cats, err := h.repo.List(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list categories")
		return
	}

	ctx.JSON(http.StatusOK, cats)
}

func (h *CategoriesHandler) CreateCategory(ctx *gin.Context) {
	var req category.CreateCategoryRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	c, err := h.repo.Create(cctx, req.Name)

	if err != nil {
		if errors.Is(err, category.ErrNameTaken) {
			RespondConflict(ctx, "name_taken", "Category name already exists")
			return
		}

		RespondInternal(ctx, "Could not create category")
		return
	}

	ctx.JSON(http.StatusCreated, c)
}

func (h *CategoriesHandler) DeleteCategory(ctx *gin.Context) {
	id := ctx.Param("id")

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	err := h.repo.Delete(cctx, id)

	if err != nil {
		if errors.Is(err, category.ErrNotFound) {
			RespondNotFound(ctx, "Category not found")
			return
		}

		RespondInternal(ctx, "Error deleting category")
		return
	}

	ctx.Status(http.StatusNoContent)
}
