package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stocktrack/stationery/internal/config"
	"github.com/stocktrack/stationery/internal/domain/item"
)

type ItemStore interface {
	List(ctx context.Context) ([]item.Item, error)
	Create(ctx context.Context, it item.Item) (item.Item, error)
	Update(ctx context.Context, id string, p item.Payload) (item.Item, error)
	Delete(ctx context.Context, id string) error
}

type ItemsHandler struct {
	repo ItemStore
}

func NewItemsHandler(repo ItemStore) *ItemsHandler {
	return &ItemsHandler{repo: repo}
}

func (h *ItemsHandler) ListItems(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	items, err := h.repo.List(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list items")
		return
	}

	ctx.JSON(http.StatusOK, items)
}

func (h *ItemsHandler) CreateItem(ctx *gin.Context) {
	p, ok := bindItemPayload(ctx)

	if !ok {
		return
	}

	if p.Name == nil || p.Department == nil || p.IssuedDate == nil {
		RespondBadRequest(ctx, "Mandatory fields (name, department, issuedDate) are required", nil)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	it, err := h.repo.Create(cctx, item.NewFromPayload(p))

	if err != nil {
		RespondInternal(ctx, "Error creating item")
		return
	}

	ctx.JSON(http.StatusCreated, it)
}

func (h *ItemsHandler) UpdateItem(ctx *gin.Context) {
	id := ctx.Param("id")

	p, ok := bindItemPayload(ctx)

	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	it, err := h.repo.Update(cctx, id, p)

	if err != nil {
		if errors.Is(err, item.ErrNotFound) {
			RespondNotFound(ctx, "Item not found")
			return
		}

		RespondInternal(ctx, "Error updating item")
		return
	}

	ctx.JSON(http.StatusOK, it)
}

func (h *ItemsHandler) DeleteItem(ctx *gin.Context) {
	id := ctx.Param("id")

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	err := h.repo.Delete(cctx, id)

	if err != nil {
		if errors.Is(err, item.ErrNotFound) {
			RespondNotFound(ctx, "Item not found")
			return
		}

		RespondInternal(ctx, "Error deleting item")
		return
	}

	ctx.Status(http.StatusNoContent)
}

// bindItemPayload reads the open-schema item body. Item payloads
// carry caller-defined keys, so they bind to a map and go through
// the domain splitter rather than a fixed struct.
func bindItemPayload(ctx *gin.Context) (item.Payload, bool) {
	var raw map[string]any

	if err := ctx.ShouldBindJSON(&raw); err != nil {
		RespondBadRequest(ctx, "Invalid request body", gin.H{"reason": err.Error()})
		return item.Payload{}, false
	}

	p, err := item.ParsePayload(raw)

	if err != nil {
		RespondBadRequest(ctx, err.Error(), nil)
		return item.Payload{}, false
	}

	return p, true
}
