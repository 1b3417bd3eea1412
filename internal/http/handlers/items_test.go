package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"github.com/stocktrack/stationery/internal/domain/item"
	"github.com/stocktrack/stationery/internal/http/handlers"
)

// memItemStore behaves like the real repo over a map, enough to
// exercise create/update/list semantics end to end.
type memItemStore struct {
	items map[string]item.Item
}

func newMemItemStore() *memItemStore {
	return &memItemStore{items: make(map[string]item.Item)}
}

func (s *memItemStore) List(ctx context.Context) ([]item.Item, error) {
	out := make([]item.Item, 0, len(s.items))
	for _, it := range s.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *memItemStore) Create(ctx context.Context, it item.Item) (item.Item, error) {
	s.items[it.ID] = it
	return it, nil
}

func (s *memItemStore) Update(ctx context.Context, id string, p item.Payload) (item.Item, error) {
	it, ok := s.items[id]
	if !ok {
		return item.Item{}, item.ErrNotFound
	}
	it.Apply(p)
	s.items[id] = it
	return it, nil
}

func (s *memItemStore) Delete(ctx context.Context, id string) error {
	if _, ok := s.items[id]; !ok {
		return item.ErrNotFound
	}
	delete(s.items, id)
	return nil
}

func decodeItem(t *testing.T, data []byte) map[string]any {
	t.Helper()

	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("invalid item body: %v", err)
	}
	return m
}

func TestCreateItemValidation(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		wantStatusCode int
	}{
		{
			name:           "success_with_dynamic_attr",
			body:           `{"name": "Pen", "department": "Sales", "issuedDate": "2024-01-15", "color": "blue"}`,
			wantStatusCode: http.StatusCreated,
		},
		{
			name:           "missing_department",
			body:           `{"name": "Pen", "issuedDate": "2024-01-15"}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "empty_name",
			body:           `{"name": "", "department": "Sales", "issuedDate": "2024-01-15"}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "bad_date",
			body:           `{"name": "Pen", "department": "Sales", "issuedDate": "15/01/2024"}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "reserved_id_key",
			body:           `{"id": "item-hacked00", "name": "Pen", "department": "Sales", "issuedDate": "2024-01-15"}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "non_string_name",
			body:           `{"name": 42, "department": "Sales", "issuedDate": "2024-01-15"}`,
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			h := handlers.NewItemsHandler(newMemItemStore())
			r := setupRouter(http.MethodPost, "/api/items", h.CreateItem)

			w := doJSON(t, r, http.MethodPost, "/api/items", tt.body)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestCreateItemSerializesDynamicAttrs(t *testing.T) {
	h := handlers.NewItemsHandler(newMemItemStore())
	r := setupRouter(http.MethodPost, "/api/items", h.CreateItem)

	w := doJSON(t, r, http.MethodPost, "/api/items",
		`{"name": "Pen", "department": "Sales", "issuedDate": "2024-01-15", "color": "blue", "quantity": 12}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	got := decodeItem(t, w.Body.Bytes())

	if got["name"] != "Pen" || got["department"] != "Sales" || got["issuedDate"] != "2024-01-15" {
		t.Fatalf("fixed fields wrong: %v", got)
	}
	if got["color"] != "blue" {
		t.Fatalf("dynamic attribute missing from serialized item: %v", got)
	}
	if got["quantity"] != float64(12) {
		t.Fatalf("dynamic attribute quantity wrong: %v", got["quantity"])
	}
	if got["categoryId"] != nil {
		t.Fatalf("uncategorized item must serialize categoryId as null, got %v", got["categoryId"])
	}

	id, _ := got["id"].(string)
	if len(id) != len("item-")+8 {
		t.Fatalf("bad generated id %q", id)
	}
}

// Updating without the old dynamic keys discards them: the attribute
// set is replaced wholesale, never merged.
func TestUpdateItemReplacesDynamicAttrs(t *testing.T) {
	store := newMemItemStore()
	h := handlers.NewItemsHandler(store)

	create := setupRouter(http.MethodPost, "/api/items", h.CreateItem)
	w := doJSON(t, create, http.MethodPost, "/api/items",
		`{"name": "Pen", "department": "Sales", "issuedDate": "2024-01-15", "color": "blue"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("create failed: %s", w.Body.String())
	}

	id := decodeItem(t, w.Body.Bytes())["id"].(string)

	update := setupRouter(http.MethodPut, "/api/items/:id", h.UpdateItem)
	w = doJSON(t, update, http.MethodPut, "/api/items/"+id, `{"name": "Pen Deluxe"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("update failed: %d %s", w.Code, w.Body.String())
	}

	got := decodeItem(t, w.Body.Bytes())

	if got["name"] != "Pen Deluxe" {
		t.Fatalf("name not updated: %v", got)
	}
	// absent fixed fields persist
	if got["department"] != "Sales" || got["issuedDate"] != "2024-01-15" {
		t.Fatalf("untouched fixed fields changed: %v", got)
	}
	if _, present := got["color"]; present {
		t.Fatalf("old dynamic attribute survived a wholesale replace: %v", got)
	}
}

func TestUpdateItemCategoryNullVsAbsent(t *testing.T) {
	store := newMemItemStore()
	h := handlers.NewItemsHandler(store)

	create := setupRouter(http.MethodPost, "/api/items", h.CreateItem)
	w := doJSON(t, create, http.MethodPost, "/api/items",
		`{"name": "Stapler", "department": "HR", "issuedDate": "2023-06-01", "categoryId": "cat-12345678"}`)

	id := decodeItem(t, w.Body.Bytes())["id"].(string)

	update := setupRouter(http.MethodPut, "/api/items/:id", h.UpdateItem)

	// absent key keeps the category
	w = doJSON(t, update, http.MethodPut, "/api/items/"+id, `{"department": "Facilities"}`)
	got := decodeItem(t, w.Body.Bytes())

	if got["categoryId"] != "cat-12345678" {
		t.Fatalf("absent categoryId must keep the stored value, got %v", got["categoryId"])
	}

	// explicit null detaches
	w = doJSON(t, update, http.MethodPut, "/api/items/"+id, `{"categoryId": null}`)
	got = decodeItem(t, w.Body.Bytes())

	if got["categoryId"] != nil {
		t.Fatalf("explicit null must detach the category, got %v", got["categoryId"])
	}
}

// An explicit empty string on an update is a validation error, not a
// no-op: the stored value must survive untouched.
func TestUpdateItemRejectsEmptyName(t *testing.T) {
	store := newMemItemStore()
	h := handlers.NewItemsHandler(store)

	create := setupRouter(http.MethodPost, "/api/items", h.CreateItem)
	w := doJSON(t, create, http.MethodPost, "/api/items",
		`{"name": "Pen", "department": "Sales", "issuedDate": "2024-01-15"}`)

	id := decodeItem(t, w.Body.Bytes())["id"].(string)

	update := setupRouter(http.MethodPut, "/api/items/:id", h.UpdateItem)
	w = doJSON(t, update, http.MethodPut, "/api/items/"+id, `{"name": ""}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("empty name update: got %d, want 400", w.Code)
	}

	if stored := store.items[id]; stored.Name != "Pen" {
		t.Fatalf("rejected update must not change the item: %+v", stored)
	}
}

func TestUpdateAndDeleteUnknownItem(t *testing.T) {
	h := handlers.NewItemsHandler(newMemItemStore())

	update := setupRouter(http.MethodPut, "/api/items/:id", h.UpdateItem)
	w := doJSON(t, update, http.MethodPut, "/api/items/item-missing1", `{"name": "Ghost"}`)

	if w.Code != http.StatusNotFound {
		t.Fatalf("update unknown id: got %d", w.Code)
	}

	del := setupRouter(http.MethodDelete, "/api/items/:id", h.DeleteItem)
	req := httptest.NewRequest(http.MethodDelete, "/api/items/item-missing1", nil)
	rec := httptest.NewRecorder()
	del.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("delete unknown id: got %d", rec.Code)
	}
}

func TestItemCreateListRoundTrip(t *testing.T) {
	store := newMemItemStore()
	h := handlers.NewItemsHandler(store)

	create := setupRouter(http.MethodPost, "/api/items", h.CreateItem)
	w := doJSON(t, create, http.MethodPost, "/api/items",
		`{"name": "Ruler", "department": "Design", "issuedDate": "2024-03-02", "material": "steel"}`)

	created := decodeItem(t, w.Body.Bytes())

	list := setupRouter(http.MethodGet, "/api/items", h.ListItems)
	req := httptest.NewRequest(http.MethodGet, "/api/items", nil)
	rec := httptest.NewRecorder()
	list.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("list failed: %d", rec.Code)
	}

	var listed []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("invalid list body: %v", err)
	}

	if len(listed) != 1 {
		t.Fatalf("expected exactly one item, got %d", len(listed))
	}

	for k, v := range created {
		if lv, ok := listed[0][k]; !ok || lv != v {
			t.Fatalf("field %q differs between create (%v) and list (%v)", k, v, listed[0][k])
		}
	}
}

func TestDeleteItemNoBody(t *testing.T) {
	store := newMemItemStore()
	h := handlers.NewItemsHandler(store)

	create := setupRouter(http.MethodPost, "/api/items", h.CreateItem)
	w := doJSON(t, create, http.MethodPost, "/api/items",
		`{"name": "Tape", "department": "Ops", "issuedDate": "2024-05-05"}`)

	id := decodeItem(t, w.Body.Bytes())["id"].(string)

	del := setupRouter(http.MethodDelete, "/api/items/:id", h.DeleteItem)
	req := httptest.NewRequest(http.MethodDelete, "/api/items/"+id, nil)
	rec := httptest.NewRecorder()
	del.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("got status %d", rec.Code)
	}

	if rec.Body.Len() != 0 {
		t.Fatalf("204 response must have no body, got %q", rec.Body.String())
	}

	if len(store.items) != 0 {
		t.Fatal("item still present after delete")
	}
}
