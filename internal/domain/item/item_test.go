package item

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestNewIDFormat(t *testing.T) {
	id := NewID()

	if !strings.HasPrefix(id, "item-") {
		t.Fatalf("id %q lacks the item- prefix", id)
	}

	suffix := strings.TrimPrefix(id, "item-")

	if len(suffix) != 8 {
		t.Fatalf("id suffix %q is not 8 chars", suffix)
	}

	for _, c := range suffix {
		if !strings.ContainsRune("0123456789abcdef", c) {
			t.Fatalf("id suffix %q is not lowercase hex", suffix)
		}
	}
}

func TestParsePayloadSplitsFixedAndDynamic(t *testing.T) {
	raw := map[string]any{
		"name":       "Pen",
		"department": "Sales",
		"issuedDate": "2024-01-15",
		"categoryId": "cat-12345678",
		"color":      "blue",
		"quantity":   float64(3),
	}

	p, err := ParsePayload(raw)

	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if p.Name == nil || *p.Name != "Pen" {
		t.Fatalf("name not parsed: %+v", p)
	}
	if p.Department == nil || *p.Department != "Sales" {
		t.Fatalf("department not parsed: %+v", p)
	}
	if p.IssuedDate == nil || p.IssuedDate.Format(time.DateOnly) != "2024-01-15" {
		t.Fatalf("issuedDate not parsed: %+v", p)
	}
	if !p.CategoryIDSet || p.CategoryID == nil || *p.CategoryID != "cat-12345678" {
		t.Fatalf("categoryId not parsed: %+v", p)
	}

	if len(p.Attrs) != 2 || p.Attrs["color"] != "blue" || p.Attrs["quantity"] != float64(3) {
		t.Fatalf("dynamic attrs wrong: %v", p.Attrs)
	}
}

func TestParsePayloadRejectsReservedID(t *testing.T) {
	_, err := ParsePayload(map[string]any{"id": "item-spoofed1", "name": "Pen"})

	if err == nil {
		t.Fatal("expected an error for a reserved id key")
	}

	var fe *FieldError

	if !errors.As(err, &fe) || fe.Field != "id" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParsePayloadBadDate(t *testing.T) {
	for _, bad := range []string{"15-01-2024", "2024-13-01", "2024-01-15T10:00:00Z", "yesterday", ""} {
		_, err := ParsePayload(map[string]any{"issuedDate": bad})

		if err == nil {
			t.Fatalf("date %q should not parse", bad)
		}
	}
}

// An explicit "" on name or department is neither "keep the old
// value" nor a legal new one; it must come back as a field error
// instead of being dropped.
func TestParsePayloadRejectsEmptyStrings(t *testing.T) {
	for _, field := range []string{"name", "department"} {
		_, err := ParsePayload(map[string]any{field: ""})

		var fe *FieldError

		if !errors.As(err, &fe) || fe.Field != field {
			t.Fatalf("empty %s: got %v, want a field error", field, err)
		}
	}

	// a null fixed field still counts as absent
	p, err := ParsePayload(map[string]any{"name": nil, "department": nil})

	if err != nil {
		t.Fatal(err)
	}
	if p.Name != nil || p.Department != nil {
		t.Fatalf("null fields must parse as absent: %+v", p)
	}
}

func TestParsePayloadCategoryStates(t *testing.T) {
	// absent key
	p, err := ParsePayload(map[string]any{"name": "Pen"})
	if err != nil {
		t.Fatal(err)
	}
	if p.CategoryIDSet {
		t.Fatal("absent categoryId must not mark the field set")
	}

	// explicit null
	p, err = ParsePayload(map[string]any{"categoryId": nil})
	if err != nil {
		t.Fatal(err)
	}
	if !p.CategoryIDSet || p.CategoryID != nil {
		t.Fatalf("explicit null must parse as set-and-nil: %+v", p)
	}
}

func TestApplyReplacesAttrsWholesale(t *testing.T) {
	cat := "cat-aaaaaaaa"
	it := Item{
		ID:         "item-00000001",
		Name:       "Pen",
		Department: "Sales",
		IssuedDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		CategoryID: &cat,
		Attrs:      map[string]any{"color": "blue"},
	}

	name := "Pen Deluxe"
	it.Apply(Payload{Name: &name, Attrs: map[string]any{}})

	if it.Name != "Pen Deluxe" {
		t.Fatalf("name not applied: %+v", it)
	}
	if it.Department != "Sales" {
		t.Fatal("absent department must persist")
	}
	if it.CategoryID == nil || *it.CategoryID != cat {
		t.Fatal("absent categoryId must persist")
	}
	if len(it.Attrs) != 0 {
		t.Fatalf("attrs must be replaced wholesale, got %v", it.Attrs)
	}
}

func TestMarshalFlattensAndFixedFieldsWin(t *testing.T) {
	it := Item{
		ID:         "item-00000001",
		Name:       "Pen",
		Department: "Sales",
		IssuedDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		// an attrs map with a reserved key cannot come out of
		// ParsePayload, but serialization must still not let it shadow
		Attrs: map[string]any{"color": "blue", "name": "shadow"},
	}

	data, err := json.Marshal(it)

	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if m["name"] != "Pen" {
		t.Fatalf("fixed field shadowed by dynamic attr: %v", m)
	}
	if m["issuedDate"] != "2024-01-15" {
		t.Fatalf("issuedDate not a plain date: %v", m["issuedDate"])
	}
	if m["color"] != "blue" {
		t.Fatalf("dynamic attr missing: %v", m)
	}
	if m["categoryId"] != nil {
		t.Fatalf("nil category must serialize as null: %v", m["categoryId"])
	}
}
