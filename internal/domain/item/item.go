package item

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Item struct {
	ID         string
	Name       string
	Department string
	IssuedDate time.Time
	CategoryID *string
	Attrs      map[string]any
}

var ErrNotFound = errors.New("item not found")

// NewID generates an item id in the item-<8 hex chars> format.
func NewID() string {
	return "item-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// MarshalJSON flattens the fixed fields and the dynamic attributes
// into a single object. Fixed fields are written last so they can
// never be shadowed; ParsePayload additionally rejects reserved keys
// on the way in, so stored attributes never collide with them.
func (i Item) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(i.Attrs)+5)

	for k, v := range i.Attrs {
		out[k] = v
	}

	out["id"] = i.ID
	out["name"] = i.Name
	out["department"] = i.Department
	out["issuedDate"] = i.IssuedDate.Format(time.DateOnly)
	out["categoryId"] = i.CategoryID

	return json.Marshal(out)
}
