package item

import (
	"time"
)

// Payload is the parsed form of an item create/update body. Fixed
// fields are pointers so "absent" and "present" stay distinct;
// CategoryIDSet additionally separates an explicit null (detach)
// from a missing key (keep).
type Payload struct {
	Name          *string
	Department    *string
	IssuedDate    *time.Time
	CategoryID    *string
	CategoryIDSet bool
	Attrs         map[string]any
}

type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return e.Field + " " + e.Reason
}

// ParsePayload splits a raw JSON object into fixed fields and dynamic
// attributes. A null fixed field counts as absent; an explicit empty
// string is rejected rather than silently dropped.
func ParsePayload(raw map[string]any) (Payload, error) {
	p := Payload{Attrs: make(map[string]any)}

	for key, val := range raw {
		switch key {
		case "id":
			return Payload{}, &FieldError{Field: "id", Reason: "is reserved and cannot be set"}

		case "name", "department":
			if val == nil {
				continue
			}

			s, err := stringField(key, val)
			if err != nil {
				return Payload{}, err
			}
			if s == "" {
				return Payload{}, &FieldError{Field: key, Reason: "must not be empty"}
			}

			if key == "name" {
				p.Name = &s
			} else {
				p.Department = &s
			}

		case "issuedDate":
			if val == nil {
				continue
			}

			s, err := stringField(key, val)
			if err != nil {
				return Payload{}, err
			}

			d, err := time.Parse(time.DateOnly, s)

			if err != nil {
				return Payload{}, &FieldError{Field: "issuedDate", Reason: "must be a valid YYYY-MM-DD date"}
			}
			p.IssuedDate = &d

		case "categoryId":
			p.CategoryIDSet = true

			if val == nil {
				continue
			}

			s, err := stringField(key, val)
			if err != nil {
				return Payload{}, err
			}
			if s != "" {
				p.CategoryID = &s
			}

		default:
			p.Attrs[key] = val
		}
	}

	return p, nil
}

// NewFromPayload builds a fresh item from a create payload whose
// mandatory fields have already been checked.
func NewFromPayload(p Payload) Item {
	return Item{
		ID:         NewID(),
		Name:       *p.Name,
		Department: *p.Department,
		IssuedDate: *p.IssuedDate,
		CategoryID: p.CategoryID,
		Attrs:      p.Attrs,
	}
}

// Apply overlays an update payload: fixed fields present in the
// payload overwrite, absent ones persist, and the dynamic attribute
// set is replaced wholesale.
func (i *Item) Apply(p Payload) {
	if p.Name != nil {
		i.Name = *p.Name
	}

	if p.Department != nil {
		i.Department = *p.Department
	}

	if p.IssuedDate != nil {
		i.IssuedDate = *p.IssuedDate
	}

	if p.CategoryIDSet {
		i.CategoryID = p.CategoryID
	}

	i.Attrs = p.Attrs
}

func stringField(key string, val any) (string, error) {
	if val == nil {
		return "", nil
	}

	s, ok := val.(string)

	if !ok {
		return "", &FieldError{Field: key, Reason: "must be a string"}
	}

	return s, nil
}
