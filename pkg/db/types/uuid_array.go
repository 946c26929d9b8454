package dbtypes

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// UUIDArray maps a Postgres uuid[] column onto a Go slice.
type UUIDArray []uuid.UUID

func (a *UUIDArray) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*a = UUIDArray{}
		return nil
	case string:
		return a.scanLiteral(v)
	case []byte:
		return a.scanLiteral(string(v))
	default:
		return fmt.Errorf("UUIDArray: unsupported Scan type %T", src)
	}
}

// Value renders the Postgres array literal form, e.g. {uuid,uuid}.
func (a UUIDArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "{}", nil
	}
	parts := make([]string, len(a))
	for i, id := range a {
		parts[i] = id.String()
	}
	return "{" + strings.Join(parts, ",") + "}", nil
}

// Contains reports whether the array holds the given id.
func (a UUIDArray) Contains(id uuid.UUID) bool {
	for _, candidate := range a {
		if candidate == id {
			return true
		}
	}
	return false
}

// Other returns the element that is not the given id. Intended for the
// two-participant arrays on shifts.
func (a UUIDArray) Other(id uuid.UUID) (uuid.UUID, bool) {
	for _, candidate := range a {
		if candidate != id {
			return candidate, true
		}
	}
	return uuid.Nil, false
}

func (a *UUIDArray) scanLiteral(s string) error {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "{")
	s = strings.TrimSuffix(s, "}")
	if strings.TrimSpace(s) == "" {
		*a = UUIDArray{}
		return nil
	}

	raw := strings.Split(s, ",")
	out := make(UUIDArray, 0, len(raw))
	for _, elem := range raw {
		elem = strings.TrimSpace(strings.Trim(elem, `"`))
		id, err := uuid.Parse(elem)
		if err != nil {
			return fmt.Errorf("UUIDArray: parse %q: %w", elem, err)
		}
		out = append(out, id)
	}
	*a = out
	return nil
}
