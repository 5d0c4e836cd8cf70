package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ItemKind distinguishes sellable services from stocked products
type ItemKind int

const (
	ItemKindService ItemKind = 0
	ItemKindProduct ItemKind = 1
)

var itemKindNames = [...]string{"service", "product"}

func (k ItemKind) String() string {
	if k < 0 || int(k) >= len(itemKindNames) {
		return "unknown"
	}
	return itemKindNames[k]
}

// IsValid reports whether k is a known kind
func (k ItemKind) IsValid() bool {
	return k == ItemKindService || k == ItemKindProduct
}

// ParseItemKind parses "service" or "product"
func ParseItemKind(s string) (ItemKind, error) {
	for i, name := range itemKindNames {
		if name == s {
			return ItemKind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown item type %q", s)
}

func (k ItemKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *ItemKind) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		if !ItemKind(i).IsValid() {
			return fmt.Errorf("unknown item type %d", i)
		}
		*k = ItemKind(i)
		return nil
	}
	parsed, err := ParseItemKind(str)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

func (k ItemKind) Value() (driver.Value, error) {
	return k.String(), nil
}

func (k *ItemKind) Scan(value interface{}) error {
	switch v := value.(type) {
	case string:
		parsed, err := ParseItemKind(v)
		if err != nil {
			return err
		}
		*k = parsed
	case []byte:
		return k.Scan(string(v))
	case nil:
		*k = ItemKindService
	default:
		return fmt.Errorf("cannot scan %T into ItemKind", value)
	}
	return nil
}
