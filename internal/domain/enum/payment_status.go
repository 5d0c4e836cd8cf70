package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// PaymentStatus is the settlement state of an invoice
type PaymentStatus int

const (
	PaymentStatusPending PaymentStatus = 0
	PaymentStatusPartial PaymentStatus = 1
	PaymentStatusPaid    PaymentStatus = 2
)

var paymentStatusNames = [...]string{"pending", "partial", "paid"}

func (s PaymentStatus) String() string {
	if s < 0 || int(s) >= len(paymentStatusNames) {
		return "unknown"
	}
	return paymentStatusNames[s]
}

// ParsePaymentStatus parses "pending", "partial" or "paid"
func ParsePaymentStatus(str string) (PaymentStatus, error) {
	for i, name := range paymentStatusNames {
		if name == str {
			return PaymentStatus(i), nil
		}
	}
	return 0, fmt.Errorf("unknown payment status %q", str)
}

func (s PaymentStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *PaymentStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parsed, err := ParsePaymentStatus(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s PaymentStatus) Value() (driver.Value, error) {
	return s.String(), nil
}

func (s *PaymentStatus) Scan(value interface{}) error {
	switch v := value.(type) {
	case string:
		parsed, err := ParsePaymentStatus(v)
		if err != nil {
			return err
		}
		*s = parsed
	case []byte:
		return s.Scan(string(v))
	case nil:
		*s = PaymentStatusPending
	default:
		return fmt.Errorf("cannot scan %T into PaymentStatus", value)
	}
	return nil
}
